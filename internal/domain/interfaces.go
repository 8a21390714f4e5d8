package domain

// ListItem is the interface for items that can be displayed in lists.
// Album and Track implement it directly.
type ListItem interface {
	// GetID returns the unique identifier for this item
	GetID() string

	// GetTitle returns the display title, also used for filtering
	GetTitle() string

	// GetDescription returns secondary info for display (e.g., "12 tracks")
	GetDescription() string
}
