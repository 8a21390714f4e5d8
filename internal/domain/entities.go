package domain

import "fmt"

// Track represents a single playable audio item belonging to an album
type Track struct {
	ID          string // Server-specific identifier, unique within an album
	Name        string // Display name
	Extension   string // File type hint, e.g. "mp3"
	TrackNumber int    // Position on the release (0 if unknown)
}

// DisplayName returns the track name prefixed with its number when known
func (t Track) DisplayName() string {
	if t.TrackNumber > 0 {
		return fmt.Sprintf("%02d. %s", t.TrackNumber, t.Name)
	}
	return t.Name
}

// GetID returns the unique identifier for this track
func (t Track) GetID() string { return t.ID }

// GetTitle returns the display title, numbered when the track number is known
func (t Track) GetTitle() string { return t.DisplayName() }

// GetDescription returns secondary info for display
func (t Track) GetDescription() string { return t.Extension }

// Album is an ordered collection of tracks with a display name.
// Track order is playback order.
type Album struct {
	ID     string
	Name   string
	Tracks []Track
}

// GetID returns the unique identifier for this album
func (a Album) GetID() string { return a.ID }

// GetTitle returns the display title
func (a Album) GetTitle() string { return a.Name }

// GetDescription returns the track count when the album was fetched with tracks
func (a Album) GetDescription() string {
	switch len(a.Tracks) {
	case 0:
		return ""
	case 1:
		return "1 track"
	default:
		return fmt.Sprintf("%d tracks", len(a.Tracks))
	}
}

// TrackIndex returns the position of the track with the given ID, or -1
func (a Album) TrackIndex(trackID string) int {
	for i, t := range a.Tracks {
		if t.ID == trackID {
			return i
		}
	}
	return -1
}
