package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/williamhaley/music-tui/internal/domain"
	"github.com/williamhaley/music-tui/internal/search"
	"github.com/williamhaley/music-tui/internal/tui/styles"
)

// RenderSpinner renders one frame of the loading spinner
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
}

// Layout constants for lists
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// List is a bordered, scrollable, filterable list of albums or tracks
type List struct {
	title string
	items []domain.ListItem
	index *search.Index

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width  int
	height int

	// Loading and error state
	loading      bool
	spinnerFrame int
	err          error

	// Item shown with the now-playing marker
	markedID string
	paused   bool

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filtered     []search.Result // nil when no query
}

// NewList creates an empty list with the given title
func NewList(title string) *List {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &List{
		title:       title,
		filterInput: ti,
		index:       search.NewIndex(nil),
	}
}

// SetItems replaces the list contents and clears loading and error state
func (l *List) SetItems(items []domain.ListItem) {
	l.items = items
	l.loading = false
	l.err = nil

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.GetTitle()
	}
	l.index = search.NewIndex(titles)

	l.cursor = 0
	l.offset = 0
	if l.filterActive {
		l.applyFilter()
	}
}

// SetLoading shows a spinner instead of items
func (l *List) SetLoading(loading bool) {
	l.loading = loading
	if loading {
		l.err = nil
	}
}

// IsLoading reports whether the list is waiting for items
func (l *List) IsLoading() bool {
	return l.loading
}

// SetError shows err instead of items
func (l *List) SetError(err error) {
	l.loading = false
	l.err = err
}

// Err returns the error shown by the list, if any
func (l *List) Err() error {
	return l.err
}

// SetMarked sets the item rendered with the now-playing marker
func (l *List) SetMarked(id string, paused bool) {
	l.markedID = id
	l.paused = paused
}

// SetSpinnerFrame advances the loading animation
func (l *List) SetSpinnerFrame(frame int) {
	l.spinnerFrame = frame
}

// SetTitle sets the header line
func (l *List) SetTitle(title string) {
	l.title = title
}

// Title returns the header line
func (l *List) Title() string {
	return l.title
}

// Update handles navigation and filter keys
func (l *List) Update(msg tea.Msg) tea.Cmd {
	// Handle filter input when typing
	if l.filterActive && l.filterInput.Focused() {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc":
				l.clearFilter()
				return nil
			case "enter":
				// Accept filter, blur input to allow navigation
				l.filterInput.Blur()
				return nil
			case "backspace":
				if l.filterInput.Value() == "" {
					l.clearFilter()
					return nil
				}
			}
		}

		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd
	}

	// Filter active but blurred: navigating the results
	if l.filterActive {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc":
				l.clearFilter()
				return nil
			case "/":
				l.filterInput.Focus()
				return nil
			}
		}
	}

	count := l.ItemCount()
	if count == 0 {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "j", "down":
			if l.cursor < count-1 {
				l.cursor++
				l.ensureVisible()
			}
		case "k", "up":
			if l.cursor > 0 {
				l.cursor--
				l.ensureVisible()
			}
		case "g", "home":
			l.cursor = 0
			l.offset = 0
		case "G", "end":
			l.cursor = count - 1
			l.ensureVisible()
		case "ctrl+d", "pgdown":
			l.cursor += max(l.maxVisible/2, 1)
			if l.cursor >= count {
				l.cursor = count - 1
			}
			l.ensureVisible()
		case "ctrl+u", "pgup":
			l.cursor -= max(l.maxVisible/2, 1)
			if l.cursor < 0 {
				l.cursor = 0
			}
			l.ensureVisible()
		}
	}

	return nil
}

// View renders the list inside its border
func (l *List) View() string {
	style := styles.ActiveBorder
	content := l.renderContent()

	// Subtract frame (border) size so total rendered size equals l.width x l.height
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(max(l.width-frameW, 0)).
		Height(max(l.height-frameH, 0)).
		Render(content)
}

// SetSize sets the outer dimensions including the border
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

// ItemCount returns the number of visible (filtered) items
func (l *List) ItemCount() int {
	if l.filtered != nil {
		return len(l.filtered)
	}
	return len(l.items)
}

// SelectedIndex returns the selected item's index in the unfiltered items, or -1
func (l *List) SelectedIndex() int {
	if l.ItemCount() == 0 {
		return -1
	}
	return l.mapIndex(l.cursor)
}

// SelectedItem returns the selected item, or nil
func (l *List) SelectedItem() domain.ListItem {
	idx := l.SelectedIndex()
	if idx < 0 || idx >= len(l.items) {
		return nil
	}
	return l.items[idx]
}

// ToggleFilter activates the filter input
func (l *List) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (l *List) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (l *List) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (l *List) ClearFilter() {
	l.clearFilter()
}

// Internal methods

func (l *List) recalcMaxVisible() {
	// Reserve space for: title line + scroll indicators (header + footer)
	interiorHeight := l.height - BorderHeight
	l.maxVisible = interiorHeight - ScrollIndicatorLines - 1
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *List) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *List) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filtered = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
}

func (l *List) applyFilter() {
	query := l.filterInput.Value()
	l.filterQuery = query

	if strings.TrimSpace(query) == "" {
		l.filtered = nil
		return
	}

	l.filtered = l.index.Filter(query)
	if l.filtered == nil {
		l.filtered = []search.Result{}
	}

	// Reset cursor to first match
	l.cursor = 0
	l.offset = 0
}

func (l *List) mapIndex(i int) int {
	if l.filtered != nil && i < len(l.filtered) {
		return l.filtered[i].Index
	}
	return i
}

func (l *List) matchedIndexes(i int) []int {
	if l.filtered != nil && i < len(l.filtered) {
		return l.filtered[i].MatchedIndexes
	}
	return nil
}

// Rendering

func (l *List) renderContent() string {
	itemWidth := l.width - BorderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	if l.loading {
		loadingLine := RenderSpinner(l.spinnerFrame) + styles.DimStyle.Render(" Loading...")
		return titleLine + "\n \n" + loadingLine + "\n "
	}

	if l.err != nil {
		errLine := styles.ErrorStyle.Render(styles.Truncate("Error: "+l.err.Error(), itemWidth))
		hint := styles.DimStyle.Render("press r to retry")
		return titleLine + "\n \n" + errLine + "\n" + hint
	}

	count := l.ItemCount()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render("No items")
		if l.filterActive && l.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		content := titleLine + "\n \n" + emptyMsg + "\n "
		if l.filterActive {
			content += "\n" + l.renderFilterBar()
		}
		return content
	}

	end := min(l.offset+l.maxVisible, count)

	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderItem(l.items[l.mapIndex(i)], l.matchedIndexes(i), i == l.cursor, itemWidth))
	}

	// ALWAYS reserve space for header and footer to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer

	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}

	return content
}

func (l *List) renderItem(item domain.ListItem, matched []int, selected bool, width int) string {
	marker := "  "
	markerFg := styles.Accent
	if item.GetID() != "" && item.GetID() == l.markedID {
		marker = styles.PlayingChar + " "
		if l.paused {
			marker = styles.PausedChar + " "
			markerFg = styles.Amber
		}
	}

	desc := item.GetDescription()
	descWidth := 0
	if desc != "" {
		descWidth = lipgloss.Width(desc) + 1
	}

	// Available space: width - marker(2) - margins(2) - description
	available := width - 4 - descWidth
	if available < 5 {
		available = 5
		desc = ""
	}
	title := styles.Truncate(item.GetTitle(), available)

	parts := []styles.RowPart{{Text: marker, Foreground: &markerFg}}
	parts = append(parts, highlightParts(title, matched)...)
	if desc != "" {
		dim := styles.DimGray
		parts = append(parts, styles.RowPart{Text: " " + desc, Foreground: &dim})
	}

	return styles.RenderListRow(parts, selected, width)
}

// highlightParts splits title into runs of matched and unmatched characters.
// Matched positions are byte offsets into the title.
func highlightParts(title string, matched []int) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: title}}
	}

	isMatch := make(map[int]bool, len(matched))
	for _, i := range matched {
		isMatch[i] = true
	}

	accent := styles.Accent
	var parts []styles.RowPart
	var run strings.Builder
	runMatched := false

	flush := func() {
		if run.Len() == 0 {
			return
		}
		p := styles.RowPart{Text: run.String()}
		if runMatched {
			p.Foreground = &accent
			p.Bold = true
		}
		parts = append(parts, p)
		run.Reset()
	}

	for i, r := range title {
		m := isMatch[i]
		if m != runMatched {
			flush()
			runMatched = m
		}
		run.WriteRune(r)
	}
	flush()

	return parts
}

func (l *List) renderFilterBar() string {
	input := l.filterInput.View()

	countStr := ""
	if l.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.ItemCount(), len(l.items)))
	}

	return input + countStr
}
