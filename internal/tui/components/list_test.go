package components

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamhaley/music-tui/internal/domain"
)

func albumItems(names ...string) []domain.ListItem {
	items := make([]domain.ListItem, len(names))
	for i, n := range names {
		items[i] = domain.Album{ID: strings.ToLower(n), Name: n}
	}
	return items
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(l *List, text string) {
	for _, r := range text {
		l.Update(keyMsg(string(r)))
	}
}

func TestList_Navigation(t *testing.T) {
	l := NewList("Albums")
	l.SetSize(40, 20)
	l.SetItems(albumItems("A", "B", "C"))

	assert.Equal(t, 0, l.SelectedIndex())

	l.Update(keyMsg("j"))
	l.Update(keyMsg("down"))
	assert.Equal(t, 2, l.SelectedIndex())

	l.Update(keyMsg("j"))
	assert.Equal(t, 2, l.SelectedIndex(), "cursor stops at the end")

	l.Update(keyMsg("g"))
	assert.Equal(t, 0, l.SelectedIndex())

	l.Update(keyMsg("G"))
	assert.Equal(t, "c", l.SelectedItem().GetID())
}

func TestList_Empty(t *testing.T) {
	l := NewList("Albums")
	l.SetSize(40, 10)

	assert.Equal(t, -1, l.SelectedIndex())
	assert.Nil(t, l.SelectedItem())
	assert.Contains(t, l.View(), "No items")
}

func TestList_FilterMapsToOriginalIndex(t *testing.T) {
	l := NewList("Albums")
	l.SetSize(40, 20)
	l.SetItems(albumItems("Giant Steps", "Kind of Blue", "Blue Train"))

	l.ToggleFilter()
	require.True(t, l.IsFilterTyping())
	typeText(l, "blue")

	assert.Equal(t, 2, l.ItemCount())
	assert.Equal(t, 2, l.SelectedIndex(), "prefix match ranks first")

	// accept, then navigate the results
	l.Update(keyMsg("enter"))
	assert.False(t, l.IsFilterTyping())
	assert.True(t, l.IsFiltering())

	l.Update(keyMsg("j"))
	assert.Equal(t, 1, l.SelectedIndex())

	l.Update(keyMsg("esc"))
	assert.False(t, l.IsFiltering())
	assert.Equal(t, 3, l.ItemCount())
}

func TestList_FilterNoMatches(t *testing.T) {
	l := NewList("Albums")
	l.SetSize(40, 20)
	l.SetItems(albumItems("Giant Steps"))

	l.ToggleFilter()
	typeText(l, "zzz")

	assert.Equal(t, 0, l.ItemCount())
	assert.Nil(t, l.SelectedItem())
	assert.Contains(t, l.View(), "No matches")
}

func TestList_BackspaceOnEmptyFilterCloses(t *testing.T) {
	l := NewList("Albums")
	l.SetItems(albumItems("A"))

	l.ToggleFilter()
	l.Update(keyMsg("backspace"))
	assert.False(t, l.IsFiltering())
}

func TestList_LoadingAndError(t *testing.T) {
	l := NewList("Albums")
	l.SetSize(40, 10)

	l.SetLoading(true)
	assert.True(t, l.IsLoading())
	assert.Contains(t, l.View(), "Loading...")

	l.SetError(errors.New("music server is unreachable"))
	assert.False(t, l.IsLoading())
	assert.Error(t, l.Err())
	assert.Contains(t, l.View(), "retry")

	l.SetItems(albumItems("A"))
	assert.NoError(t, l.Err())
}

func TestList_ScrollKeepsCursorVisible(t *testing.T) {
	names := make([]string, 30)
	for i := range names {
		names[i] = string(rune('a' + i%26))
	}
	l := NewList("Albums")
	l.SetItems(albumItems(names...))
	l.SetSize(40, 10) // 10 - border(2) - indicators(2) - title(1) = 5 rows

	for i := 0; i < 7; i++ {
		l.Update(keyMsg("j"))
	}
	assert.Equal(t, 7, l.cursor)
	assert.Equal(t, 3, l.offset)
	assert.Contains(t, l.View(), "↑ more")
}

func TestHighlightParts(t *testing.T) {
	parts := highlightParts("Blue Train", []int{0, 1, 5})

	texts := make([]string, len(parts))
	for i, p := range parts {
		texts[i] = p.Text
	}
	assert.Equal(t, []string{"Bl", "ue ", "T", "rain"}, texts)
	assert.True(t, parts[0].Bold)
	assert.False(t, parts[1].Bold)

	assert.Len(t, highlightParts("Blue", nil), 1)
}
