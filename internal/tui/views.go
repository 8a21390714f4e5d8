package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/williamhaley/music-tui/internal/tui/components"
	"github.com/williamhaley/music-tui/internal/tui/styles"
)

// noTrackText is shown in the player bar when nothing is queued
const noTrackText = "..."

// View renders the current screen with the player bar and footer
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.State {
	case StateHelp:
		return m.renderHelp()
	case StateConfirmLogout:
		return m.renderLogoutConfirmation()
	}

	contentHeight := max(m.Height-ChromeHeight, 0)

	var content string
	switch m.route.Kind {
	case RouteLogin:
		content = m.renderLogin(contentHeight)
	case RouteAlbums:
		content = m.AlbumsList.View()
	case RouteAlbum:
		content = m.TrackList.View()
	default:
		content = lipgloss.Place(m.Width, contentHeight,
			lipgloss.Center, lipgloss.Center,
			components.RenderSpinner(m.SpinnerFrame)+" "+styles.DimStyle.Render("Loading..."))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		content,
		m.renderPlayerBar(),
		m.renderFooter(),
	)
}

// renderLogin renders the token prompt centered in the content area
func (m Model) renderLogin(height int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Sign in"))
	b.WriteString("\n")
	if m.ServerURL != "" {
		b.WriteString(styles.SubtitleStyle.Render(m.ServerURL))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.InputStyle.Render(m.TokenInput.View()))
	b.WriteString("\n")
	if m.SigningIn {
		b.WriteString(components.RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Signing in..."))
	} else {
		b.WriteString(styles.DimStyle.Render("enter to sign in · ctrl+c to quit"))
	}

	return lipgloss.Place(m.Width, height,
		lipgloss.Center, lipgloss.Center,
		b.String())
}

// renderPlayerBar renders the now-playing line and the progress line
func (m Model) renderPlayerBar() string {
	snap := m.Player.Snapshot()
	track, ok := snap.CurrentTrack()

	marker := " "
	name := noTrackText
	if ok {
		name = track.Name
		marker = styles.PausedChar
		if snap.Playing {
			marker = styles.PlayingChar
		}
	}

	times := m.Clock.Elapsed() + " / " + m.Clock.Total()

	left := styles.PlayerStateStyle.Render(" "+marker+" ")
	right := styles.PlayerTimeStyle.Render(" " + times + " ")

	nameWidth := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	middle := styles.PlayerBarStyle.
		Width(nameWidth).
		Render(styles.Truncate(name, nameWidth))

	info := left + middle + right
	progress := styles.RenderProgressBar(m.Clock.Fraction(), m.Width)

	return info + "\n" + progress
}

// renderFooter renders the status message and key hints
func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	right := m.Help.ShortHelpView(Keys.ShortHelp())

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	body := styles.ModalTitleStyle.Render("Keys") + "\n" +
		m.Help.FullHelpView(Keys.FullHelp()) + "\n\n" +
		styles.DimStyle.Render("esc or ? to return")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(body))
}

// renderLogoutConfirmation renders the sign out confirmation modal
func (m Model) renderLogoutConfirmation() string {
	modal := `
       Sign out?

  This clears the stored token.

    [Y] Yes      [N] No
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}
