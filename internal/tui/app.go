package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/williamhaley/music-tui/internal/domain"
	"github.com/williamhaley/music-tui/internal/playback"
	"github.com/williamhaley/music-tui/internal/tui/components"
)

// ApplicationState represents the current modal state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmLogout
)

// Layout constants
const (
	// Player bar (2 lines) + footer (1 line)
	ChromeHeight = 3

	tickInterval  = 100 * time.Millisecond
	statusTimeout = 3 * time.Second
)

// signinFailedText is shown when a token is rejected or cannot be checked
const signinFailedText = "invalid code or error occurred"

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	Session SessionService
	Library LibraryService
	Player  PlayerController
	Clock   ElapsedClock

	// External opens the current track in another player; nil disables it
	External playback.Launcher

	ServerURL string

	// Routing
	route     Route  // shown route, RouteUnknown while the session is loading
	requested Route  // last requested route
	returnTo  string // path to open after a successful login

	// UI components
	AlbumsList *components.List
	TrackList  *components.List
	TokenInput textinput.Model
	Help       help.Model

	// Data
	album        *domain.Album
	albumsLoaded bool
	queueAlbumID string // album the playback queue was built from

	// In-flight fetch for the current view
	fetchGen    uint64
	cancelFetch context.CancelFunc

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	statusSeq    uint64
	SigningIn    bool
	SpinnerFrame int
}

// NewModel creates a new application model starting at "/"
func NewModel(
	sessionSvc SessionService,
	librarySvc LibraryService,
	player PlayerController,
	clock ElapsedClock,
	serverURL string,
) Model {
	ti := textinput.New()
	ti.Placeholder = "access token"
	ti.Prompt = ""
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 256

	return Model{
		State:      StateBrowsing,
		Session:    sessionSvc,
		Library:    librarySvc,
		Player:     player,
		Clock:      clock,
		ServerURL:  serverURL,
		requested:  Route{Kind: RouteRoot},
		AlbumsList: components.NewList("Albums"),
		TrackList:  components.NewList("Album"),
		TokenInput: ti,
		Help:       help.New(),
	}
}

// Init resolves the stored session and starts the UI tick
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		HydrateCmd(m.Session),
		TickCmd(tickInterval),
		textinput.Blink,
	)
}

// Route returns the route currently shown
func (m Model) Route() Route {
	return m.route
}

// ReturnTo returns the path opened after the next successful login
func (m Model) ReturnTo() string {
	return m.returnTo
}

// Album returns the album shown in the detail view, if loaded
func (m Model) Album() *domain.Album {
	return m.album
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		m.AlbumsList.SetSpinnerFrame(m.SpinnerFrame)
		m.TrackList.SetSpinnerFrame(m.SpinnerFrame)
		m.updateMarker()
		return m, TickCmd(tickInterval)

	case HydratedMsg:
		var clearCmd tea.Cmd
		if msg.Err != nil && !errors.Is(msg.Err, domain.ErrInvalidToken) {
			clearCmd = m.setStatus(msg.Err.Error(), true)
		}
		cmd := m.navigate(m.requested.Path())
		return m, tea.Batch(cmd, clearCmd)

	case SigninDoneMsg:
		m.SigningIn = false
		m.TokenInput.Reset()
		if msg.Err != nil {
			return m, m.setStatus(signinFailedText, true)
		}
		path := m.returnTo
		if path == "" {
			path = PathRoot
		}
		m.returnTo = ""
		m.StatusMsg = ""
		return m, m.navigate(path)

	case SignedOutMsg:
		m.album = nil
		m.albumsLoaded = false
		m.AlbumsList.SetItems(nil)
		m.TrackList.SetItems(nil)
		m.returnTo = ""
		clearCmd := m.setStatus("Signed out", false)
		return m, tea.Batch(m.navigate(PathRoot), clearCmd)

	case AlbumsLoadedMsg:
		if msg.Gen != m.fetchGen {
			return m, nil
		}
		if msg.Err != nil {
			m.AlbumsList.SetError(msg.Err)
			return m, m.setStatus("Failed to load albums: "+msg.Err.Error(), true)
		}
		items := make([]domain.ListItem, len(msg.Albums))
		for i, a := range msg.Albums {
			items[i] = a
		}
		m.AlbumsList.SetItems(items)
		m.albumsLoaded = true
		return m, nil

	case AlbumLoadedMsg:
		if msg.Gen != m.fetchGen {
			return m, nil
		}
		if msg.Err == nil && msg.Album == nil {
			msg.Err = domain.ErrAlbumNotFound
		}
		if msg.Err != nil {
			m.TrackList.SetError(msg.Err)
			return m, m.setStatus("Failed to load album: "+msg.Err.Error(), true)
		}
		m.album = msg.Album
		m.TrackList.SetTitle(msg.Album.Name)
		items := make([]domain.ListItem, len(msg.Album.Tracks))
		for i, t := range msg.Album.Tracks {
			items[i] = t
		}
		m.TrackList.SetItems(items)
		m.updateMarker()
		return m, nil

	case PlaybackMsg:
		if msg.AlbumID != "" && !errors.Is(msg.Err, domain.ErrIndexOutOfRange) {
			m.queueAlbumID = msg.AlbumID
		}
		m.updateMarker()
		var cmds []tea.Cmd
		if msg.Update.Ended != nil {
			cmds = append(cmds, WaitForEndedCmd(msg.Update.Ended, msg.Update.Generation))
		}
		if msg.Err != nil {
			text := msg.Err.Error()
			if errors.Is(msg.Err, domain.ErrPlaybackBlocked) {
				text = "Playback blocked, press space to retry"
			}
			cmds = append(cmds, m.setStatus(text, true))
		}
		return m, tea.Batch(cmds...)

	case ExternalOpenedMsg:
		m.updateMarker()
		if msg.Err != nil {
			return m, m.setStatus("Open in player failed: "+msg.Err.Error(), true)
		}
		return m, m.setStatus("Opened in external player", false)

	case TrackEndedMsg:
		if msg.Gen != m.Player.Generation() {
			return m, nil
		}
		return m, DispatchCmd(m.Player, playback.Advance{})

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil

	case ErrMsg:
		return m, m.setStatus(msg.Error(), true)
	}

	if m.route.Kind == RouteLogin {
		var cmd tea.Cmd
		m.TokenInput, cmd = m.TokenInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil

	case StateConfirmLogout:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			return m, SignoutCmd(m.Session)
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
		}
		return m, nil
	}

	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.route.Kind == RouteLogin {
		return m.handleLoginKey(msg)
	}

	list := m.activeList()

	// Filter input gets all keys while typing
	if list != nil && list.IsFilterTyping() {
		return m, list.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m.quit()

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Logout):
		if m.Session.State().Authenticated() {
			m.State = StateConfirmLogout
		}
		return m, nil

	case key.Matches(msg, Keys.TogglePlay):
		return m, TogglePlayCmd(m.Player)

	case key.Matches(msg, Keys.Next):
		return m, DispatchCmd(m.Player, playback.Advance{})

	case key.Matches(msg, Keys.Previous):
		return m, DispatchCmd(m.Player, playback.Retreat{})

	case key.Matches(msg, Keys.OpenExternal):
		if m.External == nil {
			return m, m.setStatus("No external player configured", true)
		}
		return m, OpenExternalCmd(m.Player, m.External, m.Clock.ElapsedDuration())
	}

	if list == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Filter):
		if list.IsFiltering() {
			return m, list.Update(msg)
		}
		list.ToggleFilter()
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		if m.route.Kind == RouteAlbums {
			m.albumsLoaded = false
		} else {
			m.album = nil
		}
		return m, m.navigate(m.route.Path())

	case key.Matches(msg, Keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, Keys.Back):
		if m.route.Kind == RouteAlbum {
			return m, m.navigate(PathAlbums)
		}
		return m, nil
	}

	return m, list.Update(msg)
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.SigningIn {
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		token := strings.TrimSpace(m.TokenInput.Value())
		if token == "" {
			return m, nil
		}
		m.SigningIn = true
		m.StatusMsg = ""
		return m, SigninCmd(m.Session, token)
	}

	var cmd tea.Cmd
	m.TokenInput, cmd = m.TokenInput.Update(msg)
	return m, cmd
}

// handleEnter opens the selected album or plays from the selected track
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.route.Kind {
	case RouteAlbums:
		item := m.AlbumsList.SelectedItem()
		if item == nil {
			return m, nil
		}
		return m, m.navigate(AlbumPath(item.GetID()))

	case RouteAlbum:
		idx := m.TrackList.SelectedIndex()
		if m.album == nil || idx < 0 || idx >= len(m.album.Tracks) {
			return m, nil
		}
		return m, PlayTracksCmd(m.Player, m.album.ID, m.album.Tracks, idx)
	}
	return m, nil
}

// navigate requests path, applying session gating. Any fetch owned by the
// previous view is cancelled.
func (m *Model) navigate(path string) tea.Cmd {
	m.requested = ParseRoute(path)

	target, returnTo, ok := Resolve(m.requested, m.Session.State())
	if !ok {
		m.route = Route{}
		return nil
	}
	if returnTo != "" {
		m.returnTo = returnTo
	}

	m.stopFetch()
	m.route = target

	switch target.Kind {
	case RouteLogin:
		return m.TokenInput.Focus()

	case RouteAlbums:
		m.TokenInput.Blur()
		if m.albumsLoaded {
			return nil
		}
		ctx := m.startFetch()
		m.AlbumsList.SetLoading(true)
		return LoadAlbumsCmd(ctx, m.Library, m.Session.Token(), m.fetchGen)

	case RouteAlbum:
		m.TokenInput.Blur()
		if m.album != nil && m.album.ID == target.AlbumID {
			return nil
		}
		m.album = nil
		m.TrackList.SetTitle("Album")
		m.TrackList.SetItems(nil)
		m.TrackList.ClearFilter()
		m.TrackList.SetLoading(true)
		ctx := m.startFetch()
		return LoadAlbumCmd(ctx, m.Library, m.Session.Token(), target.AlbumID, m.fetchGen)
	}
	return nil
}

// startFetch begins a new fetch generation for the current view
func (m *Model) startFetch() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFetch = cancel
	return ctx
}

// stopFetch cancels the in-flight fetch and invalidates its result
func (m *Model) stopFetch() {
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
	m.fetchGen++
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.stopFetch()
	return m, tea.Quit
}

// activeList returns the list of the current view, or nil
func (m Model) activeList() *components.List {
	switch m.route.Kind {
	case RouteAlbums:
		return m.AlbumsList
	case RouteAlbum:
		return m.TrackList
	}
	return nil
}

// updateMarker marks the current track in the album view. Track IDs are
// only unique within an album, so the queue must come from this album.
func (m *Model) updateMarker() {
	snap := m.Player.Snapshot()
	track, ok := snap.CurrentTrack()
	if !ok || m.album == nil || m.album.ID != m.queueAlbumID || m.album.TrackIndex(track.ID) < 0 {
		m.TrackList.SetMarked("", false)
		return
	}
	m.TrackList.SetMarked(track.ID, !snap.Playing)
}

// setStatus shows msg and returns the command that clears it. A newer
// status outlives the timers of older ones.
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = msg
	m.StatusIsErr = isErr
	return ClearStatusCmd(statusTimeout, m.statusSeq)
}

// updateLayout recalculates component sizes
func (m *Model) updateLayout() {
	contentHeight := max(m.Height-ChromeHeight, 0)
	m.AlbumsList.SetSize(m.Width, contentHeight)
	m.TrackList.SetSize(m.Width, contentHeight)
	m.TokenInput.Width = max(min(m.Width-10, 48), 10)
	m.Help.Width = m.Width
}
