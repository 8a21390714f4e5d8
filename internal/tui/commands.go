package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/williamhaley/music-tui/internal/domain"
	"github.com/williamhaley/music-tui/internal/playback"
)

// Command factories for async operations

const (
	fetchTimeout    = 30 * time.Second
	signinTimeout   = 15 * time.Second
	playbackTimeout = 10 * time.Second
)

// HydrateCmd resolves the persisted session
func HydrateCmd(svc SessionService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), signinTimeout)
		defer cancel()

		return HydratedMsg{Err: svc.Hydrate(ctx)}
	}
}

// SigninCmd validates token and signs in on success
func SigninCmd(svc SessionService, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), signinTimeout)
		defer cancel()

		return SigninDoneMsg{Err: svc.Signin(ctx, token)}
	}
}

// SignoutCmd clears the session
func SignoutCmd(svc SessionService) tea.Cmd {
	return func() tea.Msg {
		svc.Signout()
		return SignedOutMsg{}
	}
}

// LoadAlbumsCmd fetches the album list. ctx is cancelled when the view is dismissed.
func LoadAlbumsCmd(ctx context.Context, svc LibraryService, token string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()

		albums, err := svc.FetchAlbums(ctx, token)
		return AlbumsLoadedMsg{Gen: gen, Albums: albums, Err: err}
	}
}

// LoadAlbumCmd fetches one album with its tracks
func LoadAlbumCmd(ctx context.Context, svc LibraryService, token, albumID string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()

		album, err := svc.FetchAlbum(ctx, token, albumID)
		return AlbumLoadedMsg{Gen: gen, AlbumID: albumID, Album: album, Err: err}
	}
}

// PlayTracksCmd unlocks audio output and queues the tracks of album
// albumID starting at index. Both happen in the same command so the
// unlock precedes the real play.
func PlayTracksCmd(p PlayerController, albumID string, tracks []domain.Track, index int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), playbackTimeout)
		defer cancel()

		// Failures are logged by the controller; the real play may still work
		_ = p.Unlock(ctx)

		update, err := p.Dispatch(ctx, playback.QueueAndPlay{Tracks: tracks, Index: index})
		return PlaybackMsg{AlbumID: albumID, Update: update, Err: err}
	}
}

// DispatchCmd applies a queue transition
func DispatchCmd(p PlayerController, in playback.Intent) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), playbackTimeout)
		defer cancel()

		update, err := p.Dispatch(ctx, in)
		return PlaybackMsg{Update: update, Err: err}
	}
}

// TogglePlayCmd pauses or resumes the current track
func TogglePlayCmd(p PlayerController) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), playbackTimeout)
		defer cancel()

		update, err := p.TogglePlay(ctx)
		return PlaybackMsg{Update: update, Err: err}
	}
}

// OpenExternalCmd hands the current track to an external player at offset
func OpenExternalCmd(p PlayerController, l playback.Launcher, offset time.Duration) tea.Cmd {
	return func() tea.Msg {
		_, err := p.OpenExternally(l, offset)
		return ExternalOpenedMsg{Err: err}
	}
}

// WaitForEndedCmd blocks until the track of generation gen ends. A
// cancelled subscription produces no message.
func WaitForEndedCmd(sub *domain.EndedSubscription, gen uint64) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-sub.Ended():
			return TrackEndedMsg{Gen: gen}
		case <-sub.Done():
			return nil
		}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status seq after a delay
func ClearStatusCmd(delay time.Duration, seq uint64) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
