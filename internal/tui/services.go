package tui

import (
	"context"
	"time"

	"github.com/williamhaley/music-tui/internal/domain"
	"github.com/williamhaley/music-tui/internal/playback"
	"github.com/williamhaley/music-tui/internal/session"
)

// SessionService is the auth session as seen by the views
type SessionService interface {
	State() session.State
	Token() string
	Signin(ctx context.Context, token string) error
	Signout()
	Hydrate(ctx context.Context) error
}

// LibraryService fetches albums for the views
type LibraryService interface {
	FetchAlbums(ctx context.Context, token string) ([]domain.Album, error)
	FetchAlbum(ctx context.Context, token, albumID string) (*domain.Album, error)
}

// PlayerController is the playback queue as seen by the views
type PlayerController interface {
	Dispatch(ctx context.Context, in playback.Intent) (playback.Update, error)
	TogglePlay(ctx context.Context) (playback.Update, error)
	OpenExternally(l playback.Launcher, offset time.Duration) (playback.Snapshot, error)
	Unlock(ctx context.Context) error
	Snapshot() playback.Snapshot
	Generation() uint64
}

// ElapsedClock provides formatted playback times for the player bar
type ElapsedClock interface {
	ElapsedDuration() time.Duration
	Elapsed() string
	Total() string
	Fraction() float64
}
