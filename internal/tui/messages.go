package tui

import (
	"github.com/williamhaley/music-tui/internal/domain"
	"github.com/williamhaley/music-tui/internal/playback"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// HydratedMsg signals that the stored session was resolved
type HydratedMsg struct {
	Err error
}

// SigninDoneMsg signals that a signin attempt finished
type SigninDoneMsg struct {
	Err error
}

// SignedOutMsg signals that the session was cleared
type SignedOutMsg struct{}

// AlbumsLoadedMsg carries the album list fetched for generation Gen
type AlbumsLoadedMsg struct {
	Gen    uint64
	Albums []domain.Album
	Err    error
}

// AlbumLoadedMsg carries one album fetched for generation Gen
type AlbumLoadedMsg struct {
	Gen     uint64
	AlbumID string
	Album   *domain.Album
	Err     error
}

// PlaybackMsg reports the outcome of a playback command. AlbumID is set
// when the command queued the tracks of that album.
type PlaybackMsg struct {
	AlbumID string
	Update  playback.Update
	Err     error
}

// ExternalOpenedMsg reports the outcome of opening the current track in
// an external player
type ExternalOpenedMsg struct {
	Err error
}

// TrackEndedMsg signals that the track loaded at generation Gen finished
type TrackEndedMsg struct {
	Gen uint64
}

// TickMsg is a general tick message for animations and the player bar
type TickMsg struct{}

// ClearStatusMsg clears the status bar message if it is still status Seq
type ClearStatusMsg struct {
	Seq uint64
}
