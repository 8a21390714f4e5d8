package playback

import (
	"fmt"

	"github.com/williamhaley/music-tui/internal/domain"
)

// Intent is a requested queue transition. The set is closed:
// QueueAndPlay, Advance and Retreat are the only implementations.
type Intent interface {
	intent()
}

// QueueAndPlay replaces the playlist and starts at Index
type QueueAndPlay struct {
	Tracks []domain.Track
	Index  int
}

// Advance moves to the next track, wrapping to the first
type Advance struct{}

// Retreat moves to the previous track, wrapping to the last
type Retreat struct{}

func (QueueAndPlay) intent() {}
func (Advance) intent()      {}
func (Retreat) intent()      {}

// State is the playback queue. Index is 0 when the playlist is empty.
type State struct {
	Playlist []domain.Track
	Index    int
}

// CurrentTrack returns Playlist[Index], or false for an empty queue
func (s State) CurrentTrack() (domain.Track, bool) {
	if len(s.Playlist) == 0 || s.Index < 0 || s.Index >= len(s.Playlist) {
		return domain.Track{}, false
	}
	return s.Playlist[s.Index], true
}

// Empty reports whether nothing is queued
func (s State) Empty() bool {
	return len(s.Playlist) == 0
}

// Reduce applies an intent to a state and returns the new state.
// It panics on an intent outside the closed set.
func Reduce(s State, in Intent) State {
	switch in := in.(type) {
	case QueueAndPlay:
		tracks := make([]domain.Track, len(in.Tracks))
		copy(tracks, in.Tracks)
		return State{Playlist: tracks, Index: in.Index}

	case Advance:
		n := len(s.Playlist)
		if n == 0 {
			return s
		}
		return State{Playlist: s.Playlist, Index: (s.Index + 1) % n}

	case Retreat:
		n := len(s.Playlist)
		if n == 0 {
			return s
		}
		return State{Playlist: s.Playlist, Index: (s.Index - 1 + n) % n}

	default:
		panic(fmt.Sprintf("playback: unknown intent %T", in))
	}
}
