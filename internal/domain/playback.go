package domain

import "sync"

// TrackResolver turns a track into a source URL the audio transport can load.
type TrackResolver interface {
	TrackURL(trackID, token string) string
}

// EndedSubscription is a one-shot notification that the track a single
// Load was issued for reached its natural end. It is never re-armed: each
// load produces a new subscription and cancels the previous one.
type EndedSubscription struct {
	mu        sync.Mutex
	ended     chan struct{}
	done      chan struct{}
	fired     bool
	cancelled bool
}

// NewEndedSubscription returns an armed subscription
func NewEndedSubscription() *EndedSubscription {
	return &EndedSubscription{
		ended: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Ended is closed when the track finished playing
func (s *EndedSubscription) Ended() <-chan struct{} { return s.ended }

// Done is closed when the subscription was cancelled before the track ended
func (s *EndedSubscription) Done() <-chan struct{} { return s.done }

// Fire delivers the ended notification. Only the first call after arming
// has an effect, and none after Cancel.
func (s *EndedSubscription) Fire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired || s.cancelled {
		return false
	}
	s.fired = true
	close(s.ended)
	return true
}

// Cancel releases the subscription without firing it
func (s *EndedSubscription) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired || s.cancelled {
		return
	}
	s.cancelled = true
	close(s.done)
}

// Source is what the transport loads for one track: the stream URL and
// the file extension the server reported for it.
type Source struct {
	URL       string
	Extension string
}
