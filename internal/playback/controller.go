package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/williamhaley/music-tui/internal/domain"
)

// Transport is the audio output commanded by the controller
type Transport interface {
	Load(ctx context.Context, src domain.Source) (*domain.EndedSubscription, error)
	Play(ctx context.Context) error
	Pause() error
	UnlockForAutoplay(ctx context.Context) error
}

// Launcher starts an external player on a stream URL
type Launcher interface {
	Launch(url string, offset time.Duration) error
}

// TokenSource provides the access token appended to stream URLs
type TokenSource interface {
	Token() string
}

// ErrNothingQueued indicates an operation that needs a current track
var ErrNothingQueued = errors.New("nothing queued")

// Snapshot is a consistent view of the controller for rendering
type Snapshot struct {
	State
	Playing    bool
	Generation uint64
}

// Update is the outcome of a dispatched intent
type Update struct {
	Snapshot
	// Ended fires when the newly loaded track finishes. Nil when no track
	// was loaded.
	Ended *domain.EndedSubscription
}

// Controller owns the playback queue and is the only component that
// loads tracks into the transport.
type Controller struct {
	transport Transport
	resolver  domain.TrackResolver
	tokens    TokenSource
	logger    *slog.Logger

	// opMu serializes transport commands. mu is never held across one, so
	// snapshots stay available while the transport is busy.
	opMu sync.Mutex

	mu      sync.Mutex
	state   State
	playing bool
	loaded  bool // the current track's source is in the transport
	gen     uint64
	ended   *domain.EndedSubscription
}

// NewController creates a controller with an empty queue
func NewController(transport Transport, resolver domain.TrackResolver, tokens TokenSource, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		transport: transport,
		resolver:  resolver,
		tokens:    tokens,
		logger:    logger,
	}
}

// Snapshot returns the current queue and play state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{State: c.state, Playing: c.playing, Generation: c.gen}
}

// Generation identifies the most recent load. Ended notifications from
// older generations are stale.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Dispatch applies an intent and, when a track is current afterwards,
// loads and plays it. Transitions are applied atomically; a play failure
// leaves the new state in place with Playing false.
func (c *Controller) Dispatch(ctx context.Context, in Intent) (Update, error) {
	if q, ok := in.(QueueAndPlay); ok {
		if len(q.Tracks) == 0 || q.Index < 0 || q.Index >= len(q.Tracks) {
			return Update{Snapshot: c.Snapshot()}, fmt.Errorf("%w: index %d of %d", domain.ErrIndexOutOfRange, q.Index, len(q.Tracks))
		}
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	c.state = Reduce(c.state, in)
	track, ok := c.state.CurrentTrack()
	if !ok {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return Update{Snapshot: snap}, nil
	}
	prev := c.beginLoadLocked()
	c.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	return c.loadAndPlay(ctx, track)
}

// beginLoadLocked starts a new generation and detaches the previous
// ended subscription, which the caller cancels.
func (c *Controller) beginLoadLocked() *domain.EndedSubscription {
	c.gen++
	prev := c.ended
	c.ended = nil
	c.playing = false
	c.loaded = false
	return prev
}

// loadAndPlay loads track into the transport and starts it. opMu must be held.
func (c *Controller) loadAndPlay(ctx context.Context, track domain.Track) (Update, error) {
	src := domain.Source{
		URL:       c.resolver.TrackURL(track.ID, c.tokens.Token()),
		Extension: track.Extension,
	}

	ended, err := c.transport.Load(ctx, src)
	if err != nil {
		c.logger.Error("failed to load track", "error", err, "trackID", track.ID)
		return Update{Snapshot: c.Snapshot()}, fmt.Errorf("load %s: %w", track.Name, err)
	}

	c.mu.Lock()
	c.ended = ended
	c.loaded = true
	gen := c.gen
	c.mu.Unlock()

	c.logger.Debug("loaded track", "trackID", track.ID, "gen", gen)

	if err := c.transport.Play(ctx); err != nil {
		c.logger.Warn("playback did not start", "error", err, "trackID", track.ID)
		return Update{Snapshot: c.Snapshot(), Ended: ended}, err
	}

	c.mu.Lock()
	c.playing = true
	snap := c.snapshotLocked()
	c.mu.Unlock()

	return Update{Snapshot: snap, Ended: ended}, nil
}

// TogglePlay pauses a playing track or resumes a paused one. When the
// current track never made it into the transport it is loaded again, and
// the returned update carries its ended subscription. It does nothing on
// an empty queue and never changes the index.
func (c *Controller) TogglePlay(ctx context.Context) (Update, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	track, ok := c.state.CurrentTrack()
	playing, loaded := c.playing, c.loaded
	if !ok {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return Update{Snapshot: snap}, nil
	}
	if !playing && !loaded {
		prev := c.beginLoadLocked()
		c.mu.Unlock()
		if prev != nil {
			prev.Cancel()
		}
		return c.loadAndPlay(ctx, track)
	}
	c.mu.Unlock()

	if playing {
		if err := c.transport.Pause(); err != nil {
			return Update{Snapshot: c.Snapshot()}, err
		}
	} else if err := c.transport.Play(ctx); err != nil {
		return Update{Snapshot: c.Snapshot()}, err
	}

	c.mu.Lock()
	c.playing = !playing
	snap := c.snapshotLocked()
	c.mu.Unlock()
	return Update{Snapshot: snap}, nil
}

// OpenExternally pauses playback and hands the current track to l,
// resuming at offset.
func (c *Controller) OpenExternally(l Launcher, offset time.Duration) (Snapshot, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	track, ok := c.state.CurrentTrack()
	playing := c.playing
	c.mu.Unlock()
	if !ok {
		return c.Snapshot(), ErrNothingQueued
	}

	if playing {
		if err := c.transport.Pause(); err != nil {
			return c.Snapshot(), err
		}
		c.mu.Lock()
		c.playing = false
		c.mu.Unlock()
	}

	url := c.resolver.TrackURL(track.ID, c.tokens.Token())
	if err := l.Launch(url, offset); err != nil {
		return c.Snapshot(), fmt.Errorf("open %s: %w", track.Name, err)
	}
	c.logger.Info("opened track externally", "trackID", track.ID, "offset", offset)
	return c.Snapshot(), nil
}

// Unlock warms the transport before the first user-triggered play
func (c *Controller) Unlock(ctx context.Context) error {
	if err := c.transport.UnlockForAutoplay(ctx); err != nil {
		c.logger.Warn("audio unlock failed", "error", err)
		return err
	}
	return nil
}

// Stop pauses output and releases the pending ended subscription.
// The queue is kept.
func (c *Controller) Stop() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	ended, playing := c.ended, c.playing
	c.ended = nil
	c.playing = false
	c.mu.Unlock()

	if ended != nil {
		ended.Cancel()
	}
	if playing {
		if err := c.transport.Pause(); err != nil {
			c.logger.Warn("failed to pause on stop", "error", err)
		}
	}
}
