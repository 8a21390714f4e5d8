package playback

import (
	"math"
	"sync"
	"time"
)

// DefaultPollInterval is how often the tracker samples the position
const DefaultPollInterval = 10 * time.Millisecond

// TimeSource is the read-only view of the transport the tracker needs.
// Times are in seconds; NaN means unknown.
type TimeSource interface {
	Position() float64
	Duration() float64
	OnDurationChange(fn func(seconds float64)) (unsubscribe func())
}

// Tracker samples the elapsed time of a TimeSource and keeps the total
// duration current. It only reads from the source.
type Tracker struct {
	interval time.Duration

	mu      sync.RWMutex
	elapsed float64
	total   float64

	stop        chan struct{} // identifies the current attachment

	done        chan struct{}
	unsubscribe func()
}

// NewTracker creates a detached tracker polling every interval
func NewTracker(interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Tracker{
		interval: interval,
		elapsed:  math.NaN(),
		total:    math.NaN(),
	}
}

// Attach starts tracking src, detaching from any previous source first
func (t *Tracker) Attach(src TimeSource) {
	t.Detach()

	t.mu.Lock()
	t.elapsed = src.Position()
	t.total = src.Duration()
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	stop, done := t.stop, t.done
	t.mu.Unlock()

	// A callback can still be in flight after Detach unsubscribed it
	unsubscribe := src.OnDurationChange(func(seconds float64) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.stop == stop {
			t.total = seconds
		}
	})

	t.mu.Lock()
	t.unsubscribe = unsubscribe
	t.mu.Unlock()

	go t.poll(src, stop, done)
}

func (t *Tracker) poll(src TimeSource, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			pos := src.Position()
			t.mu.Lock()
			t.elapsed = pos
			t.mu.Unlock()
		}
	}
}

// Detach stops polling and releases the duration subscription.
// Safe to call when not attached.
func (t *Tracker) Detach() {
	t.mu.Lock()
	stop, done, unsubscribe := t.stop, t.done, t.unsubscribe
	t.stop, t.done, t.unsubscribe = nil, nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	if unsubscribe != nil {
		unsubscribe()
	}

	t.mu.Lock()
	t.elapsed = math.NaN()
	t.total = math.NaN()
	t.mu.Unlock()
}

// ElapsedDuration returns the elapsed time, zero when unknown
func (t *Tracker) ElapsedDuration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if math.IsNaN(t.elapsed) || t.elapsed <= 0 {
		return 0
	}
	return time.Duration(t.elapsed * float64(time.Second))
}

// Elapsed returns the formatted elapsed time
func (t *Tracker) Elapsed() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return FormatSeconds(t.elapsed)
}

// Total returns the formatted track duration
func (t *Tracker) Total() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return FormatSeconds(t.total)
}

// Fraction returns elapsed/total clamped to [0, 1], 0 when either is unknown
func (t *Tracker) Fraction() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if math.IsNaN(t.elapsed) || math.IsNaN(t.total) || t.total <= 0 || t.elapsed <= 0 {
		return 0
	}
	return math.Min(t.elapsed/t.total, 1)
}
