package player

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/williamhaley/music-tui/internal/domain"
)

// ErrClosed indicates the transport was closed
var ErrClosed = errors.New("player closed")

const (
	// DefaultSampleRate is the rate the output runs at; tracks are resampled to it
	DefaultSampleRate = beep.SampleRate(44100)

	resampleQuality = 4
	maxTrackBytes   = 512 << 20
	fetchTimeout    = 2 * time.Minute
)

// silence is a fraction of a second of near-silent MP3
//
//go:embed silence.mp3
var silence []byte

// FetchFunc opens the stream behind a track URL
type FetchFunc func(ctx context.Context, url string) (io.ReadCloser, error)

// HTTPFetch fetches track streams with client. 401 and 403 are reported
// as domain.ErrInvalidToken.
func HTTPFetch(client *http.Client) FetchFunc {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return func(ctx context.Context, url string) (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return nil, domain.ErrInvalidToken
		case resp.StatusCode != http.StatusOK:
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return resp.Body, nil
	}
}

// track is one decoded source mixed into the output
type track struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
}

// Player is the audio transport. Tracks are downloaded, decoded in
// process and mixed into a single Output. There is one per process.
type Player struct {
	out    Output
	rate   beep.SampleRate
	fetch  FetchFunc
	logger *slog.Logger

	loadMu sync.Mutex // serializes Load

	mu        sync.Mutex
	current   *track
	ended     *domain.EndedSubscription
	duration  float64
	listeners map[int]func(float64)
	nextLis   int

	unlockMu   sync.Mutex // serializes UnlockForAutoplay
	unlocked   bool
	unlockClip []byte
	unlockExt  string

	closed    chan struct{}
	closeOnce sync.Once
}

// New creates a transport mixing into out at rate
func New(out Output, rate beep.SampleRate, fetch FetchFunc, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if fetch == nil {
		fetch = HTTPFetch(nil)
	}
	return &Player{
		out:        out,
		rate:       rate,
		fetch:      fetch,
		logger:     logger,
		duration:   math.NaN(),
		listeners:  make(map[int]func(float64)),
		unlockClip: silence,
		unlockExt:  extMP3,
		closed:     make(chan struct{}),
	}
}

// detach silences t and drops it from the mix. The mixer removes a Ctrl
// whose streamer is nil on its next pass.
func (p *Player) detach(t *track) {
	if t == nil {
		return
	}
	p.out.Lock()
	t.ctrl.Paused = true
	t.ctrl.Streamer = nil
	p.out.Unlock()
	t.streamer.Close()
}

// Load stops the current track and replaces it with src, paused. The
// returned subscription fires once when src plays to its end; the
// subscription of the previous load is cancelled.
func (p *Player) Load(ctx context.Context, src domain.Source) (*domain.EndedSubscription, error) {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.mu.Lock()
	if p.isClosed() {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	prev, prevEnded := p.current, p.ended
	p.current, p.ended = nil, nil
	p.mu.Unlock()

	p.detach(prev)
	if prevEnded != nil {
		prevEnded.Cancel()
	}
	p.setDuration(math.NaN())

	s, format, err := p.open(ctx, src)
	if err != nil {
		return nil, err
	}

	if err := p.out.Init(p.rate); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrPlaybackBlocked, err)
	}

	sub := domain.NewEndedSubscription()
	t := &track{
		streamer: s,
		format:   format,
		ctrl: &beep.Ctrl{
			Streamer: beep.Seq(p.resample(s, format), beep.Callback(func() { sub.Fire() })),
			Paused:   true,
		},
	}

	p.mu.Lock()
	if p.isClosed() {
		p.mu.Unlock()
		s.Close()
		return nil, ErrClosed
	}
	p.current, p.ended = t, sub
	p.mu.Unlock()

	p.out.Play(t.ctrl)
	p.setDuration(seconds(format, s.Len()))

	p.logger.Debug("loaded source", "extension", src.Extension, "sampleRate", int(format.SampleRate))
	return sub, nil
}

// open downloads and decodes src
func (p *Player) open(ctx context.Context, src domain.Source) (beep.StreamSeekCloser, beep.Format, error) {
	body, err := p.fetch(ctx, src.URL)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("fetch track: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxTrackBytes))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("read track: %w", err)
	}

	return decode(src.Extension, data)
}

func (p *Player) resample(s beep.Streamer, format beep.Format) beep.Streamer {
	if format.SampleRate == p.rate {
		return s
	}
	return beep.Resample(resampleQuality, format.SampleRate, p.rate, s)
}

// Play resumes the loaded source. Failures are reported as
// domain.ErrPlaybackBlocked and leave the transport usable.
func (p *Player) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	t := p.current
	p.mu.Unlock()
	if t == nil {
		return fmt.Errorf("%w: nothing loaded", domain.ErrPlaybackBlocked)
	}

	if err := p.out.Init(p.rate); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPlaybackBlocked, err)
	}

	p.out.Lock()
	t.ctrl.Paused = false
	p.out.Unlock()
	return nil
}

// Pause pauses the loaded source
func (p *Player) Pause() error {
	p.mu.Lock()
	t := p.current
	p.mu.Unlock()
	if t == nil {
		return nil
	}

	p.out.Lock()
	t.ctrl.Paused = true
	p.out.Unlock()
	return nil
}

// UnlockForAutoplay plays the embedded silent clip once per session and
// returns when it finished. Later calls return immediately.
func (p *Player) UnlockForAutoplay(ctx context.Context) error {
	p.unlockMu.Lock()
	defer p.unlockMu.Unlock()

	if p.unlocked {
		return nil
	}

	s, format, err := decode(p.unlockExt, p.unlockClip)
	if err != nil {
		return fmt.Errorf("unlock clip: %w", err)
	}
	if err := p.out.Init(p.rate); err != nil {
		s.Close()
		return fmt.Errorf("%w: %v", domain.ErrPlaybackBlocked, err)
	}

	finished := make(chan struct{})
	ctrl := &beep.Ctrl{Streamer: beep.Seq(p.resample(s, format), beep.Callback(func() { close(finished) }))}
	p.out.Play(ctrl)

	stop := func() {
		p.out.Lock()
		ctrl.Streamer = nil
		p.out.Unlock()
		s.Close()
	}

	select {
	case <-finished:
		s.Close()
		p.unlocked = true
		p.logger.Debug("audio output unlocked")
		return nil
	case <-p.closed:
		stop()
		return ErrClosed
	case <-ctx.Done():
		stop()
		return ctx.Err()
	}
}

// Position returns the playback position in seconds, NaN when unknown
func (p *Player) Position() float64 {
	p.mu.Lock()
	t := p.current
	p.mu.Unlock()
	if t == nil {
		return math.NaN()
	}

	p.out.Lock()
	pos := t.streamer.Position()
	p.out.Unlock()
	return seconds(t.format, pos)
}

// Duration returns the loaded source's length in seconds, NaN when unknown
func (p *Player) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// OnDurationChange registers fn for duration updates
func (p *Player) OnDurationChange(fn func(seconds float64)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextLis
	p.nextLis++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Player) setDuration(value float64) {
	p.mu.Lock()
	p.duration = value
	fns := make([]func(float64), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

func (p *Player) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

// Close stops playback and releases the output device
func (p *Player) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)

		p.mu.Lock()
		t, sub := p.current, p.ended
		p.current, p.ended = nil, nil
		p.mu.Unlock()

		p.detach(t)
		if sub != nil {
			sub.Cancel()
		}
		p.out.Close()
	})
	return nil
}

// seconds converts a sample count to seconds, NaN when unknown
func seconds(format beep.Format, samples int) float64 {
	if format.SampleRate <= 0 || samples < 0 {
		return math.NaN()
	}
	return format.SampleRate.D(samples).Seconds()
}
