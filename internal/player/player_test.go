package player

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamhaley/music-tui/internal/domain"
	"github.com/williamhaley/music-tui/internal/log"
)

const testRate = 44100

// fakeOutput mixes streamers only when the test pulls samples
type fakeOutput struct {
	mu        sync.Mutex
	streamers []beep.Streamer
	inits     int
	initErr   error
	closed    bool
}

func (o *fakeOutput) Init(beep.SampleRate) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inits++
	return o.initErr
}

func (o *fakeOutput) Play(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = append(o.streamers, s)
}

func (o *fakeOutput) Lock()   { o.mu.Lock() }
func (o *fakeOutput) Unlock() { o.mu.Unlock() }

func (o *fakeOutput) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

// pull streams n samples through every streamer, dropping drained ones
func (o *fakeOutput) pull(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	buf := make([][2]float64, n)
	kept := o.streamers[:0]
	for _, s := range o.streamers {
		if _, ok := s.Stream(buf); ok {
			kept = append(kept, s)
		}
	}
	o.streamers = kept
}

func (o *fakeOutput) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.streamers)
}

// wavBytes builds a silent 16-bit mono PCM file
func wavBytes(rate, samples int) []byte {
	var b bytes.Buffer
	size := samples * 2

	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+size))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&b, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*2))
	binary.Write(&b, binary.LittleEndian, uint16(2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(size))
	b.Write(make([]byte, size))
	return b.Bytes()
}

// fakeFetch serves fixed bodies by URL
type fakeFetch struct {
	mu     sync.Mutex
	bodies map[string][]byte
	urls   []string
}

func (f *fakeFetch) fetch(_ context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func newTestPlayer(t *testing.T) (*Player, *fakeOutput, *fakeFetch) {
	t.Helper()
	out := &fakeOutput{}
	f := &fakeFetch{bodies: map[string][]byte{
		"one":   wavBytes(testRate, testRate),
		"short": wavBytes(testRate, 100),
	}}
	p := New(out, testRate, f.fetch, log.NullLogger())
	p.unlockClip = wavBytes(testRate, 50)
	p.unlockExt = extWAV
	t.Cleanup(func() { p.Close() })
	return p, out, f
}

func isDone(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestLoad_DecodesPaused(t *testing.T) {
	p, out, f := newTestPlayer(t)

	var durations []float64
	p.OnDurationChange(func(s float64) { durations = append(durations, s) })

	sub, err := p.Load(context.Background(), domain.Source{URL: "one", Extension: "wav"})
	require.NoError(t, err)
	require.NotNil(t, sub)

	assert.Equal(t, []string{"one"}, f.urls)
	assert.InDelta(t, 1.0, p.Duration(), 0.001)
	require.Len(t, durations, 2)
	assert.True(t, math.IsNaN(durations[0]), "duration resets before decoding")
	assert.InDelta(t, 1.0, durations[1], 0.001)

	out.pull(1000)
	assert.Equal(t, 0.0, p.Position(), "loaded tracks start paused")
	assert.Equal(t, 1, out.count())
}

func TestLoad_SniffsFormatWithoutExtension(t *testing.T) {
	p, _, _ := newTestPlayer(t)

	_, err := p.Load(context.Background(), domain.Source{URL: "one"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.Duration(), 0.001)
}

func TestLoad_Errors(t *testing.T) {
	p, out, f := newTestPlayer(t)
	f.bodies["junk"] = []byte("not audio at all")

	_, err := p.Load(context.Background(), domain.Source{URL: "junk", Extension: "xyz"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = p.Load(context.Background(), domain.Source{URL: "missing", Extension: "wav"})
	assert.Error(t, err)

	assert.True(t, math.IsNaN(p.Position()))
	assert.True(t, math.IsNaN(p.Duration()))
	assert.Zero(t, out.count())
}

func TestLoad_OutputUnavailableIsPlaybackBlocked(t *testing.T) {
	p, out, _ := newTestPlayer(t)
	out.initErr = errors.New("no audio device")

	_, err := p.Load(context.Background(), domain.Source{URL: "one", Extension: "wav"})
	assert.ErrorIs(t, err, domain.ErrPlaybackBlocked)
}

func TestPlayPause(t *testing.T) {
	p, out, _ := newTestPlayer(t)
	ctx := context.Background()

	_, err := p.Load(ctx, domain.Source{URL: "one", Extension: "wav"})
	require.NoError(t, err)

	require.NoError(t, p.Play(ctx))
	out.pull(4410)
	assert.InDelta(t, 0.1, p.Position(), 0.001)

	require.NoError(t, p.Pause())
	out.pull(4410)
	assert.InDelta(t, 0.1, p.Position(), 0.001, "paused output does not advance")
}

func TestPlay_NothingLoaded(t *testing.T) {
	p, _, _ := newTestPlayer(t)

	assert.ErrorIs(t, p.Play(context.Background()), domain.ErrPlaybackBlocked)
	assert.NoError(t, p.Pause())
}

func TestEnded_FiresOnceAtEndOfTrack(t *testing.T) {
	p, out, _ := newTestPlayer(t)
	ctx := context.Background()

	sub, err := p.Load(ctx, domain.Source{URL: "short", Extension: "wav"})
	require.NoError(t, err)

	out.pull(200)
	assert.False(t, isDone(sub.Ended()), "paused track never ends")

	require.NoError(t, p.Play(ctx))
	out.pull(200)

	assert.True(t, isDone(sub.Ended()))
	assert.False(t, sub.Fire(), "already fired")

	out.pull(10)
	assert.Zero(t, out.count(), "drained track leaves the mix")
}

func TestLoad_ReplacesPreviousTrack(t *testing.T) {
	p, out, _ := newTestPlayer(t)
	ctx := context.Background()

	first, err := p.Load(ctx, domain.Source{URL: "short", Extension: "wav"})
	require.NoError(t, err)
	require.NoError(t, p.Play(ctx))

	second, err := p.Load(ctx, domain.Source{URL: "one", Extension: "wav"})
	require.NoError(t, err)

	assert.True(t, isDone(first.Done()), "previous subscription is cancelled")

	out.pull(200)
	assert.Equal(t, 1, out.count(), "only the new track is mixed")
	assert.False(t, isDone(first.Ended()))
	assert.False(t, isDone(second.Ended()))
	assert.Equal(t, 0.0, p.Position(), "new track waits for play")
}

func TestUnlockForAutoplay_OncePerSession(t *testing.T) {
	p, out, _ := newTestPlayer(t)

	errCh := make(chan error, 1)
	go func() { errCh <- p.UnlockForAutoplay(context.Background()) }()

	require.Eventually(t, func() bool { return out.count() == 1 }, time.Second, time.Millisecond)
	out.pull(100)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("unlock did not return after the clip finished")
	}

	require.NoError(t, p.UnlockForAutoplay(context.Background()))
	out.pull(10)
	assert.Zero(t, out.count(), "second unlock plays nothing")
}

func TestUnlockForAutoplay_ContextCanceled(t *testing.T) {
	p, out, _ := newTestPlayer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.UnlockForAutoplay(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	out.pull(10)
	assert.Zero(t, out.count(), "abandoned clip leaves the mix")
}

func TestClose(t *testing.T) {
	p, out, _ := newTestPlayer(t)

	sub, err := p.Load(context.Background(), domain.Source{URL: "one", Extension: "wav"})
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.True(t, isDone(sub.Done()))
	assert.True(t, out.closed)

	_, err = p.Load(context.Background(), domain.Source{URL: "one", Extension: "wav"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("audio"))
		case "/denied":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	fetch := HTTPFetch(srv.Client())
	ctx := context.Background()

	body, err := fetch(ctx, srv.URL+"/ok")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, "audio", string(data))

	_, err = fetch(ctx, srv.URL+"/denied")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = fetch(ctx, srv.URL+"/broken")
	assert.Error(t, err)
}
