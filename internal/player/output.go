package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Output is the device streamers are mixed into. Lock and Unlock guard
// state that the device goroutine reads while streaming.
type Output interface {
	Init(rate beep.SampleRate) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}

// speakerOutput is the system audio device. The device is opened on
// first use, so a missing device surfaces as a play error instead of a
// startup failure.
type speakerOutput struct {
	buffer time.Duration

	once   sync.Once
	err    error
	opened bool
}

// NewSpeaker returns the system audio output with the given buffer length
func NewSpeaker(buffer time.Duration) Output {
	return &speakerOutput{buffer: buffer}
}

func (o *speakerOutput) Init(rate beep.SampleRate) error {
	o.once.Do(func() {
		o.err = speaker.Init(rate, rate.N(o.buffer))
		o.opened = o.err == nil
	})
	return o.err
}

func (o *speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

func (o *speakerOutput) Lock() { speaker.Lock() }

func (o *speakerOutput) Unlock() { speaker.Unlock() }

func (o *speakerOutput) Close() {
	if o.opened {
		speaker.Close()
	}
}
