package player

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrUnsupportedFormat indicates no decoder handles the track's encoding
var ErrUnsupportedFormat = errors.New("unsupported audio format")

const (
	extMP3  = "mp3"
	extFLAC = "flac"
	extWAV  = "wav"
	extOGG  = "ogg"
	extOGA  = "oga"
)

// memFile lets decoders that close their input read from memory
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

// detectFormat picks a decoder from the extension and falls back to the
// leading bytes when the extension is missing or unknown.
func detectFormat(ext string, data []byte) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case extMP3:
		return extMP3
	case extFLAC:
		return extFLAC
	case extWAV, "wave":
		return extWAV
	case extOGG, extOGA:
		return extOGG
	}

	switch {
	case bytes.HasPrefix(data, []byte("fLaC")):
		return extFLAC
	case bytes.HasPrefix(data, []byte("OggS")):
		return extOGG
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WAVE":
		return extWAV
	case bytes.HasPrefix(data, []byte("ID3")),
		len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return extMP3
	}
	return ""
}

// decode opens an in-memory track with the decoder for its format
func decode(ext string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	r := memFile{bytes.NewReader(data)}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch detectFormat(ext, data) {
	case extMP3:
		s, format, err = mp3.Decode(r)
	case extFLAC:
		s, format, err = flac.Decode(r)
	case extWAV:
		s, format, err = wav.Decode(r)
	case extOGG:
		s, format, err = vorbis.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", ext, err)
	}
	return s, format, nil
}
