package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data []byte
		want string
	}{
		{name: "extension wins", ext: "FLAC", data: []byte("OggS"), want: extFLAC},
		{name: "dotted extension", ext: ".oga", want: extOGG},
		{name: "flac magic", data: []byte("fLaC\x00"), want: extFLAC},
		{name: "ogg magic", ext: "bin", data: []byte("OggS\x00"), want: extOGG},
		{name: "wav magic", data: wavBytes(8000, 1), want: extWAV},
		{name: "id3 tag", data: []byte("ID3\x04"), want: extMP3},
		{name: "mp3 frame sync", data: []byte{0xFF, 0xFB, 0x90}, want: extMP3},
		{name: "unknown", ext: "xyz", data: []byte("hello"), want: ""},
		{name: "empty", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectFormat(tt.ext, tt.data))
		})
	}
}
