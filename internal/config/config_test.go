package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Server.URL)
	assert.False(t, cfg.IsConfigured())
	assert.Equal(t, 10*time.Millisecond, cfg.Playback.PollInterval)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 100*time.Millisecond, cfg.Audio.Buffer)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `server:
  url: http://nas.local:8080
audio:
  sample_rate: 48000
  buffer: 0s
player:
  command: mpv
  args: ["--no-video"]
playback:
  poll_interval: 250ms
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://nas.local:8080", cfg.Server.URL)
	assert.True(t, cfg.IsConfigured())
	assert.Equal(t, "mpv", cfg.Player.Command)
	assert.Equal(t, []string{"--no-video"}, cfg.Player.Args)
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.Equal(t, 100*time.Millisecond, cfg.Audio.Buffer, "non-positive buffer falls back to the default")
	assert.Equal(t, 250*time.Millisecond, cfg.Playback.PollInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MUSIC_TUI_SERVER_URL", "http://from-env:9000")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:9000", cfg.Server.URL)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSaveTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Server.URL = "http://saved:8080"
	cfg.Player.Command = "mpv"
	cfg.Player.StartFlag = "-ss "
	cfg.Audio.Buffer = 250 * time.Millisecond
	cfg.Playback.PollInterval = 50 * time.Millisecond

	require.NoError(t, SaveTo(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://saved:8080", loaded.Server.URL)
	assert.Equal(t, "mpv", loaded.Player.Command)
	assert.Equal(t, "-ss ", loaded.Player.StartFlag)
	assert.Equal(t, 250*time.Millisecond, loaded.Audio.Buffer)
	assert.Equal(t, 50*time.Millisecond, loaded.Playback.PollInterval)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "music"), expandHome("~/music"))
	assert.Equal(t, "/var/lib/music", expandHome("/var/lib/music"))
}
