package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName   = "music-tui"
	envPrefix = "MUSIC_TUI"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Player   PlayerConfig   `mapstructure:"player"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds music server configuration
type ServerConfig struct {
	URL string `mapstructure:"url"` // Server base URL, e.g. http://nas.local:8080
}

// AudioConfig holds the built-in audio output settings
type AudioConfig struct {
	SampleRate int           `mapstructure:"sample_rate"` // output rate, tracks are resampled to it
	Buffer     time.Duration `mapstructure:"buffer"`
}

// PlayerConfig holds the external player used by "open in player"
type PlayerConfig struct {
	Command   string   `mapstructure:"command"` // empty = auto-detect
	Args      []string `mapstructure:"args"`
	StartFlag string   `mapstructure:"start_flag"` // e.g. "--start=", empty = detect from command
}

// PlaybackConfig holds playback display settings
type PlaybackConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// StorageConfig holds local persistence settings
type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 44100,
			Buffer:     100 * time.Millisecond,
		},
		Player: PlayerConfig{
			Args: []string{},
		},
		Playback: PlaybackConfig{
			PollInterval: 10 * time.Millisecond,
		},
		Storage: StorageConfig{
			Dir: defaultDataPath(),
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), appName+".log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// newViper builds a viper instance wired to the given search paths and the environment
func newViper(paths ...string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. MUSIC_TUI_SERVER_URL
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about
	defaults := DefaultConfig()
	v.SetDefault("server.url", defaults.Server.URL)
	v.SetDefault("audio.sample_rate", defaults.Audio.SampleRate)
	v.SetDefault("audio.buffer", defaults.Audio.Buffer)
	v.SetDefault("player.command", defaults.Player.Command)
	v.SetDefault("player.args", defaults.Player.Args)
	v.SetDefault("player.start_flag", defaults.Player.StartFlag)
	v.SetDefault("playback.poll_interval", defaults.Playback.PollInterval)
	v.SetDefault("storage.dir", defaults.Storage.Dir)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.level", defaults.Logging.Level)

	return v
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	return Load(DefaultConfigDir(), ".")
}

// Load loads configuration from config.yaml in the given directories and environment
func Load(paths ...string) (*Config, error) {
	v := newViper(paths...)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	defaults := DefaultConfig()
	if cfg.Playback.PollInterval <= 0 {
		cfg.Playback.PollInterval = defaults.Playback.PollInterval
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if cfg.Audio.Buffer <= 0 {
		cfg.Audio.Buffer = defaults.Audio.Buffer
	}

	return cfg, nil
}

// SaveConfig saves the configuration to config.yaml in the default config directory
func SaveConfig(cfg *Config) error {
	return SaveTo(DefaultConfigDir(), cfg)
}

// SaveTo saves the configuration to config.yaml in dir
func SaveTo(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", cfg.Server.URL)

	v.Set("audio.sample_rate", cfg.Audio.SampleRate)
	v.Set("audio.buffer", cfg.Audio.Buffer.String())

	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)
	v.Set("player.start_flag", cfg.Player.StartFlag)

	v.Set("playback.poll_interval", cfg.Playback.PollInterval.String())

	v.Set("storage.dir", cfg.Storage.Dir)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the server URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// expandHome expands a leading ~ to the user's home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
