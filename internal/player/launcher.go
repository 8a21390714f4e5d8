package player

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// ErrNoPlayer indicates no external player could be found
var ErrNoPlayer = errors.New("no external player found")

// externalPlayer describes how to hand a stream to one player
type externalPlayer struct {
	offsetFlag string              // resume offset flag, e.g. "--start="
	platforms  map[string][]string // platform -> executables to try in order
}

// externalPlayers registry of players that accept an http stream URL
var externalPlayers = map[string]externalPlayer{
	"mpv": {
		offsetFlag: "--start=",
		platforms: map[string][]string{
			"darwin":  {"mpv"},
			"linux":   {"mpv"},
			"windows": {"mpv"},
		},
	},
	"vlc": {
		offsetFlag: "--start-time=",
		platforms: map[string][]string{
			"darwin":  {"vlc", "/Applications/VLC.app/Contents/MacOS/VLC"},
			"linux":   {"vlc"},
			"windows": {"vlc"},
		},
	},
	"iina": {
		offsetFlag: "--mpv-start=",
		platforms: map[string][]string{
			"darwin": {"iina-cli"},
		},
	},
	"celluloid": {
		offsetFlag: "--mpv-start=",
		platforms: map[string][]string{
			"linux": {"celluloid"},
		},
	},
}

// candidatePlayers is the preferred order per platform
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "vlc", "mpv"},
	"linux":   {"mpv", "celluloid", "vlc"},
	"windows": {"vlc", "mpv"},
}

// Launcher hands the current track to an external player, for listening
// on another output or with another player's controls.
type Launcher struct {
	command   string   // configured player command, empty for auto-detection
	args      []string // additional arguments for the configured player
	startFlag string   // offset flag, e.g. "--start=" or "-ss "
	logger    *slog.Logger

	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
}

// NewLauncher creates a launcher. The offset flag of known players is
// detected from the command name when startFlag is empty.
func NewLauncher(command string, args []string, startFlag string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}

	if startFlag == "" && command != "" {
		base := strings.ToLower(filepath.Base(command))
		base = strings.TrimSuffix(base, filepath.Ext(base))
		base = strings.TrimSuffix(base, "-cli")
		if p, ok := externalPlayers[base]; ok {
			startFlag = p.offsetFlag
			logger.Debug("detected player offset flag", "player", base, "flag", startFlag)
		}
	}

	return &Launcher{
		command:   command,
		args:      args,
		startFlag: startFlag,
		logger:    logger,
		lookPath:  exec.LookPath,
		start:     (*exec.Cmd).Start,
	}
}

// offsetArgs renders the resume offset for flag; "-ss " style flags take
// the value as a separate argument.
func offsetArgs(flag string, offset time.Duration) []string {
	if flag == "" || offset <= 0 {
		return nil
	}
	secs := fmt.Sprintf("%.0f", offset.Seconds())
	if strings.HasSuffix(flag, " ") {
		return []string{strings.TrimSuffix(flag, " "), secs}
	}
	return []string{flag + secs}
}

// plan picks the executable and arguments for url
func (l *Launcher) plan(url string, offset time.Duration) (string, []string, error) {
	// Configured player first
	if l.command != "" {
		if _, err := l.lookPath(l.command); err != nil {
			return "", nil, fmt.Errorf("configured player %q: %w", l.command, err)
		}
		if offset > 0 && l.startFlag == "" {
			l.logger.Warn("cannot resume at offset, set player.start_flag", "command", l.command)
		}
		args := append(append([]string{}, l.args...), offsetArgs(l.startFlag, offset)...)
		return l.command, append(args, url), nil
	}

	// Then the candidate chain for this platform
	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"]
	}
	for _, name := range candidates {
		p := externalPlayers[name]
		for _, path := range p.platforms[runtime.GOOS] {
			resolved, err := l.lookPath(path)
			if err != nil {
				continue
			}
			l.logger.Debug("detected player", "player", name, "path", resolved)
			return resolved, append(offsetArgs(p.offsetFlag, offset), url), nil
		}
	}

	// Finally the system URL handler, which cannot resume
	var opener []string
	switch runtime.GOOS {
	case "darwin":
		opener = []string{"open"}
	case "windows":
		opener = []string{"cmd", "/c", "start", ""}
	default:
		opener = []string{"xdg-open"}
	}
	if _, err := l.lookPath(opener[0]); err != nil {
		return "", nil, ErrNoPlayer
	}
	return opener[0], append(opener[1:], url), nil
}

// Launch starts an external player on url at offset without waiting for it
func (l *Launcher) Launch(url string, offset time.Duration) error {
	command, args, err := l.plan(url, offset)
	if err != nil {
		return err
	}

	l.logger.Info("launching external player", "command", command, "offset", offset)
	if err := l.start(exec.Command(command, args...)); err != nil {
		return fmt.Errorf("failed to start %s: %w", command, err)
	}
	return nil
}
