package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep/v2"
	"golang.org/x/term"

	"github.com/williamhaley/music-tui/internal/config"
	"github.com/williamhaley/music-tui/internal/domain"
	"github.com/williamhaley/music-tui/internal/library"
	"github.com/williamhaley/music-tui/internal/log"
	"github.com/williamhaley/music-tui/internal/musicserver"
	"github.com/williamhaley/music-tui/internal/playback"
	"github.com/williamhaley/music-tui/internal/player"
	"github.com/williamhaley/music-tui/internal/session"
	"github.com/williamhaley/music-tui/internal/store"
	"github.com/williamhaley/music-tui/internal/tui"
	"github.com/williamhaley/music-tui/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var showVersion, loginOnly bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&loginOnly, "login", false, "sign in from the terminal and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("music-tui %s\n", Version)
		return
	}

	if err := run(loginOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(loginOnly bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting music-tui", "version", Version)

	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg); err != nil {
			return err
		}
	}

	st, err := store.NewSessionStore(cfg.Storage.Dir, cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer st.Close()

	client := musicserver.NewClient(cfg.Server.URL, logger)
	sessionSvc := session.NewService(client, st, logger)

	if loginOnly {
		return runLoginFlow(sessionSvc)
	}

	out := player.NewSpeaker(cfg.Audio.Buffer)
	transport := player.New(out, beep.SampleRate(cfg.Audio.SampleRate), player.HTTPFetch(nil), logger)
	defer transport.Close()

	controller := playback.NewController(transport, client, sessionSvc, logger)
	defer controller.Stop()

	tracker := playback.NewTracker(cfg.Playback.PollInterval)
	tracker.Attach(transport)
	defer tracker.Detach()

	librarySvc := library.NewService(client, logger)

	model := tui.NewModel(sessionSvc, librarySvc, controller, tracker, client.BaseURL())
	model.External = player.NewLauncher(cfg.Player.Command, cfg.Player.Args, cfg.Player.StartFlag, logger)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow asks for the server URL on first run and saves it
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to music-tui!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Enter your music server URL (e.g., http://192.168.1.100:8080): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		serverURL := strings.TrimSpace(input)

		if serverURL == "" {
			fmt.Println("Server URL cannot be empty. Please try again.")
			continue
		}
		u, err := url.Parse(serverURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fmt.Println("Server URL must start with http:// or https://. Please try again.")
			continue
		}

		cfg.Server.URL = strings.TrimRight(serverURL, "/")
		break
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}

// runLoginFlow reads a token with echo disabled and signs in
func runLoginFlow(svc *session.Service) error {
	fmt.Print("Access token: ")
	tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return errors.New("token cannot be empty")
	}

	if err := signinWithSpinner(svc, token); err != nil {
		if errors.Is(err, domain.ErrServerOffline) {
			return fmt.Errorf("server unreachable: %w", err)
		}
		return fmt.Errorf("sign in failed: %w", err)
	}

	fmt.Println("✓ Signed in. Run music-tui to start listening.")
	return nil
}

// signinWithSpinner validates the token with a visual spinner
func signinWithSpinner(svc *session.Service, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- svc.Signin(ctx, token)
	}()

	frame := 0
	fmt.Printf("\r%s Signing in...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			return err

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Signing in...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
		}
	}
}
