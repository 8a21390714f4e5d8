package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/williamhaley/music-tui/internal/domain"
	"github.com/williamhaley/music-tui/internal/store"
)

// Store is the persistent key/value storage the session writes through
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// State is a snapshot of the auth session.
// While Loading is true the Token is not authoritative.
type State struct {
	Token   string
	Loading bool
}

// Authenticated reports whether the snapshot grants access to protected views
func (s State) Authenticated() bool {
	return !s.Loading && s.Token != ""
}

// Service owns the access token for the lifetime of the process
type Service struct {
	auth   domain.AuthRepository
	store  Store
	logger *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewService creates a session in the loading state. Call Hydrate to resolve it.
func NewService(auth domain.AuthRepository, st Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		auth:   auth,
		store:  st,
		logger: logger,
		state:  State{Loading: true},
	}
}

// State returns the current session snapshot
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the token when authenticated, otherwise ""
func (s *Service) Token() string {
	st := s.State()
	if !st.Authenticated() {
		return ""
	}
	return st.Token
}

// ClientID returns the persisted per-client identifier, if one was generated
func (s *Service) ClientID() string {
	id, _ := s.store.Get(store.KeyClientID)
	return id
}

func (s *Service) set(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Signin validates token against the server. Observers only see
// Loading with no token until validation resolves.
// Rejection returns an error matching domain.ErrInvalidToken.
func (s *Service) Signin(ctx context.Context, token string) error {
	s.set(State{Loading: true})

	clientID := uuid.NewString()
	if err := s.store.Set(store.KeyClientID, clientID); err != nil {
		s.logger.Warn("failed to persist client id", "error", err)
	}

	if err := s.auth.CheckAuth(ctx, token); err != nil {
		s.set(State{})
		s.logger.Info("signin rejected", "error", err)
		if errors.Is(err, domain.ErrInvalidToken) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	if err := s.store.Set(store.KeyToken, token); err != nil {
		s.logger.Error("failed to persist token", "error", err)
	}

	s.set(State{Token: token})
	s.logger.Info("signed in", "clientID", clientID)
	return nil
}

// Signout clears the token in memory and in storage
func (s *Service) Signout() {
	if err := s.store.Set(store.KeyToken, ""); err != nil {
		s.logger.Error("failed to clear token", "error", err)
	}
	s.set(State{})
	s.logger.Info("signed out")
}

// Hydrate resolves the initial session from storage: a stored token is
// re-validated as if Signin had been called, otherwise the session
// becomes unauthenticated.
func (s *Service) Hydrate(ctx context.Context) error {
	token, ok := s.store.Get(store.KeyToken)
	if !ok || token == "" {
		s.Signout()
		return nil
	}
	return s.Signin(ctx, token)
}
