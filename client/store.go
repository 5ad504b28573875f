package client

import (
	"log/slog"
	"sync"

	"asset-backend/app/domain"
)

// Store is the typed identity cache consulted by the guards and the
// orchestrator. It mirrors every mutation into its StatePort so the
// cache survives reloads.
type Store struct {
	port   StatePort
	logger *slog.Logger

	mu    sync.RWMutex
	state AuthState
}

// NewStore creates a store hydrated from the persistence port
func NewStore(port StatePort, logger *slog.Logger) *Store {
	store := &Store{
		port:   port,
		logger: logger.With("component", "auth_store"),
	}

	if state, err := port.Read(); err == nil {
		store.state = *state
	} else {
		logger.Warn("failed to hydrate auth state, starting logged out", "error", err)
		store.state = AuthState{Location: []domain.Location{}}
	}

	return store
}

// Snapshot returns a copy of the current cached state
func (s *Store) Snapshot() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether the cache claims an authenticated user
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuth
}

// SetIdentity replaces the cached state with the given identity and
// marks it authenticated
func (s *Store) SetIdentity(identity *domain.Identity) {
	locations := identity.Location
	if locations == nil {
		locations = []domain.Location{}
	}

	s.mu.Lock()
	s.state = AuthState{
		Email:    identity.Email,
		Name:     identity.Name,
		IsAuth:   true,
		Role:     identity.Role,
		Location: locations,
		ID:       identity.ID,
	}
	state := s.state
	s.mu.Unlock()

	if err := s.port.Write(&state); err != nil {
		s.logger.Warn("failed to persist auth state", "error", err)
	}
}

// Clear resets the cache to logged out and wipes the persisted copy
func (s *Store) Clear() {
	s.mu.Lock()
	s.state = AuthState{Location: []domain.Location{}}
	s.mu.Unlock()

	if err := s.port.Clear(); err != nil {
		s.logger.Warn("failed to clear persisted auth state", "error", err)
	}
}
