package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"asset-backend/app/domain"
)

// StorageKey is the well-known name the identity cache is persisted
// under across reloads of the client runtime.
const StorageKey = "user-auth-storage"

// AuthState is the persisted mirror of the authenticated identity plus
// the authentication flag
type AuthState struct {
	Email    string            `json:"email"`
	Name     string            `json:"name"`
	IsAuth   bool              `json:"isAuth"`
	Role     domain.Role       `json:"role"`
	Location []domain.Location `json:"location"`
	ID       string            `json:"id"`
}

// persistedState matches the on-disk shape: the state object wrapped in
// a "state" envelope.
type persistedState struct {
	State AuthState `json:"state"`
}

// StatePort abstracts where the identity cache is persisted. The server
// never reads it; it belongs exclusively to the client runtime.
type StatePort interface {
	Read() (*AuthState, error)
	Write(state *AuthState) error
	Clear() error
}

// FileState persists the auth state to a JSON file
type FileState struct {
	path string
	mu   sync.Mutex
}

// NewFileState creates a file-backed state port rooted at dir. The file
// is named after StorageKey.
func NewFileState(dir string) *FileState {
	return &FileState{path: filepath.Join(dir, StorageKey)}
}

// Read loads the persisted state. A missing file yields an empty,
// unauthenticated state rather than an error.
func (f *FileState) Read() (*AuthState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &AuthState{Location: []domain.Location{}}, nil
		}
		return nil, fmt.Errorf("failed to read auth state: %w", err)
	}

	var persisted persistedState
	if err := json.Unmarshal(raw, &persisted); err != nil {
		// A corrupt cache is treated as logged out, not fatal
		return &AuthState{Location: []domain.Location{}}, nil
	}

	state := persisted.State
	if state.Location == nil {
		state.Location = []domain.Location{}
	}
	return &state, nil
}

// Write persists the state atomically via a temp file rename
func (f *FileState) Write(state *AuthState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := json.Marshal(persistedState{State: *state})
	if err != nil {
		return fmt.Errorf("failed to encode auth state: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write auth state: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to persist auth state: %w", err)
	}
	return nil
}

// Clear removes the persisted state
func (f *FileState) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear auth state: %w", err)
	}
	return nil
}

// MemoryState is an in-memory state port for tests and ephemeral runs
type MemoryState struct {
	mu    sync.Mutex
	state *AuthState
}

// NewMemoryState creates an empty in-memory state port
func NewMemoryState() *MemoryState {
	return &MemoryState{}
}

func (m *MemoryState) Read() (*AuthState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		return &AuthState{Location: []domain.Location{}}, nil
	}
	copied := *m.state
	return &copied, nil
}

func (m *MemoryState) Write(state *AuthState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *state
	m.state = &copied
	return nil
}

func (m *MemoryState) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = nil
	return nil
}
