package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-backend/app/domain"
)

func TestStore_HydratesFromPort(t *testing.T) {
	port := NewMemoryState()
	require.NoError(t, port.Write(&AuthState{
		Email:    "jane.doe@example.com",
		Name:     "Jane Doe",
		IsAuth:   true,
		Role:     domain.RolePIC,
		Location: []domain.Location{},
		ID:       "user-1",
	}))

	store := NewStore(port, newTestLogger(t))
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "jane.doe@example.com", store.Snapshot().Email)
}

func TestStore_SetIdentityPersists(t *testing.T) {
	port := NewMemoryState()
	store := NewStore(port, newTestLogger(t))
	require.False(t, store.IsAuthenticated())

	store.SetIdentity(testIdentity())

	snapshot := store.Snapshot()
	assert.True(t, snapshot.IsAuth)
	assert.Equal(t, "jane.doe@example.com", snapshot.Email)
	assert.Equal(t, domain.RolePIC, snapshot.Role)
	require.Len(t, snapshot.Location, 1)

	persisted, err := port.Read()
	require.NoError(t, err)
	assert.True(t, persisted.IsAuth)
	assert.Equal(t, "user-1", persisted.ID)
}

func TestStore_ClearWipesPersistedCopy(t *testing.T) {
	port := NewMemoryState()
	store := NewStore(port, newTestLogger(t))
	store.SetIdentity(testIdentity())

	store.Clear()

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Snapshot().Email)

	persisted, err := port.Read()
	require.NoError(t, err)
	assert.False(t, persisted.IsAuth)
}
