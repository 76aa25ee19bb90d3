package progression

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory SnapshotStore with error injection.
type memoryStore struct {
	mu      sync.Mutex
	saved   map[int64]PlayerSnapshot
	loadErr error
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{saved: make(map[int64]PlayerSnapshot)}
}

func (m *memoryStore) LoadPlayer(_ context.Context, playerID int64) (PlayerSnapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return PlayerSnapshot{}, false, m.loadErr
	}
	snap, ok := m.saved[playerID]
	return snap, ok, nil
}

func (m *memoryStore) SavePlayer(_ context.Context, playerID int64, snap PlayerSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[playerID] = snap
	return nil
}

func TestSessionManager_RoundTrip(t *testing.T) {
	ctx := context.Background()
	coord := NewCoordinator(testSettings(), stepCurve(t), nil)
	store := newMemoryStore()
	sessions := NewSessionManager(coord, store)

	sessions.HandleLogin(ctx, 1)
	_, err := coord.AwardXP(1, "mining", 350, 1.0)
	require.NoError(t, err)

	require.NoError(t, sessions.HandleLogout(ctx, 1))
	assert.Equal(t, 0, coord.LivePlayerCount())

	// A fresh session sees the persisted progression.
	sessions.HandleLogin(ctx, 1)
	snap, ok := coord.LedgerSnapshotFor(1, "mining")
	require.True(t, ok)
	assert.Equal(t, int64(350), snap.XP)
	assert.Equal(t, int32(4), snap.Level)
}

func TestSessionManager_LoadFailureFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	coord := NewCoordinator(testSettings(), stepCurve(t), nil)
	store := newMemoryStore()
	store.loadErr = errors.New("connection refused")
	sessions := NewSessionManager(coord, store)

	sessions.HandleLogin(ctx, 2)
	assert.Equal(t, 1, coord.LivePlayerCount())

	// Player is playable with default state despite the storage failure.
	res, err := coord.AwardXP(2, "mining", 50, 1.0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), res.OldLevel)
}

func TestSessionManager_SaveFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	coord := NewCoordinator(testSettings(), stepCurve(t), nil)
	store := newMemoryStore()
	sessions := NewSessionManager(coord, store)

	sessions.HandleLogin(ctx, 3)
	store.saveErr = errors.New("disk full")

	err := sessions.HandleLogout(ctx, 3)
	assert.Error(t, err)
}

func TestSessionManager_LogoutWithoutLogin(t *testing.T) {
	ctx := context.Background()
	coord := NewCoordinator(testSettings(), stepCurve(t), nil)
	store := newMemoryStore()
	sessions := NewSessionManager(coord, store)

	// Not live: nothing to save, not an error.
	assert.NoError(t, sessions.HandleLogout(ctx, 42))
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.saved)
}
