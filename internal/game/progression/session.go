package progression

import (
	"context"
	"fmt"
	"log/slog"
)

// SnapshotStore is the persistence collaborator consumed at the
// login/logout boundary. The coordinator itself never touches storage —
// it only exchanges snapshots. internal/db provides the PostgreSQL
// implementation.
type SnapshotStore interface {
	// LoadPlayer returns the saved snapshot for the player.
	// found=false (no error) when the player has never been saved.
	LoadPlayer(ctx context.Context, playerID int64) (PlayerSnapshot, bool, error)

	// SavePlayer persists the snapshot, replacing any previous state.
	SavePlayer(ctx context.Context, playerID int64, snap PlayerSnapshot) error
}

// SessionManager composes the coordinator with a SnapshotStore at session
// boundaries: load-then-rehydrate on login, serialize-then-save on logout.
type SessionManager struct {
	coord *Coordinator
	store SnapshotStore
}

// NewSessionManager creates a session manager.
func NewSessionManager(coord *Coordinator, store SnapshotStore) *SessionManager {
	return &SessionManager{coord: coord, store: store}
}

// HandleLogin loads the player's saved progression and rehydrates live
// state. A failed load is not fatal: the player starts from defaults and
// the error is logged. Absence and storage failure both degrade to
// defaults so a database outage never blocks logins.
func (s *SessionManager) HandleLogin(ctx context.Context, playerID int64) {
	snap, found, err := s.store.LoadPlayer(ctx, playerID)
	if err != nil {
		slog.Error("loading progression snapshot, starting from defaults",
			"playerID", playerID,
			"error", err)
		snap = PlayerSnapshot{}
	} else if !found {
		snap = PlayerSnapshot{}
	}
	s.coord.OnLogin(playerID, snap)
}

// HandleLogout serializes and evicts the player's live state, then writes
// the snapshot. A failed save is returned to the caller (retry policy is
// the caller's concern); the snapshot is already consistent either way.
func (s *SessionManager) HandleLogout(ctx context.Context, playerID int64) error {
	snap, ok := s.coord.OnLogout(playerID)
	if !ok {
		return nil
	}
	if err := s.store.SavePlayer(ctx, playerID, snap); err != nil {
		return fmt.Errorf("saving progression for player %d: %w", playerID, err)
	}
	slog.Debug("player progression saved",
		"playerID", playerID,
		"ledgers", len(snap.Ledgers))
	return nil
}
