package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberforge/professions/internal/game/progression"
	"github.com/emberforge/professions/internal/model"
)

// ProgressionRepository persists player progression snapshots in
// PostgreSQL. Implements progression.SnapshotStore.
type ProgressionRepository struct {
	pool *pgxpool.Pool
}

var _ progression.SnapshotStore = (*ProgressionRepository)(nil)

// NewProgressionRepository creates a new ProgressionRepository.
func NewProgressionRepository(pool *pgxpool.Pool) *ProgressionRepository {
	return &ProgressionRepository{pool: pool}
}

// LoadPlayer loads the saved snapshot for a player.
// Returns found=false (not an error) when nothing was ever saved.
func (r *ProgressionRepository) LoadPlayer(ctx context.Context, playerID int64) (progression.PlayerSnapshot, bool, error) {
	var snap progression.PlayerSnapshot

	rows, err := r.pool.Query(ctx,
		`SELECT profession, xp, level
		 FROM profession_ledgers WHERE player_id = $1`, playerID)
	if err != nil {
		return snap, false, fmt.Errorf("querying ledgers for player %d: %w", playerID, err)
	}
	for rows.Next() {
		var ls model.LedgerSnapshot
		var prof string
		if err := rows.Scan(&prof, &ls.XP, &ls.Level); err != nil {
			rows.Close()
			return snap, false, fmt.Errorf("scanning ledger row for player %d: %w", playerID, err)
		}
		ls.Profession = model.Profession(prof)
		snap.Ledgers = append(snap.Ledgers, ls)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, false, fmt.Errorf("reading ledger rows for player %d: %w", playerID, err)
	}

	var ts model.TrackerSnapshot
	err = r.pool.QueryRow(ctx,
		`SELECT total_deaths, mercy_active, last_decay_check
		 FROM death_trackers WHERE player_id = $1`, playerID,
	).Scan(&ts.TotalDeaths, &ts.MercyActive, &ts.LastDecayCheck)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// No tracker saved — the player gets a fresh one on login.
		return snap, len(snap.Ledgers) > 0, nil
	case err != nil:
		return snap, false, fmt.Errorf("querying death tracker for player %d: %w", playerID, err)
	}

	deathRows, err := r.pool.Query(ctx,
		`SELECT died_at, weight
		 FROM death_entries WHERE player_id = $1 ORDER BY id`, playerID)
	if err != nil {
		return snap, false, fmt.Errorf("querying death entries for player %d: %w", playerID, err)
	}
	defer deathRows.Close()
	for deathRows.Next() {
		var de model.DeathEntry
		if err := deathRows.Scan(&de.At, &de.Weight); err != nil {
			return snap, false, fmt.Errorf("scanning death entry for player %d: %w", playerID, err)
		}
		ts.Deaths = append(ts.Deaths, de)
	}
	if err := deathRows.Err(); err != nil {
		return snap, false, fmt.Errorf("reading death entries for player %d: %w", playerID, err)
	}

	snap.Tracker = &ts
	return snap, true, nil
}

// SavePlayer replaces the player's persisted progression with the snapshot
// in a single transaction: either all of it lands or none.
func (r *ProgressionRepository) SavePlayer(ctx context.Context, playerID int64, snap progression.PlayerSnapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for player %d: %w", playerID, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "playerID", playerID, "error", err)
		}
	}()

	if _, err := tx.Exec(ctx,
		`DELETE FROM profession_ledgers WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("clearing ledgers for player %d: %w", playerID, err)
	}
	for _, ls := range snap.Ledgers {
		if _, err := tx.Exec(ctx,
			`INSERT INTO profession_ledgers (player_id, profession, xp, level)
			 VALUES ($1, $2, $3, $4)`,
			playerID, string(ls.Profession), ls.XP, ls.Level); err != nil {
			return fmt.Errorf("saving ledger %s for player %d: %w", ls.Profession, playerID, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM death_entries WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("clearing death entries for player %d: %w", playerID, err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM death_trackers WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("clearing death tracker for player %d: %w", playerID, err)
	}

	if ts := snap.Tracker; ts != nil {
		if _, err := tx.Exec(ctx,
			`INSERT INTO death_trackers (player_id, total_deaths, mercy_active, last_decay_check)
			 VALUES ($1, $2, $3, $4)`,
			playerID, ts.TotalDeaths, ts.MercyActive, ts.LastDecayCheck); err != nil {
			return fmt.Errorf("saving death tracker for player %d: %w", playerID, err)
		}
		for _, de := range ts.Deaths {
			if _, err := tx.Exec(ctx,
				`INSERT INTO death_entries (player_id, died_at, weight)
				 VALUES ($1, $2, $3)`,
				playerID, de.At, de.Weight); err != nil {
				return fmt.Errorf("saving death entry for player %d: %w", playerID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for player %d: %w", playerID, err)
	}
	return nil
}
