package model

import "time"

// Snapshot types are the persistence boundary for progression state.
// They are plain value records exchanged at login/logout — they hold no
// live ledger or tracker references and are safe to hand to the DB layer.

// LedgerSnapshot is the persisted form of one profession ledger.
type LedgerSnapshot struct {
	Profession Profession
	XP         int64
	Level      int32
}

// DeathEntry is the persisted form of one weighted death.
type DeathEntry struct {
	At     time.Time
	Weight float64
}

// TrackerSnapshot is the persisted form of a death penalty tracker.
type TrackerSnapshot struct {
	Deaths         []DeathEntry
	TotalDeaths    int32
	MercyActive    bool
	LastDecayCheck time.Time
}
