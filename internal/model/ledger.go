package model

import (
	"errors"
	"sync/atomic"
)

// Profession is a named skill track (mining, herbalism, smithing, ...).
// The set of professions is owned by configuration, not by this package.
type Profession string

// ErrInvalidAmount is returned when an XP award is zero or negative.
// It signals a bug in the calling subsystem, not a player-facing condition.
var ErrInvalidAmount = errors.New("xp award amount must be positive")

// Ledger holds the XP/level state for one (player, profession) pair.
//
// The XP counter and the level counter are independent atomics so that the
// award hot path never takes a lock: many event handlers may award XP to the
// same ledger at arbitrarily overlapping times. Level-up detection is a CAS
// race with exactly one winner per distinct transition, which is what keeps
// duplicate level-up notifications out even when two awards land in the same
// instant.
//
// Between AwardXP and DetectLevelUp the stored level may lag the XP total by
// one pending resolution; it converges once DetectLevelUp has run after every
// award.
type Ledger struct {
	profession Profession

	xp    atomic.Int64
	level atomic.Int32
}

// NewLedger creates a fresh ledger at XP 0, level 1.
func NewLedger(profession Profession) *Ledger {
	l := &Ledger{profession: profession}
	l.level.Store(1)
	return l
}

// NewLedgerFromSnapshot rehydrates a ledger from a persisted snapshot.
func NewLedgerFromSnapshot(s LedgerSnapshot) *Ledger {
	l := &Ledger{profession: s.Profession}
	xp := s.XP
	if xp < 0 {
		xp = 0
	}
	level := s.Level
	if level < 1 {
		level = 1
	}
	l.xp.Store(xp)
	l.level.Store(level)
	return l
}

// Profession returns the skill track this ledger belongs to.
func (l *Ledger) Profession() Profession { return l.profession }

// XP returns the current cumulative XP total.
func (l *Ledger) XP() int64 { return l.xp.Load() }

// Level returns the current stored level.
// May lag the XP total until DetectLevelUp resolves a pending award.
func (l *Ledger) Level() int32 { return l.level.Load() }

// AwardXP atomically adds amount to the XP counter and returns the new total.
// Rejects non-positive amounts with ErrInvalidAmount (no mutation).
// Lock-free: safe under unbounded concurrent callers on the same ledger.
func (l *Ledger) AwardXP(amount int64) (int64, error) {
	if amount <= 0 {
		return l.xp.Load(), ErrInvalidAmount
	}
	return l.xp.Add(amount), nil
}

// DetectLevelUp recomputes the level implied by the current XP total and
// attempts to transition the stored level from observedOldLevel to it.
//
// Exactly one concurrent caller observing the same observedOldLevel wins the
// CAS and receives (newLevel, true) — the authoritative "fresh level-up"
// signal. Everyone else (lost the race, or called with a stale observed
// level) receives the already-current stored level and false: nothing new to
// report. A losing CAS is a normal outcome, not an error.
func (l *Ledger) DetectLevelUp(observedOldLevel int32, curve LevelCurve) (int32, bool) {
	computed := curve.LevelForXP(l.xp.Load(), observedOldLevel)
	if computed > observedOldLevel && l.level.CompareAndSwap(observedOldLevel, computed) {
		return computed, true
	}
	return l.level.Load(), false
}

// SetDirect unconditionally overwrites XP and level.
// Admin-only: not safe to call concurrently with AwardXP/DetectLevelUp
// without external serialization.
func (l *Ledger) SetDirect(xp int64, level int32) {
	if xp < 0 {
		xp = 0
	}
	if level < 1 {
		level = 1
	}
	l.xp.Store(xp)
	l.level.Store(level)
}

// ApplyPenalty drains floor(xp*percent) from the ledger, clamped so XP never
// goes negative, recomputes the level from the reduced total and stores it.
// Returns the XP lost.
//
// Assumes no concurrent XP awards for this ledger — the coordinator
// serializes penalty application through the per-player state mutex.
func (l *Ledger) ApplyPenalty(percent float64, curve LevelCurve) int64 {
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}

	current := l.xp.Load()
	lost := int64(float64(current) * percent)
	if lost > current {
		lost = current
	}
	if lost <= 0 {
		return 0
	}

	remaining := current - lost
	l.xp.Store(remaining)
	l.level.Store(curve.LevelForXP(remaining, 1))
	return lost
}

// Snapshot returns an immutable value record of the ledger state.
func (l *Ledger) Snapshot() LedgerSnapshot {
	return LedgerSnapshot{
		Profession: l.profession,
		XP:         l.xp.Load(),
		Level:      l.level.Load(),
	}
}
