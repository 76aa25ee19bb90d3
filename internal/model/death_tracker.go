package model

import (
	"sync"
	"time"
)

// DefaultDeathWeight is the initial weight of a freshly recorded death.
const DefaultDeathWeight = 1.0

// deathEntry is one weighted death in the tracker's history.
// Weight starts at DefaultDeathWeight and decays toward zero over real time.
type deathEntry struct {
	at     time.Time
	weight float64
}

// DeathTracker holds a player's decaying weighted death history for one
// login session. Independent of professions — the progression coordinator
// consumes its penalty percentage once per death and applies it across
// ledgers.
//
// All mutation runs inside one short critical section per tracker
// (append/decay/sum together); the entry list is never exposed for external
// iteration. Deaths are rare, so a plain mutex is fine here — the lock-free
// treatment is reserved for the XP-award hot path in Ledger.
type DeathTracker struct {
	mu             sync.Mutex
	entries        []deathEntry
	totalDeaths    int32 // monotone within the session, never decremented
	mercyActive    bool  // one-way latch, sticks until logout
	lastDecayCheck time.Time
}

// NewDeathTracker creates an empty tracker. lastDecayCheck starts at now so
// the first decay tick measures elapsed time from session start.
func NewDeathTracker(now time.Time) *DeathTracker {
	return &DeathTracker{lastDecayCheck: now}
}

// NewDeathTrackerFromSnapshot rehydrates a tracker from a persisted snapshot.
func NewDeathTrackerFromSnapshot(s TrackerSnapshot) *DeathTracker {
	t := &DeathTracker{
		totalDeaths:    s.TotalDeaths,
		mercyActive:    s.MercyActive,
		lastDecayCheck: s.LastDecayCheck,
	}
	t.entries = make([]deathEntry, 0, len(s.Deaths))
	for _, d := range s.Deaths {
		if d.Weight <= 0 {
			continue
		}
		t.entries = append(t.entries, deathEntry{at: d.At, weight: d.Weight})
	}
	return t
}

// RecordDeath appends a weighted entry at now and bumps the session death
// counter. weight is normally DefaultDeathWeight. Returns the new total
// death count for this session.
func (t *DeathTracker) RecordDeath(now time.Time, weight float64) int32 {
	if weight <= 0 {
		weight = DefaultDeathWeight
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, deathEntry{at: now, weight: weight})
	t.totalDeaths++
	return t.totalDeaths
}

// ApplyDecay subtracts ratePerHour * elapsedHours from every entry's weight,
// removes entries whose weight drops to <= 0, and advances lastDecayCheck to
// now. Returns how many entries fully decayed on this call.
//
// Idempotent with respect to elapsed real time: calling twice with the same
// now yields zero additional decay on the second call.
func (t *DeathTracker) ApplyDecay(ratePerHour float64, now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := now.Sub(t.lastDecayCheck).Hours()
	if elapsed <= 0 || ratePerHour <= 0 {
		if elapsed > 0 {
			t.lastDecayCheck = now
		}
		return 0
	}

	decay := ratePerHour * elapsed
	removed := 0
	live := t.entries[:0]
	for _, e := range t.entries {
		e.weight -= decay
		if e.weight <= 0 {
			removed++
			continue
		}
		live = append(live, e)
	}
	t.entries = live
	t.lastDecayCheck = now
	return removed
}

// CurrentWeight returns the sum of all live entries' weights.
// 0.0 means no outstanding death penalty influence.
func (t *DeathTracker) CurrentWeight() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sum float64
	for _, e := range t.entries {
		sum += e.weight
	}
	return sum
}

// TotalDeaths returns the session death counter.
func (t *DeathTracker) TotalDeaths() int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalDeaths
}

// ShouldActivateMercy latches mercyActive once totalDeaths reaches the
// threshold and returns the latch. Once active, mercy sticks for the
// remainder of the session even if all death weight decays away.
func (t *DeathTracker) ShouldActivateMercy(threshold int32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if threshold > 0 && t.totalDeaths >= threshold {
		t.mercyActive = true
	}
	return t.mercyActive
}

// MercyActive returns the current state of the mercy latch.
func (t *DeathTracker) MercyActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mercyActive
}

// CalculatePenaltyPercent computes the XP penalty percentage for the next
// death: base + currentWeight*progressiveIncrease, multiplied by
// mercyReduction when the mercy latch is active (mercyReduction == 0
// disables mercy logic), then clamped to [0, max].
//
// The clamp runs AFTER the mercy multiply so a misconfigured
// mercyReduction > 1 can never push the result past max.
func (t *DeathTracker) CalculatePenaltyPercent(base, progressiveIncrease, max, mercyReduction float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var weight float64
	for _, e := range t.entries {
		weight += e.weight
	}

	percent := base + weight*progressiveIncrease
	if t.mercyActive && mercyReduction > 0 {
		percent *= mercyReduction
	}
	if percent > max {
		percent = max
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}

// Snapshot returns an immutable deep-copied value record of the tracker.
func (t *DeathTracker) Snapshot() TrackerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	deaths := make([]DeathEntry, 0, len(t.entries))
	for _, e := range t.entries {
		deaths = append(deaths, DeathEntry{At: e.at, Weight: e.weight})
	}
	return TrackerSnapshot{
		Deaths:         deaths,
		TotalDeaths:    t.totalDeaths,
		MercyActive:    t.mercyActive,
		LastDecayCheck: t.lastDecayCheck,
	}
}
