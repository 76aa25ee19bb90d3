package progression

import (
	"log/slog"
	"sync"
	"time"

	"github.com/emberforge/professions/internal/model"
)

// LevelUpListener receives level-up notifications from the coordinator.
// Invoked synchronously after a winning level-up detection, at most once per
// distinct level transition. Implementations belong to the presentation
// layer (HUD/chat); a panicking listener is isolated and never corrupts
// ledger state.
type LevelUpListener interface {
	OnLevelUp(playerID int64, profession model.Profession, oldLevel, newLevel int32)
}

// Settings holds the penalty and decay constants the coordinator applies.
// Values come from config; see config.PenaltyConfig for the formula.
type Settings struct {
	PenaltyBase                float64
	PenaltyProgressiveIncrease float64
	PenaltyMax                 float64
	MercyReduction             float64
	MercyThreshold             int32
	DecayRatePerHour           float64
}

// AwardResult reports the outcome of one XP award.
// DidLevelUp is true only for the call that won the level transition race —
// the single authoritative point where "a level-up happened" is decided.
type AwardResult struct {
	OldLevel   int32
	NewLevel   int32
	DidLevelUp bool
	NewTotalXP int64
}

// PlayerSnapshot bundles everything persisted for one player at the
// login/logout boundary. Tracker is nil when no tracker state was saved
// (fresh session).
type PlayerSnapshot struct {
	Ledgers []model.LedgerSnapshot
	Tracker *model.TrackerSnapshot
}

// playerState is the live in-memory progression state for one player.
//
// The ledgers map is a sync.Map so the XP-award hot path stays lock-free.
// mu serializes only death-penalty application, decay, and logout — the
// operations the ledger contract requires to run without concurrent awards
// on the slow path. It is never taken around AwardXP.
type playerState struct {
	mu      sync.Mutex
	ledgers sync.Map // model.Profession -> *model.Ledger
	tracker *model.DeathTracker
}

func (st *playerState) getOrCreateLedger(prof model.Profession) *model.Ledger {
	if v, ok := st.ledgers.Load(prof); ok {
		return v.(*model.Ledger)
	}
	v, _ := st.ledgers.LoadOrStore(prof, model.NewLedger(prof))
	return v.(*model.Ledger)
}

// Coordinator orchestrates profession progression for all online players:
// routes XP awards to the right ledger, decides level-ups exactly once,
// applies death penalties across a player's ledgers, runs decay, and
// converts state to/from snapshots at the session boundary.
//
// The player registry is a sync.Map keyed by player ID; insertion and
// removal are atomic (LoadOrStore / LoadAndDelete) so no two live states for
// the same player can coexist. Cross-player operations are fully
// independent — there is no global lock.
type Coordinator struct {
	settings Settings
	curve    model.LevelCurve
	listener LevelUpListener

	players sync.Map // int64 -> *playerState
}

// NewCoordinator creates a coordinator. listener may be nil (no
// notifications, e.g. in tests or headless tools).
func NewCoordinator(settings Settings, curve model.LevelCurve, listener LevelUpListener) *Coordinator {
	return &Coordinator{
		settings: settings,
		curve:    curve,
		listener: listener,
	}
}

func (c *Coordinator) getOrCreatePlayer(playerID int64) *playerState {
	if v, ok := c.players.Load(playerID); ok {
		return v.(*playerState)
	}
	fresh := &playerState{tracker: model.NewDeathTracker(time.Now())}
	v, _ := c.players.LoadOrStore(playerID, fresh)
	return v.(*playerState)
}

// AwardXP awards floor(baseAmount * abilityMultiplier) XP (at least 1) to
// the player's ledger for the given profession, creating default state on
// first contact. Non-positive baseAmount is rejected with ErrInvalidAmount —
// that is a bug in the XP-granting feature, never a player-facing condition.
//
// Lock-free on the hot path: safe for arbitrarily many concurrent callers,
// including on the same (player, profession) pair.
func (c *Coordinator) AwardXP(playerID int64, prof model.Profession, baseAmount int64, abilityMultiplier float64) (AwardResult, error) {
	if baseAmount <= 0 {
		return AwardResult{}, model.ErrInvalidAmount
	}

	final := int64(float64(baseAmount) * abilityMultiplier)
	if final < 1 {
		final = 1
	}

	ledger := c.getOrCreatePlayer(playerID).getOrCreateLedger(prof)

	oldLevel := ledger.Level()
	total, err := ledger.AwardXP(final)
	if err != nil {
		return AwardResult{}, err
	}

	newLevel, won := ledger.DetectLevelUp(oldLevel, c.curve)
	res := AwardResult{
		OldLevel:   oldLevel,
		NewLevel:   newLevel,
		DidLevelUp: won,
		NewTotalXP: total,
	}

	if won {
		c.notifyLevelUp(playerID, prof, oldLevel, newLevel)
	}
	return res, nil
}

// notifyLevelUp invokes the listener, isolating panics so a broken
// presentation layer cannot corrupt progression state.
func (c *Coordinator) notifyLevelUp(playerID int64, prof model.Profession, oldLevel, newLevel int32) {
	if c.listener == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("level-up listener panicked",
				"playerID", playerID,
				"profession", prof,
				"newLevel", newLevel,
				"panic", r)
		}
	}()
	c.listener.OnLevelUp(playerID, prof, oldLevel, newLevel)
	slog.Info("player leveled up",
		"playerID", playerID,
		"profession", prof,
		"oldLevel", oldLevel,
		"newLevel", newLevel)
}

// OnPlayerDeath records the death, latches mercy if the session threshold is
// reached, computes the penalty percentage from the decayed death weight and
// drains that share of XP from every profession ledger the player owns.
// Returns the percent applied, for reporting.
//
// Serialized through the per-player mutex so no XP award interleaves with
// the penalty drain on the slow path.
func (c *Coordinator) OnPlayerDeath(playerID int64, now time.Time) float64 {
	st := c.getOrCreatePlayer(playerID)

	st.mu.Lock()
	defer st.mu.Unlock()

	deaths := st.tracker.RecordDeath(now, model.DefaultDeathWeight)
	st.tracker.ShouldActivateMercy(c.settings.MercyThreshold)
	percent := st.tracker.CalculatePenaltyPercent(
		c.settings.PenaltyBase,
		c.settings.PenaltyProgressiveIncrease,
		c.settings.PenaltyMax,
		c.settings.MercyReduction,
	)

	var totalLost int64
	st.ledgers.Range(func(_, v any) bool {
		totalLost += v.(*model.Ledger).ApplyPenalty(percent, c.curve)
		return true
	})

	slog.Info("death penalty applied",
		"playerID", playerID,
		"sessionDeaths", deaths,
		"percent", percent,
		"xpLost", totalLost,
		"mercy", st.tracker.MercyActive())
	return percent
}

// OnDecayTick applies time decay to every live tracker.
// Called periodically by the decay loop.
func (c *Coordinator) OnDecayTick(now time.Time) {
	c.players.Range(func(key, v any) bool {
		st := v.(*playerState)
		st.mu.Lock()
		removed := st.tracker.ApplyDecay(c.settings.DecayRatePerHour, now)
		st.mu.Unlock()
		if removed > 0 {
			slog.Debug("death weight fully decayed",
				"playerID", key.(int64),
				"entriesRemoved", removed)
		}
		return true
	})
}

// OnLogin rehydrates a player's ledgers and tracker from snapshots, or
// creates defaults when none were persisted. Insertion is atomic; if the
// player is somehow already live, the existing state wins and the snapshot
// is ignored.
func (c *Coordinator) OnLogin(playerID int64, snap PlayerSnapshot) {
	st := &playerState{}
	for _, ls := range snap.Ledgers {
		st.ledgers.Store(ls.Profession, model.NewLedgerFromSnapshot(ls))
	}
	if snap.Tracker != nil {
		st.tracker = model.NewDeathTrackerFromSnapshot(*snap.Tracker)
	} else {
		st.tracker = model.NewDeathTracker(time.Now())
	}

	if _, loaded := c.players.LoadOrStore(playerID, st); loaded {
		slog.Warn("login for already-live player, keeping existing state", "playerID", playerID)
		return
	}
	slog.Debug("player progression loaded",
		"playerID", playerID,
		"ledgers", len(snap.Ledgers),
		"restoredTracker", snap.Tracker != nil)
}

// OnLogout serializes the player's state to snapshots and evicts the live
// entry. Returns false if the player was not live. A later login rehydrates
// fresh instances from the returned snapshot.
func (c *Coordinator) OnLogout(playerID int64) (PlayerSnapshot, bool) {
	v, ok := c.players.LoadAndDelete(playerID)
	if !ok {
		return PlayerSnapshot{}, false
	}
	st := v.(*playerState)

	st.mu.Lock()
	defer st.mu.Unlock()

	var snap PlayerSnapshot
	st.ledgers.Range(func(_, lv any) bool {
		snap.Ledgers = append(snap.Ledgers, lv.(*model.Ledger).Snapshot())
		return true
	})
	tracker := st.tracker.Snapshot()
	snap.Tracker = &tracker
	return snap, true
}

// SetXPDirect overwrites a ledger's XP and level, for single-threaded
// administrative use (GM commands). Serialized through the per-player mutex.
func (c *Coordinator) SetXPDirect(playerID int64, prof model.Profession, xp int64, level int32) {
	st := c.getOrCreatePlayer(playerID)

	st.mu.Lock()
	defer st.mu.Unlock()

	st.getOrCreateLedger(prof).SetDirect(xp, level)
	slog.Info("xp set directly",
		"playerID", playerID,
		"profession", prof,
		"xp", xp,
		"level", level)
}

// LedgerSnapshotFor returns a point-in-time snapshot of one ledger.
// Reporting/admin helper; returns false if the player or profession has no
// live state.
func (c *Coordinator) LedgerSnapshotFor(playerID int64, prof model.Profession) (model.LedgerSnapshot, bool) {
	v, ok := c.players.Load(playerID)
	if !ok {
		return model.LedgerSnapshot{}, false
	}
	lv, ok := v.(*playerState).ledgers.Load(prof)
	if !ok {
		return model.LedgerSnapshot{}, false
	}
	return lv.(*model.Ledger).Snapshot(), true
}

// LivePlayerCount returns how many players have live progression state.
func (c *Coordinator) LivePlayerCount() int {
	count := 0
	c.players.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
