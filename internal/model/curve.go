package model

// LevelCurve maps cumulative XP to a profession level and back.
// Implementations must be monotonic non-decreasing step functions.
// The built-in table lives in internal/data; configs may supply their own
// thresholds via NewTableCurve.
type LevelCurve interface {
	// LevelForXP returns the level corresponding to the given cumulative XP.
	// startLevel is a scan hint (the caller's last known level); passing a
	// stale-but-lower value is always safe.
	LevelForXP(xp int64, startLevel int32) int32

	// XPForLevel returns cumulative XP required to reach the given level.
	// Returns 0 for level <= 1.
	XPForLevel(level int32) int64
}

// TableCurve is a LevelCurve backed by a cumulative XP threshold table.
// Index = level; thresholds[2] is the XP required for level 2.
// Levels 0 and 1 require 0 XP.
type TableCurve struct {
	thresholds []int64
	maxLevel   int32
}

// NewTableCurve builds a TableCurve from cumulative thresholds.
// The slice is copied; index 0 and 1 are forced to zero so that a fresh
// ledger (xp=0) always maps to level 1.
func NewTableCurve(thresholds []int64) *TableCurve {
	t := make([]int64, len(thresholds))
	copy(t, thresholds)
	if len(t) > 0 {
		t[0] = 0
	}
	if len(t) > 1 {
		t[1] = 0
	}
	maxLevel := int32(len(t)) - 1
	if maxLevel < 1 {
		maxLevel = 1
	}
	return &TableCurve{thresholds: t, maxLevel: maxLevel}
}

// MaxLevel returns the highest level the table can produce.
func (c *TableCurve) MaxLevel() int32 { return c.maxLevel }

// LevelForXP scans upward from startLevel to find the highest level whose
// threshold is <= xp.
func (c *TableCurve) LevelForXP(xp int64, startLevel int32) int32 {
	if startLevel < 1 {
		startLevel = 1
	}
	level := startLevel
	if level > c.maxLevel {
		return c.maxLevel
	}
	for level < c.maxLevel {
		if c.thresholds[level+1] > xp {
			break
		}
		level++
	}
	return level
}

// XPForLevel returns cumulative XP required to reach the given level.
// Levels above the table cap are clamped to the cap.
func (c *TableCurve) XPForLevel(level int32) int64 {
	if level <= 1 {
		return 0
	}
	if level > c.maxLevel {
		level = c.maxLevel
	}
	return c.thresholds[level]
}
