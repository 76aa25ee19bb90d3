package data

import "github.com/emberforge/professions/internal/model"

// MaxProfessionLevel is the maximum achievable level in any profession.
const MaxProfessionLevel = 50

// ProfessionExperienceTable holds cumulative XP required to reach each
// profession level. Index = level (0-50). Level 0 and 1 require 0 XP.
// Per-level cost grows as ~50*L^1.8, rounded to a multiple of 5.
var ProfessionExperienceTable = [51]int64{
	0,      // 0 (unused)
	0,      // 1
	50,     // 2
	225,    // 3
	585,    // 4
	1190,   // 5
	2095,   // 6
	3355,   // 7
	5015,   // 8
	7125,   // 9
	9735,   // 10
	12890,  // 11
	16635,  // 12
	21015,  // 13
	26075,  // 14
	31855,  // 15
	38400,  // 16
	45750,  // 17
	53950,  // 18
	63040,  // 19
	73055,  // 20
	84040,  // 21
	96035,  // 22
	109075, // 23
	123205, // 24
	138460, // 25
	154875, // 26
	172490, // 27
	191345, // 28
	211475, // 29
	232920, // 30
	255710, // 31
	279890, // 32
	305490, // 33
	332550, // 34
	361100, // 35
	391180, // 36
	422825, // 37
	456070, // 38
	490950, // 39
	527500, // 40
	565755, // 41
	605750, // 42
	647515, // 43
	691090, // 44
	736505, // 45
	783795, // 46
	832990, // 47
	884130, // 48
	937245, // 49
	992365, // 50
}

// GetExpForLevel returns cumulative XP required to reach the given level.
// Returns 0 for level <= 1. Returns the cap for level > MaxProfessionLevel.
func GetExpForLevel(level int32) int64 {
	if level <= 1 {
		return 0
	}
	if level > MaxProfessionLevel {
		level = MaxProfessionLevel
	}
	return ProfessionExperienceTable[level]
}

// GetLevelForExp returns the level corresponding to the given cumulative XP.
// Scans upward from startLevel to find the highest level whose threshold is <= exp.
func GetLevelForExp(exp int64, startLevel int32) int32 {
	if startLevel < 1 {
		startLevel = 1
	}
	level := startLevel
	for level < MaxProfessionLevel {
		if ProfessionExperienceTable[level+1] > exp {
			break
		}
		level++
	}
	return level
}

// DefaultCurve returns a LevelCurve backed by the built-in table.
// Used when the config does not override curve thresholds.
func DefaultCurve() model.LevelCurve {
	return model.NewTableCurve(ProfessionExperienceTable[:])
}
