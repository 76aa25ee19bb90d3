package data

import "testing"

func TestGetExpForLevel(t *testing.T) {
	tests := []struct {
		level int32
		want  int64
	}{
		{0, 0},
		{1, 0},
		{2, 50},
		{5, 1190},
		{10, 9735},
		{25, 138460},
		{50, 992365},
		{100, 992365}, // clamped to 50
	}

	for _, tt := range tests {
		got := GetExpForLevel(tt.level)
		if got != tt.want {
			t.Errorf("GetExpForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestGetLevelForExp(t *testing.T) {
	tests := []struct {
		exp        int64
		startLevel int32
		want       int32
	}{
		{0, 1, 1},
		{49, 1, 1},          // just below level 2
		{50, 1, 2},          // exactly level 2
		{51, 1, 2},          // just above level 2
		{9735, 1, 10},       // exactly level 10
		{12889, 1, 10},      // just below level 11
		{992365, 1, 50},     // exactly level 50
		{9999999999, 1, 50}, // way above — capped at 50
		{138460, 20, 25},    // start from level 20, should find 25
		{138460, 25, 25},    // start from exact level
	}

	for _, tt := range tests {
		got := GetLevelForExp(tt.exp, tt.startLevel)
		if got != tt.want {
			t.Errorf("GetLevelForExp(%d, %d) = %d, want %d", tt.exp, tt.startLevel, got, tt.want)
		}
	}
}

func TestProfessionExperienceTableMonotonic(t *testing.T) {
	for i := 1; i < MaxProfessionLevel; i++ {
		if ProfessionExperienceTable[i] >= ProfessionExperienceTable[i+1] {
			t.Errorf("ProfessionExperienceTable[%d]=%d >= ProfessionExperienceTable[%d]=%d — must be strictly increasing",
				i, ProfessionExperienceTable[i], i+1, ProfessionExperienceTable[i+1])
		}
	}
}

func TestDefaultCurveMatchesTable(t *testing.T) {
	curve := DefaultCurve()
	for level := int32(1); level <= MaxProfessionLevel; level++ {
		exp := GetExpForLevel(level)
		if got := curve.LevelForXP(exp, 1); got != level {
			t.Errorf("DefaultCurve().LevelForXP(%d, 1) = %d, want %d", exp, got, level)
		}
	}
}
