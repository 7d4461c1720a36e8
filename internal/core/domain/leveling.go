package domain

// levelThresholds[i] is the cumulative XP needed to reach level i+1.
var levelThresholds = []int{0, 100, 250, 500, 1000, 1750, 2750, 4000, 5500, 7500}

// xpPerLevelAfterCurve applies once the table is exhausted.
const xpPerLevelAfterCurve = 2500

type LevelInfo struct {
	Level          int `json:"level"`
	CurrentXP      int `json:"current_xp"`
	XPForNextLevel int `json:"xp_for_next_level"`
	Progress       int `json:"progress"`
}

// ThresholdFor returns the cumulative XP at which level starts.
func ThresholdFor(level int) int {
	if level <= 1 {
		return 0
	}
	if level <= len(levelThresholds) {
		return levelThresholds[level-1]
	}
	last := levelThresholds[len(levelThresholds)-1]
	return last + (level-len(levelThresholds))*xpPerLevelAfterCurve
}

// LevelFor maps a total XP to its level. Negative totals count as zero.
func LevelFor(totalXP int) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}

	level := 1
	for ThresholdFor(level+1) <= totalXP {
		level++
	}

	start := ThresholdFor(level)
	span := ThresholdFor(level+1) - start
	current := totalXP - start
	return LevelInfo{
		Level:          level,
		CurrentXP:      current,
		XPForNextLevel: span,
		Progress:       Percentage(current, span),
	}
}
