package domain_test

import (
	"testing"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		xp       int
		level    int
		current  int
		next     int
		progress int
	}{
		{-50, 1, 0, 100, 0},
		{0, 1, 0, 100, 0},
		{99, 1, 99, 100, 99},
		{100, 2, 0, 150, 0},
		{260, 3, 10, 250, 4},
		{7499, 9, 1999, 2000, 100},
		{7500, 10, 0, 2500, 0},
		{12500, 12, 0, 2500, 0},
	}
	for _, tt := range tests {
		got := domain.LevelFor(tt.xp)
		assert.Equal(t, tt.level, got.Level, "xp=%d", tt.xp)
		assert.Equal(t, tt.current, got.CurrentXP, "xp=%d", tt.xp)
		assert.Equal(t, tt.next, got.XPForNextLevel, "xp=%d", tt.xp)
		assert.Equal(t, tt.progress, got.Progress, "xp=%d", tt.xp)
	}
}

func TestLevelFor_Monotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 20000; xp += 25 {
		lvl := domain.LevelFor(xp).Level
		assert.GreaterOrEqual(t, lvl, prev, "xp=%d", xp)
		prev = lvl
	}
}
