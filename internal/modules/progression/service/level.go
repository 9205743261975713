package service

import "math"

// LevelInfo describes where a total XP value sits on the leveling curve.
type LevelInfo struct {
	Level         int     `json:"level"`
	CurrentXP     int     `json:"current_xp"`       // XP earned inside the current level
	XPToNextLevel int     `json:"xp_to_next_level"` // size of the current level band
	Progress      float64 `json:"progress"`         // CurrentXP / XPToNextLevel * 100, not clamped
	TotalXP       int     `json:"total_xp"`
}

// XPForLevelUp is the XP needed to advance from level to level+1.
func XPForLevelUp(level int) int {
	return 100 * level
}

// CumulativeXPForLevel is the total XP needed to reach level.
func CumulativeXPForLevel(level int) int {
	total := 0
	for l := 1; l < level; l++ {
		total += XPForLevelUp(l)
	}
	return total
}

// CalculateLevel walks the curve band by band so the increment rule can change freely.
func CalculateLevel(totalXP int) int {
	level := 1
	remaining := totalXP
	for remaining >= XPForLevelUp(level) {
		remaining -= XPForLevelUp(level)
		level++
	}
	return level
}

func GetLevelInfo(totalXP int) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}
	level := CalculateLevel(totalXP)
	current := totalXP - CumulativeXPForLevel(level)
	next := XPForLevelUp(level)

	progress := float64(current) / float64(next) * 100

	return LevelInfo{
		Level:         level,
		CurrentXP:     current,
		XPToNextLevel: next,
		// Round progress to 2 decimal places
		Progress: math.Round(progress*100) / 100,
		TotalXP:  totalXP,
	}
}
