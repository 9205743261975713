package dto

import "github.com/google/uuid"

// LeaderboardEntry is a single ranked user. Position is 1-based.
type LeaderboardEntry struct {
	Position      int       `json:"position"`
	UserID        uuid.UUID `json:"user_id"`
	XP            int       `json:"xp"` // XP counted for the requested timeframe
	TotalXP       int       `json:"total_xp"`
	Level         int       `json:"level"`
	Progress      float64   `json:"progress"`
	WeeklyXP      int       `json:"weekly_xp"`
	ActivityLabel string    `json:"activity_label,omitempty"`
}

type Leaderboard struct {
	Timeframe string             `json:"timeframe"`
	Entries   []LeaderboardEntry `json:"entries"`
}
