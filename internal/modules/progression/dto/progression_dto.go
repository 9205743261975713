package dto

import "time"

// AwardResult is what every award call reports back. Failures are results too:
// Success is false and Err carries the classified cause for errors.Is checks.
type AwardResult struct {
	Success   bool   `json:"success"`
	Source    string `json:"source"`
	XPAwarded int    `json:"xp_awarded"`
	LeveledUp bool   `json:"leveled_up"`
	NewLevel  int    `json:"new_level"`
	TotalXP   int    `json:"total_xp"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

type TransactionResponse struct {
	ID          uint      `json:"id"`
	Amount      int       `json:"amount"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type XPStats struct {
	TotalXP            int       `json:"total_xp"`
	Level              int       `json:"level"`
	LevelInfo          LevelInfo `json:"level_info"`
	XPLast7Days        int       `json:"xp_last_7_days"`
	XPLast30Days       int       `json:"xp_last_30_days"`
	MostFrequentSource string    `json:"most_frequent_source"`
}

type LevelInfo struct {
	Level         int     `json:"level"`
	CurrentXP     int     `json:"current_xp"`
	XPToNextLevel int     `json:"xp_to_next_level"`
	Progress      float64 `json:"progress"`
	TotalXP       int     `json:"total_xp"`
}

type GameCompletionRequest struct {
	Game string `json:"game" binding:"required,oneof=breathing color_matching"`
	Tier string `json:"tier" binding:"omitempty,oneof=zen chill flow"`
}

type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
