package dto

import (
	"time"

	"anoa.com/moodtracker/internal/modules/mood/analytics"
	progressionDto "anoa.com/moodtracker/internal/modules/progression/dto"
	"github.com/google/uuid"
)

type LogMoodRequest struct {
	Mood       *int       `json:"mood" binding:"required,min=0,max=100"`
	Note       string     `json:"note" binding:"omitempty,max=2000"`
	RecordedAt *time.Time `json:"recorded_at"`
}

type MoodEntryResponse struct {
	ID         uuid.UUID `json:"id"`
	Mood       int       `json:"mood"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

type LogMoodResponse struct {
	Entry MoodEntryResponse            `json:"entry"`
	Stats analytics.Snapshot           `json:"stats"`
	XP    []progressionDto.AwardResult `json:"xp"`
}

type ListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type SearchQuery struct {
	Q     string `form:"q" binding:"required,max=200"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}
