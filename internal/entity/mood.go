package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MoodEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index:idx_mood_user_recorded,priority:1;not null" json:"user_id"`
	Mood       int       `gorm:"not null" json:"mood"` // 0-100
	Note       *string   `gorm:"type:text" json:"note,omitempty"`
	RecordedAt time.Time `gorm:"index:idx_mood_user_recorded,priority:2;not null" json:"recorded_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *MoodEntry) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
