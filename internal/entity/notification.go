package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeLevelUp   = "level_up"
	NotificationTypeMilestone = "streak_milestone"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_notif_user_read,priority:1;not null" json:"user_id"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	Level     int       `json:"level,omitempty"`
	XP        int       `json:"xp,omitempty"`
	IsRead    bool      `gorm:"default:false;index:idx_notif_user_read,priority:2" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
