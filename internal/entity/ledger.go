package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserLedger holds a user's XP progression and the guards that keep one-off
// bonuses idempotent. Level is always derived from TotalXP on write.
type UserLedger struct {
	UserID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	TotalXP             int        `gorm:"not null;default:0" json:"total_xp"`
	Level               int        `gorm:"not null;default:1" json:"level"`
	LastDailyLoginAward *time.Time `gorm:"column:last_daily_login_award" json:"last_daily_login_award,omitempty"`
	LastStreak7Award    *time.Time `gorm:"column:last_streak7_award" json:"last_streak7_award,omitempty"`
	LastStreak30Award   *time.Time `gorm:"column:last_streak30_award" json:"last_streak30_award,omitempty"`
	Version             int64      `gorm:"not null;default:0" json:"-"` // optimistic concurrency stamp
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// LedgerArticleRead is one member of a ledger's read-article set.
type LedgerArticleRead struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	ArticleID string    `gorm:"size:100;primaryKey" json:"article_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// XPTransaction is an append-only audit record of a single award.
type XPTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index:idx_xp_user_date,priority:1;not null" json:"user_id"`
	Amount      int       `gorm:"not null" json:"amount"`
	Source      string    `gorm:"size:50;not null;index" json:"source"` // see progression service catalogue
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"index:idx_xp_user_date,priority:2" json:"created_at"`
}
