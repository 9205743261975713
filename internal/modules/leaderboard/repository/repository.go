package repository

import (
	"context"
	"time"

	"anoa.com/moodtracker/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Standing is one row of a ranking: Score is the XP counted for the
// requested timeframe, TotalXP the ledger's all-time total.
type Standing struct {
	UserID  uuid.UUID
	Score   int
	TotalXP int
}

type LeaderboardRepository interface {
	TopAllTime(ctx context.Context, limit int) ([]Standing, error)
	// TopSince ranks users by XP earned at or after since. Users with no XP in the window are left out.
	TopSince(ctx context.Context, since time.Time, limit int) ([]Standing, error)
	XPSince(ctx context.Context, userIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) TopAllTime(ctx context.Context, limit int) ([]Standing, error) {
	var rows []Standing
	err := r.db.WithContext(ctx).Model(&entity.UserLedger{}).
		Select("user_id, total_xp AS score, total_xp").
		Order("total_xp DESC, user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *leaderboardRepository) TopSince(ctx context.Context, since time.Time, limit int) ([]Standing, error) {
	var rows []Standing
	err := r.db.WithContext(ctx).Table("xp_transactions AS t").
		Select("t.user_id AS user_id, SUM(t.amount) AS score, l.total_xp AS total_xp").
		Joins("JOIN user_ledgers l ON l.user_id = t.user_id").
		Where("t.created_at >= ?", since).
		Group("t.user_id, l.total_xp").
		Having("SUM(t.amount) > 0").
		Order("score DESC, user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *leaderboardRepository) XPSince(ctx context.Context, userIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int, error) {
	result := make(map[uuid.UUID]int, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	type sumRow struct {
		UserID uuid.UUID
		Score  int
	}
	var rows []sumRow
	err := r.db.WithContext(ctx).Model(&entity.XPTransaction{}).
		Select("user_id, SUM(amount) AS score").
		Where("user_id IN ? AND created_at >= ?", userIDs, since).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.UserID] = row.Score
	}
	return result, nil
}
