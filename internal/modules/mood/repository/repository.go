package repository

import (
	"context"
	"time"

	"anoa.com/moodtracker/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MoodRepository interface {
	Create(ctx context.Context, entry *entity.MoodEntry) error
	// ListByUser returns entries newest first. limit <= 0 returns all of them.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.MoodEntry, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// ActiveUserIDs lists users who recorded a mood at or after since.
	ActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

type moodRepository struct {
	db *gorm.DB
}

func NewMoodRepository(db *gorm.DB) MoodRepository {
	return &moodRepository{db: db}
}

func (r *moodRepository) Create(ctx context.Context, entry *entity.MoodEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *moodRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.MoodEntry, error) {
	var entries []entity.MoodEntry
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *moodRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.MoodEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *moodRepository) ActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.MoodEntry{}).
		Distinct("user_id").
		Where("recorded_at >= ?", since).
		Pluck("user_id", &ids).Error
	return ids, err
}
