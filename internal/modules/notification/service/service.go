package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/moodtracker/internal/entity"
	notifRepo "anoa.com/moodtracker/internal/modules/notification/repository"
	"anoa.com/moodtracker/pkg/apperror"
	"anoa.com/moodtracker/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultPageSize = 20

// Channel is the redis pub/sub channel carrying a user's live notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	// NotifyLevelUp records and pushes a level-up notice.
	NotifyLevelUp(ctx context.Context, userID uuid.UUID, newLevel, totalXP int) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	log         *logger.Logger
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, baseLog *logger.Logger) NotificationService {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		log:         baseLog.With("service", "NotificationService"),
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("%w: save notification: %v", apperror.ErrStoreUnavailable, err)
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err != nil {
			s.log.Warn("failed to encode notification", "notification_id", notification.ID, "error", err)
			return nil
		}
		// Live delivery is a courtesy; the stored row is the record.
		if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
			s.log.Warn("failed to publish notification", "user_id", notification.UserID, "error", err)
		}
	}

	return nil
}

func (s *notificationService) NotifyLevelUp(ctx context.Context, userID uuid.UUID, newLevel, totalXP int) error {
	return s.CreateNotification(ctx, &entity.Notification{
		UserID:  userID,
		Type:    entity.NotificationTypeLevelUp,
		Message: fmt.Sprintf("Level up! You reached level %d", newLevel),
		Level:   newLevel,
		XP:      totalXP,
	})
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	notifications, err := s.repo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list notifications: %v", apperror.ErrStoreUnavailable, err)
	}
	return notifications, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.repo.MarkAsRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("%w: mark notification read: %v", apperror.ErrStoreUnavailable, err)
	}
	if !found {
		return fmt.Errorf("notification %s: %w", id, apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return fmt.Errorf("%w: mark all notifications read: %v", apperror.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: count unread notifications: %v", apperror.ErrStoreUnavailable, err)
	}
	return count, nil
}
