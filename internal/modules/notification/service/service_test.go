package service

import (
	"context"
	"testing"

	"anoa.com/moodtracker/internal/entity"
	notifRepo "anoa.com/moodtracker/internal/modules/notification/repository"
	"anoa.com/moodtracker/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) NotificationService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&entity.Notification{}))

	return NewNotificationService(notifRepo.NewNotificationRepository(db), nil, nil)
}

func TestNotifyLevelUpAndRead(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.NotifyLevelUp(ctx, userID, 3, 320))
	require.NoError(t, svc.NotifyLevelUp(ctx, userID, 4, 610))

	count, err := svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	list, err := svc.GetNotifications(ctx, userID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, entity.NotificationTypeLevelUp, list[0].Type)

	// Someone else cannot mark it.
	err = svc.MarkAsRead(ctx, uuid.New(), list[0].ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, svc.MarkAsRead(ctx, userID, list[0].ID))
	count, err = svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	require.NoError(t, svc.MarkAllAsRead(ctx, userID))
	count, err = svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("7d1b5d7e-3c1e-4b8a-9f43-0a9a3c1f2e11")
	require.Equal(t, "user_notifications:7d1b5d7e-3c1e-4b8a-9f43-0a9a3c1f2e11", Channel(id))
}
