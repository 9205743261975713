package service

import (
	"context"
	"errors"
	"testing"
	"time"

	leaderboardRepo "anoa.com/moodtracker/internal/modules/leaderboard/repository"
	"anoa.com/moodtracker/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	allTime []leaderboardRepo.Standing
	since   []leaderboardRepo.Standing
	weekly  map[uuid.UUID]int
	err     error

	gotSince time.Time
	gotLimit int
}

func (s *stubRepo) TopAllTime(_ context.Context, limit int) ([]leaderboardRepo.Standing, error) {
	s.gotLimit = limit
	return s.allTime, s.err
}

func (s *stubRepo) TopSince(_ context.Context, since time.Time, limit int) ([]leaderboardRepo.Standing, error) {
	s.gotSince, s.gotLimit = since, limit
	return s.since, s.err
}

func (s *stubRepo) XPSince(_ context.Context, _ []uuid.UUID, _ time.Time) (map[uuid.UUID]int, error) {
	return s.weekly, nil
}

func newTestService(repo *stubRepo, now time.Time) *leaderboardService {
	svc := NewLeaderboardService(repo).(*leaderboardService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestGetLeaderboard_AllTime(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	repo := &stubRepo{
		allTime: []leaderboardRepo.Standing{
			{UserID: a, Score: 450, TotalXP: 450},
			{UserID: b, Score: 120, TotalXP: 120},
		},
		weekly: map[uuid.UUID]int{a: 160},
	}
	svc := newTestService(repo, time.Now())

	board, err := svc.GetLeaderboard(context.Background(), 0, "")
	require.NoError(t, err)
	require.Equal(t, DefaultLimit, repo.gotLimit)
	require.Equal(t, TimeframeAllTime, board.Timeframe)
	require.Len(t, board.Entries, 2)

	first := board.Entries[0]
	require.Equal(t, 1, first.Position)
	require.Equal(t, 3, first.Level) // 300 XP reaches level 3
	require.Equal(t, 160, first.WeeklyXP)
	require.Equal(t, "on_fire", first.ActivityLabel)

	second := board.Entries[1]
	require.Equal(t, 2, second.Position)
	require.Equal(t, 2, second.Level)
	require.Zero(t, second.WeeklyXP)
	require.Empty(t, second.ActivityLabel)
}

func TestGetLeaderboard_Windows(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	u := uuid.New()
	repo := &stubRepo{since: []leaderboardRepo.Standing{{UserID: u, Score: 40, TotalXP: 500}}}
	svc := newTestService(repo, now)

	board, err := svc.GetLeaderboard(context.Background(), 500, TimeframeWeekly)
	require.NoError(t, err)
	require.Equal(t, MaxLimit, repo.gotLimit)
	require.True(t, repo.gotSince.Equal(now.AddDate(0, 0, -7)))
	require.Equal(t, 40, board.Entries[0].XP)
	require.Equal(t, 40, board.Entries[0].WeeklyXP)
	require.Equal(t, "active", board.Entries[0].ActivityLabel)

	_, err = svc.GetLeaderboard(context.Background(), 5, TimeframeMonthly)
	require.NoError(t, err)
	require.True(t, repo.gotSince.Equal(now.AddDate(0, 0, -30)))
}

func TestGetLeaderboard_Errors(t *testing.T) {
	svc := newTestService(&stubRepo{}, time.Now())
	_, err := svc.GetLeaderboard(context.Background(), 10, "yearly")
	require.ErrorIs(t, err, apperror.ErrInvalidInput)

	svc = newTestService(&stubRepo{err: errors.New("connection refused")}, time.Now())
	_, err = svc.GetLeaderboard(context.Background(), 10, TimeframeAllTime)
	require.ErrorIs(t, err, apperror.ErrStoreUnavailable)
}

func TestActivityLabel(t *testing.T) {
	require.Equal(t, "", ActivityLabel(0))
	require.Equal(t, "active", ActivityLabel(WeeklyActive))
	require.Equal(t, "trending", ActivityLabel(WeeklyTrending))
	require.Equal(t, "on_fire", ActivityLabel(WeeklyOnFire+1))
}
