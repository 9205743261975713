package service

import (
	"context"
	"fmt"
	"time"

	leaderboardDto "anoa.com/moodtracker/internal/modules/leaderboard/dto"
	leaderboardRepo "anoa.com/moodtracker/internal/modules/leaderboard/repository"
	progressionService "anoa.com/moodtracker/internal/modules/progression/service"
	"anoa.com/moodtracker/pkg/apperror"
	"github.com/google/uuid"
)

const (
	TimeframeAllTime = "all_time"
	TimeframeWeekly  = "weekly"
	TimeframeMonthly = "monthly"

	DefaultLimit = 10
	MaxLimit     = 50
)

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int, timeframe string) (*leaderboardDto.Leaderboard, error)
}

type leaderboardService struct {
	repo leaderboardRepo.LeaderboardRepository
	now  func() time.Time
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository) LeaderboardService {
	return &leaderboardService{repo: repo, now: time.Now}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int, timeframe string) (*leaderboardDto.Leaderboard, error) {
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	now := s.now()
	weekStart := now.AddDate(0, 0, -7)

	var (
		rows []leaderboardRepo.Standing
		err  error
	)
	switch timeframe {
	case "", TimeframeAllTime:
		timeframe = TimeframeAllTime
		rows, err = s.repo.TopAllTime(ctx, limit)
	case TimeframeWeekly:
		rows, err = s.repo.TopSince(ctx, weekStart, limit)
	case TimeframeMonthly:
		rows, err = s.repo.TopSince(ctx, now.AddDate(0, 0, -30), limit)
	default:
		return nil, fmt.Errorf("unknown timeframe %q: %w", timeframe, apperror.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load standings: %v", apperror.ErrStoreUnavailable, err)
	}

	// Activity label always reflects the last 7 days, whatever the ranking window.
	weekly := make(map[uuid.UUID]int, len(rows))
	if timeframe == TimeframeWeekly {
		for _, row := range rows {
			weekly[row.UserID] = row.Score
		}
	} else if len(rows) > 0 {
		ids := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.UserID)
		}
		weekly, err = s.repo.XPSince(ctx, ids, weekStart)
		if err != nil {
			return nil, fmt.Errorf("%w: load weekly xp: %v", apperror.ErrStoreUnavailable, err)
		}
	}

	entries := make([]leaderboardDto.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		info := progressionService.GetLevelInfo(row.TotalXP)
		entries = append(entries, leaderboardDto.LeaderboardEntry{
			Position:      i + 1,
			UserID:        row.UserID,
			XP:            row.Score,
			TotalXP:       row.TotalXP,
			Level:         info.Level,
			Progress:      info.Progress,
			WeeklyXP:      weekly[row.UserID],
			ActivityLabel: ActivityLabel(weekly[row.UserID]),
		})
	}

	return &leaderboardDto.Leaderboard{Timeframe: timeframe, Entries: entries}, nil
}
