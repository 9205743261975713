package service

import (
	"context"
	"errors"

	"anoa.com/moodtracker/internal/modules/mood/analytics"
	progressionDto "anoa.com/moodtracker/internal/modules/progression/dto"
	"anoa.com/moodtracker/pkg/apperror"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type MoodStatsSource interface {
	GetStats(ctx context.Context, userID uuid.UUID) (*analytics.Snapshot, error)
}

type XPStatsSource interface {
	GetXPStats(ctx context.Context, userID uuid.UUID) (*progressionDto.XPStats, error)
}

type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Dashboard struct {
	Mood          *analytics.Snapshot     `json:"mood"`
	XP            *progressionDto.XPStats `json:"xp"` // nil until the ledger is opened
	UnreadNotices int64                   `json:"unread_notifications"`
}

type StatService interface {
	GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
}

type statService struct {
	moods  MoodStatsSource
	xp     XPStatsSource
	unread UnreadCounter
}

func NewStatService(moods MoodStatsSource, xp XPStatsSource, unread UnreadCounter) StatService {
	return &statService{
		moods:  moods,
		xp:     xp,
		unread: unread,
	}
}

func (s *statService) GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	var out Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		snap, err := s.moods.GetStats(gctx, userID)
		if err != nil {
			return err
		}
		out.Mood = snap
		return nil
	})

	g.Go(func() error {
		stats, err := s.xp.GetXPStats(gctx, userID)
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out.XP = stats
		return nil
	})

	if s.unread != nil {
		g.Go(func() error {
			count, err := s.unread.UnreadCount(gctx, userID)
			if err != nil {
				return err
			}
			out.UnreadNotices = count
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
