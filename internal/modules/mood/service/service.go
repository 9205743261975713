package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"anoa.com/moodtracker/internal/entity"
	"anoa.com/moodtracker/internal/modules/mood/analytics"
	moodDto "anoa.com/moodtracker/internal/modules/mood/dto"
	moodRepo "anoa.com/moodtracker/internal/modules/mood/repository"
	progressionDto "anoa.com/moodtracker/internal/modules/progression/dto"
	search "anoa.com/moodtracker/internal/modules/search/service"
	"anoa.com/moodtracker/pkg/apperror"
	"anoa.com/moodtracker/pkg/logger"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	DefaultListLimit   = 30
	DefaultSearchLimit = 20

	// clocks drift; anything further ahead than this is rejected
	maxFutureSkew = 5 * time.Minute
)

// XPAwarder is the slice of the progression engine that mood logging drives.
type XPAwarder interface {
	AwardMoodEntry(ctx context.Context, userID uuid.UUID) []progressionDto.AwardResult
	AwardStreakMilestones(ctx context.Context, userID uuid.UUID, streakDays int) []progressionDto.AwardResult
}

// NoteIndex is the search side of mood notes.
type NoteIndex interface {
	IndexMoodEntry(ctx context.Context, entry *entity.MoodEntry) error
	SearchNotes(ctx context.Context, userID uuid.UUID, query string, limit int) ([]search.NoteHit, error)
	GenerateSearchToken(userID uuid.UUID) (string, error)
}

type MoodService interface {
	LogMood(ctx context.Context, userID uuid.UUID, req moodDto.LogMoodRequest) (*moodDto.LogMoodResponse, error)
	ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]moodDto.MoodEntryResponse, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*analytics.Snapshot, error)
	SearchNotes(ctx context.Context, userID uuid.UUID, query string, limit int) ([]search.NoteHit, error)
	SearchToken(ctx context.Context, userID uuid.UUID) (string, error)
	// CheckStreakMilestones recomputes the user's streak and credits any milestone it reached.
	CheckStreakMilestones(ctx context.Context, userID uuid.UUID) ([]progressionDto.AwardResult, error)
}

type moodService struct {
	repo      moodRepo.MoodRepository
	xp        XPAwarder
	index     NoteIndex
	sanitizer *bluemonday.Policy
	loc       *time.Location
	log       *logger.Logger
	now       func() time.Time
}

// NewMoodService wires mood logging. xp and index may be nil.
func NewMoodService(repo moodRepo.MoodRepository, xp XPAwarder, index NoteIndex, loc *time.Location, baseLog *logger.Logger) MoodService {
	if loc == nil {
		loc = time.UTC
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &moodService{
		repo:      repo,
		xp:        xp,
		index:     index,
		sanitizer: bluemonday.StrictPolicy(),
		loc:       loc,
		log:       baseLog.With("service", "MoodService"),
		now:       time.Now,
	}
}

func (s *moodService) LogMood(ctx context.Context, userID uuid.UUID, req moodDto.LogMoodRequest) (*moodDto.LogMoodResponse, error) {
	if req.Mood == nil || *req.Mood < 0 || *req.Mood > 100 {
		return nil, fmt.Errorf("mood must be between 0 and 100: %w", apperror.ErrInvalidInput)
	}

	now := s.now()
	recordedAt := now
	if req.RecordedAt != nil {
		if req.RecordedAt.After(now.Add(maxFutureSkew)) {
			return nil, fmt.Errorf("recorded_at is in the future: %w", apperror.ErrInvalidInput)
		}
		recordedAt = *req.RecordedAt
	}

	entry := &entity.MoodEntry{
		UserID:     userID,
		Mood:       *req.Mood,
		RecordedAt: recordedAt.UTC(),
	}
	if note := s.cleanNote(req.Note); note != "" {
		entry.Note = &note
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: save mood entry: %v", apperror.ErrStoreUnavailable, err)
	}
	s.log.Info("mood logged", "user_id", userID, "entry_id", entry.ID, "mood", entry.Mood)

	if s.index != nil {
		if err := s.index.IndexMoodEntry(ctx, entry); err != nil {
			s.log.Warn("failed to index mood entry", "entry_id", entry.ID, "error", err)
		}
	}

	resp := &moodDto.LogMoodResponse{
		Entry: toEntryResponse(*entry),
		XP:    []progressionDto.AwardResult{},
	}
	if s.xp != nil {
		resp.XP = append(resp.XP, s.xp.AwardMoodEntry(ctx, userID)...)
	}

	entries, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		// The entry is saved; stats are a bonus on top of it.
		s.log.Warn("failed to load mood history after logging", "user_id", userID, "error", err)
		resp.Stats = analytics.EmptySnapshot()
		return resp, nil
	}

	resp.Stats = analytics.CalculateAllStats(toAnalyticsEntries(entries), now, s.loc)
	resp.XP = append(resp.XP, s.awardStreak(ctx, userID, resp.Stats.CurrentStreak)...)
	return resp, nil
}

func (s *moodService) ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]moodDto.MoodEntryResponse, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	entries, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list mood entries: %v", apperror.ErrStoreUnavailable, err)
	}

	out := make([]moodDto.MoodEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out, nil
}

func (s *moodService) GetStats(ctx context.Context, userID uuid.UUID) (*analytics.Snapshot, error) {
	entries, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: list mood entries: %v", apperror.ErrStoreUnavailable, err)
	}
	snap := analytics.CalculateAllStats(toAnalyticsEntries(entries), s.now(), s.loc)
	return &snap, nil
}

func (s *moodService) SearchNotes(ctx context.Context, userID uuid.UUID, query string, limit int) ([]search.NoteHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query: %w", apperror.ErrInvalidInput)
	}
	if s.index == nil {
		return nil, fmt.Errorf("search is not configured: %w", apperror.ErrStoreUnavailable)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return s.index.SearchNotes(ctx, userID, query, limit)
}

func (s *moodService) SearchToken(_ context.Context, userID uuid.UUID) (string, error) {
	if s.index == nil {
		return "", fmt.Errorf("search is not configured: %w", apperror.ErrStoreUnavailable)
	}
	return s.index.GenerateSearchToken(userID)
}

func (s *moodService) CheckStreakMilestones(ctx context.Context, userID uuid.UUID) ([]progressionDto.AwardResult, error) {
	entries, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: list mood entries: %v", apperror.ErrStoreUnavailable, err)
	}
	streak := analytics.CurrentStreak(toAnalyticsEntries(entries), s.now(), s.loc)
	return s.awardStreak(ctx, userID, streak), nil
}

// awardStreak keeps only the milestones that were actually credited.
func (s *moodService) awardStreak(ctx context.Context, userID uuid.UUID, streak int) []progressionDto.AwardResult {
	if s.xp == nil {
		return nil
	}
	var credited []progressionDto.AwardResult
	for _, res := range s.xp.AwardStreakMilestones(ctx, userID, streak) {
		if res.Success {
			credited = append(credited, res)
		}
	}
	return credited
}

func (s *moodService) cleanNote(note string) string {
	clean := html.UnescapeString(s.sanitizer.Sanitize(note))
	return strings.Join(strings.Fields(clean), " ")
}

func toEntryResponse(e entity.MoodEntry) moodDto.MoodEntryResponse {
	resp := moodDto.MoodEntryResponse{
		ID:         e.ID,
		Mood:       e.Mood,
		RecordedAt: e.RecordedAt,
	}
	if e.Note != nil {
		resp.Note = *e.Note
	}
	return resp
}

func toAnalyticsEntries(entries []entity.MoodEntry) []analytics.Entry {
	out := make([]analytics.Entry, 0, len(entries))
	for _, e := range entries {
		entry := analytics.Entry{Timestamp: e.RecordedAt, Mood: e.Mood}
		if e.Note != nil {
			entry.Note = *e.Note
		}
		out = append(out, entry)
	}
	return out
}
