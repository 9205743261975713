package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/moodtracker/internal/entity"
	progressionDto "anoa.com/moodtracker/internal/modules/progression/dto"
	ledgerRepo "anoa.com/moodtracker/internal/modules/progression/repository"
	"anoa.com/moodtracker/pkg/apperror"
	"anoa.com/moodtracker/pkg/logger"
	"github.com/google/uuid"
)

const (
	Streak7Threshold  = 7
	Streak30Threshold = 30

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100

	maxAwardAttempts = 5
	maxArticleIDLen  = 100
)

// LevelUpNotifier is told about level-ups. Delivery is best effort.
type LevelUpNotifier interface {
	NotifyLevelUp(ctx context.Context, userID uuid.UUID, newLevel, totalXP int) error
}

type ProgressionService interface {
	OpenLedger(ctx context.Context, userID uuid.UUID) (*entity.UserLedger, error)

	// AwardXP credits source to the user. customAmount, when set, replaces the catalogue amount.
	AwardXP(ctx context.Context, userID uuid.UUID, source Source, customAmount *int) progressionDto.AwardResult
	AwardDailyLogin(ctx context.Context, userID uuid.UUID) progressionDto.AwardResult
	AwardArticleRead(ctx context.Context, userID uuid.UUID, articleID string) progressionDto.AwardResult
	AwardStreakMilestones(ctx context.Context, userID uuid.UUID, streakDays int) []progressionDto.AwardResult
	AwardGameCompletion(ctx context.Context, userID uuid.UUID, game Game, tier Tier) progressionDto.AwardResult
	// AwardMoodEntry credits a logged mood and, the first time ever, the first-mood bonus.
	AwardMoodEntry(ctx context.Context, userID uuid.UUID) []progressionDto.AwardResult
	AwardFriendAdded(ctx context.Context, userID uuid.UUID) progressionDto.AwardResult
	AwardFriendInviteJoined(ctx context.Context, userID uuid.UUID) progressionDto.AwardResult

	GetXPHistory(ctx context.Context, userID uuid.UUID, limit int) ([]progressionDto.TransactionResponse, error)
	GetXPStats(ctx context.Context, userID uuid.UUID) (*progressionDto.XPStats, error)
	GetLevel(ctx context.Context, userID uuid.UUID) (*progressionDto.LevelInfo, error)
}

type progressionService struct {
	repo     ledgerRepo.LedgerRepository
	notifier LevelUpNotifier
	throttle GameThrottle
	loc      *time.Location
	log      *logger.Logger
	now      func() time.Time
}

// NewProgressionService wires the engine. notifier and throttle may be nil.
// loc is the fixed reference timezone for calendar-day checks.
func NewProgressionService(repo ledgerRepo.LedgerRepository, notifier LevelUpNotifier, throttle GameThrottle, loc *time.Location, baseLog *logger.Logger) ProgressionService {
	if loc == nil {
		loc = time.UTC
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &progressionService{
		repo:     repo,
		notifier: notifier,
		throttle: throttle,
		loc:      loc,
		log:      baseLog.With("service", "ProgressionService"),
		now:      time.Now,
	}
}

// awardGuard inspects the freshly loaded ledger before the write. It may stamp guard
// fields on the ledger, or return an error (typically apperror.ErrAlreadyCredited) to abort.
type awardGuard func(ctx context.Context, ledger *entity.UserLedger, now time.Time) error

type awardPlan struct {
	source Source
	amount int
	guard  awardGuard
	// message reported when guard returns ErrAlreadyCredited
	creditedMessage string
}

func (s *progressionService) OpenLedger(ctx context.Context, userID uuid.UUID) (*entity.UserLedger, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id: %w", apperror.ErrInvalidInput)
	}
	ledger := &entity.UserLedger{UserID: userID, TotalXP: 0, Level: 1}
	created, err := s.repo.CreateLedger(ctx, ledger)
	if err != nil {
		return nil, fmt.Errorf("%w: create ledger: %v", apperror.ErrStoreUnavailable, err)
	}
	if created {
		s.log.Info("ledger opened", "user_id", userID)
		return ledger, nil
	}
	existing, err := s.repo.FindLedger(ctx, userID)
	if err != nil {
		return nil, s.storeErr("find ledger", err)
	}
	return existing, nil
}

func (s *progressionService) AwardXP(ctx context.Context, userID uuid.UUID, source Source, customAmount *int) progressionDto.AwardResult {
	amount, ok := source.Amount()
	if !ok {
		return s.failure(userID, source, fmt.Errorf("unknown xp source %q: %w", source, apperror.ErrInvalidInput), "Unknown XP source")
	}
	if customAmount != nil {
		if *customAmount < 0 {
			return s.failure(userID, source, fmt.Errorf("negative xp amount %d: %w", *customAmount, apperror.ErrInvalidInput), "XP amount must not be negative")
		}
		amount = *customAmount
	}
	return s.apply(ctx, userID, awardPlan{source: source, amount: amount})
}

func (s *progressionService) AwardDailyLogin(ctx context.Context, userID uuid.UUID) progressionDto.AwardResult {
	amount, _ := SourceDailyLogin.Amount()
	return s.apply(ctx, userID, awardPlan{
		source:          SourceDailyLogin,
		amount:          amount,
		creditedMessage: "Daily login bonus already claimed today",
		guard: func(_ context.Context, ledger *entity.UserLedger, now time.Time) error {
			if DailyLoginClaimed(ledger, now, s.loc) {
				return apperror.ErrAlreadyCredited
			}
			stamp := now
			ledger.LastDailyLoginAward = &stamp
			return nil
		},
	})
}

func (s *progressionService) AwardArticleRead(ctx context.Context, userID uuid.UUID, articleID string) progressionDto.AwardResult {
	articleID = strings.TrimSpace(articleID)
	if articleID == "" || len(articleID) > maxArticleIDLen {
		return s.failure(userID, SourceArticleRead, fmt.Errorf("article id: %w", apperror.ErrInvalidInput), "Invalid article id")
	}

	// The read set hangs off the ledger, so the ledger must exist first.
	if _, err := s.repo.FindLedger(ctx, userID); err != nil {
		return s.ledgerLoadFailure(userID, SourceArticleRead, err)
	}

	added, err := s.repo.AddArticleRead(ctx, userID, articleID)
	if err != nil {
		return s.failure(userID, SourceArticleRead, s.storeErr("mark article read", err), "XP could not be awarded right now")
	}
	if !added {
		return s.failure(userID, SourceArticleRead, fmt.Errorf("article %s: %w", articleID, apperror.ErrAlreadyCredited), "Article already read")
	}

	amount, _ := SourceArticleRead.Amount()
	result := s.apply(ctx, userID, awardPlan{source: SourceArticleRead, amount: amount})
	if !result.Success {
		// Give the read back so the article can be credited on a later attempt.
		if err := s.repo.RemoveArticleRead(ctx, userID, articleID); err != nil {
			s.log.Error("failed to roll back article read mark", "user_id", userID, "article_id", articleID, "error", err)
		}
	}
	return result
}

func (s *progressionService) AwardStreakMilestones(ctx context.Context, userID uuid.UUID, streakDays int) []progressionDto.AwardResult {
	var results []progressionDto.AwardResult

	if streakDays >= Streak7Threshold {
		amount, _ := SourceStreak7Days.Amount()
		results = append(results, s.apply(ctx, userID, awardPlan{
			source:          SourceStreak7Days,
			amount:          amount,
			creditedMessage: "7-day streak milestone already awarded",
			guard: func(_ context.Context, ledger *entity.UserLedger, now time.Time) error {
				if ledger.LastStreak7Award != nil {
					return apperror.ErrAlreadyCredited
				}
				stamp := now
				ledger.LastStreak7Award = &stamp
				return nil
			},
		}))
	}

	if streakDays >= Streak30Threshold {
		amount, _ := SourceStreak30Days.Amount()
		results = append(results, s.apply(ctx, userID, awardPlan{
			source:          SourceStreak30Days,
			amount:          amount,
			creditedMessage: "30-day streak milestone already awarded",
			guard: func(_ context.Context, ledger *entity.UserLedger, now time.Time) error {
				if ledger.LastStreak30Award != nil {
					return apperror.ErrAlreadyCredited
				}
				stamp := now
				ledger.LastStreak30Award = &stamp
				return nil
			},
		}))
	}

	return results
}

func (s *progressionService) AwardGameCompletion(ctx context.Context, userID uuid.UUID, game Game, tier Tier) progressionDto.AwardResult {
	source, ok := GameSource(game, tier)
	if !ok {
		return s.failure(userID, "", fmt.Errorf("unknown game %q: %w", game, apperror.ErrInvalidInput), "Unknown game")
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, userID, game)
		if err != nil {
			// A broken limiter must not cost the user their XP.
			s.log.Warn("game throttle unavailable", "user_id", userID, "game", game, "error", err)
		} else if !allowed {
			return s.failure(userID, source, fmt.Errorf("game %s: %w", game, apperror.ErrRateLimitExceeded), "Slow down, XP for this game was just awarded")
		}
	}

	return s.AwardXP(ctx, userID, source, nil)
}

func (s *progressionService) AwardMoodEntry(ctx context.Context, userID uuid.UUID) []progressionDto.AwardResult {
	results := []progressionDto.AwardResult{s.AwardXP(ctx, userID, SourceMoodEntry, nil)}

	amount, _ := SourceFirstMood.Amount()
	first := s.apply(ctx, userID, awardPlan{
		source:          SourceFirstMood,
		amount:          amount,
		creditedMessage: "First mood bonus already awarded",
		guard: func(ctx context.Context, ledger *entity.UserLedger, _ time.Time) error {
			// Checked after the ledger load: a concurrent first-mood award bumps the
			// version, so this attempt retries and then sees the transaction.
			done, err := s.repo.HasTransaction(ctx, ledger.UserID, string(SourceFirstMood))
			if err != nil {
				return s.storeErr("check first mood", err)
			}
			if done {
				return apperror.ErrAlreadyCredited
			}
			return nil
		},
	})
	if first.Success {
		results = append(results, first)
	}
	return results
}

func (s *progressionService) AwardFriendAdded(ctx context.Context, userID uuid.UUID) progressionDto.AwardResult {
	return s.AwardXP(ctx, userID, SourceFriendAdded, nil)
}

func (s *progressionService) AwardFriendInviteJoined(ctx context.Context, userID uuid.UUID) progressionDto.AwardResult {
	return s.AwardXP(ctx, userID, SourceFriendInviteJoined, nil)
}

// apply runs the read-modify-write of the ledger as an optimistic compare-and-swap,
// retrying when another award to the same ledger got in first.
func (s *progressionService) apply(ctx context.Context, userID uuid.UUID, plan awardPlan) progressionDto.AwardResult {
	for attempt := 1; attempt <= maxAwardAttempts; attempt++ {
		current, err := s.repo.FindLedger(ctx, userID)
		if err != nil {
			return s.ledgerLoadFailure(userID, plan.source, err)
		}

		now := s.now()
		next := *current

		if plan.guard != nil {
			if err := plan.guard(ctx, &next, now); err != nil {
				if errors.Is(err, apperror.ErrAlreadyCredited) {
					res := s.failure(userID, plan.source, fmt.Errorf("%s: %w", plan.source, err), plan.creditedMessage)
					res.NewLevel = current.Level
					res.TotalXP = current.TotalXP
					return res
				}
				return s.failure(userID, plan.source, err, "XP could not be awarded right now")
			}
		}

		next.TotalXP = current.TotalXP + plan.amount
		next.Level = CalculateLevel(next.TotalXP)

		txn := &entity.XPTransaction{
			UserID:      userID,
			Amount:      plan.amount,
			Source:      string(plan.source),
			Description: plan.source.Description(),
			CreatedAt:   now,
		}

		applied, err := s.repo.ApplyAward(ctx, &next, current.Version, txn)
		if err != nil {
			return s.failure(userID, plan.source, s.storeErr("apply award", err), "XP could not be awarded right now")
		}
		if !applied {
			s.log.Debug("ledger changed underneath award, retrying", "user_id", userID, "source", plan.source, "attempt", attempt)
			continue
		}

		leveledUp := next.Level > current.Level
		if leveledUp {
			s.notifyLevelUp(ctx, userID, next.Level, next.TotalXP)
		}

		s.log.Info("xp awarded", "user_id", userID, "source", plan.source, "amount", plan.amount, "total_xp", next.TotalXP, "level", next.Level)

		return progressionDto.AwardResult{
			Success:   true,
			Source:    string(plan.source),
			XPAwarded: plan.amount,
			LeveledUp: leveledUp,
			NewLevel:  next.Level,
			TotalXP:   next.TotalXP,
			Message:   fmt.Sprintf("+%d XP", plan.amount),
		}
	}

	return s.failure(userID, plan.source, fmt.Errorf("award %s: %w", plan.source, apperror.ErrConflict), "XP could not be awarded right now")
}

func (s *progressionService) notifyLevelUp(ctx context.Context, userID uuid.UUID, level, totalXP int) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyLevelUp(ctx, userID, level, totalXP); err != nil {
		s.log.Warn("level up notification failed", "user_id", userID, "level", level, "error", err)
	}
}

func (s *progressionService) ledgerLoadFailure(userID uuid.UUID, source Source, err error) progressionDto.AwardResult {
	if errors.Is(err, apperror.ErrNotFound) {
		return s.failure(userID, source, fmt.Errorf("ledger for user %s: %w", userID, apperror.ErrNotFound), "User ledger not found")
	}
	return s.failure(userID, source, s.storeErr("find ledger", err), "XP could not be awarded right now")
}

func (s *progressionService) failure(userID uuid.UUID, source Source, err error, message string) progressionDto.AwardResult {
	switch {
	case errors.Is(err, apperror.ErrAlreadyCredited), errors.Is(err, apperror.ErrRateLimitExceeded):
		s.log.Debug("xp award skipped", "user_id", userID, "source", source, "reason", err)
	case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrInvalidInput):
		s.log.Warn("xp award rejected", "user_id", userID, "source", source, "error", err)
	default:
		s.log.Error("xp award failed", "user_id", userID, "source", source, "error", err)
	}
	return progressionDto.AwardResult{
		Success: false,
		Source:  string(source),
		Message: message,
		Err:     err,
	}
}

func (s *progressionService) storeErr(op string, err error) error {
	if errors.Is(err, apperror.ErrStoreUnavailable) || errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", apperror.ErrStoreUnavailable, op, err)
}

func (s *progressionService) GetXPHistory(ctx context.Context, userID uuid.UUID, limit int) ([]progressionDto.TransactionResponse, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	txns, err := s.repo.ListTransactions(ctx, userID, limit)
	if err != nil {
		return nil, s.storeErr("list transactions", err)
	}

	history := make([]progressionDto.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		history = append(history, progressionDto.TransactionResponse{
			ID:          t.ID,
			Amount:      t.Amount,
			Source:      t.Source,
			Description: t.Description,
			Timestamp:   t.CreatedAt,
		})
	}
	return history, nil
}

func (s *progressionService) GetXPStats(ctx context.Context, userID uuid.UUID) (*progressionDto.XPStats, error) {
	ledger, err := s.repo.FindLedger(ctx, userID)
	if err != nil {
		return nil, s.storeErr("find ledger", err)
	}

	now := s.now()
	weekly, err := s.repo.SumTransactionsSince(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, s.storeErr("sum weekly xp", err)
	}
	monthly, err := s.repo.SumTransactionsSince(ctx, userID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, s.storeErr("sum monthly xp", err)
	}
	topSource, err := s.repo.MostFrequentSource(ctx, userID)
	if err != nil {
		return nil, s.storeErr("most frequent source", err)
	}

	return &progressionDto.XPStats{
		TotalXP:            ledger.TotalXP,
		Level:              ledger.Level,
		LevelInfo:          toLevelInfoDTO(GetLevelInfo(ledger.TotalXP)),
		XPLast7Days:        weekly,
		XPLast30Days:       monthly,
		MostFrequentSource: topSource,
	}, nil
}

func (s *progressionService) GetLevel(ctx context.Context, userID uuid.UUID) (*progressionDto.LevelInfo, error) {
	ledger, err := s.repo.FindLedger(ctx, userID)
	if err != nil {
		return nil, s.storeErr("find ledger", err)
	}
	info := toLevelInfoDTO(GetLevelInfo(ledger.TotalXP))
	return &info, nil
}

func toLevelInfoDTO(info LevelInfo) progressionDto.LevelInfo {
	return progressionDto.LevelInfo{
		Level:         info.Level,
		CurrentXP:     info.CurrentXP,
		XPToNextLevel: info.XPToNextLevel,
		Progress:      info.Progress,
		TotalXP:       info.TotalXP,
	}
}
