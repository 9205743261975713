package jobs

import (
	"context"
	"fmt"
	"time"

	"anoa.com/moodtracker/internal/entity"
	progressionDto "anoa.com/moodtracker/internal/modules/progression/dto"
	"anoa.com/moodtracker/pkg/logger"
	"github.com/google/uuid"
)

const (
	StreakSweepName = "streak-milestone-sweep"

	// a user needs an entry within this window to still hold any streak worth checking
	streakSweepLookback = 31 * 24 * time.Hour
)

type ActiveUserLister interface {
	ActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

type MilestoneChecker interface {
	CheckStreakMilestones(ctx context.Context, userID uuid.UUID) ([]progressionDto.AwardResult, error)
}

type Notifier interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
}

// StreakSweepJob credits streak milestones that the mood logging path missed,
// for example while the ledger store was unavailable.
type StreakSweepJob struct {
	users    ActiveUserLister
	checker  MilestoneChecker
	notifier Notifier
	schedule string
	log      *logger.Logger
	now      func() time.Time
}

func NewStreakSweepJob(users ActiveUserLister, checker MilestoneChecker, notifier Notifier, schedule string, baseLog *logger.Logger) *StreakSweepJob {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &StreakSweepJob{
		users:    users,
		checker:  checker,
		notifier: notifier,
		schedule: schedule,
		log:      baseLog.With("job", StreakSweepName),
		now:      time.Now,
	}
}

func (j *StreakSweepJob) Name() string     { return StreakSweepName }
func (j *StreakSweepJob) Schedule() string { return j.schedule }

func (j *StreakSweepJob) Execute(ctx context.Context) error {
	ids, err := j.users.ActiveUserIDs(ctx, j.now().Add(-streakSweepLookback))
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}

	credited, failed := 0, 0
	for _, userID := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		results, err := j.checker.CheckStreakMilestones(ctx, userID)
		if err != nil {
			failed++
			j.log.Warn("streak check failed", "user_id", userID, "error", err)
			continue
		}

		for _, res := range results {
			credited++
			j.notifyMilestone(ctx, userID, res)
		}
	}

	j.log.Info("streak sweep done", "users", len(ids), "credited", credited, "failed", failed)
	return nil
}

func (j *StreakSweepJob) notifyMilestone(ctx context.Context, userID uuid.UUID, res progressionDto.AwardResult) {
	if j.notifier == nil {
		return
	}
	err := j.notifier.CreateNotification(ctx, &entity.Notification{
		UserID:  userID,
		Type:    entity.NotificationTypeMilestone,
		Message: fmt.Sprintf("Streak milestone reached: %s", res.Message),
		Level:   res.NewLevel,
		XP:      res.TotalXP,
	})
	if err != nil {
		j.log.Warn("failed to notify streak milestone", "user_id", userID, "error", err)
	}
}
