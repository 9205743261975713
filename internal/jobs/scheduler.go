package jobs

import (
	"context"
	"fmt"
	"time"

	"anoa.com/moodtracker/pkg/logger"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
	log  *logger.Logger
}

// NewScheduler evaluates cron expressions in loc.
func NewScheduler(loc *time.Location, baseLog *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		jobs: make([]Job, 0),
		log:  baseLog.With("component", "Scheduler"),
	}
}

// Register adds a job and schedules it when it has a cron expression.
func (s *Scheduler) Register(job Job) error {
	schedule := job.Schedule()
	if schedule == "" {
		s.jobs = append(s.jobs, job)
		s.log.Info("job registered for on-demand runs", "job", job.Name())
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		start := time.Now()
		s.log.Info("scheduled job starting", "job", job.Name())
		if err := job.Execute(context.Background()); err != nil {
			s.log.Error("scheduled job failed", "job", job.Name(), "error", err)
			return
		}
		s.log.Info("scheduled job finished", "job", job.Name(), "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", job.Name(), err)
	}
	s.jobs = append(s.jobs, job)

	s.log.Info("job scheduled", "job", job.Name(), "cron", schedule)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with jobs still running")
	}
	s.log.Info("scheduler stopped")
}

// RunByName runs a registered job right away.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			s.log.Info("running job on demand", "job", name)
			return job.Execute(ctx)
		}
	}
	return fmt.Errorf("job %q is not registered", name)
}

func (s *Scheduler) Registered() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
