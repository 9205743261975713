package jobs

import "context"

// Job is a unit of background work the scheduler can run.
type Job interface {
	// Name identifies the job in logs and for on-demand runs.
	Name() string

	// Schedule returns a standard cron expression such as "5 0 * * *".
	// An empty schedule registers the job for on-demand runs only.
	Schedule() string

	Execute(ctx context.Context) error
}
