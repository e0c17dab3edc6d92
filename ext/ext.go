package ext

import (
	"context"
	"time"

	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/job"
)

// Extension is the base interface. Implementations additionally
// satisfy whichever hook interfaces below they want to receive.
type Extension interface {
	// Name identifies the extension in logs.
	Name() string
}

// JobStarted fires when a claimed job begins executing, after its run
// bookkeeping has been persisted.
type JobStarted interface {
	OnJobStarted(ctx context.Context, j *job.Job) error
}

// JobCompleted fires when a run returns without error.
type JobCompleted interface {
	OnJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) error
}

// JobFailed fires when a run returns an error or panics.
type JobFailed interface {
	OnJobFailed(ctx context.Context, j *job.Job, err error) error
}

// JobRescheduled fires when the scheduler advances a job's next run.
// For due jobs this happens before the function executes.
type JobRescheduled interface {
	OnJobRescheduled(ctx context.Context, j *job.Job, nextRun time.Time) error
}

// PassCompleted fires at the end of every polling pass with the pass
// counts: jobs found due, runs attempted, runs failed.
type PassCompleted interface {
	OnPassCompleted(ctx context.Context, candidates, executed, failed int, elapsed time.Duration) error
}

// AlertDispatched fires when a failure alert created a new external
// object.
type AlertDispatched interface {
	OnAlertDispatched(ctx context.Context, a alert.Alert, res *alert.Result) error
}

// AlertSuppressed fires when a failure alert was deduplicated against
// a live suppression entry.
type AlertSuppressed interface {
	OnAlertSuppressed(ctx context.Context, a alert.Alert, res *alert.Result) error
}

// Shutdown fires once while the engine drains.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
