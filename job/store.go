package job

import (
	"context"
	"time"

	"github.com/xraph/tick/id"
)

// Filter narrows ListJobs results. Zero values mean "any".
type Filter struct {
	// Active filters on the is_active flag when non-nil.
	Active *bool
	// TenantID restricts results to one tenant.
	TenantID string
	// FunctionName restricts results to jobs bound to one handler.
	FunctionName string
	// Limit caps the number of records returned; zero means no cap.
	Limit int
	// Offset skips that many records.
	Offset int
}

// Store is the persistence contract for jobs. Implementations must be
// safe for concurrent use.
type Store interface {
	// CreateJob persists a new job.
	CreateJob(ctx context.Context, j *Job) error

	// GetJob returns the job with the given ID, or ErrJobNotFound.
	GetJob(ctx context.Context, jobID id.JobID) (*Job, error)

	// ListJobs returns jobs matching the filter, newest first.
	ListJobs(ctx context.Context, f Filter) ([]*Job, error)

	// ListDueJobs returns the active jobs whose next run is unset or
	// not after now, ordered by next run ascending with unset first.
	ListDueJobs(ctx context.Context, now time.Time) ([]*Job, error)

	// UpdateJob persists the job's definition and bookkeeping,
	// replacing the stored record. Lease fields are owned by
	// ClaimJob and ReleaseJob; UpdateJob leaves them untouched.
	UpdateJob(ctx context.Context, j *Job) error

	// DeleteJob removes the job with the given ID.
	DeleteJob(ctx context.Context, jobID id.JobID) error

	// ClaimJob acquires an execution lease on the job for owner until
	// now+ttl. It returns false with a nil error when another owner
	// holds an unexpired lease.
	ClaimJob(ctx context.Context, jobID id.JobID, owner id.WorkerID, ttl time.Duration) (bool, error)

	// ReleaseJob drops the lease if owner still holds it.
	ReleaseJob(ctx context.Context, jobID id.JobID, owner id.WorkerID) error
}
