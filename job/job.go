package job

import (
	"time"

	"github.com/xraph/tick"
	"github.com/xraph/tick/id"
)

// Job is one recurring unit of work driven by the scheduler.
//
// NextRunAt is the earliest instant the job becomes due; nil means due
// immediately. The run loop advances NextRunAt and LastRunAt before the
// handler executes, so a crash mid-execution skips the run rather than
// repeating it.
type Job struct {
	tick.Entity

	ID           id.JobID   `json:"id"`
	TenantID     string     `json:"tenant_id,omitempty"`
	Name         string     `json:"name"`
	Schedule     string     `json:"schedule,omitempty"`
	FunctionName string     `json:"function_name"`
	Active       bool       `json:"is_active"`
	NextRunAt    *time.Time `json:"next_run,omitempty"`
	LastRunAt    *time.Time `json:"last_run,omitempty"`

	// ClaimedBy and ClaimedUntil implement the optional execution lease
	// for deployments that run more than one poller. They are zero when
	// leasing is disabled.
	ClaimedBy    string     `json:"claimed_by,omitempty"`
	ClaimedUntil *time.Time `json:"claimed_until,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// Due reports whether the job would be selected by a scheduler pass at
// now: active, with a next run that is unset or not after now.
func (j *Job) Due(now time.Time) bool {
	if !j.Active {
		return false
	}
	return j.NextRunAt == nil || !j.NextRunAt.After(now)
}

// Clone returns a deep copy of the job. Stores hand out clones so
// callers can mutate records without racing the store's own copy.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	cp.NextRunAt = cloneTime(j.NextRunAt)
	cp.LastRunAt = cloneTime(j.LastRunAt)
	cp.ClaimedUntil = cloneTime(j.ClaimedUntil)
	cp.Metadata = j.Metadata.Clone()
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
