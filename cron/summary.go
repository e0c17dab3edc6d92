package cron

import (
	"time"

	"github.com/xraph/tick/id"
)

// Execution describes the outcome of one job within a pass.
type Execution struct {
	JobID    id.JobID      `json:"job_id"`
	Name     string        `json:"name"`
	Function string        `json:"function"`
	Elapsed  time.Duration `json:"elapsed"`

	// Error is the failure message, empty on success.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the execution ended in failure.
func (e Execution) Failed() bool { return e.Error != "" }

// Summary reports what one scheduling pass did.
type Summary struct {
	// StartedAt is the scheduler clock reading the pass selected
	// due jobs against.
	StartedAt time.Time `json:"started_at"`

	// Candidates is how many jobs the store returned as due.
	Candidates int `json:"candidates"`

	// Skipped is how many candidates were left alone because another
	// worker held their lease.
	Skipped int `json:"skipped"`

	Executed []Execution `json:"executed"`
	Failed   []Execution `json:"failed"`

	// Elapsed is the wall-clock duration of the whole pass.
	Elapsed time.Duration `json:"elapsed"`
}

// ExecutedCount returns the number of jobs that ran successfully.
func (s *Summary) ExecutedCount() int { return len(s.Executed) }

// FailedCount returns the number of jobs that ran and failed.
func (s *Summary) FailedCount() int { return len(s.Failed) }
