package job_test

import (
	"testing"
	"time"

	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
)

func TestJobDue(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		j    job.Job
		want bool
	}{
		{"active with nil next run", job.Job{Active: true}, true},
		{"active with past next run", job.Job{Active: true, NextRunAt: &past}, true},
		{"active with next run equal to now", job.Job{Active: true, NextRunAt: &now}, true},
		{"active with future next run", job.Job{Active: true, NextRunAt: &future}, false},
		{"inactive with nil next run", job.Job{Active: false}, false},
		{"inactive with past next run", job.Job{Active: false, NextRunAt: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.j.Due(now); got != tt.want {
				t.Fatalf("Due() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobClone(t *testing.T) {
	next := time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC)
	orig := &job.Job{
		ID:           id.NewJobID(),
		Name:         "cleanup",
		FunctionName: "cleanup_sessions",
		Active:       true,
		NextRunAt:    &next,
		Metadata: job.Metadata{
			ExecutionCount: 2,
			Extra:          map[string]any{"batch": 100},
		},
	}

	cp := orig.Clone()
	if cp == orig {
		t.Fatal("Clone returned the same pointer")
	}
	if cp.ID != orig.ID || cp.Name != orig.Name {
		t.Fatalf("Clone changed fields: got %+v", cp)
	}

	*cp.NextRunAt = cp.NextRunAt.Add(time.Hour)
	cp.Metadata.Extra["batch"] = 500
	cp.Metadata.ExecutionCount = 99

	if !orig.NextRunAt.Equal(next) {
		t.Errorf("mutating clone's NextRunAt changed original to %v", orig.NextRunAt)
	}
	if got := orig.Metadata.Extra["batch"]; got != 100 {
		t.Errorf("mutating clone's Extra changed original to %v", got)
	}
	if orig.Metadata.ExecutionCount != 2 {
		t.Errorf("mutating clone's counters changed original to %d", orig.Metadata.ExecutionCount)
	}
}

func TestJobCloneNil(t *testing.T) {
	var j *job.Job
	if j.Clone() != nil {
		t.Fatal("Clone of nil job should be nil")
	}
}
