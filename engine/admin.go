package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/xraph/tick"
	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/cron"
	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
	"github.com/xraph/tick/schedule"
)

// Patch is a partial job update. Nil fields are left unchanged; Extra
// merges into the metadata extension map rather than replacing it.
type Patch struct {
	Name         *string        `json:"name,omitempty"`
	Schedule     *string        `json:"schedule,omitempty"`
	FunctionName *string        `json:"function_name,omitempty"`
	Active       *bool          `json:"active,omitempty"`
	Extra        map[string]any `json:"metadata,omitempty"`
}

// CreateJob validates the required fields, seeds the first occurrence
// from the schedule, and persists the job.
func (eng *Engine) CreateJob(ctx context.Context, name, expr, function string, opts ...job.Option) (*job.Job, error) {
	if err := validateJobFields(name, expr, function); err != nil {
		return nil, err
	}

	o := job.DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	now := eng.clock()
	j := &job.Job{
		ID:           id.NewJobID(),
		TenantID:     o.TenantID,
		Name:         name,
		Schedule:     expr,
		FunctionName: function,
		Active:       !o.Inactive,
	}
	j.Metadata.Merge(o.Extra)
	eng.seedNextRun(j, now)
	j.Touch(now)

	if err := eng.store.CreateJob(ctx, j); err != nil {
		return nil, err
	}

	eng.logger.Info("job created",
		slog.String("job_id", j.ID.String()),
		slog.String("job_name", j.Name),
		slog.String("schedule", j.Schedule),
		slog.String("function", j.FunctionName),
	)
	return j, nil
}

// GetJob returns one job by ID.
func (eng *Engine) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	return eng.store.GetJob(ctx, jobID)
}

// ListJobs returns jobs matching the filter, newest first.
func (eng *Engine) ListJobs(ctx context.Context, f job.Filter) ([]*job.Job, error) {
	return eng.store.ListJobs(ctx, f)
}

// UpdateJob applies a partial update. Changing the schedule reseeds
// the next occurrence from now; activation alone does not.
func (eng *Engine) UpdateJob(ctx context.Context, jobID id.JobID, p Patch) (*job.Job, error) {
	j, err := eng.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	now := eng.clock()
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, tick.ErrNameRequired
		}
		j.Name = *p.Name
	}
	if p.FunctionName != nil {
		if strings.TrimSpace(*p.FunctionName) == "" {
			return nil, tick.ErrFunctionRequired
		}
		j.FunctionName = *p.FunctionName
	}
	if p.Schedule != nil {
		if strings.TrimSpace(*p.Schedule) == "" {
			return nil, tick.ErrScheduleRequired
		}
		if *p.Schedule != j.Schedule {
			j.Schedule = *p.Schedule
			// A new schedule restarts from now.
			eng.seedNextRun(j, now)
		}
	}
	if p.Active != nil {
		j.Active = *p.Active
	}
	j.Metadata.Merge(p.Extra)
	j.Touch(now)

	if err := eng.store.UpdateJob(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// DeleteJob removes a job.
func (eng *Engine) DeleteJob(ctx context.Context, jobID id.JobID) error {
	if err := eng.store.DeleteJob(ctx, jobID); err != nil {
		return err
	}
	eng.logger.Info("job deleted", slog.String("job_id", jobID.String()))
	return nil
}

// RunDueJobs executes every currently due job and reports the pass.
func (eng *Engine) RunDueJobs(ctx context.Context) (*cron.Summary, error) {
	return eng.scheduler.RunDue(ctx)
}

// RunJob forces one job to run now, regardless of schedule or active
// flag. A handler failure is reported inside the execution record, not
// as an error.
func (eng *Engine) RunJob(ctx context.Context, jobID id.JobID) (*cron.Execution, error) {
	return eng.scheduler.RunJob(ctx, jobID)
}

// Dispatch emits a deduplicated alert through the configured sink.
// Alerts without an environment inherit the engine's. Without a sink
// it returns ErrSinkRequired.
func (eng *Engine) Dispatch(ctx context.Context, a alert.Alert) (*alert.Result, error) {
	if eng.dispatcher == nil {
		return nil, tick.ErrSinkRequired
	}
	if a.Environment == "" {
		a.Environment = eng.cfg.Environment
	}

	res, err := eng.dispatcher.Dispatch(ctx, a)
	if err != nil {
		return nil, err
	}

	switch res.Status {
	case alert.StatusSuppressed:
		eng.extensions.EmitAlertSuppressed(ctx, a, res)
	default:
		eng.extensions.EmitAlertDispatched(ctx, a, res)
	}
	return res, nil
}

// seedNextRun computes the job's next occurrence from its schedule.
// Unknown expressions fall back to the conservative interval with a
// warning, matching the run loop.
func (eng *Engine) seedNextRun(j *job.Job, from time.Time) {
	next, known := schedule.Next(j.Schedule, from)
	if !known {
		eng.logger.Warn("unknown schedule, applying fallback interval",
			slog.String("job_id", j.ID.String()),
			slog.String("job_name", j.Name),
			slog.String("schedule", j.Schedule),
			slog.Time("next_run", next),
		)
	}
	if next.IsZero() {
		j.NextRunAt = nil
		return
	}
	j.NextRunAt = &next
}

func validateJobFields(name, expr, function string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return tick.ErrNameRequired
	case strings.TrimSpace(expr) == "":
		return tick.ErrScheduleRequired
	case strings.TrimSpace(function) == "":
		return tick.ErrFunctionRequired
	}
	return nil
}
