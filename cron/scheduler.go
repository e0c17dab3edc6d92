package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xraph/tick"
	"github.com/xraph/tick/ext"
	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
	"github.com/xraph/tick/middleware"
	"github.com/xraph/tick/schedule"
)

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the scheduler's logger.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the scheduler's clock. Due selection and schedule
// advancement use this clock; tests pin it to a fixed instant.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithConcurrency sets how many jobs a pass may execute in parallel.
// The default of 1 preserves the store's due-order.
func WithConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) { s.concurrency = n }
}

// WithLease makes each run claim the job for ttl before touching it, so
// several schedulers can share one store without double-running. Jobs
// whose lease is held elsewhere are skipped.
func WithLease(ttl time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.leaseTTL = ttl }
}

// WithMiddleware sets the middleware chain wrapped around every
// execution, outermost first.
func WithMiddleware(mws ...middleware.Middleware) SchedulerOption {
	return func(s *Scheduler) { s.mw = middleware.Chain(mws...) }
}

// WithExtensions sets the hook registry that receives lifecycle events.
func WithExtensions(reg *ext.Registry) SchedulerOption {
	return func(s *Scheduler) { s.extensions = reg }
}

// Scheduler owns the scheduling pass. It is stateless between passes:
// every decision is derived from the store and the clock.
type Scheduler struct {
	store      job.Store
	registry   *job.Registry
	extensions *ext.Registry
	mw         middleware.Middleware
	logger     *slog.Logger
	now        func() time.Time
	workerID   id.WorkerID

	concurrency int
	leaseTTL    time.Duration
}

// NewScheduler creates a Scheduler reading jobs from store and resolving
// functions through registry.
func NewScheduler(store job.Store, registry *job.Registry, opts ...SchedulerOption) (*Scheduler, error) {
	if store == nil {
		return nil, tick.ErrNoStore
	}
	if registry == nil {
		return nil, tick.ErrNoRegistry
	}

	s := &Scheduler{
		store:       store,
		registry:    registry,
		logger:      slog.Default(),
		now:         func() time.Time { return time.Now().UTC() },
		workerID:    id.NewWorkerID(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if s.mw == nil {
		s.mw = middleware.Chain()
	}
	if s.extensions == nil {
		s.extensions = ext.NewRegistry(s.logger)
	}
	return s, nil
}

// RunDue performs one scheduling pass: select due jobs, advance each
// job's schedule, and execute its function. Per-job failures land in the
// Summary and never abort the pass; only a failure to list due jobs
// fails the pass itself.
func (s *Scheduler) RunDue(ctx context.Context) (*Summary, error) {
	started := s.now()
	wall := time.Now()

	due, err := s.store.ListDueJobs(ctx, started)
	if err != nil {
		return nil, fmt.Errorf("list due jobs: %w", err)
	}

	sum := &Summary{StartedAt: started, Candidates: len(due)}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, j := range due {
		g.Go(func() error {
			exec, skipped := s.runOne(ctx, j, started)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case skipped:
				sum.Skipped++
			case exec.Failed():
				sum.Failed = append(sum.Failed, exec)
			default:
				sum.Executed = append(sum.Executed, exec)
			}
			return nil
		})
	}
	// runOne reports outcomes through the summary, never through the group.
	_ = g.Wait()

	sum.Elapsed = time.Since(wall)

	s.extensions.EmitPassCompleted(ctx, sum.Candidates, len(sum.Executed), len(sum.Failed), sum.Elapsed)
	s.logger.Info("scheduler pass completed",
		slog.Int("candidates", sum.Candidates),
		slog.Int("executed", len(sum.Executed)),
		slog.Int("failed", len(sum.Failed)),
		slog.Int("skipped", sum.Skipped),
		slog.Duration("elapsed", sum.Elapsed),
	)
	return sum, nil
}

// RunJob executes one job immediately, bypassing the active flag and the
// due filter. The same schedule advance and bookkeeping as a regular
// pass apply, so a manual run pushes the next occurrence forward.
//
// The returned Execution carries the function's outcome; the error is
// non-nil only when the job cannot be fetched or its lease is held by
// another worker.
func (s *Scheduler) RunJob(ctx context.Context, jobID id.JobID) (*Execution, error) {
	j, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}

	exec, skipped := s.runOne(ctx, j, s.now())
	if skipped {
		return nil, fmt.Errorf("run job %s: %w", jobID, tick.ErrJobClaimed)
	}
	return &exec, nil
}

// runOne claims the job if leasing is on, persists the schedule advance,
// then executes the registered function. The skipped result reports that
// another worker held the lease.
func (s *Scheduler) runOne(ctx context.Context, j *job.Job, now time.Time) (Execution, bool) {
	exec := Execution{JobID: j.ID, Name: j.Name, Function: j.FunctionName}

	if s.leaseTTL > 0 {
		ok, err := s.store.ClaimJob(ctx, j.ID, s.workerID, s.leaseTTL)
		if err != nil {
			s.logger.Error("claim job error",
				slog.String("job_id", j.ID.String()),
				slog.String("error", err.Error()),
			)
			exec.Error = fmt.Sprintf("claim job: %v", err)
			return exec, false
		}
		if !ok {
			s.logger.Debug("job leased elsewhere, skipping",
				slog.String("job_id", j.ID.String()),
				slog.String("job_name", j.Name),
			)
			return exec, true
		}
		defer func() {
			if relErr := s.store.ReleaseJob(ctx, j.ID, s.workerID); relErr != nil {
				s.logger.Error("release job lease error",
					slog.String("job_id", j.ID.String()),
					slog.String("error", relErr.Error()),
				)
			}
		}()
	}

	if err := s.advance(ctx, j, now); err != nil {
		s.logger.Error("advance job error",
			slog.String("job_id", j.ID.String()),
			slog.String("job_name", j.Name),
			slog.String("error", err.Error()),
		)
		exec.Error = fmt.Sprintf("advance job: %v", err)
		return exec, false
	}

	s.extensions.EmitJobStarted(ctx, j)

	start := time.Now()
	err := s.execute(ctx, j)
	exec.Elapsed = time.Since(start)

	if err != nil {
		exec.Error = err.Error()
		s.recordFailure(ctx, j, err)
		s.extensions.EmitJobFailed(ctx, j, err)
		return exec, false
	}

	s.extensions.EmitJobCompleted(ctx, j, exec.Elapsed)
	return exec, false
}

// advance computes the job's next occurrence and persists the run
// bookkeeping before execution. Failures here abort the run: executing
// without the advance on record could replay the same occurrence after
// a crash.
func (s *Scheduler) advance(ctx context.Context, j *job.Job, now time.Time) error {
	next, known := schedule.Next(j.Schedule, now)
	if !known {
		s.logger.Warn("unknown schedule, applying fallback interval",
			slog.String("job_id", j.ID.String()),
			slog.String("job_name", j.Name),
			slog.String("schedule", j.Schedule),
			slog.Time("next_run", next),
		)
	}

	j.Metadata.RecordExecution(now)
	lastRun := now
	j.LastRunAt = &lastRun
	if next.IsZero() {
		// Empty schedule: the job stays immediately due and runs on
		// every pass until deactivated.
		j.NextRunAt = nil
	} else {
		j.NextRunAt = &next
	}
	j.Touch(now)

	if err := s.store.UpdateJob(ctx, j); err != nil {
		return err
	}
	if j.NextRunAt != nil {
		s.extensions.EmitJobRescheduled(ctx, j, *j.NextRunAt)
	}
	return nil
}

// execute resolves the function and runs it through the middleware chain.
func (s *Scheduler) execute(ctx context.Context, j *job.Job) error {
	handler, ok := s.registry.Handler(j.FunctionName)
	if !ok {
		return fmt.Errorf("%w: %q", tick.ErrFunctionNotFound, j.FunctionName)
	}

	inv := &job.Invocation{Job: j, Store: s.store}
	return s.mw(ctx, j, func(ctx context.Context) error {
		return handler(ctx, inv)
	})
}

// recordFailure merges the error into the job's metadata. The schedule
// advance is already on record; this second write only adds the error
// fields, and its own failure is logged rather than propagated.
func (s *Scheduler) recordFailure(ctx context.Context, j *job.Job, jobErr error) {
	j.Metadata.RecordError(jobErr.Error())
	j.Touch(s.now())

	if err := s.store.UpdateJob(ctx, j); err != nil {
		s.logger.Error("record job failure error",
			slog.String("job_id", j.ID.String()),
			slog.String("job_name", j.Name),
			slog.String("error", err.Error()),
		)
	}
}
