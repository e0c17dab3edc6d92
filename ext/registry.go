package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/job"
)

// Registry fans lifecycle events out to registered extensions. Each
// Emit method walks the extensions in registration order and invokes
// the matching hook on those that implement it. Hook errors are logged
// and swallowed: an extension can observe the scheduler but never
// break it.
//
// Registration is not synchronized; register everything before the
// engine starts.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger
}

// NewRegistry returns an empty registry. A nil logger falls back to
// slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register appends e. Which events it receives is determined by the
// hook interfaces it implements, checked at emit time.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
}

// Extensions returns the registered extensions in order.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitJobStarted announces that a claimed job began executing.
func (r *Registry) EmitJobStarted(ctx context.Context, j *job.Job) {
	for _, e := range r.extensions {
		if h, ok := e.(JobStarted); ok {
			r.guard(e, "job started", h.OnJobStarted(ctx, j))
		}
	}
}

// EmitJobCompleted announces a successful run.
func (r *Registry) EmitJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) {
	for _, e := range r.extensions {
		if h, ok := e.(JobCompleted); ok {
			r.guard(e, "job completed", h.OnJobCompleted(ctx, j, elapsed))
		}
	}
}

// EmitJobFailed announces a failed run.
func (r *Registry) EmitJobFailed(ctx context.Context, j *job.Job, jobErr error) {
	for _, e := range r.extensions {
		if h, ok := e.(JobFailed); ok {
			r.guard(e, "job failed", h.OnJobFailed(ctx, j, jobErr))
		}
	}
}

// EmitJobRescheduled announces an advanced next run.
func (r *Registry) EmitJobRescheduled(ctx context.Context, j *job.Job, nextRun time.Time) {
	for _, e := range r.extensions {
		if h, ok := e.(JobRescheduled); ok {
			r.guard(e, "job rescheduled", h.OnJobRescheduled(ctx, j, nextRun))
		}
	}
}

// EmitPassCompleted announces a finished polling pass.
func (r *Registry) EmitPassCompleted(ctx context.Context, candidates, executed, failed int, elapsed time.Duration) {
	for _, e := range r.extensions {
		if h, ok := e.(PassCompleted); ok {
			r.guard(e, "pass completed", h.OnPassCompleted(ctx, candidates, executed, failed, elapsed))
		}
	}
}

// EmitAlertDispatched announces a newly created alert.
func (r *Registry) EmitAlertDispatched(ctx context.Context, a alert.Alert, res *alert.Result) {
	for _, e := range r.extensions {
		if h, ok := e.(AlertDispatched); ok {
			r.guard(e, "alert dispatched", h.OnAlertDispatched(ctx, a, res))
		}
	}
}

// EmitAlertSuppressed announces a deduplicated alert.
func (r *Registry) EmitAlertSuppressed(ctx context.Context, a alert.Alert, res *alert.Result) {
	for _, e := range r.extensions {
		if h, ok := e.(AlertSuppressed); ok {
			r.guard(e, "alert suppressed", h.OnAlertSuppressed(ctx, a, res))
		}
	}
}

// EmitShutdown announces that the engine is draining.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.extensions {
		if h, ok := e.(Shutdown); ok {
			r.guard(e, "shutdown", h.OnShutdown(ctx))
		}
	}
}

// guard logs a hook error without propagating it.
func (r *Registry) guard(e Extension, event string, err error) {
	if err == nil {
		return
	}
	r.logger.Warn("extension hook failed",
		slog.String("extension", e.Name()),
		slog.String("event", event),
		slog.String("error", err.Error()),
	)
}
