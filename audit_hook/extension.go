package audithook

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/ext"
	"github.com/xraph/tick/job"
)

// Compile-time interface checks.
var (
	_ ext.Extension       = (*Extension)(nil)
	_ ext.JobStarted      = (*Extension)(nil)
	_ ext.JobCompleted    = (*Extension)(nil)
	_ ext.JobFailed       = (*Extension)(nil)
	_ ext.JobRescheduled  = (*Extension)(nil)
	_ ext.PassCompleted   = (*Extension)(nil)
	_ ext.AlertDispatched = (*Extension)(nil)
	_ ext.AlertSuppressed = (*Extension)(nil)
	_ ext.Shutdown        = (*Extension)(nil)
)

// Extension turns lifecycle hooks into audit trail entries. Every
// event passes through the configured [Recorder]; recorder failures
// are logged and swallowed so a broken trail never fails a job run.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil means every action
	logger   *slog.Logger
}

// Option configures an Extension.
type Option func(*Extension)

// WithActions limits the extension to the listed actions. Without it
// every action is emitted. Actions not in [AllActions] are accepted
// and never match anything.
func WithActions(actions ...string) Option {
	return func(e *Extension) {
		e.enabled = make(map[string]bool, len(actions))
		for _, a := range actions {
			e.enabled[a] = true
		}
	}
}

// WithLogger sets the logger used to report recorder failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extension) { e.logger = l }
}

// New builds an Extension writing through r.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// OnJobStarted implements ext.JobStarted.
func (e *Extension) OnJobStarted(ctx context.Context, j *job.Job) error {
	return e.emit(ctx, &AuditEvent{
		Action:     ActionJobStarted,
		Resource:   ResourceJob,
		Category:   CategoryJob,
		ResourceID: j.ID.String(),
		Severity:   SeverityInfo,
		Outcome:    OutcomeSuccess,
		Metadata:   jobMeta(j),
	})
}

// OnJobCompleted implements ext.JobCompleted.
func (e *Extension) OnJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) error {
	m := jobMeta(j)
	m["elapsed_ms"] = elapsed.Milliseconds()
	return e.emit(ctx, &AuditEvent{
		Action:     ActionJobCompleted,
		Resource:   ResourceJob,
		Category:   CategoryJob,
		ResourceID: j.ID.String(),
		Severity:   SeverityInfo,
		Outcome:    OutcomeSuccess,
		Metadata:   m,
	})
}

// OnJobFailed implements ext.JobFailed.
func (e *Extension) OnJobFailed(ctx context.Context, j *job.Job, jobErr error) error {
	m := jobMeta(j)
	m["error"] = jobErr.Error()
	return e.emit(ctx, &AuditEvent{
		Action:     ActionJobFailed,
		Resource:   ResourceJob,
		Category:   CategoryJob,
		ResourceID: j.ID.String(),
		Severity:   SeverityCritical,
		Outcome:    OutcomeFailure,
		Reason:     jobErr.Error(),
		Metadata:   m,
	})
}

// OnJobRescheduled implements ext.JobRescheduled.
func (e *Extension) OnJobRescheduled(ctx context.Context, j *job.Job, nextRun time.Time) error {
	m := jobMeta(j)
	m["schedule"] = j.Schedule
	m["next_run_at"] = nextRun.Format(time.RFC3339)
	return e.emit(ctx, &AuditEvent{
		Action:     ActionJobRescheduled,
		Resource:   ResourceJob,
		Category:   CategoryJob,
		ResourceID: j.ID.String(),
		Severity:   SeverityInfo,
		Outcome:    OutcomeSuccess,
		Metadata:   m,
	})
}

// OnPassCompleted implements ext.PassCompleted. A pass that recorded
// failures is raised to warning severity.
func (e *Extension) OnPassCompleted(ctx context.Context, candidates, executed, failed int, elapsed time.Duration) error {
	severity := SeverityInfo
	if failed > 0 {
		severity = SeverityWarning
	}
	return e.emit(ctx, &AuditEvent{
		Action:   ActionPassCompleted,
		Resource: ResourceScheduler,
		Category: CategoryScheduler,
		Severity: severity,
		Outcome:  OutcomeSuccess,
		Metadata: map[string]any{
			"candidates": candidates,
			"executed":   executed,
			"failed":     failed,
			"elapsed_ms": elapsed.Milliseconds(),
		},
	})
}

// OnAlertDispatched implements ext.AlertDispatched.
func (e *Extension) OnAlertDispatched(ctx context.Context, a alert.Alert, res *alert.Result) error {
	m := alertMeta(a, res)
	m["alert_severity"] = a.Severity
	return e.emit(ctx, &AuditEvent{
		Action:     ActionAlertDispatched,
		Resource:   ResourceAlert,
		Category:   CategoryAlert,
		ResourceID: res.Fingerprint,
		Severity:   SeverityWarning,
		Outcome:    OutcomeSuccess,
		Metadata:   m,
	})
}

// OnAlertSuppressed implements ext.AlertSuppressed.
func (e *Extension) OnAlertSuppressed(ctx context.Context, a alert.Alert, res *alert.Result) error {
	return e.emit(ctx, &AuditEvent{
		Action:     ActionAlertSuppressed,
		Resource:   ResourceAlert,
		Category:   CategoryAlert,
		ResourceID: res.Fingerprint,
		Severity:   SeverityInfo,
		Outcome:    OutcomeSuccess,
		Metadata:   alertMeta(a, res),
	})
}

// OnShutdown implements ext.Shutdown.
func (e *Extension) OnShutdown(ctx context.Context) error {
	return e.emit(ctx, &AuditEvent{
		Action:   ActionShutdown,
		Resource: ResourceEngine,
		Category: CategoryEngine,
		Severity: SeverityInfo,
		Outcome:  OutcomeSuccess,
	})
}

// emit sends evt through the recorder unless the action is filtered
// out. The error return exists to satisfy the hook signatures; it is
// always nil.
func (e *Extension) emit(ctx context.Context, evt *AuditEvent) error {
	if e.enabled != nil && !e.enabled[evt.Action] {
		return nil
	}
	if err := e.recorder.Record(ctx, evt); err != nil {
		e.logger.Warn("audit event dropped",
			slog.String("action", evt.Action),
			slog.String("resource_id", evt.ResourceID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func jobMeta(j *job.Job) map[string]any {
	m := map[string]any{
		"job_name": j.Name,
		"function": j.FunctionName,
	}
	if j.TenantID != "" {
		m["tenant_id"] = j.TenantID
	}
	return m
}

func alertMeta(a alert.Alert, res *alert.Result) map[string]any {
	return map[string]any{
		"environment": a.Environment,
		"alert_type":  a.Type,
		"component":   a.Component,
		"reference":   res.Reference,
	}
}
