package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/ext"
	"github.com/xraph/tick/job"
)

// meterName is the instrumentation scope name for lifecycle metrics.
const meterName = "github.com/xraph/tick/observability"

// Compile-time interface checks.
var (
	_ ext.Extension       = (*MetricsExtension)(nil)
	_ ext.JobStarted      = (*MetricsExtension)(nil)
	_ ext.JobCompleted    = (*MetricsExtension)(nil)
	_ ext.JobFailed       = (*MetricsExtension)(nil)
	_ ext.JobRescheduled  = (*MetricsExtension)(nil)
	_ ext.PassCompleted   = (*MetricsExtension)(nil)
	_ ext.AlertDispatched = (*MetricsExtension)(nil)
	_ ext.AlertSuppressed = (*MetricsExtension)(nil)
)

// MetricsExtension records system-wide lifecycle counters. Register it
// as a tick extension to track run starts, completions, failures,
// reschedules, scheduler passes, and alert outcomes.
//
// Instruments:
//   - tick.jobs.started, tick.jobs.completed, tick.jobs.failed,
//     tick.jobs.rescheduled (Int64Counter), with attribute: function
//   - tick.scheduler.passes (Int64Counter)
//   - tick.scheduler.pass.duration (Float64Histogram) in seconds
//   - tick.alerts.dispatched, tick.alerts.suppressed (Int64Counter),
//     with attributes: component, severity
type MetricsExtension struct {
	jobsStarted      metric.Int64Counter
	jobsCompleted    metric.Int64Counter
	jobsFailed       metric.Int64Counter
	jobsRescheduled  metric.Int64Counter
	passes           metric.Int64Counter
	passDuration     metric.Float64Histogram
	alertsCreated    metric.Int64Counter
	alertsSuppressed metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension on the global OTel
// MeterProvider. Without a configured provider the instruments are
// noops and the extension is inert.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. Use this variant to inject a MeterProvider in tests.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	m := &MetricsExtension{}
	var err error

	// On error the OTel API returns noop instruments, so the extension
	// degrades gracefully.
	m.jobsStarted, err = meter.Int64Counter("tick.jobs.started",
		metric.WithDescription("Job runs started by the scheduler"),
		metric.WithUnit("{run}"))
	_ = err
	m.jobsCompleted, err = meter.Int64Counter("tick.jobs.completed",
		metric.WithDescription("Job runs that finished successfully"),
		metric.WithUnit("{run}"))
	_ = err
	m.jobsFailed, err = meter.Int64Counter("tick.jobs.failed",
		metric.WithDescription("Job runs that returned an error"),
		metric.WithUnit("{run}"))
	_ = err
	m.jobsRescheduled, err = meter.Int64Counter("tick.jobs.rescheduled",
		metric.WithDescription("Next-run advances written by the scheduler"),
		metric.WithUnit("{job}"))
	_ = err
	m.passes, err = meter.Int64Counter("tick.scheduler.passes",
		metric.WithDescription("Completed run-due passes"),
		metric.WithUnit("{pass}"))
	_ = err
	m.passDuration, err = meter.Float64Histogram("tick.scheduler.pass.duration",
		metric.WithDescription("Wall-clock duration of a run-due pass in seconds"),
		metric.WithUnit("s"))
	_ = err
	m.alertsCreated, err = meter.Int64Counter("tick.alerts.dispatched",
		metric.WithDescription("Alerts that created a new external object"),
		metric.WithUnit("{alert}"))
	_ = err
	m.alertsSuppressed, err = meter.Int64Counter("tick.alerts.suppressed",
		metric.WithDescription("Alerts deduplicated against a suppression record"),
		metric.WithUnit("{alert}"))
	_ = err

	return m
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

func jobAttrs(j *job.Job) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("function", j.FunctionName))
}

func alertAttrs(a alert.Alert) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("component", a.Component),
		attribute.String("severity", a.Severity),
	)
}

// ── Job lifecycle hooks ─────────────────────────────

// OnJobStarted implements ext.JobStarted.
func (m *MetricsExtension) OnJobStarted(ctx context.Context, j *job.Job) error {
	m.jobsStarted.Add(ctx, 1, jobAttrs(j))
	return nil
}

// OnJobCompleted implements ext.JobCompleted.
func (m *MetricsExtension) OnJobCompleted(ctx context.Context, j *job.Job, _ time.Duration) error {
	m.jobsCompleted.Add(ctx, 1, jobAttrs(j))
	return nil
}

// OnJobFailed implements ext.JobFailed.
func (m *MetricsExtension) OnJobFailed(ctx context.Context, j *job.Job, _ error) error {
	m.jobsFailed.Add(ctx, 1, jobAttrs(j))
	return nil
}

// OnJobRescheduled implements ext.JobRescheduled.
func (m *MetricsExtension) OnJobRescheduled(ctx context.Context, j *job.Job, _ time.Time) error {
	m.jobsRescheduled.Add(ctx, 1, jobAttrs(j))
	return nil
}

// ── Scheduler hooks ─────────────────────────────────

// OnPassCompleted implements ext.PassCompleted.
func (m *MetricsExtension) OnPassCompleted(ctx context.Context, _, _, _ int, elapsed time.Duration) error {
	m.passes.Add(ctx, 1)
	m.passDuration.Record(ctx, elapsed.Seconds())
	return nil
}

// ── Alert hooks ─────────────────────────────────────

// OnAlertDispatched implements ext.AlertDispatched.
func (m *MetricsExtension) OnAlertDispatched(ctx context.Context, a alert.Alert, _ *alert.Result) error {
	m.alertsCreated.Add(ctx, 1, alertAttrs(a))
	return nil
}

// OnAlertSuppressed implements ext.AlertSuppressed.
func (m *MetricsExtension) OnAlertSuppressed(ctx context.Context, a alert.Alert, _ *alert.Result) error {
	m.alertsSuppressed.Add(ctx, 1, alertAttrs(a))
	return nil
}
