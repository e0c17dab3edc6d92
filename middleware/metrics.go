package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/tick/job"
)

// meterName is the instrumentation scope name for tick metrics.
const meterName = "github.com/xraph/tick"

// Metrics returns middleware that records run outcomes through the
// global MeterProvider. Two instruments are emitted, both tagged with
// job_name, function, status ("ok"/"error"), and tenant_id when the
// job has one:
//
//   - tick.job.duration (histogram, seconds)
//   - tick.job.runs (counter)
//
// Without a configured provider the instruments are no-ops.
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter is Metrics with an injected meter, for tests or
// multi-provider setups.
func MetricsWithMeter(meter metric.Meter) Middleware {
	ins := newRunInstruments(meter)
	return func(ctx context.Context, j *job.Job, next Handler) error {
		start := time.Now()
		err := next(ctx)
		ins.record(ctx, j, time.Since(start), err)
		return err
	}
}

type runInstruments struct {
	duration metric.Float64Histogram
	runs     metric.Int64Counter
}

// newRunInstruments registers the run instruments once, at chain
// construction. The OTel API hands back noop instruments on
// registration errors, so a failure here degrades to recording
// nothing instead of breaking the chain.
func newRunInstruments(meter metric.Meter) *runInstruments {
	duration, _ := meter.Float64Histogram(
		"tick.job.duration",
		metric.WithDescription("Wall-clock duration of one job run"),
		metric.WithUnit("s"),
	)
	runs, _ := meter.Int64Counter(
		"tick.job.runs",
		metric.WithDescription("Completed job runs by outcome"),
		metric.WithUnit("{run}"),
	)
	return &runInstruments{duration: duration, runs: runs}
}

func (ins *runInstruments) record(ctx context.Context, j *job.Job, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := []attribute.KeyValue{
		attribute.String("job_name", j.Name),
		attribute.String("function", j.FunctionName),
		attribute.String("status", status),
	}
	if j.TenantID != "" {
		attrs = append(attrs, attribute.String("tenant_id", j.TenantID))
	}

	opt := metric.WithAttributes(attrs...)
	ins.duration.Record(ctx, elapsed.Seconds(), opt)
	ins.runs.Add(ctx, 1, opt)
}
