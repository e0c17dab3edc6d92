package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/tick/job"
)

// tracerName is the instrumentation scope name for tick tracing.
const tracerName = "github.com/xraph/tick"

// Tracing returns middleware that wraps each run in an OpenTelemetry
// span named "tick.job.run". With no global TracerProvider configured
// the noop tracer applies and the middleware costs nothing. Handler
// errors are recorded on the span and set its status to Error;
// successful runs leave the status unset.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer is Tracing with an injected tracer, for tests or
// multi-provider setups.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) error {
		ctx, span := tracer.Start(ctx, "tick.job.run",
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(runAttrs(j)...),
		)
		defer span.End()

		if err := next(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		return nil
	}
}

// runAttrs carries the job identity onto the span. Tenant is omitted
// for system-wide jobs.
func runAttrs(j *job.Job) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("tick.job.id", j.ID.String()),
		attribute.String("tick.job.name", j.Name),
		attribute.String("tick.job.function", j.FunctionName),
		attribute.Int("tick.job.run_count", j.Metadata.ExecutionCount),
	}
	if j.TenantID != "" {
		attrs = append(attrs, attribute.String("tick.job.tenant_id", j.TenantID))
	}
	return attrs
}
