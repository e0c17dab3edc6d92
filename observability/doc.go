// Package observability provides an OpenTelemetry-based metrics
// extension for tick. The MetricsExtension implements lifecycle hooks
// to record system-wide counters for run starts, completions,
// failures, reschedules, scheduler passes, and alert outcomes.
//
// For per-run tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
