// Package ext lets callers observe the scheduler's lifecycle without
// touching the run path. An extension registers once and receives only
// the events whose hook interfaces it implements.
//
// Each event is a single-method interface, so a minimal extension is a
// couple of lines:
//
//	type failureLogger struct{}
//
//	func (failureLogger) Name() string { return "failure-logger" }
//
//	func (failureLogger) OnJobFailed(ctx context.Context, j *job.Job, err error) error {
//	    log.Printf("run of %s failed: %v", j.Name, err)
//	    return nil
//	}
//
// The hooks:
//
//   - [JobStarted], [JobCompleted], [JobFailed] — one run of a job,
//     from claim to outcome
//   - [JobRescheduled] — the job's next run was advanced
//   - [PassCompleted] — a polling pass finished, with its counts
//   - [AlertDispatched], [AlertSuppressed] — the failure alerter
//     created, or deduplicated, an external incident
//   - [Shutdown] — the engine is draining
//
// A [Registry] fans each event out to every registered extension that
// implements its interface. Hook errors are logged and swallowed, so a
// failing extension cannot fail a job run.
package ext
