// Package job defines the job record, its metadata envelope, the
// persistence contract, and the registry that maps function names to
// executable handlers.
//
// A Job is a named, recurring unit of work. The run loop selects due
// jobs through Store.ListDueJobs, advances their bookkeeping, and then
// dispatches them through a Registry by function name. Handlers receive
// an Invocation carrying the job record and the store, so they can read
// per-job configuration from metadata and persist their own state.
//
// For typed configuration, register a Definition: its config type is
// decoded from the job's metadata at execution time.
//
//	def := job.NewDefinition("report", func(ctx context.Context, inv *job.Invocation, cfg ReportConfig) error {
//	    return run(ctx, cfg.Recipient)
//	})
//	job.RegisterDefinition(registry, def)
package job
