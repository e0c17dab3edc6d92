// Package audithook is a tick extension that bridges lifecycle events
// to an audit trail backend.
//
// Every job, scheduler pass, and alert lifecycle hook emits a
// structured audit event through the [Recorder] interface. The
// extension assigns severity levels (info for normal operations,
// warning for passes with failures and dispatched alerts, critical for
// failed runs) and rich metadata (job name, tenant, function, elapsed
// time, errors).
//
// The Recorder is deliberately minimal so any backend fits — a
// database table, an append-only log shipper, or plain slog:
//
//	audithook.New(audithook.RecorderFunc(func(ctx context.Context, evt *audithook.AuditEvent) error {
//	    logger.InfoContext(ctx, "audit",
//	        slog.String("action", evt.Action),
//	        slog.String("resource_id", evt.ResourceID),
//	        slog.String("outcome", evt.Outcome),
//	    )
//	    return nil
//	}))
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionJobFailed,
//	        audithook.ActionAlertDispatched,
//	    ),
//	)
package audithook
