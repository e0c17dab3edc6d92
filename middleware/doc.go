// Package middleware wraps job execution with cross-cutting behavior.
//
// A [Middleware] receives the context, the job, and the next link in
// the chain; [Chain] folds a slice of them into one, first element
// outermost. The engine installs a default chain of
//
//	Recover → Tracing → Metrics → Logging → Scope
//
// ahead of any middleware the caller adds, so handlers always run with
// panic isolation and observability even in a bare setup.
//
// Built-ins: [Recover] turns panics into errors, [Logging] writes one
// line per outcome, [Timeout] bounds a run with a context deadline,
// [Tracing] and [Metrics] emit OpenTelemetry spans and instruments,
// and [Scope] places the job's tenant on the context.
//
// A custom middleware is any function of the right shape:
//
//	func Dedupe(seen *sync.Map) middleware.Middleware {
//	    return func(ctx context.Context, j *job.Job, next middleware.Handler) error {
//	        if _, loaded := seen.LoadOrStore(j.ID, struct{}{}); loaded {
//	            return nil // short-circuit: skip the duplicate
//	        }
//	        return next(ctx)
//	    }
//	}
//
// Not calling next skips the rest of the chain and the handler.
package middleware
