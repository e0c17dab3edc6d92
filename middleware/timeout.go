package middleware

import (
	"context"
	"time"

	"github.com/xraph/tick/job"
)

// Timeout returns middleware that enforces an execution deadline on
// every run. When the deadline is exceeded the run context is cancelled
// and handlers observing it should return context.DeadlineExceeded.
// A non-positive d disables the deadline and the middleware becomes a
// pass-through.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) error {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
