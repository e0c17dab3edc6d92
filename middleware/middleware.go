package middleware

import (
	"context"

	"github.com/xraph/tick/job"
)

// Handler is the terminal function that executes job logic.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic. It receives the
// context, the job being run, and the next link in the chain. A
// middleware that does not call next short-circuits the run.
type Middleware func(ctx context.Context, j *job.Job, next Handler) error

// Chain folds the given middleware into one. The first element becomes
// the outermost wrapper: Chain(a, b)(ctx, j, h) enters a, then b, then
// the handler h.
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			h = link(mws[i], j, h)
		}
		return h(ctx)
	}
}

// link binds one middleware to its successor in the chain.
func link(mw Middleware, j *job.Job, next Handler) Handler {
	return func(ctx context.Context) error {
		return mw(ctx, j, next)
	}
}
