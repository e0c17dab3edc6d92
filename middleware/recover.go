package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/xraph/tick/job"
)

// Recover returns middleware that converts handler panics into errors,
// so one panicking function cannot take down a whole scheduler pass.
// The panic value and stack are logged at Error.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error("job handler panicked",
				slog.String("job_id", j.ID.String()),
				slog.String("job_name", j.Name),
				slog.String("function", j.FunctionName),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("function %s panicked: %v", j.FunctionName, r)
		}()
		return next(ctx)
	}
}
