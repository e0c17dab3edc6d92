package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/tick/job"
)

// Logging returns middleware that logs each run. The start line is
// Debug so a busy pass does not double every execution in the log;
// completion is Info, failure Error. Tenant-owned jobs carry a
// tenant_id field.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) error {
		base := []any{
			slog.String("job_id", j.ID.String()),
			slog.String("job_name", j.Name),
			slog.String("function", j.FunctionName),
		}
		if j.TenantID != "" {
			base = append(base, slog.String("tenant_id", j.TenantID))
		}
		logger.Debug("job run starting", base...)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("job run failed", append(base,
				slog.Int64("elapsed_ms", elapsed.Milliseconds()),
				slog.String("error", err.Error()),
			)...)
			return err
		}

		logger.Info("job run completed", append(base,
			slog.Int64("elapsed_ms", elapsed.Milliseconds()),
		)...)
		return nil
	}
}
