package middleware

import (
	"context"

	"github.com/xraph/tick/job"
	"github.com/xraph/tick/scope"
)

// Scope returns middleware that attaches the job's tenant identifier
// to the context before the handler runs. Jobs without a tenant pass
// through unchanged.
func Scope() Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) error {
		return next(scope.WithTenant(ctx, j.TenantID))
	}
}
