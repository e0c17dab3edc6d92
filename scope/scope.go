// Package scope carries tenant identity on context.Context so job
// handlers — and the shared code they call — can read which tenant a
// run belongs to without threading the Job value through every layer.
//
// The scheduler's default middleware chain attaches the job's tenant
// before the handler runs, so inside a handler:
//
//	tenant, ok := scope.TenantID(ctx)
package scope

import "context"

type tenantKey struct{}

// WithTenant returns a context carrying the tenant identifier.
// An empty id returns the context unchanged.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	if tenantID == "" {
		return ctx
	}
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// TenantID extracts the tenant identifier from the context.
// ok is false when no tenant is attached.
func TenantID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tenantKey{}).(string)
	return v, ok
}
