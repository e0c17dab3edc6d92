package job

// Options carries the optional attributes applied when a job is
// created. Name, schedule and function name are positional because
// they are required.
type Options struct {
	// TenantID scopes the job to one tenant; empty means system-wide.
	TenantID string
	// Inactive creates the job disabled so the run loop skips it until
	// it is activated.
	Inactive bool
	// Extra seeds the metadata extension map, typically with handler
	// configuration.
	Extra map[string]any
}

// Option customizes one creation call.
type Option func(*Options)

// DefaultOptions returns the default creation options: active,
// system-wide, no extras.
func DefaultOptions() Options {
	return Options{}
}

// WithTenant scopes the job to a tenant.
func WithTenant(tenantID string) Option {
	return func(o *Options) { o.TenantID = tenantID }
}

// WithInactive creates the job disabled.
func WithInactive() Option {
	return func(o *Options) { o.Inactive = true }
}

// WithExtra seeds metadata extras.
func WithExtra(extra map[string]any) Option {
	return func(o *Options) { o.Extra = extra }
}
