package tick

import "time"

// Config holds engine-level configuration.
type Config struct {
	// Environment names the deployment environment ("production",
	// "staging", ...). It is folded into alert fingerprints so the same
	// failure in two environments dedupes independently.
	Environment string

	// Concurrency is the maximum number of jobs executed in parallel
	// within one run-loop pass. 1 means sequential (the default; safe
	// without leasing).
	Concurrency int

	// LeaseTTL is how long a claimed job stays owned when the claim step
	// is enabled. Zero disables leasing.
	LeaseTTL time.Duration

	// PollInterval is the cadence of the optional Poller. It has no
	// effect unless a Poller is started.
	PollInterval time.Duration

	// AlertRetention is the suppression window for dispatched alerts.
	AlertRetention time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Environment:     "production",
		Concurrency:     1,
		PollInterval:    1 * time.Minute,
		AlertRetention:  24 * time.Hour,
		ShutdownTimeout: 30 * time.Second,
	}
}
