package alert

import (
	"context"
	"time"
)

// Alert is the context tuple describing one operational condition.
type Alert struct {
	// Environment the condition occurred in, e.g. "production".
	Environment string `json:"environment"`
	// Type is the alert category, e.g. "job_failure".
	Type string `json:"type"`
	// Component is the subsystem that raised the alert.
	Component string `json:"component"`
	// Severity is the operator-facing urgency, e.g. "critical".
	Severity string `json:"severity"`
	// Description is the human-readable detail. Volatile fragments
	// such as counts and timestamps are normalized away before
	// fingerprinting, so rewording is what creates a new fingerprint.
	Description string `json:"description"`
	// Details carries extra structured context for the sink to render.
	// It does not participate in fingerprinting.
	Details map[string]any `json:"details,omitempty"`
}

// Status is the outcome of a dispatch.
type Status string

const (
	// StatusCreated means the sink was called and a new external
	// object was created.
	StatusCreated Status = "created"
	// StatusSuppressed means an unexpired record with the same
	// fingerprint exists and no external call was made.
	StatusSuppressed Status = "suppressed"
)

// Result describes what a Dispatch call did.
type Result struct {
	Status      Status    `json:"status"`
	Fingerprint string    `json:"fingerprint"`
	// Reference identifies the external object, e.g. an issue URL.
	// For suppressed results it is the reference recorded by the
	// dispatch that created the suppression window.
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink delivers one alert to an external system and returns a
// reference to the object it created.
type Sink interface {
	Deliver(ctx context.Context, a Alert) (reference string, err error)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, a Alert) (string, error)

// Deliver implements Sink.
func (f SinkFunc) Deliver(ctx context.Context, a Alert) (string, error) {
	return f(ctx, a)
}
