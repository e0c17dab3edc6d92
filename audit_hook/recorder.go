package audithook

import "context"

// AuditEvent is one entry in the audit trail. Action, Resource, and
// Category identify what happened; the remaining fields carry the
// outcome and any action-specific detail.
type AuditEvent struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// Recorder persists audit events. The interface is deliberately a
// single method so any trail fits behind it; callers inject their
// concrete backend at wiring time and this package stays free of
// storage dependencies.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// RecorderFunc adapts a plain function to the Recorder interface.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Severity levels assigned to emitted events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcomes assigned to emitted events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
