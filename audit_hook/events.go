package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle
// hook and becomes the Action field of the audit event.
const (
	ActionJobStarted      = "job.started"
	ActionJobCompleted    = "job.completed"
	ActionJobFailed       = "job.failed"
	ActionJobRescheduled  = "job.rescheduled"
	ActionPassCompleted   = "pass.completed"
	ActionAlertDispatched = "alert.dispatched"
	ActionAlertSuppressed = "alert.suppressed"
	ActionShutdown        = "engine.shutdown"
)

// Audit event categories group related actions.
const (
	CategoryJob       = "tick.job"
	CategoryScheduler = "tick.scheduler"
	CategoryAlert     = "tick.alert"
	CategoryEngine    = "tick.engine"
)

// Resource types used as the Resource field in audit events.
const (
	ResourceJob       = "job"
	ResourceScheduler = "scheduler"
	ResourceAlert     = "alert"
	ResourceEngine    = "engine"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionJobStarted,
		ActionJobCompleted,
		ActionJobFailed,
		ActionJobRescheduled,
		ActionPassCompleted,
		ActionAlertDispatched,
		ActionAlertSuppressed,
		ActionShutdown,
	}
}
