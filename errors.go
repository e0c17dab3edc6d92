package tick

import "errors"

var (
	// Store errors.
	ErrNoStore         = errors.New("tick: no store configured")
	ErrStoreClosed     = errors.New("tick: store closed")
	ErrMigrationFailed = errors.New("tick: migration failed")

	// Not found errors.
	ErrJobNotFound = errors.New("tick: job not found")

	// Conflict errors.
	ErrJobExists = errors.New("tick: job already exists")

	// Validation errors. Creation rejects these synchronously; nothing
	// is persisted.
	ErrNameRequired     = errors.New("tick: job name required")
	ErrScheduleRequired = errors.New("tick: job schedule required")
	ErrFunctionRequired = errors.New("tick: job function name required")

	// Registry errors.
	ErrNoRegistry       = errors.New("tick: function registry is required")
	ErrFunctionNotFound = errors.New("tick: no function registered under that name")

	// Lease errors.
	ErrJobClaimed = errors.New("tick: job claimed by another worker")

	// Dispatch errors.
	ErrSinkRequired = errors.New("tick: alert sink required")
)
