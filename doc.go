// Package tick provides a polled scheduled-job engine for Go with an
// idempotent alert dispatcher layered on top.
//
// Tick is designed as a library, not a service. Import it, configure a
// store, register job functions by name, and drive the run loop — either
// from your own trigger (an HTTP call, an external cron) or with the
// optional in-process Poller.
//
// # Quick Start
//
//	eng, err := engine.New(memory.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	eng.RegisterFunc("cleanup-sessions", cleanupSessions)
//
//	_, err = eng.CreateJob(ctx, "nightly cleanup", "daily", "cleanup-sessions")
//
//	summary, err := eng.RunDueJobs(ctx)
//
// # Architecture
//
// Tick follows a composable store pattern: the job subsystem and the alert
// subsystem each define their own store interface, and a single backend
// (memory, sqlite, redis, postgres, mongo) implements both plus lifecycle
// methods.
//
// The run loop is cooperative: one pass selects every active job whose
// next_run is null or in the past, writes the reschedule bookkeeping, then
// executes the registered function through a middleware chain. The engine
// never sleeps or self-schedules; cadence belongs to the caller.
//
// All job IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based
// identifiers.
package tick
