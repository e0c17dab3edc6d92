// Package engine wires the tick subsystems together: store, function
// registry, scheduler, alert dispatcher, middleware chain and
// extension hooks. It exposes the administrative surface transports
// build on — job CRUD, forced and due runs, and deduplicated alert
// dispatch.
//
// The engine never runs on its own. A pass happens when a caller
// invokes RunDueJobs (directly, through the HTTP API, or from the
// optional Poller started with StartPoller).
//
// Minimal usage:
//
//	eng, err := engine.New(store)
//	if err != nil { ... }
//	engine.Register(eng, job.NewDefinition("cleanup", handler))
//	j, err := eng.CreateJob(ctx, "nightly cleanup", "daily", "cleanup")
//	summary, err := eng.RunDueJobs(ctx)
package engine
