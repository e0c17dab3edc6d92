// Package cron runs the scheduling pass: it selects due jobs, advances
// their schedules, and executes their registered functions.
//
// The core entry point is Scheduler.RunDue, which performs exactly one
// pass and returns a Summary. The engine never sleeps or self-schedules;
// an external trigger (a cron daemon, a serverless timer, or the
// optional Poller in this package) decides when passes happen.
//
// A job's schedule is advanced and its bookkeeping persisted before its
// function runs. A crash mid-execution therefore skips that occurrence
// rather than replaying it: at-most-once per tick.
//
// A single pass driver is assumed. Deployments that run several
// schedulers against one store should enable leasing with WithLease so
// concurrent passes do not double-run a job.
package cron
