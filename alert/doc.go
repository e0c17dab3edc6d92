// Package alert provides idempotent dispatch of operational alerts to
// an external sink, such as a GitHub issue tracker.
//
// Every alert is reduced to a deterministic fingerprint. The dispatcher
// checks a TTL-backed suppression store before delivering: a hit means
// the same condition already raised an alert inside the retention
// window, and the earlier reference is returned instead of a duplicate.
// The store is advisory — when it is absent or unreachable the
// dispatcher fails open and delivers anyway, so a dedup outage never
// silences alerting.
//
// Delivery runs under a retry policy with exponential backoff and
// jitter. Client errors other than rate limiting surface immediately;
// rate limits, server errors and network failures are retried.
//
//	d, _ := alert.NewDispatcher(sink, alert.WithStore(store))
//	res, err := d.Dispatch(ctx, alert.Alert{
//	    Environment: "production",
//	    Type:        "job_failure",
//	    Component:   "billing-sync",
//	    Severity:    "critical",
//	    Description: "sync failed after 3 attempts: connection reset",
//	})
package alert
