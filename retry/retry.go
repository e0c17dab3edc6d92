// Package retry runs an operation under a reusable retry policy:
// a maximum attempt count, a backoff strategy, and a retryability
// predicate deciding which errors are worth another try.
//
// The same Policy value can guard any outbound call site; tick's alert
// dispatcher uses it against the issue-tracker API.
package retry

import (
	"context"
	"time"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	// 3 means up to 4 total tries.
	MaxRetries int

	// Backoff computes the delay before each retry.
	Backoff Strategy

	// Retryable reports whether an error is transient. A nil predicate
	// treats every error as retryable. Permanent errors surface
	// immediately with no further attempts.
	Retryable func(error) bool
}

// DefaultPolicy returns the policy used for outbound dispatch: 3 retries,
// 1s base delay doubling per attempt with up to 30% jitter, capped at 30s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		Backoff:    NewJittered(NewExponential(time.Second, 30*time.Second), 0.3),
	}
}

// Do runs op, retrying per the policy. It returns nil on the first
// success, the last error once retries are exhausted, and the first
// non-retryable error immediately. Backoff sleeps respect ctx; a
// cancelled context surfaces ctx.Err().
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	backoff := p.Backoff
	if backoff == nil {
		backoff = NewExponential(time.Second, 30*time.Second)
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt >= p.MaxRetries {
			return lastErr
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}

		timer := time.NewTimer(backoff.Delay(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
