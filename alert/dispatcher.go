package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/go-github/github"
	"github.com/xraph/tick"
	"github.com/xraph/tick/retry"
)

// DefaultRetention is how long a recorded fingerprint suppresses
// duplicate dispatches.
const DefaultRetention = 24 * time.Hour

// Dispatcher wraps a Sink with fingerprint suppression and retrying
// delivery. The zero value is not usable; construct with
// NewDispatcher.
type Dispatcher struct {
	sink      Sink
	store     Store
	retention time.Duration
	policy    retry.Policy
	logger    *slog.Logger
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithStore sets the suppression store. Without one every dispatch
// delivers.
func WithStore(s Store) Option {
	return func(d *Dispatcher) { d.store = s }
}

// WithRetention overrides the suppression window applied when
// recording a dispatch.
func WithRetention(ttl time.Duration) Option {
	return func(d *Dispatcher) {
		if ttl > 0 {
			d.retention = ttl
		}
	}
}

// WithRetryPolicy replaces the delivery retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(d *Dispatcher) { d.policy = p }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher builds a dispatcher delivering through sink.
func NewDispatcher(sink Sink, opts ...Option) (*Dispatcher, error) {
	if sink == nil {
		return nil, tick.ErrSinkRequired
	}
	d := &Dispatcher{
		sink:      sink,
		retention: DefaultRetention,
		policy:    DefaultRetryPolicy(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch delivers the alert at most once per fingerprint per
// retention window. A suppression hit returns the earlier reference
// without touching the sink. Lookup and recording failures are logged
// and never fail the dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, a Alert) (*Result, error) {
	key := Fingerprint(a)
	log := d.logger.With(
		slog.String("fingerprint", key),
		slog.String("component", a.Component),
		slog.String("severity", a.Severity),
	)

	if d.store != nil {
		entry, err := d.store.GetEntry(ctx, key)
		switch {
		case err != nil:
			log.Warn("suppression lookup failed, failing open",
				slog.String("error", err.Error()),
			)
		case entry != nil:
			log.Debug("alert suppressed",
				slog.String("reference", entry.Reference),
			)
			return &Result{
				Status:      StatusSuppressed,
				Fingerprint: key,
				Reference:   entry.Reference,
				CreatedAt:   entry.CreatedAt,
			}, nil
		}
	}

	var ref string
	err := d.policy.Do(ctx, func(ctx context.Context) error {
		var derr error
		ref, derr = d.sink.Deliver(ctx, a)
		return derr
	})
	if err != nil {
		return nil, fmt.Errorf("deliver alert %s: %w", key, err)
	}

	now := time.Now().UTC()
	if d.store != nil {
		entry := &Entry{Key: key, Reference: ref, CreatedAt: now}
		if err := d.store.PutEntry(ctx, entry, d.retention); err != nil {
			log.Warn("failed to record suppression entry",
				slog.String("error", err.Error()),
			)
		}
	}

	log.Info("alert dispatched", slog.String("reference", ref))
	return &Result{
		Status:      StatusCreated,
		Fingerprint: key,
		Reference:   ref,
		CreatedAt:   now,
	}, nil
}

// DefaultRetryPolicy is the delivery policy: three retries after the
// initial attempt, exponential backoff from one second with up to 30%
// jitter, and Retryable classifying errors.
func DefaultRetryPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries: 3,
		Backoff:    retry.NewJittered(retry.NewExponential(time.Second, 30*time.Second), 0.3),
		Retryable:  Retryable,
	}
}

// StatusError carries an HTTP status code for sinks that are not built
// on a client library Retryable already understands.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("alert: delivery failed with status %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("alert: delivery failed with status %d", e.Code)
}

func (e *StatusError) Unwrap() error { return e.Err }

// Retryable reports whether a delivery error is transient. Rate
// limits, server errors and network failures are retried; any other
// client error is permanent. Cancellation is never retried.
// Unrecognized errors are assumed transient.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rateLimit *github.RateLimitError
	if errors.As(err, &rateLimit) {
		return true
	}
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return true
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return retryableStatus(ghErr.Response.StatusCode)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return retryableStatus(statusErr.Code)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return true
}

func retryableStatus(code int) bool {
	switch {
	case code == http.StatusTooManyRequests:
		return true
	case code >= http.StatusInternalServerError:
		return true
	case code >= http.StatusBadRequest:
		return false
	default:
		return true
	}
}
