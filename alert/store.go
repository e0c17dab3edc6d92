package alert

import (
	"context"
	"time"
)

// Entry is one suppression record: a fingerprint mapped to the
// external reference it produced. Entries are written once and lapse
// through store-level expiry; they are never updated.
type Entry struct {
	Key       string    `json:"key"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the TTL-backed suppression store. Implementations must be
// safe for concurrent use.
//
// The store is advisory: Dispatcher treats a lookup error as a miss
// and a write error as a logged warning, so implementations should
// return errors rather than block when their backend is down.
type Store interface {
	// GetEntry returns the unexpired entry for key, or (nil, nil)
	// when none exists.
	GetEntry(ctx context.Context, key string) (*Entry, error)

	// PutEntry records the entry with the given time-to-live. The
	// backend is responsible for expiry.
	PutEntry(ctx context.Context, e *Entry, ttl time.Duration) error
}
