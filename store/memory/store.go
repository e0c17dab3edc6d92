// Package memory implements store.Store entirely in memory. Safe for
// concurrent access; intended for unit testing and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/tick"
	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
	"github.com/xraph/tick/store"
)

var _ store.Store = (*Store)(nil)

// suppression is an alert entry plus its expiry instant.
type suppression struct {
	entry     alert.Entry
	expiresAt time.Time
}

// Store is a fully in-memory implementation of store.Store.
// All reads return copies so callers can mutate without racing.
type Store struct {
	mu sync.RWMutex

	jobs   map[string]*job.Job
	alerts map[string]suppression
	closed bool
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		jobs:   make(map[string]*job.Job),
		alerts: make(map[string]suppression),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle — Migrate / Ping / Close
// ──────────────────────────────────────────────────

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping reports whether the store is open.
func (m *Store) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return tick.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed. Data is retained so late reads in
// drain paths still resolve.
func (m *Store) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// Job Store
// ──────────────────────────────────────────────────

// CreateJob persists a new job.
func (m *Store) CreateJob(_ context.Context, j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := j.ID.String()
	if _, exists := m.jobs[key]; exists {
		return tick.ErrJobExists
	}

	cp := j.Clone()
	if cp.CreatedAt.IsZero() {
		cp.Touch(time.Now().UTC())
	}
	m.jobs[key] = cp
	return nil
}

// GetJob retrieves a job by ID.
func (m *Store) GetJob(_ context.Context, jobID id.JobID) (*job.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return nil, tick.ErrJobNotFound
	}
	return j.Clone(), nil
}

// ListJobs returns jobs matching the filter, newest first.
func (m *Store) ListJobs(_ context.Context, f job.Filter) ([]*job.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*job.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if f.Active != nil && j.Active != *f.Active {
			continue
		}
		if f.TenantID != "" && j.TenantID != f.TenantID {
			continue
		}
		if f.FunctionName != "" && j.FunctionName != f.FunctionName {
			continue
		}
		result = append(result, j.Clone())
	}

	sort.Slice(result, func(i, k int) bool {
		return result[i].CreatedAt.After(result[k].CreatedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(result) {
			return nil, nil
		}
		result = result[f.Offset:]
	}
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}

	return result, nil
}

// ListDueJobs returns active jobs whose next run is unset or not after
// now, ordered by next run ascending with unset first.
func (m *Store) ListDueJobs(_ context.Context, now time.Time) ([]*job.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var due []*job.Job
	for _, j := range m.jobs {
		if j.Due(now) {
			due = append(due, j.Clone())
		}
	}

	sort.Slice(due, func(i, k int) bool {
		a, b := due[i].NextRunAt, due[k].NextRunAt
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})

	return due, nil
}

// UpdateJob persists changes to an existing job. The stored lease
// fields survive the update; only ClaimJob and ReleaseJob touch them.
func (m *Store) UpdateJob(_ context.Context, j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := j.ID.String()
	existing, ok := m.jobs[key]
	if !ok {
		return tick.ErrJobNotFound
	}
	cp := j.Clone()
	cp.ClaimedBy = existing.ClaimedBy
	cp.ClaimedUntil = existing.ClaimedUntil
	cp.UpdatedAt = time.Now().UTC()
	m.jobs[key] = cp
	return nil
}

// DeleteJob removes a job by ID.
func (m *Store) DeleteJob(_ context.Context, jobID id.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := jobID.String()
	if _, ok := m.jobs[key]; !ok {
		return tick.ErrJobNotFound
	}
	delete(m.jobs, key)
	return nil
}

// ClaimJob acquires an execution lease on the job.
func (m *Store) ClaimJob(_ context.Context, jobID id.JobID, owner id.WorkerID, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return false, tick.ErrJobNotFound
	}

	now := time.Now().UTC()

	// An unexpired lease held by someone else blocks the claim.
	if j.ClaimedBy != "" && j.ClaimedUntil != nil && j.ClaimedUntil.After(now) {
		if j.ClaimedBy != owner.String() {
			return false, nil
		}
	}

	j.ClaimedBy = owner.String()
	until := now.Add(ttl)
	j.ClaimedUntil = &until
	return true, nil
}

// ReleaseJob drops the lease if owner still holds it.
func (m *Store) ReleaseJob(_ context.Context, jobID id.JobID, owner id.WorkerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return tick.ErrJobNotFound
	}

	if j.ClaimedBy != owner.String() {
		return nil // not holding the lease; no-op
	}

	j.ClaimedBy = ""
	j.ClaimedUntil = nil
	return nil
}

// ──────────────────────────────────────────────────
// Alert Store
// ──────────────────────────────────────────────────

// GetEntry returns the unexpired suppression entry for key, or (nil, nil).
// Expired entries are dropped lazily on read.
func (m *Store) GetEntry(_ context.Context, key string) (*alert.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.alerts[key]
	if !ok {
		return nil, nil
	}
	if !s.expiresAt.IsZero() && !s.expiresAt.After(time.Now().UTC()) {
		delete(m.alerts, key)
		return nil, nil
	}

	cp := s.entry
	return &cp, nil
}

// PutEntry records a suppression entry with the given time-to-live.
// A non-positive ttl stores the entry without expiry.
func (m *Store) PutEntry(_ context.Context, e *alert.Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := suppression{entry: *e}
	if ttl > 0 {
		s.expiresAt = time.Now().UTC().Add(ttl)
	}
	m.alerts[e.Key] = s
	return nil
}
