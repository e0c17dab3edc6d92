package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/tick"
	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
)

// CreateJob stores the job as a Hash and registers its ID.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	jID := j.ID.String()
	key := s.keys.job(jID)

	// Check for duplicate.
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("tick/redis: create job exists: %w", err)
	}
	if exists > 0 {
		return tick.ErrJobExists
	}

	cp := j.Clone()
	if cp.CreatedAt.IsZero() {
		cp.Touch(time.Now().UTC())
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, jobToMap(cp))
	pipe.SAdd(ctx, s.keys.jobIndex(), jID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("tick/redis: create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	return s.getJobByKey(ctx, s.keys.job(jobID.String()))
}

// ListJobs returns jobs matching the filter, newest first.
func (s *Store) ListJobs(ctx context.Context, f job.Filter) ([]*job.Job, error) {
	ids, err := s.client.SMembers(ctx, s.keys.jobIndex()).Result()
	if err != nil {
		return nil, fmt.Errorf("tick/redis: list jobs smembers: %w", err)
	}

	jobs := make([]*job.Job, 0, len(ids))
	for _, jID := range ids {
		j, getErr := s.getJobByKey(ctx, s.keys.job(jID))
		if getErr != nil {
			continue // skip missing
		}
		if f.Active != nil && j.Active != *f.Active {
			continue
		}
		if f.TenantID != "" && j.TenantID != f.TenantID {
			continue
		}
		if f.FunctionName != "" && j.FunctionName != f.FunctionName {
			continue
		}
		jobs = append(jobs, j)
	}

	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})

	// Apply offset/limit.
	if f.Offset > 0 {
		if f.Offset >= len(jobs) {
			return nil, nil
		}
		jobs = jobs[f.Offset:]
	}
	if f.Limit > 0 && len(jobs) > f.Limit {
		jobs = jobs[:f.Limit]
	}
	return jobs, nil
}

// ListDueJobs returns active jobs whose next run is unset or not after
// now, ordered by next run ascending with unset first.
func (s *Store) ListDueJobs(ctx context.Context, now time.Time) ([]*job.Job, error) {
	ids, err := s.client.SMembers(ctx, s.keys.jobIndex()).Result()
	if err != nil {
		return nil, fmt.Errorf("tick/redis: list due smembers: %w", err)
	}

	var due []*job.Job
	for _, jID := range ids {
		j, getErr := s.getJobByKey(ctx, s.keys.job(jID))
		if getErr != nil {
			continue // skip missing
		}
		if j.Due(now) {
			due = append(due, j)
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

// UpdateJob persists changes to an existing job. Lease state lives in
// a separate claim key, so it is untouched here.
func (s *Store) UpdateJob(ctx context.Context, j *job.Job) error {
	key := s.keys.job(j.ID.String())

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("tick/redis: update job exists: %w", err)
	}
	if exists == 0 {
		return tick.ErrJobNotFound
	}

	fields := jobToMap(j)
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("tick/redis: update job: %w", err)
	}
	return nil
}

// DeleteJob removes a job by ID, dropping any claim key with it.
func (s *Store) DeleteJob(ctx context.Context, jobID id.JobID) error {
	jID := jobID.String()
	key := s.keys.job(jID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("tick/redis: delete job exists: %w", err)
	}
	if exists == 0 {
		return tick.ErrJobNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, s.keys.claim(jID))
	pipe.SRem(ctx, s.keys.jobIndex(), jID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("tick/redis: delete job: %w", err)
	}
	return nil
}

// ClaimJob acquires an execution lease via SET NX on a dedicated key.
// Redis expires the lease on its own, so a crashed holder never wedges
// the job.
func (s *Store) ClaimJob(ctx context.Context, jobID id.JobID, owner id.WorkerID, ttl time.Duration) (bool, error) {
	jID := jobID.String()

	exists, err := s.client.Exists(ctx, s.keys.job(jID)).Result()
	if err != nil {
		return false, fmt.Errorf("tick/redis: claim job exists: %w", err)
	}
	if exists == 0 {
		return false, tick.ErrJobNotFound
	}

	key := s.keys.claim(jID)
	wID := owner.String()

	// Try SET NX with TTL (atomic acquire).
	ok, err := s.client.SetNX(ctx, key, wID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("tick/redis: claim job setnx: %w", err)
	}
	if ok {
		return true, nil
	}

	// Check if we already hold it.
	current, err := s.client.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("tick/redis: claim job get: %w", err)
	}
	if current == wID {
		// Re-acquire: extend TTL.
		if eErr := s.client.Expire(ctx, key, ttl).Err(); eErr != nil {
			s.logger.Warn("extend claim ttl error", slog.String("error", eErr.Error()))
		}
		return true, nil
	}
	return false, nil
}

// ReleaseJob drops the claim key if owner still holds it.
func (s *Store) ReleaseJob(ctx context.Context, jobID id.JobID, owner id.WorkerID) error {
	jID := jobID.String()

	exists, err := s.client.Exists(ctx, s.keys.job(jID)).Result()
	if err != nil {
		return fmt.Errorf("tick/redis: release job exists: %w", err)
	}
	if exists == 0 {
		return tick.ErrJobNotFound
	}

	current, err := s.client.Get(ctx, s.keys.claim(jID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil // nothing held
		}
		return fmt.Errorf("tick/redis: release job get: %w", err)
	}
	if current != owner.String() {
		return nil // not holding the lease; no-op
	}

	if err := s.client.Del(ctx, s.keys.claim(jID)).Err(); err != nil {
		return fmt.Errorf("tick/redis: release job: %w", err)
	}
	return nil
}

// ── helpers ──

func (s *Store) getJobByKey(ctx context.Context, key string) (*job.Job, error) {
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("tick/redis: get job: %w", err)
	}
	if len(vals) == 0 {
		return nil, tick.ErrJobNotFound
	}
	return mapToJob(vals)
}

// jobToMap flattens a job into Hash fields. Nil times are written as
// empty strings so a later write clears a previously set field.
func jobToMap(j *job.Job) map[string]interface{} {
	m := map[string]interface{}{
		"id":            j.ID.String(),
		"tenant_id":     j.TenantID,
		"name":          j.Name,
		"schedule":      j.Schedule,
		"function_name": j.FunctionName,
		"is_active":     boolField(j.Active),
		"metadata":      marshalJSON(j.Metadata),
		"next_run":      timeField(j.NextRunAt),
		"last_run":      timeField(j.LastRunAt),
		"created_at":    j.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":    j.UpdatedAt.Format(time.RFC3339Nano),
	}
	return m
}

func mapToJob(m map[string]string) (*job.Job, error) {
	jID, err := id.ParseJobID(m["id"])
	if err != nil {
		return nil, fmt.Errorf("tick/redis: parse job id: %w", err)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"]) //nolint:errcheck // best-effort parse from trusted Redis data
	updatedAt, _ := time.Parse(time.RFC3339Nano, m["updated_at"]) //nolint:errcheck // best-effort parse from trusted Redis data

	j := &job.Job{
		Entity: tick.Entity{
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		},
		ID:           jID,
		TenantID:     m["tenant_id"],
		Name:         m["name"],
		Schedule:     m["schedule"],
		FunctionName: m["function_name"],
		Active:       m["is_active"] == "1",
	}

	if v := m["metadata"]; v != "" {
		_ = json.Unmarshal([]byte(v), &j.Metadata) //nolint:errcheck // best-effort parse from trusted Redis data
	}
	if v := m["next_run"]; v != "" {
		t, _ := time.Parse(time.RFC3339Nano, v) //nolint:errcheck // best-effort parse from trusted Redis data
		j.NextRunAt = &t
	}
	if v := m["last_run"]; v != "" {
		t, _ := time.Parse(time.RFC3339Nano, v) //nolint:errcheck // best-effort parse from trusted Redis data
		j.LastRunAt = &t
	}

	return j, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func timeField(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// marshalJSON is a helper to marshal to JSON string.
func marshalJSON(v interface{}) string {
	b, _ := json.Marshal(v) //nolint:errcheck // marshal should not fail for basic types
	return string(b)
}
