package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/tick"
	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
)

const jobColumns = `
	id, tenant_id, name, schedule, function_name, is_active,
	next_run, last_run, claimed_by, claimed_until, metadata,
	created_at, updated_at`

// CreateJob persists a new job.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	cp := j.Clone()
	if cp.CreatedAt.IsZero() {
		cp.Touch(time.Now().UTC())
	}

	meta, err := json.Marshal(cp.Metadata)
	if err != nil {
		return fmt.Errorf("tick/sqlite: marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tick_jobs (
			id, tenant_id, name, schedule, function_name, is_active,
			next_run, last_run, claimed_by, claimed_until, metadata,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.ID.String(), cp.TenantID, cp.Name, cp.Schedule, cp.FunctionName, cp.Active,
		toMillis(cp.NextRunAt), toMillis(cp.LastRunAt), cp.ClaimedBy, toMillis(cp.ClaimedUntil), meta,
		cp.CreatedAt.UnixMilli(), cp.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return tick.ErrJobExists
		}
		return fmt.Errorf("tick/sqlite: create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM tick_jobs WHERE id = ?`,
		jobID.String(),
	)

	j, err := scanJob(row)
	if err != nil {
		if isNoRows(err) {
			return nil, tick.ErrJobNotFound
		}
		return nil, fmt.Errorf("tick/sqlite: get job: %w", err)
	}
	return j, nil
}

// ListJobs returns jobs matching the filter, newest first.
func (s *Store) ListJobs(ctx context.Context, f job.Filter) ([]*job.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM tick_jobs WHERE 1=1`
	args := []any{}

	if f.Active != nil {
		query += " AND is_active = ?"
		args = append(args, *f.Active)
	}
	if f.TenantID != "" {
		query += " AND tenant_id = ?"
		args = append(args, f.TenantID)
	}
	if f.FunctionName != "" {
		query += " AND function_name = ?"
		args = append(args, f.FunctionName)
	}

	query += " ORDER BY created_at DESC"

	// SQLite requires LIMIT before OFFSET; -1 means unlimited.
	switch {
	case f.Limit > 0:
		query += " LIMIT ?"
		args = append(args, f.Limit)
	case f.Offset > 0:
		query += " LIMIT -1"
	}
	if f.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tick/sqlite: list jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// ListDueJobs returns active jobs whose next run is unset or not after
// now, ordered by next run ascending with unset first.
func (s *Store) ListDueJobs(ctx context.Context, now time.Time) ([]*job.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM tick_jobs
		WHERE is_active = 1
		  AND (next_run IS NULL OR next_run <= ?)
		ORDER BY next_run IS NOT NULL, next_run ASC`,
		now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("tick/sqlite: list due jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// UpdateJob persists changes to an existing job. The lease columns are
// deliberately excluded; ClaimJob and ReleaseJob own them.
func (s *Store) UpdateJob(ctx context.Context, j *job.Job) error {
	meta, err := json.Marshal(j.Metadata)
	if err != nil {
		return fmt.Errorf("tick/sqlite: marshal metadata: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tick_jobs SET
			tenant_id = ?, name = ?, schedule = ?, function_name = ?,
			is_active = ?, next_run = ?, last_run = ?, metadata = ?,
			updated_at = ?
		WHERE id = ?`,
		j.TenantID, j.Name, j.Schedule, j.FunctionName,
		j.Active, toMillis(j.NextRunAt), toMillis(j.LastRunAt), meta,
		nowMillis(), j.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("tick/sqlite: update job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("tick/sqlite: update job rows: %w", err)
	}
	if n == 0 {
		return tick.ErrJobNotFound
	}
	return nil
}

// DeleteJob removes a job by ID.
func (s *Store) DeleteJob(ctx context.Context, jobID id.JobID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tick_jobs WHERE id = ?`, jobID.String())
	if err != nil {
		return fmt.Errorf("tick/sqlite: delete job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("tick/sqlite: delete job rows: %w", err)
	}
	if n == 0 {
		return tick.ErrJobNotFound
	}
	return nil
}

// ClaimJob acquires an execution lease with a single conditional
// UPDATE. The process clock arbitrates expiry; with one writing
// process that clock is authoritative.
func (s *Store) ClaimJob(ctx context.Context, jobID id.JobID, owner id.WorkerID, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE tick_jobs SET
			claimed_by = ?,
			claimed_until = ?
		WHERE id = ?
		  AND (claimed_by = '' OR claimed_by = ?
		       OR claimed_until IS NULL OR claimed_until <= ?)`,
		owner.String(), now.Add(ttl).UnixMilli(),
		jobID.String(), owner.String(), now.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("tick/sqlite: claim job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("tick/sqlite: claim job rows: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	// Blocked or missing; disambiguate for the caller.
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tick_jobs WHERE id = ?)`,
		jobID.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("tick/sqlite: claim job exists: %w", err)
	}
	if !exists {
		return false, tick.ErrJobNotFound
	}
	return false, nil
}

// ReleaseJob drops the lease if owner still holds it.
func (s *Store) ReleaseJob(ctx context.Context, jobID id.JobID, owner id.WorkerID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tick_jobs SET claimed_by = '', claimed_until = NULL
		WHERE id = ? AND claimed_by = ?`,
		jobID.String(), owner.String(),
	)
	if err != nil {
		return fmt.Errorf("tick/sqlite: release job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("tick/sqlite: release job rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Not holding the lease is a no-op, but a missing job is an error.
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tick_jobs WHERE id = ?)`,
		jobID.String(),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("tick/sqlite: release job exists: %w", err)
	}
	if !exists {
		return tick.ErrJobNotFound
	}
	return nil
}
