package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

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
		return fmt.Errorf("tick/postgres: marshal metadata: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO tick_jobs (
			id, tenant_id, name, schedule, function_name, is_active,
			next_run, last_run, claimed_by, claimed_until, metadata,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13
		)`,
		cp.ID.String(), cp.TenantID, cp.Name, cp.Schedule, cp.FunctionName, cp.Active,
		cp.NextRunAt, cp.LastRunAt, cp.ClaimedBy, cp.ClaimedUntil, meta,
		cp.CreatedAt, cp.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return tick.ErrJobExists
		}
		return fmt.Errorf("tick/postgres: create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM tick_jobs WHERE id = $1`,
		jobID.String(),
	)

	j, err := scanJob(row)
	if err != nil {
		if isNoRows(err) {
			return nil, tick.ErrJobNotFound
		}
		return nil, fmt.Errorf("tick/postgres: get job: %w", err)
	}
	return j, nil
}

// ListJobs returns jobs matching the filter, newest first.
func (s *Store) ListJobs(ctx context.Context, f job.Filter) ([]*job.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM tick_jobs WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.Active != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argIdx)
		args = append(args, *f.Active)
		argIdx++
	}
	if f.TenantID != "" {
		query += fmt.Sprintf(" AND tenant_id = $%d", argIdx)
		args = append(args, f.TenantID)
		argIdx++
	}
	if f.FunctionName != "" {
		query += fmt.Sprintf(" AND function_name = $%d", argIdx)
		args = append(args, f.FunctionName)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, f.Limit)
		argIdx++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, f.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tick/postgres: list jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// ListDueJobs returns active jobs whose next run is unset or not after
// now, ordered by next run ascending with unset first.
func (s *Store) ListDueJobs(ctx context.Context, now time.Time) ([]*job.Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM tick_jobs
		WHERE is_active
		  AND (next_run IS NULL OR next_run <= $1)
		ORDER BY next_run ASC NULLS FIRST`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("tick/postgres: list due jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// UpdateJob persists changes to an existing job. The lease columns are
// deliberately excluded; ClaimJob and ReleaseJob own them.
func (s *Store) UpdateJob(ctx context.Context, j *job.Job) error {
	meta, err := json.Marshal(j.Metadata)
	if err != nil {
		return fmt.Errorf("tick/postgres: marshal metadata: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE tick_jobs SET
			tenant_id = $2, name = $3, schedule = $4, function_name = $5,
			is_active = $6, next_run = $7, last_run = $8, metadata = $9,
			updated_at = NOW()
		WHERE id = $1`,
		j.ID.String(), j.TenantID, j.Name, j.Schedule, j.FunctionName,
		j.Active, j.NextRunAt, j.LastRunAt, meta,
	)
	if err != nil {
		return fmt.Errorf("tick/postgres: update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tick.ErrJobNotFound
	}
	return nil
}

// DeleteJob removes a job by ID.
func (s *Store) DeleteJob(ctx context.Context, jobID id.JobID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tick_jobs WHERE id = $1`, jobID.String())
	if err != nil {
		return fmt.Errorf("tick/postgres: delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tick.ErrJobNotFound
	}
	return nil
}

// ClaimJob acquires an execution lease with a single conditional
// UPDATE. The database clock arbitrates expiry so competing schedulers
// need no clock agreement of their own.
func (s *Store) ClaimJob(ctx context.Context, jobID id.JobID, owner id.WorkerID, ttl time.Duration) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tick_jobs SET
			claimed_by = $2,
			claimed_until = NOW() + make_interval(secs => $3)
		WHERE id = $1
		  AND (claimed_by = '' OR claimed_by = $2
		       OR claimed_until IS NULL OR claimed_until <= NOW())`,
		jobID.String(), owner.String(), ttl.Seconds(),
	)
	if err != nil {
		return false, fmt.Errorf("tick/postgres: claim job: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Blocked or missing; disambiguate for the caller.
	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tick_jobs WHERE id = $1)`,
		jobID.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("tick/postgres: claim job exists: %w", err)
	}
	if !exists {
		return false, tick.ErrJobNotFound
	}
	return false, nil
}

// ReleaseJob drops the lease if owner still holds it.
func (s *Store) ReleaseJob(ctx context.Context, jobID id.JobID, owner id.WorkerID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tick_jobs SET claimed_by = '', claimed_until = NULL
		WHERE id = $1 AND claimed_by = $2`,
		jobID.String(), owner.String(),
	)
	if err != nil {
		return fmt.Errorf("tick/postgres: release job: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Not holding the lease is a no-op, but a missing job is an error.
	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tick_jobs WHERE id = $1)`,
		jobID.String(),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("tick/postgres: release job exists: %w", err)
	}
	if !exists {
		return tick.ErrJobNotFound
	}
	return nil
}

// scanJob scans a single job row.
func scanJob(row pgx.Row) (*job.Job, error) {
	var (
		j       job.Job
		idStr   string
		metaRaw []byte
	)
	err := row.Scan(
		&idStr, &j.TenantID, &j.Name, &j.Schedule, &j.FunctionName, &j.Active,
		&j.NextRunAt, &j.LastRunAt, &j.ClaimedBy, &j.ClaimedUntil, &metaRaw,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsedID, parseErr := id.ParseJobID(idStr)
	if parseErr != nil {
		return nil, fmt.Errorf("tick/postgres: parse job id %q: %w", idStr, parseErr)
	}
	j.ID = parsedID

	if len(metaRaw) > 0 {
		if mErr := json.Unmarshal(metaRaw, &j.Metadata); mErr != nil {
			return nil, fmt.Errorf("tick/postgres: unmarshal metadata: %w", mErr)
		}
	}

	return &j, nil
}

// collectJobs collects all jobs from query rows.
func collectJobs(rows pgx.Rows) ([]*job.Job, error) {
	var jobs []*job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("tick/postgres: scan job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tick/postgres: iterate job rows: %w", err)
	}
	return jobs, nil
}
