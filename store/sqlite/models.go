package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
)

// Timestamps live in the database as Unix milliseconds (UTC). NULL
// columns map to nil pointers on the entity.

func nowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

func toMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func fromNullMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanJob.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob scans a single job row.
func scanJob(row rowScanner) (*job.Job, error) {
	var (
		j       job.Job
		idStr   string
		next    sql.NullInt64
		last    sql.NullInt64
		until   sql.NullInt64
		metaRaw []byte
		created int64
		updated int64
	)
	err := row.Scan(
		&idStr, &j.TenantID, &j.Name, &j.Schedule, &j.FunctionName, &j.Active,
		&next, &last, &j.ClaimedBy, &until, &metaRaw,
		&created, &updated,
	)
	if err != nil {
		return nil, err
	}

	parsedID, parseErr := id.ParseJobID(idStr)
	if parseErr != nil {
		return nil, fmt.Errorf("tick/sqlite: parse job id %q: %w", idStr, parseErr)
	}
	j.ID = parsedID

	j.NextRunAt = fromNullMillis(next)
	j.LastRunAt = fromNullMillis(last)
	j.ClaimedUntil = fromNullMillis(until)
	j.CreatedAt = fromMillis(created)
	j.UpdatedAt = fromMillis(updated)

	if len(metaRaw) > 0 {
		if mErr := json.Unmarshal(metaRaw, &j.Metadata); mErr != nil {
			return nil, fmt.Errorf("tick/sqlite: unmarshal metadata: %w", mErr)
		}
	}

	return &j, nil
}

// collectJobs collects all jobs from query rows.
func collectJobs(rows *sql.Rows) ([]*job.Job, error) {
	var jobs []*job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("tick/sqlite: scan job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tick/sqlite: iterate job rows: %w", err)
	}
	return jobs, nil
}
