package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/tick/alert"
)

// GetEntry returns the suppression entry for key. Expired rows are
// filtered out here rather than deleted; the expiry index keeps the
// table cheap to scan.
func (s *Store) GetEntry(ctx context.Context, key string) (*alert.Entry, error) {
	var e alert.Entry
	err := s.pool.QueryRow(ctx, `
		SELECT key, reference, created_at
		FROM tick_alerts
		WHERE key = $1
		  AND (expires_at IS NULL OR expires_at > NOW())`,
		key,
	).Scan(&e.Key, &e.Reference, &e.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tick/postgres: get entry: %w", err)
	}
	return &e, nil
}

// PutEntry upserts the suppression entry. A non-positive ttl stores it
// without expiry.
func (s *Store) PutEntry(ctx context.Context, e *alert.Entry, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().UTC().Add(ttl)
		expiresAt = &t
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tick_alerts (key, reference, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			reference = EXCLUDED.reference,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`,
		e.Key, e.Reference, e.CreatedAt, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("tick/postgres: put entry: %w", err)
	}
	return nil
}
