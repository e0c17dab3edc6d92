package sqlite

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
	var (
		e       alert.Entry
		created int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT key, reference, created_at
		FROM tick_alerts
		WHERE key = ?
		  AND (expires_at IS NULL OR expires_at > ?)`,
		key, nowMillis(),
	).Scan(&e.Key, &e.Reference, &created)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tick/sqlite: get entry: %w", err)
	}
	e.CreatedAt = fromMillis(created)
	return &e, nil
}

// PutEntry upserts the suppression entry. A non-positive ttl stores it
// without expiry.
func (s *Store) PutEntry(ctx context.Context, e *alert.Entry, ttl time.Duration) error {
	var expiresAt any
	if ttl > 0 {
		expiresAt = time.Now().UTC().Add(ttl).UnixMilli()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tick_alerts (key, reference, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			reference = excluded.reference,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		e.Key, e.Reference, e.CreatedAt.UnixMilli(), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("tick/sqlite: put entry: %w", err)
	}
	return nil
}
