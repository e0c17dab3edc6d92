package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/tick/alert"
)

// GetEntry returns the suppression entry for key, or (nil, nil) once
// Redis has expired it.
func (s *Store) GetEntry(ctx context.Context, key string) (*alert.Entry, error) {
	raw, err := s.client.Get(ctx, s.keys.entry(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("tick/redis: get entry: %w", err)
	}

	var e alert.Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("tick/redis: unmarshal entry: %w", err)
	}
	return &e, nil
}

// PutEntry stores the entry as a JSON string with the TTL enforced by
// Redis itself. A non-positive ttl stores the entry without expiry.
func (s *Store) PutEntry(ctx context.Context, e *alert.Entry, ttl time.Duration) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("tick/redis: marshal entry: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.keys.entry(e.Key), b, ttl).Err(); err != nil {
		return fmt.Errorf("tick/redis: put entry: %w", err)
	}
	return nil
}
