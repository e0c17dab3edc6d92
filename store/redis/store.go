package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/tick/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is the Redis-backed store. It accepts any redis.Cmdable, so a
// plain client, a cluster client, or a test double all work.
type Store struct {
	client redis.Cmdable
	keys   keyspace
	logger *slog.Logger
}

// New wraps an existing Redis client. The store never closes the
// client; whoever opened it does.
func New(client redis.Cmdable, opts ...Option) *Store {
	s := &Store{
		client: client,
		keys:   keyspace{prefix: DefaultKeyPrefix},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithKeyPrefix replaces the default "tick:" key prefix. Use it when
// several schedulers share one Redis server.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.keys = keyspace{prefix: prefix} }
}

// Client exposes the wrapped Redis client.
func (s *Store) Client() redis.Cmdable { return s.client }

// Migrate implements store.Store. Redis needs no schema, so there is
// nothing to set up.
func (s *Store) Migrate(context.Context) error { return nil }

// Ping round-trips a PING to verify connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements store.Store without touching the client connection.
func (s *Store) Close() error { return nil }
