// Package mongo implements store.Store on MongoDB using the official
// driver. Jobs live in tick_jobs with the job ID as _id; suppression
// entries live in tick_alerts with a TTL index for cleanup plus a
// read-time expiry filter, since the TTL reaper only runs about once a
// minute.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/tick"
	"github.com/xraph/tick/store"
)

// Collections written by this package.
const (
	colJobs   = "tick_jobs"
	colAlerts = "tick_alerts"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is the MongoDB-backed store. It operates on a database handle
// whose client the caller opened and will close.
type Store struct {
	db     *mongod.Database
	logger *slog.Logger
}

// New builds a store on db.
func New(db *mongod.Database, opts ...Option) *Store {
	s := &Store{
		db:     db,
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
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Database exposes the underlying handle.
func (s *Store) Database() *mongod.Database {
	return s.db
}

// Migrate creates the indexes every collection needs. Index creation
// is idempotent, so calling it on every startup is safe. Failures
// satisfy errors.Is(err, tick.ErrMigrationFailed).
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range collectionIndexes() {
		if len(models) == 0 {
			continue
		}

		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%w: tick/mongo: %s indexes: %w", tick.ErrMigrationFailed, col, err)
		}
	}

	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// Close implements store.Store. The client stays open; whoever opened
// it closes it.
func (s *Store) Close() error {
	return nil
}

// utcNow is the single clock for stored timestamps. BSON datetimes
// carry millisecond precision, so round-trips drop sub-ms digits.
func utcNow() time.Time {
	return time.Now().UTC()
}

// collectionIndexes declares the index set per collection.
func collectionIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colJobs: {
			// Due scan: active jobs ordered by next run.
			{Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "next_run", Value: 1},
			}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}}},
			{Keys: bson.D{{Key: "function_name", Value: 1}}},
		},
		colAlerts: {
			// TTL cleanup of expired suppression entries.
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0),
			},
		},
	}
}
