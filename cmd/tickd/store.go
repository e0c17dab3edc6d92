package main

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	mongoopts "go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/tick/store"
	"github.com/xraph/tick/store/memory"
	"github.com/xraph/tick/store/mongo"
	"github.com/xraph/tick/store/postgres"
	"github.com/xraph/tick/store/redis"
	"github.com/xraph/tick/store/sqlite"
)

// openStore builds the configured backend and runs its migrations.
// The returned cleanup releases whatever the backend holds open,
// including driver handles the store itself does not own.
func openStore(ctx context.Context, cfg storeConfig, logger *slog.Logger) (store.Store, func(), error) {
	var (
		s       store.Store
		cleanup func()
	)

	switch cfg.Driver {
	case "", "memory":
		m := memory.New()
		s = m
		cleanup = closeLogged(logger, "store", m.Close)

	case "sqlite":
		lite, err := sqlite.Open(cfg.SQLite.Path, sqlite.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		s = lite
		cleanup = closeLogged(logger, "store", lite.Close)

	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s = redis.New(client, redis.WithLogger(logger))
		cleanup = closeLogged(logger, "redis client", client.Close)

	case "postgres":
		pg, err := postgres.New(ctx, cfg.Postgres.DSN, postgres.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		s = pg
		cleanup = closeLogged(logger, "store", pg.Close)

	case "mongo":
		client, err := mongod.Connect(mongoopts.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		s = mongo.New(client.Database(cfg.Mongo.Database), mongo.WithLogger(logger))
		cleanup = closeLogged(logger, "mongo client", func() error {
			return client.Disconnect(context.Background())
		})

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	if err := s.Migrate(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrate %s store: %w", cfg.Driver, err)
	}
	return s, cleanup, nil
}

func closeLogged(logger *slog.Logger, what string, closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil {
			logger.Error("close error",
				slog.String("what", what),
				slog.String("error", err.Error()),
			)
		}
	}
}
