// Package store names what a complete backend must provide: the job
// store and alert suppression store contracts those packages define,
// plus schema and lifecycle management. Every backend (memory, sqlite,
// redis, postgres, mongo) implements this one interface.
package store

import (
	"context"

	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/job"
)

// Store is what engines and the daemon program against.
type Store interface {
	job.Store
	alert.Store

	// Migrate brings the backend's schema up to date. Safe to call on
	// every startup; backends without schemas make it a no-op.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
