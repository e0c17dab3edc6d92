// Package postgres implements store.Store on PostgreSQL using pgx/v5.
// Schema migrations are embedded SQL files applied by Migrate and
// tracked in a tick_migrations table. Execution leases are claimed
// with a single conditional UPDATE against the database clock, and
// expired suppression entries are filtered out at read time.
//
// Usage:
//
//	s, err := postgres.New(ctx, "postgres://localhost:5432/tick?sslmode=disable")
//	if err != nil { ... }
//	if err := s.Migrate(ctx); err != nil { ... }
package postgres
