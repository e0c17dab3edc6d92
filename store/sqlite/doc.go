// Package sqlite implements store.Store on an embedded SQLite database
// via the CGo-free modernc.org/sqlite driver. Suitable for single-node
// deployments, development, and CLI tools that want durable jobs
// without running a database server.
//
// Timestamps are stored as integer Unix milliseconds, so round trips
// preserve exactly the precision the rest of the module works at.
// Execution leases are claimed with a single conditional UPDATE; the
// process clock arbitrates expiry, which is sound because an embedded
// database has exactly one writing process.
//
// Usage:
//
//	s, err := sqlite.Open("/var/lib/tick/tick.db")
//	if err != nil { ... }
//	if err := s.Migrate(ctx); err != nil { ... }
package sqlite
