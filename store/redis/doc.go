// Package redis implements store.Store on Redis. Jobs are stored as
// Hashes with a Set tracking IDs for enumeration; execution leases are
// dedicated keys with native TTL expiry, so job records never mirror
// lease state. Suppression entries are JSON strings expired by Redis
// itself.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
package redis
