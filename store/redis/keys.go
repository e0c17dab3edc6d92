package redis

// DefaultKeyPrefix namespaces every key written by this package.
const DefaultKeyPrefix = "tick:"

// keyspace builds the Redis keys for one store instance. Centralizing
// construction here keeps the prefix configurable and the layout in
// one place.
type keyspace struct {
	prefix string
}

// job is the Hash holding one job record: {prefix}job:{id}
func (k keyspace) job(id string) string { return k.prefix + "job:" + id }

// jobIndex is the Set of all job IDs, used for enumeration.
func (k keyspace) jobIndex() string { return k.prefix + "job_ids" }

// claim is the lease key for one job: {prefix}claim:{id}. Redis TTL
// expires it, so releases never race a reaper.
func (k keyspace) claim(id string) string { return k.prefix + "claim:" + id }

// entry is a suppression-entry key. The alert layer namespaces its own
// keys, so only the prefix is added.
func (k keyspace) entry(key string) string { return k.prefix + key }
