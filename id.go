package tick

import "github.com/xraph/tick/id"

// ID aliases the identifier type so callers can write tick.ID without
// importing the id package.
type ID = id.ID

// Prefix is the entity-type tag carried by an identifier.
type Prefix = id.Prefix

// JobID and WorkerID alias the typed identifiers so callers holding a
// job or a lease owner don't need a second import for the key types.
type (
	JobID    = id.JobID
	WorkerID = id.WorkerID
)
