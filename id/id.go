// Package id provides the prefixed identifiers tick entities carry.
//
// An identifier is a TypeID: a type prefix joined to a K-sortable
// UUIDv7 suffix, as in "job_01h2xcejqtf2nbrexx3vqjhp41". The prefix
// makes an ID self-describing in logs and URLs; the suffix makes it
// globally unique and roughly creation-ordered.
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix is the entity-type tag encoded into an identifier.
type Prefix string

const (
	// PrefixJob tags job identifiers.
	PrefixJob Prefix = "job"
	// PrefixWorker tags run-loop worker identifiers. Workers appear
	// only as lease owners on claimed jobs.
	PrefixWorker Prefix = "wkr"
)

// ID wraps a TypeID. The zero value is Nil, renders as "", and stores
// as SQL NULL, so optional identifier columns need no pointer types.
type ID struct {
	tid typeid.TypeID
	set bool
}

// Nil is the zero-value ID.
var Nil ID

// JobID identifies a job (prefix "job").
type JobID = ID

// WorkerID identifies a lease owner (prefix "wkr").
type WorkerID = ID

// New generates an identifier with the given prefix. An invalid prefix
// is a programming error and panics.
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: prefix %q: %v", prefix, err))
	}
	return ID{tid: tid, set: true}
}

// NewJobID generates a job identifier.
func NewJobID() ID { return New(PrefixJob) }

// NewWorkerID generates a worker identifier.
func NewWorkerID() ID { return New(PrefixWorker) }

// Parse converts a TypeID string back into an ID.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: empty identifier")
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: %q: %w", s, err)
	}
	return ID{tid: tid, set: true}, nil
}

// ParseWithPrefix is Parse plus a check that the identifier carries
// the expected prefix.
func ParseWithPrefix(s string, want Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}
	if got := parsed.Prefix(); got != want {
		return Nil, fmt.Errorf("id: %q is a %q identifier, want %q", s, got, want)
	}
	return parsed, nil
}

// ParseJobID parses s and checks the "job" prefix.
func ParseJobID(s string) (ID, error) { return ParseWithPrefix(s, PrefixJob) }

// ParseWorkerID parses s and checks the "wkr" prefix.
func ParseWorkerID(s string) (ID, error) { return ParseWithPrefix(s, PrefixWorker) }

// MustParse is Parse for hardcoded identifiers; it panics on error.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return parsed
}

// String renders the identifier as "prefix_suffix", or "" for Nil.
func (i ID) String() string {
	if !i.set {
		return ""
	}
	return i.tid.String()
}

// Prefix returns the identifier's type tag, or "" for Nil.
func (i ID) Prefix() Prefix {
	if !i.set {
		return ""
	}
	return Prefix(i.tid.Prefix())
}

// IsNil reports whether the identifier is the zero value.
func (i ID) IsNil() bool { return !i.set }

// MarshalText implements encoding.TextMarshaler. Nil marshals to the
// empty string.
func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The empty string
// unmarshals to Nil.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Value implements driver.Valuer. Nil stores as NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.set {
		return nil, nil
	}
	return i.tid.String(), nil
}

// Scan implements sql.Scanner, accepting TEXT and NULL columns.
func (i *ID) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*i = Nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("id: cannot scan %T", src)
	}
	if s == "" {
		*i = Nil
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
