package job

import (
	"encoding/json"
	"time"
)

// Metadata carries the execution counters the run loop maintains plus
// arbitrary job-scoped configuration. On the wire it is a single flat
// JSON object: the typed fields and the Extra entries marshal at the
// same level, so stored records stay compatible with readers that treat
// metadata as an open mapping.
//
// The typed fields own their keys. An Extra entry under one of those
// keys is shadowed when marshalling and captured into the typed field
// when unmarshalling.
type Metadata struct {
	// ExecutionCount is the number of runs started.
	ExecutionCount int `json:"execution_count,omitempty"`
	// ErrorCount is the number of runs that returned an error.
	ErrorCount int `json:"error_count,omitempty"`
	// LastError is the message of the most recent failure.
	LastError string `json:"last_error,omitempty"`
	// LastExecution is when the most recent run started.
	LastExecution *time.Time `json:"last_execution,omitempty"`

	// Extra holds everything else stored under the job's metadata,
	// typically handler configuration.
	Extra map[string]any `json:"-"`
}

// RecordExecution stamps the bookkeeping for a run that is about to
// start: last_execution is set to now and execution_count incremented.
func (m *Metadata) RecordExecution(now time.Time) {
	now = now.UTC()
	m.LastExecution = &now
	m.ExecutionCount++
}

// RecordError stamps the bookkeeping for a failed run: last_error is
// replaced and error_count incremented.
func (m *Metadata) RecordError(msg string) {
	m.LastError = msg
	m.ErrorCount++
}

// Merge folds extra entries into the metadata additively. Colliding
// keys are overwritten; everything else, counters included, survives.
func (m *Metadata) Merge(extra map[string]any) {
	if len(extra) == 0 {
		return
	}
	if m.Extra == nil {
		m.Extra = make(map[string]any, len(extra))
	}
	for k, v := range extra {
		m.Extra[k] = v
	}
}

// Get returns the extra entry under key.
func (m Metadata) Get(key string) (any, bool) {
	v, ok := m.Extra[key]
	return v, ok
}

// Clone returns a copy with its own Extra map. Nested values are
// shared.
func (m Metadata) Clone() Metadata {
	cp := m
	cp.LastExecution = cloneTime(m.LastExecution)
	if m.Extra != nil {
		cp.Extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			cp.Extra[k] = v
		}
	}
	return cp
}

const (
	keyExecutionCount = "execution_count"
	keyErrorCount     = "error_count"
	keyLastError      = "last_error"
	keyLastExecution  = "last_execution"
)

// MarshalJSON flattens the typed fields and the extras into one object.
func (m Metadata) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(m.Extra)+4)
	for k, v := range m.Extra {
		flat[k] = v
	}
	if m.ExecutionCount != 0 {
		flat[keyExecutionCount] = m.ExecutionCount
	}
	if m.ErrorCount != 0 {
		flat[keyErrorCount] = m.ErrorCount
	}
	if m.LastError != "" {
		flat[keyLastError] = m.LastError
	}
	if m.LastExecution != nil {
		flat[keyLastExecution] = m.LastExecution.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits a flat object back into typed fields and extras.
// Entries under a known key with an unexpected shape are kept as
// extras rather than dropped.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*m = Metadata{}
	for k, v := range flat {
		switch k {
		case keyExecutionCount:
			if n, ok := asInt(v); ok {
				m.ExecutionCount = n
				continue
			}
		case keyErrorCount:
			if n, ok := asInt(v); ok {
				m.ErrorCount = n
				continue
			}
		case keyLastError:
			if s, ok := v.(string); ok {
				m.LastError = s
				continue
			}
		case keyLastExecution:
			if s, ok := v.(string); ok {
				if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
					m.LastExecution = &ts
					continue
				}
			}
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[k] = v
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}
