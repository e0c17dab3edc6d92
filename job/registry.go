package job

import (
	"context"
	"sort"
	"sync"
)

// Invocation is what a handler receives for one run: the job record as
// selected for this pass, with bookkeeping already advanced, and the
// store the scheduler writes through. Handlers use the store to persist
// state of their own between runs.
type Invocation struct {
	Job   *Job
	Store Store
}

// HandlerFunc executes one run of a job.
type HandlerFunc func(ctx context.Context, inv *Invocation) error

// Registry maps function names to handlers. It is safe for concurrent
// use; registration typically happens once at startup.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register binds a handler to a function name, replacing any previous
// binding.
func (r *Registry) Register(name string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Handler returns the handler bound to name.
func (r *Registry) Handler(name string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
