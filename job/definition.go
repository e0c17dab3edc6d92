package job

import (
	"context"
	"encoding/json"
	"fmt"
)

// Definition is a typed job definition. T is the handler's
// configuration shape, decoded from the job's metadata at execution
// time, so each job bound to the function can carry its own settings.
type Definition[T any] struct {
	// Name is the function name jobs reference.
	Name string
	// Handler executes one run with the decoded configuration.
	Handler func(ctx context.Context, inv *Invocation, cfg T) error
}

// NewDefinition builds a typed definition.
func NewDefinition[T any](name string, handler func(ctx context.Context, inv *Invocation, cfg T) error) *Definition[T] {
	return &Definition[T]{Name: name, Handler: handler}
}

// RegisterDefinition registers the definition's handler wrapped in a
// decoder: the invocation's metadata extras are unmarshalled into T
// before the typed handler runs. Jobs with no extras get a zero T.
func RegisterDefinition[T any](r *Registry, def *Definition[T]) {
	r.Register(def.Name, func(ctx context.Context, inv *Invocation) error {
		var cfg T
		if len(inv.Job.Metadata.Extra) > 0 {
			raw, err := json.Marshal(inv.Job.Metadata.Extra)
			if err != nil {
				return fmt.Errorf("encode config for function %q: %w", def.Name, err)
			}
			if err := json.Unmarshal(raw, &cfg); err != nil {
				return fmt.Errorf("decode config for function %q: %w", def.Name, err)
			}
		}
		return def.Handler(ctx, inv, cfg)
	})
}
