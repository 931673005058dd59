package action

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrDuplicateID indicates Register was called with an id already present
// in the registry. Callers can errors.Is against this rather than matching
// the wrapped message.
var ErrDuplicateID = errors.New("action: duplicate id")

// Spec is what application code supplies to Register: the LLM-facing
// descriptor plus the closure that implements it. Actions are registered
// explicitly rather than discovered by scanning annotated methods, so
// there is no reflection anywhere in the registration path.
type Spec struct {
	Descriptor Descriptor
	// Fn implements the action. args is ordered and coerced exactly as
	// Descriptor.Parameters declares; injected values (like the action
	// Context) are passed as actx, not through args.
	Fn func(ctx context.Context, actx *Context, args []any) (any, error)
}

// Registry discovers and stores ActionDescriptors plus their bindings. A
// Registry is safe for concurrent use: Register serializes on an internal
// lock and reads share it. It is read-mostly, written only at bootstrap: registration after the
// first List/Find call is treated as a configuration error and rejected.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]Binding
	order    []string
	sealed   atomic.Bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]Binding)}
}

// Register adds one action to the catalog. It fails with a descriptive
// error on a malformed Spec, a nil Fn, or a duplicate id.
func (r *Registry) Register(spec Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return fmt.Errorf("action: registry is sealed; cannot register %q after first use", spec.Descriptor.ID)
	}
	if spec.Fn == nil {
		return fmt.Errorf("action %q: Fn is required", spec.Descriptor.ID)
	}
	if err := spec.Descriptor.validate(); err != nil {
		return err
	}
	if _, dup := r.bindings[spec.Descriptor.ID]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateID, spec.Descriptor.ID)
	}

	r.bindings[spec.Descriptor.ID] = Binding{Descriptor: spec.Descriptor.Clone(), Fn: spec.Fn}
	r.order = append(r.order, spec.Descriptor.ID)
	return nil
}

// List returns all registered descriptors in registration order, deep
// copied so callers cannot mutate registry state.
func (r *Registry) List() []Descriptor {
	r.sealed.Store(true)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.bindings[id].Descriptor.Clone())
	}
	return out
}

// Find looks up the binding for an action id. The boolean reports whether
// the action is registered. The returned binding carries a deep copy of the
// descriptor.
func (r *Registry) Find(id string) (Binding, bool) {
	r.sealed.Store(true)
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[id]
	if ok {
		b.Descriptor = b.Descriptor.Clone()
	}
	return b, ok
}

// Dispatch invokes the bound action's function with the given coerced
// arguments and execution context, returning whatever the action returns.
func (r *Registry) Dispatch(ctx context.Context, b Binding, actx *Context, args []any) (any, error) {
	return b.Fn(ctx, actx, args)
}
