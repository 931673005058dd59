// Package action implements the action catalog: typed, side-effecting
// operations registered by the application and made discoverable to an LLM
// planner. Registration is explicit rather than reflective: each action is
// declared via Register with a schema-carrying Spec rather than discovered
// by scanning struct tags or annotated methods.
package action

import (
	"context"
	"fmt"
)

type (
	// Descriptor is the immutable, LLM-facing description of a registered
	// action. Descriptors are deep-copied before being handed to callers so
	// registry internals cannot be mutated through them.
	Descriptor struct {
		// ID is the stable identifier referenced by plan steps.
		ID string
		// Description is rendered into the prompt catalog.
		Description string
		// ContextKey, when non-empty, is the key under which the action's
		// return value is stored in the per-execution Context after it runs.
		ContextKey string
		// Parameters are ordered exactly as the bound function expects them
		// (excluding any injected parameter, such as the action Context).
		Parameters []ParameterDescriptor
	}

	// ParameterDescriptor describes one LLM-visible argument of an action.
	ParameterDescriptor struct {
		Name            string
		TypeID          string
		Required        bool
		Description     string
		AllowedValues   []string
		AllowedRegex    string
		CaseInsensitive bool
		Examples        []string
		// DSLID, when non-empty, marks this parameter as needing a
		// domain-specific deserializer registered under that id in the
		// TypeHandler registry (e.g. an embedded SQL query).
		DSLID string
	}

	// Binding joins a Descriptor to the callable that implements it. Fn
	// receives the already-coerced, ordered arguments plus the execution
	// Context; injected parameters (like Context) are not part of Args.
	Binding struct {
		Descriptor Descriptor
		Fn         func(ctx context.Context, actx *Context, args []any) (any, error)
	}
)

// Clone returns a deep copy of the descriptor, safe for callers to retain
// and mutate without affecting the registry's internal state.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.Parameters = append([]ParameterDescriptor(nil), d.Parameters...)
	for i, p := range out.Parameters {
		out.Parameters[i].AllowedValues = append([]string(nil), p.AllowedValues...)
		out.Parameters[i].Examples = append([]string(nil), p.Examples...)
	}
	return out
}

// validate checks the static invariants a Descriptor must satisfy before
// registration succeeds. Duplicate-id rejection is enforced by the
// Registry; per-descriptor shape is validated here.
func (d Descriptor) validate() error {
	if d.ID == "" {
		return fmt.Errorf("action: id is required")
	}
	for _, p := range d.Parameters {
		if p.Name == "" {
			return fmt.Errorf("action %q: parameter name is required", d.ID)
		}
		if len(p.AllowedValues) > 0 && p.AllowedRegex != "" {
			return fmt.Errorf("action %q parameter %q: at most one of AllowedValues/AllowedRegex may be set", d.ID, p.Name)
		}
	}
	return nil
}
