// Package plan implements the raw-plan parser (C4) and plan resolver (C5):
// turning an LLM's text response into a validated, bound Plan that the
// executor can run.
package plan

// RawPlan is the direct JSON decoding of an LLM response. Every field is
// optional at the JSON level; the resolver is responsible for turning
// absence/ambiguity into a classified PlanStep.
type RawPlan struct {
	Message string        `json:"message"`
	Steps   []RawPlanStep `json:"steps"`
}

// RawPlanStep is the union of the four step shapes the wire format allows.
// Exactly one "profile" should be populated; the resolver tolerates
// malformed overlaps by checking fields in a fixed precedence order.
type RawPlanStep struct {
	// Error profile.
	Error  bool   `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`

	// No-action profile.
	NoAction bool `json:"noAction,omitempty"`

	// Action / Pending profile.
	ActionID       string            `json:"actionId,omitempty"`
	Description    string            `json:"description,omitempty"`
	Parameters     map[string]any    `json:"parameters,omitempty"`
	Status         string            `json:"status,omitempty"`
	PendingParams  []RawPendingParam `json:"pendingParams,omitempty"`
	ProvidedParams map[string]any    `json:"providedParams,omitempty"`
}

// RawPendingParam names one parameter the planner could not supply, plus a
// user-facing prompt to elicit it.
type RawPendingParam struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// IsPending reports whether this step uses the pending profile
// (`status:"pending"` present).
func (s RawPlanStep) IsPending() bool { return s.Status == "pending" }
