// Package conversation implements the conversation manager (C9) and the
// working-context registry (C10): per-turn state transitions, the blob
// codec, and migration support that let a caller carry planning state
// across turns as an opaque, versioned byte slice.
package conversation

import "time"

// PendingParam is one parameter the last plan could not resolve, together
// with the prompt shown to the user to elicit it.
type PendingParam struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// WorkingContext is a typed payload representing the "object under
// refinement" across turns (e.g. a query being incrementally tuned).
// ContextType selects how Payload is materialized by the payload-type
// registry during blob decoding.
type WorkingContext struct {
	ContextType  string            `json:"contextType"`
	Payload      any               `json:"payload"`
	LastModified time.Time         `json:"lastModified"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ConversationState is the full per-turn state carried across a
// conversation, serialized to and from a blob by the Manager.
type ConversationState struct {
	// OriginalInstruction is the first user message of the turn chain.
	OriginalInstruction string `json:"originalInstruction"`
	// LatestUserMessage is the most recent user input.
	LatestUserMessage string `json:"latestUserMessage"`
	// PendingParams lists outstanding {name,prompt} entries from the last
	// plan. It never contains a name already present in ProvidedParams
	// unless that name is being re-requested because its previous value
	// was invalid.
	PendingParams []PendingParam `json:"pendingParams,omitempty"`
	// ProvidedParams accumulates name->value already supplied by the user
	// across turns.
	ProvidedParams map[string]any `json:"providedParams,omitempty"`
	// WorkingContext is the current typed payload, if any.
	WorkingContext *WorkingContext `json:"workingContext,omitempty"`
	// TurnHistory is a bounded list of prior working contexts, oldest first,
	// capped by the Manager's configured history size.
	TurnHistory []WorkingContext `json:"turnHistory,omitempty"`
	// EvictedTurns counts how many TurnHistory entries have been dropped to
	// respect the history cap, for callers that want to surface "N earlier
	// contexts not shown" in a UI.
	EvictedTurns int `json:"evictedTurns"`
	// SchemaVersion is the ConversationState shape version this value was
	// last migrated to or created at.
	SchemaVersion int `json:"schemaVersion"`
}

// Initial returns the starting state for a brand-new conversation: the
// given message becomes both the original instruction and the latest user
// message, with no pending/provided params and no working context.
func Initial(userMessage string) ConversationState {
	return ConversationState{
		OriginalInstruction: userMessage,
		LatestUserMessage:   userMessage,
		ProvidedParams:      map[string]any{},
		SchemaVersion:       CurrentSchemaVersion,
	}
}

// PendingParamNames returns the Name field of every entry in PendingParams,
// in order.
func (s ConversationState) PendingParamNames() []string {
	if len(s.PendingParams) == 0 {
		return nil
	}
	names := make([]string, len(s.PendingParams))
	for i, p := range s.PendingParams {
		names[i] = p.Name
	}
	return names
}
