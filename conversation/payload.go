package conversation

import (
	"encoding/json"
	"fmt"
	"sync"
)

// PayloadDecoder materializes a WorkingContext.Payload from its raw decoded
// JSON representation (map[string]any, []any, or a primitive) into the
// concrete Go type registered for a given contextType.
type PayloadDecoder func(raw any) (any, error)

// PayloadTypeRegistry maps workingContext.contextType to the decoder that
// knows how to turn its raw JSON payload into a typed Go value. Without a
// registered decoder, a payload decodes as the generic JSON shape
// (map[string]any / []any / primitives), which is always a safe fallback.
type PayloadTypeRegistry struct {
	mu       sync.RWMutex
	decoders map[string]PayloadDecoder
}

// NewPayloadTypeRegistry returns an empty registry.
func NewPayloadTypeRegistry() *PayloadTypeRegistry {
	return &PayloadTypeRegistry{decoders: make(map[string]PayloadDecoder)}
}

// Register associates a PayloadDecoder with a contextType, replacing any
// previous registration.
func (r *PayloadTypeRegistry) Register(contextType string, d PayloadDecoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[contextType] = d
}

// Decode applies the decoder registered for contextType to raw, returning
// raw unchanged if no decoder is registered.
func (r *PayloadTypeRegistry) Decode(contextType string, raw any) (any, error) {
	r.mu.RLock()
	d, ok := r.decoders[contextType]
	r.mu.RUnlock()
	if !ok {
		return raw, nil
	}
	v, err := d(raw)
	if err != nil {
		return nil, fmt.Errorf("conversation: decoding payload for contextType %q: %w", contextType, err)
	}
	return v, nil
}

// DecodeInto is a convenience helper for PayloadDecoder implementations
// backed by a concrete struct type: it round-trips raw through JSON into
// out, a pointer to the target struct.
func DecodeInto(raw any, out any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
