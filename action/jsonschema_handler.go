package action

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// JSONSchemaHandler validates DSL-marked object parameters (parameters
// carrying an opaque dslId identifying a domain-specific payload shape,
// e.g. embedded SQL or a structured basket update) against a compiled JSON
// Schema before handing the decoded value to a caller-supplied decode
// function. It keeps the resolver itself free of any particular payload
// domain.
type JSONSchemaHandler struct {
	schema *jsonschema.Schema
	// Decode turns the schema-validated raw JSON value into the concrete Go
	// type the action expects. If nil, the raw decoded value (map/slice/
	// primitive) is returned unchanged.
	Decode func(raw any) (any, error)
}

// NewJSONSchemaHandler compiles schemaJSON (a JSON Schema document) and
// returns a handler that rejects any value failing that schema before
// Decode runs.
func NewJSONSchemaHandler(schemaJSON []byte, decode func(raw any) (any, error)) (*JSONSchemaHandler, error) {
	var doc any
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("action: decoding schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("inline.json", doc); err != nil {
		return nil, fmt.Errorf("action: compiling schema: %w", err)
	}
	sch, err := c.Compile("inline.json")
	if err != nil {
		return nil, fmt.Errorf("action: compiling schema: %w", err)
	}
	return &JSONSchemaHandler{schema: sch, Decode: decode}, nil
}

// SchemaGuidance renders a short hint pointing the LLM at the parameter's
// dslId so it knows the value must conform to a registered schema.
func (h *JSONSchemaHandler) SchemaGuidance(p ParameterDescriptor) string {
	if p.DSLID == "" {
		return ""
	}
	return fmt.Sprintf("parameter %q must be a JSON value conforming to schema %q", p.Name, p.DSLID)
}

// Coerce validates raw against the compiled schema, then applies Decode (if
// set) to produce the final value.
func (h *JSONSchemaHandler) Coerce(_ ParameterDescriptor, raw any) (any, error) {
	if err := h.schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if h.Decode == nil {
		return raw, nil
	}
	return h.Decode(raw)
}
