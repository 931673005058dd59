package action

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const basketUpdateSchema = `{
	"type": "object",
	"required": ["product", "quantity"],
	"properties": {
		"product": {"type": "string"},
		"quantity": {"type": "integer", "minimum": 1}
	}
}`

func TestJSONSchemaHandlerCoerceValid(t *testing.T) {
	h, err := NewJSONSchemaHandler([]byte(basketUpdateSchema), nil)
	require.NoError(t, err)

	raw := map[string]any{"product": "water", "quantity": 2.0}
	v, err := h.Coerce(ParameterDescriptor{}, raw)
	require.NoError(t, err)
	require.Equal(t, raw, v)
}

func TestJSONSchemaHandlerCoerceInvalid(t *testing.T) {
	h, err := NewJSONSchemaHandler([]byte(basketUpdateSchema), nil)
	require.NoError(t, err)

	_, err = h.Coerce(ParameterDescriptor{}, map[string]any{"product": "water"})
	require.Error(t, err)
}

func TestJSONSchemaHandlerDecode(t *testing.T) {
	type basketUpdate struct {
		Product  string
		Quantity int
	}
	h, err := NewJSONSchemaHandler([]byte(basketUpdateSchema), func(raw any) (any, error) {
		m := raw.(map[string]any)
		return basketUpdate{Product: m["product"].(string), Quantity: int(m["quantity"].(float64))}, nil
	})
	require.NoError(t, err)

	v, err := h.Coerce(ParameterDescriptor{}, map[string]any{"product": "water", "quantity": 2.0})
	require.NoError(t, err)
	require.Equal(t, basketUpdate{Product: "water", Quantity: 2}, v)
}

func TestJSONSchemaHandlerSchemaGuidance(t *testing.T) {
	h, err := NewJSONSchemaHandler([]byte(basketUpdateSchema), nil)
	require.NoError(t, err)

	require.Empty(t, h.SchemaGuidance(ParameterDescriptor{Name: "update"}))
	guidance := h.SchemaGuidance(ParameterDescriptor{Name: "update", DSLID: "basketUpdate"})
	require.Contains(t, guidance, "basketUpdate")
	require.Contains(t, guidance, "update")
}

func TestNewJSONSchemaHandlerRejectsMalformedSchema(t *testing.T) {
	_, err := NewJSONSchemaHandler([]byte("not json"), nil)
	require.Error(t, err)
}
