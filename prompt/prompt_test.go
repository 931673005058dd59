package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/michaelfranz/springai-actions-go/action"
	"github.com/michaelfranz/springai-actions-go/conversation"
)

func sampleActions() []action.Descriptor {
	return []action.Descriptor{
		{
			ID:          "addItem",
			Description: "Add a product to the basket.",
			Parameters: []action.ParameterDescriptor{
				{Name: "product", TypeID: "string", Required: true},
				{Name: "quantity", TypeID: "int", Required: true},
			},
		},
	}
}

func TestAssembleIncludesBasePromptAndDirective(t *testing.T) {
	a := NewAssembler(Persona{}, nil)
	preview := a.Assemble(context.Background(), sampleActions(), nil, conversation.ConversationState{}, "", "add 2 water")

	require.Equal(t, "add 2 water", preview.UserMessage)
	require.Equal(t, []string{"addItem"}, preview.ActionIDs)
	require.Contains(t, preview.SystemMessages[0], "planning assistant")
	require.Contains(t, preview.SystemMessages[len(preview.SystemMessages)-1], "addItem")
}

func TestAssembleRendersPersona(t *testing.T) {
	persona := Persona{Role: "basket assistant", Principles: []string{"be concise"}}
	a := NewAssembler(persona, nil)
	preview := a.Assemble(context.Background(), nil, nil, conversation.ConversationState{}, "", "hi")

	require.Contains(t, preview.SystemMessages[1], "Role: basket assistant")
	require.Contains(t, preview.SystemMessages[1], "be concise")
}

func TestAssembleSkipsEmptyPersona(t *testing.T) {
	a := NewAssembler(Persona{}, nil)
	preview := a.Assemble(context.Background(), nil, nil, conversation.ConversationState{}, "", "hi")

	// Base prompt then directly the planning directive; no persona line.
	require.Len(t, preview.SystemMessages, 2)
}

func TestAssembleRunsContributorsInOrder(t *testing.T) {
	var order []string
	first := func(context.Context, []action.Descriptor, map[string]any, conversation.ConversationState) (string, bool) {
		order = append(order, "first")
		return "first contribution", true
	}
	second := func(context.Context, []action.Descriptor, map[string]any, conversation.ConversationState) (string, bool) {
		order = append(order, "second")
		return "", false
	}
	a := NewAssembler(Persona{}, nil, first, second)
	preview := a.Assemble(context.Background(), nil, nil, conversation.ConversationState{}, "", "hi")

	require.Equal(t, []string{"first", "second"}, order)
	require.Contains(t, preview.SystemMessages, "first contribution")
}

func TestAssembleIncludesTypeHandlerGuidance(t *testing.T) {
	types := action.NewTypeHandlerRegistry()
	types.Register("string", stubGuidanceHandler{guidance: "strings must be quoted"})

	a := NewAssembler(Persona{}, types)
	preview := a.Assemble(context.Background(), sampleActions(), nil, conversation.ConversationState{}, "", "hi")

	found := false
	for _, m := range preview.SystemMessages {
		if m == "Type guidance:\n- strings must be quoted" {
			found = true
		}
	}
	require.True(t, found)
}

func TestAssembleIncludesRetryAddendumOnlyWhenNonEmpty(t *testing.T) {
	a := NewAssembler(Persona{}, nil)
	preview := a.Assemble(context.Background(), nil, nil, conversation.ConversationState{}, "please resolve quantity", "2")

	found := false
	for _, m := range preview.SystemMessages {
		if m == "please resolve quantity" {
			found = true
		}
	}
	require.True(t, found)
}

func TestAssembleAddLiteral(t *testing.T) {
	a := NewAssembler(Persona{}, nil)
	a.AddLiteral("always confirm destructive actions")
	a.AddLiteral("   ")
	preview := a.Assemble(context.Background(), nil, nil, conversation.ConversationState{}, "", "hi")

	require.Contains(t, preview.SystemMessages, "always confirm destructive actions")
}

type stubGuidanceHandler struct{ guidance string }

func (s stubGuidanceHandler) SchemaGuidance(action.ParameterDescriptor) string { return s.guidance }
func (s stubGuidanceHandler) Coerce(_ action.ParameterDescriptor, raw any) (any, error) {
	return raw, nil
}
