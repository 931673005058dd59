// Package prompt implements prompt assembly (C3): composing the ordered
// system messages and single user message a Planner sends to a chat
// client.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/michaelfranz/springai-actions-go/action"
	"github.com/michaelfranz/springai-actions-go/conversation"
)

// basePrompt carries the guardrails that apply regardless of persona or
// registered actions: never fabricate values, never emit an empty string
// for a required parameter.
const basePrompt = `You are a planning assistant. You translate the user's request into a ` +
	`declarative plan composed of registered actions. You never fabricate parameter ` +
	`values the user has not provided or implied, and you never emit an empty string ` +
	`for a required parameter; if a required value is missing, produce a pending step ` +
	`asking for it instead.`

// Persona optionally narrows the assistant's voice and operating
// boundaries. A zero-value Persona renders nothing.
type Persona struct {
	Role        string
	Principles  []string
	Constraints []string
	StyleLines  []string
}

func (p Persona) render() string {
	if p.Role == "" && len(p.Principles) == 0 && len(p.Constraints) == 0 && len(p.StyleLines) == 0 {
		return ""
	}
	var b strings.Builder
	if p.Role != "" {
		fmt.Fprintf(&b, "Role: %s\n", p.Role)
	}
	writeBulletSection(&b, "Principles", p.Principles)
	writeBulletSection(&b, "Constraints", p.Constraints)
	writeBulletSection(&b, "Style", p.StyleLines)
	return strings.TrimRight(b.String(), "\n")
}

func writeBulletSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, l := range lines {
		fmt.Fprintf(b, "- %s\n", l)
	}
}

// Contributor optionally adds one more system message fragment. It
// receives the registered action descriptors, the assembler's shared
// promptContext map, and the conversation state for the current turn
// (including working context, if any). Returning ok=false means "nothing
// to contribute this turn".
type Contributor func(ctx context.Context, actions []action.Descriptor, promptContext map[string]any, state conversation.ConversationState) (contribution string, ok bool)

// Preview is the fully assembled prompt: the ordered system messages, the
// verbatim user message, and the action ids offered to the model this
// turn. Planner callers can inspect a Preview without invoking a chat
// client (dry-run) or log it via a prompt hook.
type Preview struct {
	SystemMessages []string
	UserMessage    string
	ActionIDs      []string
}

// Assembler composes a Preview following the fixed seven-step order: base
// prompt, persona, contributors, type-handler guidance, literal
// contributions, retry addendum, planning directive.
type Assembler struct {
	persona              Persona
	contributors         []Contributor
	typeHandlers         *action.TypeHandlerRegistry
	literalContributions []string
}

// NewAssembler returns an Assembler rendering persona (zero value for
// none), types for type-handler guidance lookups, and contributors in the
// order given.
func NewAssembler(persona Persona, types *action.TypeHandlerRegistry, contributors ...Contributor) *Assembler {
	return &Assembler{persona: persona, typeHandlers: types, contributors: contributors}
}

// AddLiteral appends a caller-supplied literal system-message fragment,
// rendered in step 5 of the assembly order, after type-handler guidance
// and before the retry addendum.
func (a *Assembler) AddLiteral(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	a.literalContributions = append(a.literalContributions, text)
}

// Assemble builds a Preview for one turn. retryAddendum, when non-empty, is
// inserted as step 6 (only follow-up turns carry one); userMessage is
// echoed verbatim as the final user message.
func (a *Assembler) Assemble(
	ctx context.Context,
	actions []action.Descriptor,
	promptContext map[string]any,
	state conversation.ConversationState,
	retryAddendum string,
	userMessage string,
) Preview {
	var messages []string

	// 1. Base system prompt.
	messages = append(messages, basePrompt)

	// 2. Persona block.
	if rendered := a.persona.render(); rendered != "" {
		messages = append(messages, rendered)
	}

	// 3. Contributor outputs, in registration order.
	for _, c := range a.contributors {
		if text, ok := c(ctx, actions, promptContext, state); ok && strings.TrimSpace(text) != "" {
			messages = append(messages, text)
		}
	}

	// 4. Type-handler guidance for every type referenced by any parameter.
	if guidance := a.typeHandlerGuidance(actions); guidance != "" {
		messages = append(messages, guidance)
	}

	// 5. Caller-added literal contributions.
	messages = append(messages, a.literalContributions...)

	// 6. Retry addendum (follow-up turns only).
	if strings.TrimSpace(retryAddendum) != "" {
		messages = append(messages, retryAddendum)
	}

	// 7. Planning directive, authoritative, immediately before the user
	// message.
	messages = append(messages, renderPlanningDirective(actions))

	ids := make([]string, len(actions))
	for i, d := range actions {
		ids[i] = d.ID
	}

	return Preview{SystemMessages: messages, UserMessage: userMessage, ActionIDs: ids}
}

func (a *Assembler) typeHandlerGuidance(actions []action.Descriptor) string {
	if a.typeHandlers == nil {
		return ""
	}
	seen := map[string]bool{}
	var lines []string
	for _, d := range actions {
		for _, p := range d.Parameters {
			typeID := strings.TrimPrefix(p.TypeID, "list:")
			if seen[typeID] {
				continue
			}
			seen[typeID] = true
			h, ok := a.typeHandlers.Lookup(typeID)
			if !ok {
				continue
			}
			if g := h.SchemaGuidance(p); g != "" {
				lines = append(lines, g)
			}
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Type guidance:\n- " + strings.Join(lines, "\n- ")
}
