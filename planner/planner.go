// Package planner implements the planner (C6): end-to-end plan formulation
// with persona/contributor-driven prompt assembly and tiered LLM retry.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/michaelfranz/springai-actions-go/action"
	"github.com/michaelfranz/springai-actions-go/conversation"
	"github.com/michaelfranz/springai-actions-go/model"
	"github.com/michaelfranz/springai-actions-go/plan"
	"github.com/michaelfranz/springai-actions-go/prompt"
)

// Outcome classifies a single attempt's result.
type Outcome string

const (
	OutcomeSuccess          Outcome = "SUCCESS"
	OutcomeValidationFailed Outcome = "VALIDATION_FAILED"
	OutcomeParseFailed      Outcome = "PARSE_FAILED"
	OutcomeNetworkError     Outcome = "NETWORK_ERROR"
)

// maxRawSnippet bounds how much of a failing raw response is retained in a
// synthesized ErrorStep once every tier is exhausted.
const maxRawSnippet = 800

// Tier is one ordered chat-client configuration with its own retry budget.
// Tiers are attempted in order until one produces an accepted plan.
type Tier struct {
	Client      model.Client
	MaxAttempts int
	ModelID     string
}

// AttemptRecord documents one (tier, attempt) pair's outcome.
type AttemptRecord struct {
	ModelID           string
	TierIndex         int
	AttemptWithinTier int
	Outcome           Outcome
	DurationMs        int64
	ErrorDetails      string
	// RetryHint mirrors the resolver's classification of why the attempt's
	// resolved plan failed (plan.RetryHintMissingField/
	// ConstraintViolation/UnknownAction), when the attempt reached
	// resolution at all. NETWORK_ERROR and PARSE_FAILED attempts never
	// reach the resolver, so RetryHint is plan.RetryHintNone for those. It
	// never changes Plan.Status() semantics; it is purely advisory
	// telemetry alongside AttemptRecord.
	RetryHint plan.RetryHint
}

// PlanningMetrics aggregates the full attempt history for one formulatePlan
// call.
type PlanningMetrics struct {
	WinningModel  string
	TotalAttempts int
	Attempts      []AttemptRecord
}

// FormulationResult is everything one call to FormulatePlan produces.
type FormulationResult struct {
	Response string
	Plan     plan.Plan
	Preview  prompt.Preview
	Metrics  PlanningMetrics
}

// Option configures a Planner built with New.
type Option func(*Planner)

// WithFallbackClient appends an additional retry tier, attempted only after
// every prior tier has exhausted its attempts.
func WithFallbackClient(client model.Client, maxAttempts int, modelID string) Option {
	return func(p *Planner) {
		p.tiers = append(p.tiers, Tier{Client: client, MaxAttempts: maxAttempts, ModelID: modelID})
	}
}

// WithPersona sets the persona block rendered into every prompt.
func WithPersona(persona prompt.Persona) Option {
	return func(p *Planner) { p.persona = persona }
}

// WithPromptContributors appends contributors to the assembly chain, in
// the given order, after any already configured.
func WithPromptContributors(contributors ...prompt.Contributor) Option {
	return func(p *Planner) { p.contributors = append(p.contributors, contributors...) }
}

// WithPromptContext sets the shared key/value map passed to every
// contributor.
func WithPromptContext(ctx map[string]any) Option {
	return func(p *Planner) { p.promptContext = ctx }
}

// WithTypeHandlers sets the registry used both for argument coercion and
// for type-handler prompt guidance.
func WithTypeHandlers(types *action.TypeHandlerRegistry) Option {
	return func(p *Planner) { p.types = types }
}

// WithPromptHook registers a callback fired with the assembled Preview
// before any chat-client invocation, useful for logging and dry runs.
func WithPromptHook(hook func(prompt.Preview)) Option {
	return func(p *Planner) { p.promptHook = hook }
}

// WithDryRun forces FormulatePlan to return after building the Preview,
// without invoking any configured tier.
func WithDryRun(dryRun bool) Option {
	return func(p *Planner) { p.dryRun = dryRun }
}

// WithTools sets the provider-native tool definitions passed to every tier's
// chat client on every invocation. Each element is an opaque, provider-
// specific tool schema; the planner does not interpret them.
func WithTools(tools []any) Option {
	return func(p *Planner) { p.tools = tools }
}

// Planner orchestrates prompt assembly, tiered chat-client invocation, and
// raw-plan parsing/resolution for a single action registry.
type Planner struct {
	tiers         []Tier
	actions       *action.Registry
	types         *action.TypeHandlerRegistry
	resolver      *plan.Resolver
	persona       prompt.Persona
	contributors  []prompt.Contributor
	promptContext map[string]any
	promptHook    func(prompt.Preview)
	dryRun        bool
	tools         []any
}

// New builds a Planner dispatching actions through actions, with
// defaultClient as the first tier and any further tiers and configuration
// applied via opts. A nil defaultClient adds no tier; with no tier at all,
// FormulatePlan returns the dry-run result.
func New(actions *action.Registry, defaultClient model.Client, defaultMaxAttempts int, defaultModelID string, opts ...Option) (*Planner, error) {
	if actions == nil {
		return nil, fmt.Errorf("planner: action registry is required")
	}
	p := &Planner{
		actions: actions,
		types:   action.NewTypeHandlerRegistry(),
	}
	if defaultClient != nil {
		p.tiers = append(p.tiers, Tier{Client: defaultClient, MaxAttempts: defaultMaxAttempts, ModelID: defaultModelID})
	}
	for _, opt := range opts {
		opt(p)
	}
	p.resolver = plan.NewResolver(actions, p.types)
	return p, nil
}

// FormulatePlan builds a prompt from userMessage and state, then drives the
// tiered retry loop until a tier accepts a plan or every tier is exhausted.
func (p *Planner) FormulatePlan(ctx context.Context, userMessage string, state conversation.ConversationState) (FormulationResult, error) {
	assembler := prompt.NewAssembler(p.persona, p.types, p.contributors...)
	preview := assembler.Assemble(ctx, p.actions.List(), p.promptContext, state, retryAddendum(state), userMessage)

	if p.promptHook != nil {
		p.promptHook(preview)
	}

	if p.dryRun || len(p.tiers) == 0 {
		return FormulationResult{Preview: preview, Plan: plan.Plan{Steps: nil}}, nil
	}

	var attempts []AttemptRecord
	var lastPlan plan.Plan
	var lastResponse string
	var lastErrorDetail string

	for tierIndex, tier := range p.tiers {
		for attempt := 1; attempt <= tier.MaxAttempts; attempt++ {
			start := time.Now()
			response, err := tier.Client.Invoke(ctx, preview.SystemMessages, preview.UserMessage, p.tools)
			duration := time.Since(start).Milliseconds()

			if err != nil {
				lastErrorDetail = err.Error()
				attempts = append(attempts, AttemptRecord{
					ModelID: tier.ModelID, TierIndex: tierIndex, AttemptWithinTier: attempt,
					Outcome: OutcomeNetworkError, DurationMs: duration, ErrorDetails: lastErrorDetail,
				})
				continue
			}
			lastResponse = response

			raw, err := plan.Parse(response)
			if err != nil {
				lastErrorDetail = err.Error()
				attempts = append(attempts, AttemptRecord{
					ModelID: tier.ModelID, TierIndex: tierIndex, AttemptWithinTier: attempt,
					Outcome: OutcomeParseFailed, DurationMs: duration, ErrorDetails: lastErrorDetail,
				})
				continue
			}

			resolved := p.resolver.Resolve(raw)
			lastPlan = resolved

			if resolved.Status() == plan.StatusError {
				lastErrorDetail = firstErrorMessage(resolved)
				attempts = append(attempts, AttemptRecord{
					ModelID: tier.ModelID, TierIndex: tierIndex, AttemptWithinTier: attempt,
					Outcome: OutcomeValidationFailed, DurationMs: duration, ErrorDetails: lastErrorDetail,
					RetryHint: firstRetryHint(resolved),
				})
				continue
			}

			attempts = append(attempts, AttemptRecord{
				ModelID: tier.ModelID, TierIndex: tierIndex, AttemptWithinTier: attempt,
				Outcome: OutcomeSuccess, DurationMs: duration,
			})
			return FormulationResult{
				Response: response,
				Plan:     resolved,
				Preview:  preview,
				Metrics:  PlanningMetrics{WinningModel: tier.ModelID, TotalAttempts: len(attempts), Attempts: attempts},
			}, nil
		}
	}

	finalPlan := lastPlan
	if finalPlan.Steps == nil || finalPlan.Status() != plan.StatusError {
		finalPlan = plan.Plan{
			AssistantMessage: "unable to produce a usable plan",
			Steps: []plan.Step{plan.ErrorStep{
				Reason: fmt.Sprintf("%s; last response: %s", lastErrorDetail, truncate(lastResponse, maxRawSnippet)),
			}},
		}
	}

	return FormulationResult{
		Response: lastResponse,
		Plan:     finalPlan,
		Preview:  preview,
		Metrics:  PlanningMetrics{TotalAttempts: len(attempts), Attempts: attempts},
	}, nil
}

// AsConversationPlanner adapts p to conversation.Planner, discarding the
// richer FormulationResult (preview, metrics) conversation.Manager does not
// need.
func (p *Planner) AsConversationPlanner() conversation.Planner {
	return conversationAdapter{p: p}
}

type conversationAdapter struct{ p *Planner }

func (a conversationAdapter) FormulatePlan(ctx context.Context, userMessage string, state conversation.ConversationState) (plan.Plan, error) {
	result, err := a.p.FormulatePlan(ctx, userMessage, state)
	return result.Plan, err
}

func firstErrorMessage(p plan.Plan) string {
	for _, s := range p.Steps {
		if es, ok := s.(plan.ErrorStep); ok {
			return es.Reason
		}
	}
	return "plan resolution failed"
}

// firstRetryHint returns the resolver's classification for the first step
// that carries one, so AttemptRecord.RetryHint mirrors the same per-cause
// diagnosis (missing field / constraint violation / unknown action) the
// resolver attached to the step itself.
func firstRetryHint(p plan.Plan) plan.RetryHint {
	for _, s := range p.Steps {
		switch step := s.(type) {
		case plan.ErrorStep:
			if step.RetryHint != plan.RetryHintNone {
				return step.RetryHint
			}
		case plan.PendingActionStep:
			if step.RetryHint != plan.RetryHintNone {
				return step.RetryHint
			}
		}
	}
	return plan.RetryHintNone
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// retryAddendum renders the follow-up-turn-only system message reminding
// the model which parameters are still outstanding from the prior turn.
func retryAddendum(state conversation.ConversationState) string {
	if len(state.PendingParams) == 0 {
		return ""
	}
	msg := "The user is replying to a follow-up request. Outstanding parameters: "
	for i, p := range state.PendingParams {
		if i > 0 {
			msg += ", "
		}
		msg += p.Name
	}
	msg += ". Use the latest user message to resolve them if possible."
	return msg
}
