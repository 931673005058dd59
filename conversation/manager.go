package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/michaelfranz/springai-actions-go/plan"
)

// Planner is the slice of planner.Planner the Manager depends on: given the
// latest user message and the current state, produce a bound Plan. Kept as
// an interface here so this package never imports the planner package.
type Planner interface {
	FormulatePlan(ctx context.Context, userMessage string, state ConversationState) (plan.Plan, error)
}

// WorkingContextExtractor derives an updated WorkingContext from an
// executed ActionStep, or reports ok=false if that action does not affect
// the working context.
type WorkingContextExtractor func(step plan.ActionStep) (wc WorkingContext, ok bool)

// ConversationTurnResult is what RunTurn returns: the formulated plan, the
// state it produced, that state's serialized blob, and the pending/provided
// parameter views a caller's UI typically needs directly.
type ConversationTurnResult struct {
	Plan           plan.Plan
	State          ConversationState
	Blob           []byte
	PendingParams  []PendingParam
	ProvidedParams map[string]any
}

// Option configures a Manager built with NewManager.
type Option func(*Manager)

// WithMaxHistorySize bounds ConversationState.TurnHistory; the oldest
// entries are dropped once the cap is exceeded. Zero or negative disables
// history retention entirely. Default is 10.
func WithMaxHistorySize(n int) Option {
	return func(m *Manager) { m.maxHistorySize = n }
}

// WithMigrations installs the migration registry used to upgrade blobs
// written by older schema versions.
func WithMigrations(reg *MigrationRegistry) Option {
	return func(m *Manager) { m.codec = NewCodec(reg, m.payloads) }
}

// WithPayloadTypes installs the registry used to materialize polymorphic
// working-context payloads during decode.
func WithPayloadTypes(reg *PayloadTypeRegistry) Option {
	return func(m *Manager) { m.payloads = reg; m.codec = NewCodec(m.codec.migrations, reg) }
}

// WithWorkingContextExtractor installs the function used to derive an
// updated working context from an executed plan's action steps.
func WithWorkingContextExtractor(fn WorkingContextExtractor) Option {
	return func(m *Manager) { m.extractor = fn }
}

// Manager orchestrates per-turn state transitions, planner invocation, and
// blob (de)serialization. Build one with NewManager and reuse it across
// turns and sessions; all per-turn state lives in the ConversationState
// values passed to and returned from RunTurn, not in the Manager itself.
type Manager struct {
	planner        Planner
	codec          *Codec
	payloads       *PayloadTypeRegistry
	maxHistorySize int
	extractor      WorkingContextExtractor
}

// NewManager builds a Manager around planner, applying opts in order.
func NewManager(planner Planner, opts ...Option) (*Manager, error) {
	if planner == nil {
		return nil, fmt.Errorf("conversation: planner is required")
	}
	m := &Manager{
		planner:        planner,
		payloads:       NewPayloadTypeRegistry(),
		maxHistorySize: 10,
	}
	m.codec = NewCodec(NewMigrationRegistry(), m.payloads)
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// RunTurn executes one turn of the protocol:
//  1. Decode priorBlob into a ConversationState, or start fresh from
//     Initial(userMessage) if priorBlob is nil.
//  2. Record the latest user message and advisorily fold it into
//     providedParams for any names the prior plan left pending (the
//     planner remains the authority on whether the reply actually
//     satisfies a pending item).
//  3. Invoke the planner.
//  4. Derive the next state from the returned plan's steps.
//  5. Serialize the next state to a blob.
func (m *Manager) RunTurn(ctx context.Context, userMessage string, priorBlob []byte) (ConversationTurnResult, error) {
	state, err := m.load(priorBlob, userMessage)
	if err != nil {
		return ConversationTurnResult{}, err
	}

	state.LatestUserMessage = userMessage
	state = foldPendingReply(state, userMessage)

	p, err := m.planner.FormulatePlan(ctx, userMessage, state)
	if err != nil {
		return ConversationTurnResult{}, err
	}

	next := m.deriveNextState(state, p)

	blob, err := m.codec.Encode(next)
	if err != nil {
		return ConversationTurnResult{}, err
	}

	return ConversationTurnResult{
		Plan:           p,
		State:          next,
		Blob:           blob,
		PendingParams:  next.PendingParams,
		ProvidedParams: next.ProvidedParams,
	}, nil
}

// Expire returns a ConversationTurnResult carrying a fresh, empty state and
// its blob, for callers abandoning a conversation mid-flight.
func (m *Manager) Expire() (ConversationTurnResult, error) {
	empty := ConversationState{ProvidedParams: map[string]any{}, SchemaVersion: CurrentSchemaVersion}
	blob, err := m.codec.Encode(empty)
	if err != nil {
		return ConversationTurnResult{}, err
	}
	return ConversationTurnResult{State: empty, Blob: blob}, nil
}

func (m *Manager) load(priorBlob []byte, userMessage string) (ConversationState, error) {
	if priorBlob == nil {
		return Initial(userMessage), nil
	}
	return m.codec.Decode(priorBlob)
}

// foldPendingReply advisorily copies the user's latest message into
// providedParams for every name the prior turn left pending; when more than
// one name is outstanding, each receives the whole message. This is advisory
// only: the planner's own resolution of the next plan is authoritative.
func foldPendingReply(state ConversationState, userMessage string) ConversationState {
	if len(state.PendingParams) == 0 || strings.TrimSpace(userMessage) == "" {
		return state
	}
	if state.ProvidedParams == nil {
		state.ProvidedParams = map[string]any{}
	}
	for _, p := range state.PendingParams {
		state.ProvidedParams[p.Name] = userMessage
	}
	return state
}

func (m *Manager) deriveNextState(state ConversationState, p plan.Plan) ConversationState {
	next := state
	next.SchemaVersion = CurrentSchemaVersion

	switch p.Status() {
	case plan.StatusReady:
		next.PendingParams = nil
		for _, s := range p.Steps {
			if as, ok := s.(plan.ActionStep); ok {
				for _, arg := range as.Arguments {
					next.ProvidedParams[arg.Name] = arg.Value
				}
			}
		}
	case plan.StatusPending:
		for _, s := range p.Steps {
			if ps, ok := s.(plan.PendingActionStep); ok {
				next.PendingParams = toPendingParams(ps.PendingParams)
				for k, v := range ps.ProvidedParams {
					next.ProvidedParams[k] = v
				}
			}
		}
	case plan.StatusError, plan.StatusNoAction:
		next.PendingParams = nil
	}

	if m.extractor != nil {
		for _, s := range p.Steps {
			as, ok := s.(plan.ActionStep)
			if !ok {
				continue
			}
			wc, ok := m.extractor(as)
			if !ok {
				continue
			}
			wc.LastModified = time.Now().UTC()
			if next.WorkingContext != nil {
				next.TurnHistory = appendBounded(next.TurnHistory, *next.WorkingContext, m.maxHistorySize, &next.EvictedTurns)
			}
			next.WorkingContext = &wc
		}
	}

	return next
}

func toPendingParams(in []plan.PendingParam) []PendingParam {
	out := make([]PendingParam, len(in))
	for i, p := range in {
		out[i] = PendingParam{Name: p.Name, Prompt: p.Prompt}
	}
	return out
}

func appendBounded(history []WorkingContext, wc WorkingContext, max int, evicted *int) []WorkingContext {
	if max <= 0 {
		*evicted++
		return history
	}
	history = append(history, wc)
	if len(history) > max {
		drop := len(history) - max
		history = history[drop:]
		*evicted += drop
	}
	return history
}
