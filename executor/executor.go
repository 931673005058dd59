// Package executor implements the plan executor (C7): sequential
// invocation of a bound Plan's steps, with lifecycle events and dispatch
// to handlers for plans that are not READY.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/michaelfranz/springai-actions-go/action"
	"github.com/michaelfranz/springai-actions-go/events"
	"github.com/michaelfranz/springai-actions-go/plan"
)

// StepExecutionResult records the outcome of invoking one ActionStep.
type StepExecutionResult struct {
	ActionID   string
	Success    bool
	Result     any
	Err        error
	DurationMs int64
}

// PlanExecutionResult is what Execute returns for every plan status.
type PlanExecutionResult struct {
	Plan    plan.Plan
	Success bool
	Steps   []StepExecutionResult
	NotRun  bool
	Reason  string
}

// NotExecuted builds a PlanExecutionResult for a plan that a handler chose
// not to run (e.g. a PENDING plan awaiting user input). Handlers use this
// to satisfy the executor's caller contract without running any step.
func NotExecuted(p plan.Plan, reason string) PlanExecutionResult {
	return PlanExecutionResult{Plan: p, Success: true, NotRun: true, Reason: reason}
}

// NoActionPlanHandler reacts to a plan whose only step is a NoActionStep.
// A plan with no steps at all has status ERROR and goes to the
// ErrorPlanHandler instead.
type NoActionPlanHandler interface {
	HandleNoAction(ctx context.Context, p plan.Plan) (PlanExecutionResult, error)
}

// PendingPlanHandler reacts to a PENDING plan, typically by surfacing
// pendingParams to the user.
type PendingPlanHandler interface {
	HandlePending(ctx context.Context, p plan.Plan) (PlanExecutionResult, error)
}

// ErrorPlanHandler reacts to an ERROR plan.
type ErrorPlanHandler interface {
	HandleError(ctx context.Context, p plan.Plan) (PlanExecutionResult, error)
}

// ErrNoHandler is returned when Execute must dispatch a non-READY plan to a
// handler that was never registered.
var ErrNoHandler = fmt.Errorf("executor: no handler registered for this plan status")

// Option configures an Executor built with New.
type Option func(*Executor)

// WithNoActionHandler registers the handler invoked for NO_ACTION plans.
func WithNoActionHandler(h NoActionPlanHandler) Option {
	return func(e *Executor) { e.noAction = h }
}

// WithPendingHandler registers the handler invoked for PENDING plans.
func WithPendingHandler(h PendingPlanHandler) Option {
	return func(e *Executor) { e.pending = h }
}

// WithErrorHandler registers the handler invoked for ERROR plans.
func WithErrorHandler(h ErrorPlanHandler) Option {
	return func(e *Executor) { e.errHandler = h }
}

// Executor runs bound plans produced by the resolver, one step at a time,
// fail-fast, emitting lifecycle events for every action invocation.
type Executor struct {
	bus        events.Bus
	noAction   NoActionPlanHandler
	pending    PendingPlanHandler
	errHandler ErrorPlanHandler
}

// New builds an Executor publishing invocation events to bus.
func New(bus events.Bus, opts ...Option) *Executor {
	e := &Executor{bus: bus}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute dispatches p according to its status: READY plans run
// sequentially here; PENDING/ERROR/NO_ACTION plans are delegated to their
// registered handler, raising ErrNoHandler when none is registered.
func (e *Executor) Execute(ctx context.Context, actx *action.Context, p plan.Plan) (PlanExecutionResult, error) {
	switch p.Status() {
	case plan.StatusNoAction:
		if e.noAction == nil {
			return PlanExecutionResult{}, fmt.Errorf("%w: plan has no actions and no handler is registered", ErrNoHandler)
		}
		return e.noAction.HandleNoAction(ctx, p)
	case plan.StatusPending:
		if e.pending == nil {
			return PlanExecutionResult{}, fmt.Errorf("%w: plan is pending and no handler is registered", ErrNoHandler)
		}
		return e.pending.HandlePending(ctx, p)
	case plan.StatusError:
		if e.errHandler == nil {
			return PlanExecutionResult{}, fmt.Errorf("%w: plan has errors and no handler is registered", ErrNoHandler)
		}
		return e.errHandler.HandleError(ctx, p)
	default:
		return e.executeReady(ctx, actx, p)
	}
}

func (e *Executor) executeReady(ctx context.Context, actx *action.Context, p plan.Plan) (PlanExecutionResult, error) {
	results := make([]StepExecutionResult, 0, len(p.Steps))

	for _, step := range p.Steps {
		as, ok := step.(plan.ActionStep)
		if !ok {
			continue
		}

		invocationID := uuid.NewString()
		id := as.Binding.Descriptor.ID

		e.publish(ctx, events.InvocationEvent{Kind: events.KindAction, Type: events.TypeRequested, ID: id, InvocationID: invocationID})
		e.publish(ctx, events.InvocationEvent{Kind: events.KindAction, Type: events.TypeStarted, ID: id, InvocationID: invocationID})

		args := make([]any, len(as.Arguments))
		for i, a := range as.Arguments {
			args[i] = a.Value
		}
		if params := as.Binding.Descriptor.Parameters; len(params) > 0 {
			// One slot per declared parameter; an omitted optional one is nil.
			byName := make(map[string]any, len(as.Arguments))
			for _, a := range as.Arguments {
				byName[a.Name] = a.Value
			}
			args = make([]any, len(params))
			for i, p := range params {
				args[i] = byName[p.Name]
			}
		}

		start := time.Now()
		result, err := as.Binding.Fn(ctx, actx, args)
		duration := time.Since(start).Milliseconds()

		if err != nil {
			e.publish(ctx, events.InvocationEvent{
				Kind: events.KindAction, Type: events.TypeFailed, ID: id, InvocationID: invocationID,
				DurationMs: duration, Attributes: map[string]any{"error": err.Error()},
			})
			results = append(results, StepExecutionResult{ActionID: id, Success: false, Err: err, DurationMs: duration})
			return PlanExecutionResult{Plan: p, Success: false, Steps: results}, nil
		}

		if as.Binding.Descriptor.ContextKey != "" {
			actx.Set(as.Binding.Descriptor.ContextKey, result)
		}

		e.publish(ctx, events.InvocationEvent{
			Kind: events.KindAction, Type: events.TypeSucceeded, ID: id, InvocationID: invocationID,
			DurationMs: duration, Attributes: map[string]any{"contextKey": as.Binding.Descriptor.ContextKey},
		})
		results = append(results, StepExecutionResult{ActionID: id, Success: true, Result: result, DurationMs: duration})
	}

	return PlanExecutionResult{Plan: p, Success: true, Steps: results}, nil
}

func (e *Executor) publish(ctx context.Context, evt events.InvocationEvent) {
	if e.bus != nil {
		e.bus.Publish(ctx, evt)
	}
}
