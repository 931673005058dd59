package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/michaelfranz/springai-actions-go/action"
	"github.com/michaelfranz/springai-actions-go/conversation"
	"github.com/michaelfranz/springai-actions-go/plan"
	"github.com/michaelfranz/springai-actions-go/prompt"
)

type scriptedClient struct {
	responses []string
	errs      []error
	calls     int
	lastTools []any
}

func (c *scriptedClient) Invoke(_ context.Context, _ []string, _ string, tools []any) (string, error) {
	i := c.calls
	c.calls++
	c.lastTools = tools
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	var resp string
	if i < len(c.responses) {
		resp = c.responses[i]
	}
	return resp, err
}

func newAddItemRegistry(t *testing.T) *action.Registry {
	t.Helper()
	r := action.NewRegistry()
	require.NoError(t, r.Register(action.Spec{
		Descriptor: action.Descriptor{
			ID: "addItem",
			Parameters: []action.ParameterDescriptor{
				{Name: "product", TypeID: "string", Required: true},
				{Name: "quantity", TypeID: "int", Required: true},
			},
		},
		Fn: func(context.Context, *action.Context, []any) (any, error) { return nil, nil },
	}))
	return r
}

func TestFormulatePlanSucceedsOnFirstAttempt(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"message":"adding water","steps":[{"actionId":"addItem","parameters":{"product":"water","quantity":2}}]}`,
	}}
	p, err := New(newAddItemRegistry(t), client, 3, "test-model")
	require.NoError(t, err)

	result, err := p.FormulatePlan(context.Background(), "add 2 water", conversation.Initial("add 2 water"))
	require.NoError(t, err)
	require.Equal(t, plan.StatusReady, result.Plan.Status())
	require.Equal(t, 1, result.Metrics.TotalAttempts)
	require.Equal(t, "test-model", result.Metrics.WinningModel)
}

func TestFormulatePlanRetriesAfterParseFailure(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"not json at all",
		`{"message":"adding water","steps":[{"actionId":"addItem","parameters":{"product":"water","quantity":2}}]}`,
	}}
	p, err := New(newAddItemRegistry(t), client, 3, "test-model")
	require.NoError(t, err)

	result, err := p.FormulatePlan(context.Background(), "add 2 water", conversation.Initial("add 2 water"))
	require.NoError(t, err)
	require.Equal(t, plan.StatusReady, result.Plan.Status())
	require.Equal(t, 2, result.Metrics.TotalAttempts)
	require.Equal(t, OutcomeParseFailed, result.Metrics.Attempts[0].Outcome)
}

func TestFormulatePlanSurfacesResolverRetryHintOnValidationFailure(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"message":"?","steps":[{"actionId":"deleteEverything"}]}`,
		`{"message":"adding water","steps":[{"actionId":"addItem","parameters":{"product":"water","quantity":2}}]}`,
	}}
	p, err := New(newAddItemRegistry(t), client, 2, "test-model")
	require.NoError(t, err)

	result, err := p.FormulatePlan(context.Background(), "add 2 water", conversation.Initial("add 2 water"))
	require.NoError(t, err)
	require.Equal(t, OutcomeValidationFailed, result.Metrics.Attempts[0].Outcome)
	require.Equal(t, plan.RetryHintUnknownAction, result.Metrics.Attempts[0].RetryHint)
}

func TestFormulatePlanFallsBackToNextTier(t *testing.T) {
	primary := &scriptedClient{errs: []error{errors.New("network down")}}
	fallback := &scriptedClient{responses: []string{
		`{"message":"adding water","steps":[{"actionId":"addItem","parameters":{"product":"water","quantity":2}}]}`,
	}}
	p, err := New(newAddItemRegistry(t), primary, 1, "primary-model", WithFallbackClient(fallback, 1, "fallback-model"))
	require.NoError(t, err)

	result, err := p.FormulatePlan(context.Background(), "add 2 water", conversation.Initial("add 2 water"))
	require.NoError(t, err)
	require.Equal(t, plan.StatusReady, result.Plan.Status())
	require.Equal(t, "fallback-model", result.Metrics.WinningModel)
}

func TestFormulatePlanExhaustsAllTiersIntoErrorStep(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("down"), errors.New("still down")}}
	p, err := New(newAddItemRegistry(t), client, 2, "test-model")
	require.NoError(t, err)

	result, err := p.FormulatePlan(context.Background(), "add 2 water", conversation.Initial("add 2 water"))
	require.NoError(t, err)
	require.Equal(t, plan.StatusError, result.Plan.Status())
	require.Len(t, result.Plan.Steps, 1)
	_, ok := result.Plan.Steps[0].(plan.ErrorStep)
	require.True(t, ok)
}

func TestFormulatePlanDryRunSkipsInvocation(t *testing.T) {
	client := &scriptedClient{}
	p, err := New(newAddItemRegistry(t), client, 3, "test-model", WithDryRun(true))
	require.NoError(t, err)

	result, err := p.FormulatePlan(context.Background(), "add 2 water", conversation.Initial("add 2 water"))
	require.NoError(t, err)
	require.Equal(t, 0, client.calls)
	require.Empty(t, result.Plan.Steps)
}

func TestFormulatePlanPromptHookFires(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"message":"ok","steps":[]}`}}
	var captured bool
	p, err := New(newAddItemRegistry(t), client, 1, "test-model", WithPromptHook(func(p prompt.Preview) { captured = true; _ = p }))
	require.NoError(t, err)

	_, err = p.FormulatePlan(context.Background(), "hi", conversation.Initial("hi"))
	require.NoError(t, err)
	require.True(t, captured)
}

func TestAsConversationPlannerAdapts(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"message":"adding water","steps":[{"actionId":"addItem","parameters":{"product":"water","quantity":2}}]}`,
	}}
	p, err := New(newAddItemRegistry(t), client, 1, "test-model")
	require.NoError(t, err)

	cp := p.AsConversationPlanner()
	resolved, err := cp.FormulatePlan(context.Background(), "add 2 water", conversation.Initial("add 2 water"))
	require.NoError(t, err)
	require.Equal(t, plan.StatusReady, resolved.Status())
}

func TestRetryAddendumMentionsPendingParams(t *testing.T) {
	state := conversation.Initial("hi")
	state.PendingParams = []conversation.PendingParam{{Name: "quantity"}, {Name: "tier"}}
	addendum := retryAddendum(state)
	require.Contains(t, addendum, "quantity")
	require.Contains(t, addendum, "tier")
}

func TestRetryAddendumEmptyWithoutPendingParams(t *testing.T) {
	require.Empty(t, retryAddendum(conversation.Initial("hi")))
}

func TestFormulatePlanThreadsToolsToClient(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"message":"ok","steps":[]}`}}
	tools := []any{"tool-a", "tool-b"}
	p, err := New(newAddItemRegistry(t), client, 1, "test-model", WithTools(tools))
	require.NoError(t, err)

	_, err = p.FormulatePlan(context.Background(), "hi", conversation.Initial("hi"))
	require.NoError(t, err)
	require.Equal(t, tools, client.lastTools)
}

func TestFormulatePlanWithoutToolsPassesNil(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"message":"ok","steps":[]}`}}
	p, err := New(newAddItemRegistry(t), client, 1, "test-model")
	require.NoError(t, err)

	_, err = p.FormulatePlan(context.Background(), "hi", conversation.Initial("hi"))
	require.NoError(t, err)
	require.Nil(t, client.lastTools)
}
