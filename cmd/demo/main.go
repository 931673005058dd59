// Command demo wires a minimal basket assistant end to end: an action
// catalog (addItem, setTier), a planner backed by a chat client, a
// conversation manager, and an executor publishing lifecycle events to a
// bus. It runs against a real Anthropic client when ANTHROPIC_API_KEY is
// set in the environment (or a .env file), and against a fixed stub
// response otherwise, so the pipeline is runnable without credentials.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/michaelfranz/springai-actions-go/action"
	"github.com/michaelfranz/springai-actions-go/conversation"
	"github.com/michaelfranz/springai-actions-go/events"
	"github.com/michaelfranz/springai-actions-go/executor"
	"github.com/michaelfranz/springai-actions-go/model/anthropicclient"
	"github.com/michaelfranz/springai-actions-go/plan"
	"github.com/michaelfranz/springai-actions-go/planner"
	"github.com/michaelfranz/springai-actions-go/telemetry"
)

// basketItem is the payload a successful addItem call appends to the
// demo's in-memory basket.
type basketItem struct {
	Product  string
	Quantity int
}

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := loadConfig("demo.config.yaml")
	if err != nil {
		panic(err)
	}

	registry := action.NewRegistry()
	var basket []basketItem

	if err := registry.Register(action.Spec{
		Descriptor: action.Descriptor{
			ID:          "addItem",
			Description: "Add a product to the shopping basket.",
			Parameters: []action.ParameterDescriptor{
				{Name: "product", TypeID: "string", Required: true, Description: "product name"},
				{Name: "quantity", TypeID: "int", Required: true, Description: "units to add"},
			},
		},
		Fn: func(_ context.Context, _ *action.Context, args []any) (any, error) {
			product, _ := args[0].(string)
			quantity, _ := args[1].(int)
			basket = append(basket, basketItem{Product: product, Quantity: quantity})
			return basket[len(basket)-1], nil
		},
	}); err != nil {
		panic(err)
	}

	if err := registry.Register(action.Spec{
		Descriptor: action.Descriptor{
			ID:          "setTier",
			Description: "Set the customer's loyalty tier.",
			Parameters: []action.ParameterDescriptor{
				{
					Name: "tier", TypeID: "string", Required: true,
					Description:     "loyalty tier",
					AllowedValues:   []string{"BRONZE", "SILVER", "GOLD"},
					CaseInsensitive: true,
				},
			},
		},
		Fn: func(_ context.Context, _ *action.Context, args []any) (any, error) {
			tier, _ := args[0].(string)
			return tier, nil
		},
	}); err != nil {
		panic(err)
	}

	planr, err := planner.New(registry, newChatClient(), 3, cfg.Tiers.Primary,
		planner.WithPersona(cfg.persona()),
	)
	if err != nil {
		panic(err)
	}

	mgr, err := conversation.NewManager(planr.AsConversationPlanner())
	if err != nil {
		panic(err)
	}

	bus := events.NewBus(telemetry.NewNoopLogger())
	sub, err := bus.Register(events.SubscriberFunc(func(_ context.Context, evt events.InvocationEvent) error {
		fmt.Printf("[event] %s %s id=%s invocation=%s\n", evt.Kind, evt.Type, evt.ID, evt.InvocationID)
		return nil
	}))
	if err != nil {
		panic(err)
	}
	defer sub.Close()

	exec := executor.New(bus,
		executor.WithPendingHandler(pendingHandler{}),
		executor.WithErrorHandler(errorHandler{}),
		executor.WithNoActionHandler(noActionHandler{}),
	)

	turns := []string{"add 2 bottles of water", "set my tier to gold"}
	var blob []byte
	for _, userMessage := range turns {
		result, err := mgr.RunTurn(ctx, userMessage, blob)
		if err != nil {
			fmt.Fprintln(os.Stderr, "turn failed:", err)
			continue
		}
		blob = result.Blob

		actx := action.NewContext()
		execResult, err := exec.Execute(ctx, actx, result.Plan)
		if err != nil {
			fmt.Fprintln(os.Stderr, "execute failed:", err)
			continue
		}
		fmt.Printf("user: %s\nassistant: %s\nstatus: %s success: %v\n\n",
			userMessage, result.Plan.AssistantMessage, result.Plan.Status(), execResult.Success)
	}

	fmt.Println("final basket:", basket)
}

// newChatClient builds an Anthropic-backed model.Client when
// ANTHROPIC_API_KEY is set, falling back to a deterministic stub so the
// demo runs without credentials.
func newChatClient() *demoClient {
	if key := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); key != "" {
		if c, err := anthropicclient.NewFromAPIKey(key, anthropicclient.Options{Model: "claude-sonnet-4-5", MaxTokens: 1024}); err == nil {
			return &demoClient{real: c}
		}
	}
	return &demoClient{}
}

// demoClient wraps an optional real model.Client; with none configured it
// returns a fixed plan per recognizable keyword in userMessage, enough to
// drive the demo's two scripted turns end to end.
type demoClient struct {
	real *anthropicclient.Client
}

func (c *demoClient) Invoke(ctx context.Context, systemMessages []string, userMessage string, tools []any) (string, error) {
	if c.real != nil {
		return c.real.Invoke(ctx, systemMessages, userMessage, tools)
	}
	switch {
	case strings.Contains(userMessage, "water"):
		return `{"message":"Adding water","steps":[{"actionId":"addItem","description":"add water","parameters":{"product":"water","quantity":2}}]}`, nil
	case strings.Contains(userMessage, "tier"):
		return `{"message":"Updating tier","steps":[{"actionId":"setTier","description":"set tier","parameters":{"tier":"gold"}}]}`, nil
	default:
		return `{"message":"Nothing to do","steps":[{"noAction":true,"reason":"no matching action"}]}`, nil
	}
}

type pendingHandler struct{}

func (pendingHandler) HandlePending(_ context.Context, p plan.Plan) (executor.PlanExecutionResult, error) {
	for _, name := range p.PendingParameterNames() {
		fmt.Println("need more info:", name)
	}
	return executor.NotExecuted(p, "awaiting user input"), nil
}

type errorHandler struct{}

func (errorHandler) HandleError(_ context.Context, p plan.Plan) (executor.PlanExecutionResult, error) {
	var reasons []string
	for _, s := range p.Steps {
		if es, ok := s.(plan.ErrorStep); ok {
			reasons = append(reasons, es.Reason)
		}
	}
	return executor.PlanExecutionResult{}, fmt.Errorf("plan rejected: %s", strings.Join(reasons, "; "))
}

type noActionHandler struct{}

func (noActionHandler) HandleNoAction(_ context.Context, p plan.Plan) (executor.PlanExecutionResult, error) {
	return executor.NotExecuted(p, "no action required"), nil
}
