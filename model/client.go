// Package model defines the provider-agnostic chat-client contract used by
// the planner. Concrete provider adapters (Anthropic, OpenAI, Bedrock) live
// in sibling packages and implement Client on top of their respective SDKs.
package model

import "context"

// Client is the external LLM chat-client adapter contract: render the given
// system messages (in assembly order) and user message per the provider's
// convention, invoke the model with the given tool definitions (provider-
// native tool-calling schemas; nil or empty when none are configured), and
// return its raw text response.
//
// Any error returned by Invoke is treated by the planner as a network
// failure; Client implementations should not attempt their own retries,
// since tiered retry is the planner's responsibility.
type Client interface {
	Invoke(ctx context.Context, systemMessages []string, userMessage string, tools []any) (string, error)
}
