// Package openaiclient implements model.Client on top of the OpenAI Chat
// Completions API via github.com/openai/openai-go.
package openaiclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatCompletions captures the subset of the OpenAI SDK used by the
// adapter, so tests can substitute a fake.
type ChatCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Options configures the adapter.
type Options struct {
	// Model is the OpenAI model identifier to invoke (for example "gpt-4o").
	Model string
	// MaxCompletionTokens caps the completion length. Zero leaves it unset.
	MaxCompletionTokens int
	// Temperature is forwarded to the API when positive.
	Temperature float64
}

// Client implements model.Client against OpenAI Chat Completions.
type Client struct {
	chat ChatCompletions
	opts Options
}

// New builds a Client from a ChatCompletions service and Options.
func New(chat ChatCompletions, opts Options) (*Client, error) {
	if chat == nil {
		return nil, errors.New("openaiclient: chat completions client is required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("openaiclient: model identifier is required")
	}
	return &Client{chat: chat, opts: opts}, nil
}

// NewFromAPIKey constructs a Client using the default OpenAI HTTP client,
// authenticated with apiKey.
func NewFromAPIKey(apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openaiclient: api key is required")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return New(&client.Chat.Completions, opts)
}

// Invoke sends systemMessages and userMessage as a single Chat Completions
// call, attaching tools (each expected to already be an
// openai.ChatCompletionToolParam; any other element is skipped) when
// non-empty, and returns the first choice's message content.
func (c *Client) Invoke(ctx context.Context, systemMessages []string, userMessage string, tools []any) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(systemMessages)+1)
	for _, m := range systemMessages {
		messages = append(messages, openai.SystemMessage(m))
	}
	messages = append(messages, openai.UserMessage(userMessage))

	params := openai.ChatCompletionNewParams{
		Model:    c.opts.Model,
		Messages: messages,
	}
	if c.opts.MaxCompletionTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.opts.MaxCompletionTokens))
	}
	if c.opts.Temperature > 0 {
		params.Temperature = openai.Float(c.opts.Temperature)
	}
	if encoded := encodeTools(tools); len(encoded) > 0 {
		params.Tools = encoded
	}

	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openaiclient: chat completions: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openaiclient: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// encodeTools converts the opaque, provider-native tool list into the
// OpenAI SDK's tool param type, dropping any element that isn't already in
// that shape.
func encodeTools(tools []any) []openai.ChatCompletionToolParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		if tp, ok := t.(openai.ChatCompletionToolParam); ok {
			out = append(out, tp)
		}
	}
	return out
}
