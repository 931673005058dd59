// Package anthropicclient implements model.Client on top of the Anthropic
// Claude Messages API via github.com/anthropics/anthropic-sdk-go.
package anthropicclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// MessagesClient captures the subset of the Anthropic SDK used by the
// adapter, so tests can substitute a fake.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Options configures the adapter.
type Options struct {
	// Model is the Claude model identifier to invoke (for example,
	// string(sdk.ModelClaudeSonnet4_5_20250929)).
	Model string
	// MaxTokens caps the completion length. Required, must be positive.
	MaxTokens int
	// Temperature is forwarded to the API when positive.
	Temperature float64
}

// Client implements model.Client against Anthropic Claude Messages.
type Client struct {
	msg   MessagesClient
	model string
	opts  Options
}

// New builds a Client from an Anthropic Messages client and Options.
func New(msg MessagesClient, opts Options) (*Client, error) {
	if msg == nil {
		return nil, errors.New("anthropicclient: messages client is required")
	}
	if opts.Model == "" {
		return nil, errors.New("anthropicclient: model identifier is required")
	}
	if opts.MaxTokens <= 0 {
		return nil, errors.New("anthropicclient: max tokens must be positive")
	}
	return &Client{msg: msg, model: opts.Model, opts: opts}, nil
}

// NewFromAPIKey constructs a Client using the default Anthropic HTTP
// client, authenticated with apiKey.
func NewFromAPIKey(apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("anthropicclient: api key is required")
	}
	ac := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(&ac.Messages, opts)
}

// Invoke sends systemMessages and userMessage as a single Messages.New call,
// attaching tools (each expected to already be an sdk.ToolUnionParam; any
// other element is skipped) when non-empty, and returns the concatenated
// text of the response.
func (c *Client) Invoke(ctx context.Context, systemMessages []string, userMessage string, tools []any) (string, error) {
	params := sdk.MessageNewParams{
		MaxTokens: int64(c.opts.MaxTokens),
		Model:     sdk.Model(c.model),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(userMessage)),
		},
	}
	if len(systemMessages) > 0 {
		blocks := make([]sdk.TextBlockParam, len(systemMessages))
		for i, m := range systemMessages {
			blocks[i] = sdk.TextBlockParam{Text: m}
		}
		params.System = blocks
	}
	if c.opts.Temperature > 0 {
		params.Temperature = sdk.Float(c.opts.Temperature)
	}
	if encoded := encodeTools(tools); len(encoded) > 0 {
		params.Tools = encoded
	}

	msg, err := c.msg.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropicclient: messages.new: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if text := block.Text; text != "" {
			b.WriteString(text)
		}
	}
	return b.String(), nil
}

// encodeTools converts the opaque, provider-native tool list into the
// Anthropic SDK's tool union type, dropping any element that isn't already
// in that shape.
func encodeTools(tools []any) []sdk.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]sdk.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		if tu, ok := t.(sdk.ToolUnionParam); ok {
			out = append(out, tu)
		}
	}
	return out
}
