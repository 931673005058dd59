// Package bedrockclient implements model.Client on top of the AWS Bedrock
// Converse API via github.com/aws/aws-sdk-go-v2/service/bedrockruntime.
package bedrockclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// RuntimeClient mirrors the subset of the AWS Bedrock runtime client used by
// the adapter, matched by *bedrockruntime.Client.
type RuntimeClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Options configures the adapter.
type Options struct {
	// ModelID is the Bedrock model identifier to invoke.
	ModelID string
	// MaxTokens caps the completion length. Zero leaves InferenceConfig
	// unset for this field.
	MaxTokens int
	// Temperature is forwarded to the API when positive.
	Temperature float32
}

// Client implements model.Client on top of AWS Bedrock Converse.
type Client struct {
	runtime RuntimeClient
	opts    Options
}

// New builds a Client from a Bedrock runtime client and Options.
func New(runtime RuntimeClient, opts Options) (*Client, error) {
	if runtime == nil {
		return nil, errors.New("bedrockclient: runtime client is required")
	}
	if opts.ModelID == "" {
		return nil, errors.New("bedrockclient: model id is required")
	}
	return &Client{runtime: runtime, opts: opts}, nil
}

// Invoke sends systemMessages and userMessage as a single Converse call,
// attaching tools (each expected to already be an brtypes.Tool; any other
// element is skipped) when non-empty, and returns the concatenated text of
// the response message.
func (c *Client) Invoke(ctx context.Context, systemMessages []string, userMessage string, tools []any) (string, error) {
	system := make([]brtypes.SystemContentBlock, 0, len(systemMessages))
	for _, m := range systemMessages {
		system = append(system, &brtypes.SystemContentBlockMemberText{Value: m})
	}

	messages := []brtypes.Message{
		{
			Role: brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{
				&brtypes.ContentBlockMemberText{Value: userMessage},
			},
		},
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(c.opts.ModelID),
		Messages: messages,
	}
	if len(system) > 0 {
		input.System = system
	}
	if cfg := c.inferenceConfig(); cfg != nil {
		input.InferenceConfig = cfg
	}
	if encoded := encodeTools(tools); len(encoded) > 0 {
		input.ToolConfig = &brtypes.ToolConfiguration{Tools: encoded}
	}

	output, err := c.runtime.Converse(ctx, input)
	if err != nil {
		return "", fmt.Errorf("bedrockclient: converse: %w", err)
	}
	return translateText(output)
}

func (c *Client) inferenceConfig() *brtypes.InferenceConfiguration {
	if c.opts.MaxTokens <= 0 && c.opts.Temperature <= 0 {
		return nil
	}
	cfg := &brtypes.InferenceConfiguration{}
	if c.opts.MaxTokens > 0 {
		cfg.MaxTokens = aws.Int32(int32(c.opts.MaxTokens))
	}
	if c.opts.Temperature > 0 {
		cfg.Temperature = aws.Float32(c.opts.Temperature)
	}
	return cfg
}

// encodeTools converts the opaque, provider-native tool list into the
// Bedrock Converse API's tool type, dropping any element that isn't already
// in that shape.
func encodeTools(tools []any) []brtypes.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]brtypes.Tool, 0, len(tools))
	for _, t := range tools {
		if bt, ok := t.(brtypes.Tool); ok {
			out = append(out, bt)
		}
	}
	return out
}

func translateText(output *bedrockruntime.ConverseOutput) (string, error) {
	if output == nil {
		return "", errors.New("bedrockclient: response is nil")
	}
	msg, ok := output.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("bedrockclient: unexpected response shape")
	}
	var text string
	for _, block := range msg.Value.Content {
		if v, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text += v.Value
		}
	}
	return text, nil
}
