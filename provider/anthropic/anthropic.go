// Package anthropic adapts an assembled prompt to the Anthropic Messages
// API. System-role messages become system text blocks, so retrieved data
// sections keep their position above the conversation; tool descriptors
// go through the structured tool channel instead of the textual fallback
// section.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/becomeliminal/strata-go-sdk/core"
	"github.com/becomeliminal/strata-go-sdk/pipeline"
	"github.com/becomeliminal/strata-go-sdk/prompt"
)

const (
	// DefaultModel is used when no model is configured or requested.
	DefaultModel = "claude-sonnet-4-20250514"

	defaultMaxTokens = 4096
)

// Provider calls the Anthropic Messages API with converted prompts. It
// implements pipeline.Provider.
type Provider struct {
	client    *sdk.Client
	model     string
	maxTokens int
}

// Option customizes a Provider.
type Option func(*Provider)

// WithModel sets the default model.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithMaxTokens sets the default response token cap.
func WithMaxTokens(n int) Option {
	return func(p *Provider) { p.maxTokens = n }
}

// New wraps an Anthropic client.
func New(client *sdk.Client, opts ...Option) *Provider {
	p := &Provider{client: client, model: DefaultModel, maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Complete sends the messages and returns the concatenated text of the
// reply.
func (p *Provider) Complete(ctx context.Context, messages []prompt.Message, opts pipeline.CompleteOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = p.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	params, err := BuildParams(model, maxTokens, messages)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("messages api: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}

// BuildParams converts role-tagged messages into Messages API params.
// System messages become system text blocks in order; user and assistant
// messages keep their alternation.
func BuildParams(model string, maxTokens int, messages []prompt.Message) (sdk.MessageNewParams, error) {
	var system []sdk.TextBlockParam
	var turns []sdk.MessageParam
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			system = append(system, sdk.TextBlockParam{Text: msg.Content})
		case core.RoleUser:
			turns = append(turns, sdk.NewUserMessage(sdk.NewTextBlock(msg.Content)))
		case core.RoleAssistant:
			turns = append(turns, sdk.NewAssistantMessage(sdk.NewTextBlock(msg.Content)))
		default:
			return sdk.MessageNewParams{}, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	return sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		System:    system,
		Messages:  turns,
	}, nil
}
