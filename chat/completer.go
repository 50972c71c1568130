package chat

import (
	"context"
	"fmt"

	"portfolio-service/config"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// NoTextReply is returned when the model answers with something other than
// text.
const NoTextReply = "Unable to generate response"

// Completer sends one system prompt and one user message to a language
// model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, system, message string) (string, error)
}

type messageClient interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicCompleter calls the Messages API once per question, without
// retries.
type AnthropicCompleter struct {
	messages  messageClient
	model     string
	maxTokens int64
}

func NewAnthropicCompleter(cfg config.ChatConfig) *AnthropicCompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicCompleter{
		messages:  &client.Messages,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (a *AnthropicCompleter) Complete(ctx context.Context, system, message string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(message)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	if len(resp.Content) == 0 || resp.Content[0].Type != "text" {
		return NoTextReply, nil
	}
	return resp.Content[0].Text, nil
}
