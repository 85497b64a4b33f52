package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/heefoo/codesight/internal/config"
)

type AnthropicProvider struct {
	client      *anthropic.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewAnthropicProvider(cfg config.LLMConfig) (*AnthropicProvider, error) {
	opts := []option.RequestOption{}

	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := anthropic.NewClient(opts...)

	return &AnthropicProvider{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// splitMessages separates the system prompt from the conversation turns; the
// API takes them as distinct parameters.
func splitMessages(messages []Message) (string, []anthropic.MessageParam) {
	var systemPrompt string
	turns := []anthropic.MessageParam{}

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			systemPrompt = m.Content
		case RoleUser:
			turns = append(turns, anthropic.NewUserMessage(
				anthropic.NewTextBlock(m.Content),
			))
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(m.Content),
			))
		}
	}
	return systemPrompt, turns
}

func (p *AnthropicProvider) params(messages []Message, options *GenerateOptions) anthropic.MessageNewParams {
	systemPrompt, turns := splitMessages(messages)

	maxTokens := int64(options.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(p.model),
		MaxTokens: anthropic.F(maxTokens),
		Messages:  anthropic.F(turns),
	}

	if systemPrompt != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(systemPrompt),
		})
	}
	return params
}

func (p *AnthropicProvider) Generate(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	options := &GenerateOptions{
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}
	for _, opt := range opts {
		opt(options)
	}

	resp, err := p.client.Messages.New(ctx, p.params(messages, options))
	if err != nil {
		return "", fmt.Errorf("anthropic completion error: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var result string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			result += block.Text
		}
	}

	return result, nil
}

func (p *AnthropicProvider) Stream(ctx context.Context, messages []Message, opts ...Option) (<-chan string, error) {
	options := &GenerateOptions{
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}
	for _, opt := range opts {
		opt(options)
	}

	stream := p.client.Messages.NewStreaming(ctx, p.params(messages, options))

	ch := make(chan string)
	go func() {
		defer close(ch)

		for stream.Next() {
			event := stream.Current()
			switch delta := event.Delta.(type) {
			case anthropic.ContentBlockDeltaEventDelta:
				if delta.Type == "text_delta" {
					ch <- delta.Text
				}
			}
		}
	}()

	return ch, nil
}
