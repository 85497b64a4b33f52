// Package llm abstracts the chat-completion backends used to answer review
// questions.
package llm

import (
	"context"
	"fmt"

	"github.com/heefoo/codesight/internal/config"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type GenerateOptions struct {
	Temperature   float32
	MaxTokens     int
	StopSequences []string
}

type Option func(*GenerateOptions)

func WithTemperature(t float32) Option {
	return func(o *GenerateOptions) {
		o.Temperature = t
	}
}

func WithMaxTokens(n int) Option {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

type Provider interface {
	Generate(ctx context.Context, messages []Message, opts ...Option) (string, error)
	Stream(ctx context.Context, messages []Message, opts ...Option) (<-chan string, error)
	Name() string
}

func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "openai-compatible":
		return NewOpenAIProvider(cfg)
	case "anthropic":
		return NewAnthropicProvider(cfg)
	case "ollama":
		return NewOllamaProvider(cfg)
	case "google":
		return NewGoogleProvider(cfg)
	case "xai":
		return NewXAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
