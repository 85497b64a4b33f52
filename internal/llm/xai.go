package llm

import (
	"github.com/heefoo/codesight/internal/config"
)

// XAIProvider speaks the OpenAI-compatible xAI API.
type XAIProvider struct {
	*OpenAIProvider
}

func NewXAIProvider(cfg config.LLMConfig) (*XAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.x.ai/v1"
	}

	openaiProvider, err := NewOpenAIProvider(cfg)
	if err != nil {
		return nil, err
	}

	return &XAIProvider{
		OpenAIProvider: openaiProvider,
	}, nil
}

func (p *XAIProvider) Name() string {
	return "xai"
}
