package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/google/generative-ai-go/genai"
	"github.com/heefoo/codesight/internal/config"
	"google.golang.org/api/option"
)

type GoogleProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewGoogleProvider(cfg config.LLMConfig) (*GoogleProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google API key required (set GEMINI_API_KEY)")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &GoogleProvider{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (p *GoogleProvider) Name() string {
	return "google"
}

// chatFor folds the message list into a Gemini chat session. The system
// prompt is prepended to the next user turn since the chat API has no system
// role, and the last user message is returned separately for sending.
func (p *GoogleProvider) chatFor(messages []Message, options *GenerateOptions) (*genai.ChatSession, string, error) {
	model := p.client.GenerativeModel(p.model)

	model.SetTemperature(options.Temperature)
	if options.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(options.MaxTokens))
	}

	cs := model.StartChat()
	var systemContent string

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemContent = msg.Content
		case RoleUser:
			content := msg.Content
			if systemContent != "" {
				content = systemContent + "\n\n" + content
				systemContent = ""
			}
			cs.History = append(cs.History, &genai.Content{
				Parts: []genai.Part{genai.Text(content)},
				Role:  "user",
			})
		case RoleAssistant:
			cs.History = append(cs.History, &genai.Content{
				Parts: []genai.Part{genai.Text(msg.Content)},
				Role:  "model",
			})
		}
	}

	var lastUserMsg string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			lastUserMsg = messages[i].Content
			if len(cs.History) > 0 {
				cs.History = cs.History[:len(cs.History)-1]
			}
			break
		}
	}

	if lastUserMsg == "" {
		return nil, "", fmt.Errorf("no user message found")
	}
	return cs, lastUserMsg, nil
}

func (p *GoogleProvider) Generate(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	options := &GenerateOptions{
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}
	for _, opt := range opts {
		opt(options)
	}

	cs, lastUserMsg, err := p.chatFor(messages, options)
	if err != nil {
		return "", err
	}

	resp, err := cs.SendMessage(ctx, genai.Text(lastUserMsg))
	if err != nil {
		return "", fmt.Errorf("google generate error: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates")
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}

	return result, nil
}

func (p *GoogleProvider) Stream(ctx context.Context, messages []Message, opts ...Option) (<-chan string, error) {
	options := &GenerateOptions{
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}
	for _, opt := range opts {
		opt(options)
	}

	cs, lastUserMsg, err := p.chatFor(messages, options)
	if err != nil {
		return nil, err
	}

	ch := make(chan string, 100)

	go func() {
		defer close(ch)

		iter := cs.SendMessageStream(ctx, genai.Text(lastUserMsg))
		for {
			select {
			case <-ctx.Done():
				return
			default:
				resp, err := iter.Next()
				if err != nil {
					log.Printf("google stream error: %v", err)
					return
				}

				for _, cand := range resp.Candidates {
					for _, part := range cand.Content.Parts {
						if text, ok := part.(genai.Text); ok {
							select {
							case ch <- string(text):
							case <-ctx.Done():
								return
							}
						}
					}
				}
			}
		}
	}()

	return ch, nil
}

func (p *GoogleProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
