package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/prudhvi1709/smart-cli/internal/config"
)

// OpenAIProvider implements the Provider interface for OpenAI and any
// OpenAI-compatible endpoint (ollama, lmstudio, generic)
type OpenAIProvider struct {
	client *openai.Client
	name   string
	model  string
}

// NewOpenAIProvider creates a new OpenAI-compatible provider
func NewOpenAIProvider(name, apiKey, endpoint, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = config.GetAPIKey(name)
	}
	if apiKey == "" && name == "openai" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if apiKey == "" {
		// local endpoints accept any placeholder key
		apiKey = "local"
	}

	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" && endpoint != "https://api.openai.com/v1" {
		cfg.BaseURL = endpoint
	}

	if model == "" {
		model = "gpt-4.1-mini"
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		name:   name,
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) Model() string {
	return p.model
}

func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	oaMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		oaMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	mc := config.Get().Model
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    oaMessages,
		Temperature: float32(mc.Temperature),
		MaxTokens:   mc.MaxTokens,
	})
	if err != nil {
		return "", &ProviderError{Provider: p.name, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: p.name, Err: fmt.Errorf("no response choices")}
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	resp, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, &ProviderError{Provider: p.name, Err: err}
	}

	models := make([]string, 0, len(resp.Models))
	for _, model := range resp.Models {
		if p.name != "openai" || strings.Contains(model.ID, "gpt") {
			models = append(models, model.ID)
		}
	}
	return models, nil
}
