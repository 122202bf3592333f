package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/prudhvi1709/smart-cli/internal/config"
)

// AnthropicProvider implements the Provider interface using the official
// Anthropic Messages API
type AnthropicProvider struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey, endpoint, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		apiKey = config.GetAPIKey("anthropic")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if endpoint != "" && endpoint != "https://api.anthropic.com" {
		opts = append(opts, option.WithBaseURL(endpoint))
	}

	if model == "" {
		model = "claude-sonnet-4-0"
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{
		client: &client,
		model:  anthropic.Model(model),
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) Model() string {
	return string(p.model)
}

func (p *AnthropicProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	anthropicMsgs, systemBlocks := convertToAnthropicMessages(messages)

	mc := config.Get().Model
	maxTokens := int64(mc.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages:  anthropicMsgs,
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", &ProviderError{Provider: "anthropic", Err: err}
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}

// ListModels returns a curated list: Anthropic has no models list API
func (p *AnthropicProvider) ListModels(ctx context.Context) ([]string, error) {
	models := []anthropic.Model{
		anthropic.ModelClaudeSonnet4_5_20250929,
		anthropic.ModelClaude3_5Haiku20241022,
		anthropic.ModelClaude_3_Opus_20240229,
	}

	result := make([]string, 0, len(models))
	for _, m := range models {
		result = append(result, string(m))
	}
	return result, nil
}

// convertToAnthropicMessages converts chat messages to Anthropic format.
// System content goes into separate system blocks; tool results become
// user messages since this client drives tools through prompt tags.
func convertToAnthropicMessages(messages []Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	msgs := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Content})
		case "assistant":
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return msgs, systemBlocks
}
