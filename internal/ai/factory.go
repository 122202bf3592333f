package ai

import (
	"fmt"

	"github.com/prudhvi1709/smart-cli/internal/config"
	"github.com/prudhvi1709/smart-cli/internal/types"
)

// NewProvider creates a provider from a resolved selection
func NewProvider(sel types.ProviderSelection) (Provider, error) {
	endpoint := config.GetEndpoint(sel.ProviderName)
	apiKey := config.GetAPIKey(sel.ProviderName)

	switch sel.ProviderName {
	case "anthropic":
		return NewAnthropicProvider(apiKey, endpoint, sel.ModelID)
	case "openai", "ollama", "lmstudio", "generic":
		return NewOpenAIProvider(sel.ProviderName, apiKey, endpoint, sel.ModelID)
	default:
		return nil, fmt.Errorf("unknown provider: %s", sel.ProviderName)
	}
}

// AvailableProviders returns the supported provider types
func AvailableProviders() []string {
	return []string{
		"openai",
		"anthropic",
		"ollama",
		"lmstudio",
		"generic",
	}
}
