// Package ai provides the LLM provider interface and implementations
package ai

import (
	"context"
	"errors"
	"fmt"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Model returns the model identifier in use
	Model() string

	// Chat sends a conversation and returns the raw response text
	Chat(ctx context.Context, messages []Message) (string, error)

	// ListModels returns available models
	ListModels(ctx context.Context) ([]string, error)
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant", "tool"
	Content string `json:"content"`
}

// ProviderError wraps network, auth, and rate-limit failures from the LLM
// call. Recoverable by retry in interactive mode; fatal in single-shot mode.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err is a ProviderError
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
