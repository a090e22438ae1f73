package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider names accepted by NewClient.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ProviderConfig selects and configures one model endpoint.
type ProviderConfig struct {
	Provider string
	Endpoint string
	Model    string
	APIKey   string
}

// NewClient creates a ChatClient for the configured provider. An empty
// provider defaults to openai, which also covers self-hosted
// OpenAI-compatible endpoints.
func NewClient(cfg *ProviderConfig, logger *zap.Logger) (ChatClient, error) {
	base := &Config{Endpoint: cfg.Endpoint, Model: cfg.Model, APIKey: cfg.APIKey}

	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewOpenAIClient(base, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(base, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
