// Package llm wraps the text-generation backends the matchmaker can talk to.
package llm

import (
	"context"
	"errors"
	"fmt"

	"pet-matchmaker/internal/common/config"
)

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("EMPTY_MODEL_RESPONSE")

type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
	// JSON asks for a JSON body where the backend supports it. Callers must
	// still validate the output.
	JSON bool
}

type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// New builds the provider selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case config.ProviderGateway:
		return NewGateway(GatewayConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			MaxRetries: cfg.MaxRetries,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
