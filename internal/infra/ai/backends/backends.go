// Package backends builds the configured generation backend.
package backends

import (
	"context"
	"fmt"

	"github.com/bryanwahyu/deepscan/internal/config"
	"github.com/bryanwahyu/deepscan/internal/domain/ai"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/gemini"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/ollama"
	"github.com/bryanwahyu/deepscan/internal/infra/ai/openai"
)

// New returns the backend named by cfg.Provider.
func New(ctx context.Context, cfg config.AIConfig) (ai.Backend, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		c, err := openai.NewClient(openai.Options{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, gemini.Options{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderOllama:
		c, err := ollama.NewClient(ollama.Options{Host: cfg.BaseURL, Model: cfg.Model, Temperature: cfg.Temperature})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
