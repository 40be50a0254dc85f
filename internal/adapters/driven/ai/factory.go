// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/enlogic/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/enlogic/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/enlogic/internal/adapters/driven/llm/langchain"
	ollamallm "github.com/custodia-labs/enlogic/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/enlogic/internal/core/domain"
	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Ensure Provider implements the interface.
var _ driven.LLMProvider = (*Provider)(nil)

// Provider builds an LLM client per request from the configured providers.
type Provider struct {
	settings domain.LLMSettings
}

// NewProvider creates a provider over the given LLM settings.
func NewProvider(settings domain.LLMSettings) *Provider {
	return &Provider{settings: settings}
}

// LLM resolves provider and model and returns a ready client.
// Empty provider and model fall back to the configured defaults.
func (p *Provider) LLM(_ context.Context, provider, model string) (driven.LLMService, error) {
	resolved := p.settings.ResolveProvider(provider)
	cfg, ok := p.settings.For(resolved)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported provider %q", domain.ErrLLMUnavailable, resolved)
	}
	if model != "" {
		cfg.Model = model
	}

	svc, err := CreateLLMService(resolved, cfg, p.settings.Timeout())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// CreateLLMService creates the LLM service for one provider endpoint.
func CreateLLMService(
	provider domain.AIProvider,
	cfg domain.ProviderSettings,
	timeout time.Duration,
) (driven.LLMService, error) {
	switch provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil

	case domain.AIProviderOpenAI, domain.AIProviderDeepSeek:
		return langchain.NewOpenAICompatible(langchain.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns nil without error when embeddings are not configured.
func CreateAndValidateEmbeddingService(
	ctx context.Context,
	settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}
