// Package ai provides factory functions for creating embedding service
// adapters. The provider is selected from settings at construction time;
// the core never branches on provider identity.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/contra-labs/contrafeed-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/contra-labs/contrafeed-cli/internal/adapters/driven/embedding/openai"
	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service adapter selected
// by the settings. Returns nil (no error) when no provider is configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, settings.Provider)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity with a lightweight ping.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'contrafeed settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}
