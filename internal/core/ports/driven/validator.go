package driven

import "github.com/contra-labs/contrafeed-cli/internal/core/domain"

// EmbeddingConfigValidator validates embedding provider configurations.
// Implementations verify a configuration by testing connectivity to the
// underlying service.
type EmbeddingConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging
	// the provider. Returns nil if the configuration is valid or not
	// configured at all.
	ValidateEmbedding(config *domain.EmbeddingSettings) error
}
