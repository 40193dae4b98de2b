package driving

import "github.com/contra-labs/contrafeed-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetCatalogPath configures the item catalog file.
	SetCatalogPath(path string, watch bool) error

	// Validate checks if current settings are usable for discovery.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration
	// by pinging the provider.
	ValidateEmbeddingConfig() error
}
