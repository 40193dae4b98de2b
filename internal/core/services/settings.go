package services

import (
	"fmt"
	"time"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driven"
	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedDims     = "embedding.dimensions"

	keyCatalogPath  = "catalog.path"
	keyCatalogWatch = "catalog.watch"

	keySamplerPrefixLength = "sampler.prefix_length"
	keySamplerMaxAttempts  = "sampler.max_attempts"
	keySamplerMaxInFlight  = "sampler.max_in_flight"
	keySamplerTimeout      = "sampler.attempt_timeout"
	keySamplerPerPrefix    = "sampler.per_prefix_limit"
	keySamplerPerCategory  = "sampler.per_category_limit"
	keySamplerCategories   = "sampler.categories"
	keySamplerPoolTTL      = "sampler.pool_ttl"

	keyDiscoveryMethod      = "discovery.method"
	keyDiscoverySampleSize  = "discovery.sample_size"
	keyDiscoveryMinDistance = "discovery.min_distance"
	keyDiscoveryMinAngle    = "discovery.min_angle"
	keyDiscoveryLimit       = "discovery.limit"
	keyDiscoveryStrategy    = "discovery.strategy"
	keyDiscoveryUseCache    = "discovery.use_cache"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDims),
		},
		Catalog: domain.CatalogSettings{
			Path:  s.configStore.GetString(keyCatalogPath),
			Watch: s.getBool(keyCatalogWatch, false),
		},
		Sampler: domain.SamplerSettings{
			PrefixLength:     s.getInt(keySamplerPrefixLength, defaults.Sampler.PrefixLength),
			MaxAttempts:      s.getInt(keySamplerMaxAttempts, defaults.Sampler.MaxAttempts),
			MaxInFlight:      s.getInt(keySamplerMaxInFlight, defaults.Sampler.MaxInFlight),
			AttemptTimeout:   s.getDuration(keySamplerTimeout, defaults.Sampler.AttemptTimeout),
			PerPrefixLimit:   s.getInt(keySamplerPerPrefix, defaults.Sampler.PerPrefixLimit),
			PerCategoryLimit: s.getInt(keySamplerPerCategory, defaults.Sampler.PerCategoryLimit),
			Categories:       s.getStringSlice(keySamplerCategories, defaults.Sampler.Categories),
			PoolTTL:          s.getDuration(keySamplerPoolTTL, defaults.Sampler.PoolTTL),
		},
		Discovery: domain.DiscoveryOptions{
			Method:      s.getMethod(defaults.Discovery.Method),
			SampleSize:  s.getInt(keyDiscoverySampleSize, defaults.Discovery.SampleSize),
			MinDistance: s.getFloat(keyDiscoveryMinDistance, defaults.Discovery.MinDistance),
			MinAngle:    s.getFloat(keyDiscoveryMinAngle, defaults.Discovery.MinAngle),
			Limit:       s.getInt(keyDiscoveryLimit, defaults.Discovery.Limit),
			Strategy:    s.getStrategy(defaults.Discovery.Strategy),
			UseCache:    s.getBool(keyDiscoveryUseCache, defaults.Discovery.UseCache),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.Embedding.Dimensions > 0 {
		if err := s.configStore.Set(keyEmbedDims, settings.Embedding.Dimensions); err != nil {
			return fmt.Errorf("save embedding dimensions: %w", err)
		}
	}

	// Catalog settings
	if err := s.configStore.Set(keyCatalogPath, settings.Catalog.Path); err != nil {
		return fmt.Errorf("save catalog path: %w", err)
	}
	if err := s.configStore.Set(keyCatalogWatch, settings.Catalog.Watch); err != nil {
		return fmt.Errorf("save catalog watch: %w", err)
	}

	// Sampler settings
	if err := s.configStore.Set(keySamplerPrefixLength, settings.Sampler.PrefixLength); err != nil {
		return fmt.Errorf("save sampler prefix_length: %w", err)
	}
	if err := s.configStore.Set(keySamplerMaxAttempts, settings.Sampler.MaxAttempts); err != nil {
		return fmt.Errorf("save sampler max_attempts: %w", err)
	}
	if err := s.configStore.Set(keySamplerMaxInFlight, settings.Sampler.MaxInFlight); err != nil {
		return fmt.Errorf("save sampler max_in_flight: %w", err)
	}
	if err := s.configStore.Set(keySamplerTimeout, settings.Sampler.AttemptTimeout.String()); err != nil {
		return fmt.Errorf("save sampler attempt_timeout: %w", err)
	}
	if err := s.configStore.Set(keySamplerPerPrefix, settings.Sampler.PerPrefixLimit); err != nil {
		return fmt.Errorf("save sampler per_prefix_limit: %w", err)
	}
	if err := s.configStore.Set(keySamplerPerCategory, settings.Sampler.PerCategoryLimit); err != nil {
		return fmt.Errorf("save sampler per_category_limit: %w", err)
	}
	if err := s.configStore.Set(keySamplerCategories, settings.Sampler.Categories); err != nil {
		return fmt.Errorf("save sampler categories: %w", err)
	}
	if err := s.configStore.Set(keySamplerPoolTTL, settings.Sampler.PoolTTL.String()); err != nil {
		return fmt.Errorf("save sampler pool_ttl: %w", err)
	}

	// Discovery defaults
	if err := s.configStore.Set(keyDiscoveryMethod, settings.Discovery.Method.String()); err != nil {
		return fmt.Errorf("save discovery method: %w", err)
	}
	if err := s.configStore.Set(keyDiscoverySampleSize, settings.Discovery.SampleSize); err != nil {
		return fmt.Errorf("save discovery sample_size: %w", err)
	}
	if err := s.configStore.Set(keyDiscoveryMinDistance, settings.Discovery.MinDistance); err != nil {
		return fmt.Errorf("save discovery min_distance: %w", err)
	}
	if err := s.configStore.Set(keyDiscoveryMinAngle, settings.Discovery.MinAngle); err != nil {
		return fmt.Errorf("save discovery min_angle: %w", err)
	}
	if err := s.configStore.Set(keyDiscoveryLimit, settings.Discovery.Limit); err != nil {
		return fmt.Errorf("save discovery limit: %w", err)
	}
	if err := s.configStore.Set(keyDiscoveryStrategy, settings.Discovery.Strategy.String()); err != nil {
		return fmt.Errorf("save discovery strategy: %w", err)
	}
	if err := s.configStore.Set(keyDiscoveryUseCache, settings.Discovery.UseCache); err != nil {
		return fmt.Errorf("save discovery use_cache: %w", err)
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// Track known vector sizes per model
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetCatalogPath configures the item catalog file.
func (s *SettingsService) SetCatalogPath(path string, watch bool) error {
	if path == "" {
		return fmt.Errorf("catalog path cannot be empty")
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Catalog.Path = path
	settings.Catalog.Watch = watch
	return s.Save(settings)
}

// Validate checks if current settings are usable for discovery.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("discovery requires an embedding provider to be configured")
	}
	if err := settings.Discovery.Validate(); err != nil {
		return fmt.Errorf("invalid discovery defaults: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getMethod(defaultVal domain.Method) domain.Method {
	val := s.configStore.GetString(keyDiscoveryMethod)
	if val == "" {
		return defaultVal
	}
	method := domain.Method(val)
	if !method.IsValid() {
		return defaultVal
	}
	return method
}

func (s *SettingsService) getStrategy(defaultVal domain.SamplingStrategy) domain.SamplingStrategy {
	val := s.configStore.GetString(keyDiscoveryStrategy)
	if val == "" {
		return defaultVal
	}
	strategy := domain.SamplingStrategy(val)
	if !strategy.IsValid() {
		return defaultVal
	}
	return strategy
}
