package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contra-labs/contrafeed-cli/internal/adapters/driven/storage/memory"
	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	require.NotNil(t, settings)

	// Verify defaults
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, defaults.Sampler.PrefixLength, settings.Sampler.PrefixLength)
	assert.Equal(t, defaults.Sampler.Categories, settings.Sampler.Categories)
	assert.Equal(t, defaults.Discovery.Method, settings.Discovery.Method)
	assert.Equal(t, defaults.Discovery.MinDistance, settings.Discovery.MinDistance)
	assert.Equal(t, defaults.Discovery.MinAngle, settings.Discovery.MinAngle)
	assert.Empty(t, settings.Catalog.Path)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("discovery.method", "centroid")
	_ = store.Set("discovery.min_angle", 120.0)
	_ = store.Set("sampler.attempt_timeout", "30s")
	_ = store.Set("catalog.path", "/data/catalog.json")

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, domain.MethodCentroid, settings.Discovery.Method)
	assert.InDelta(t, 120.0, settings.Discovery.MinAngle, 1e-9)
	assert.Equal(t, 30*time.Second, settings.Sampler.AttemptTimeout)
	assert.Equal(t, "/data/catalog.json", settings.Catalog.Path)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("discovery.method", "invalid_method")
	_ = store.Set("discovery.strategy", "invalid_strategy")
	_ = store.Set("sampler.attempt_timeout", "not-a-duration")

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	// Invalid values should fall back to defaults
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Discovery.Method, settings.Discovery.Method)
	assert.Equal(t, defaults.Discovery.Strategy, settings.Discovery.Strategy)
	assert.Equal(t, defaults.Sampler.AttemptTimeout, settings.Sampler.AttemptTimeout)
}

func TestSettingsService_Get_ZeroThresholdSurvives(t *testing.T) {
	store := memory.NewConfigStore()
	// An explicit zero is a legitimate threshold and must not be
	// replaced by the default.
	_ = store.Set("discovery.min_distance", 0.0)
	_ = store.Set("discovery.min_angle", 0.0)

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Zero(t, settings.Discovery.MinDistance)
	assert.Zero(t, settings.Discovery.MinAngle)
}

func TestSettingsService_Save_RoundTrips(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.Embedding.Provider = domain.AIProviderOpenAI
	settings.Embedding.Model = "text-embedding-3-small"
	settings.Embedding.APIKey = "sk-test"
	settings.Catalog.Path = "/data/catalog.json"
	settings.Catalog.Watch = true
	settings.Sampler.PoolTTL = 6 * time.Hour
	settings.Discovery.Method = domain.MethodCentroid
	settings.Discovery.SampleSize = 500
	settings.Discovery.MinAngle = 120

	require.NoError(t, service.Save(&settings))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, loaded.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", loaded.Embedding.Model)
	assert.Equal(t, "sk-test", loaded.Embedding.APIKey)
	assert.Equal(t, "/data/catalog.json", loaded.Catalog.Path)
	assert.True(t, loaded.Catalog.Watch)
	assert.Equal(t, 6*time.Hour, loaded.Sampler.PoolTTL)
	assert.Equal(t, domain.MethodCentroid, loaded.Discovery.Method)
	assert.Equal(t, 500, loaded.Discovery.SampleSize)
	assert.InDelta(t, 120, loaded.Discovery.MinAngle, 1e-9)
}

func TestSettingsService_Save_OmitsEmptyAPIKey(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))

	_, exists := store.Get("embedding.api_key")
	assert.False(t, exists)
}

func TestSettingsService_SetEmbeddingProvider_Ollama(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetEmbeddingProvider(domain.AIProviderOllama, "", "")

	require.NoError(t, err)
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	assert.Equal(t, 768, settings.Embedding.Dimensions)
}

func TestSettingsService_SetEmbeddingProvider_OpenAI(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", "sk-test")

	require.NoError(t, err)
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Equal(t, 3072, settings.Embedding.Dimensions)
}

func TestSettingsService_SetEmbeddingProvider_RequiresAPIKey(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key required")
}

func TestSettingsService_SetEmbeddingProvider_InvalidProvider(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetEmbeddingProvider(domain.AIProvider("carrier-pigeon"), "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid embedding provider")
}

func TestSettingsService_SetCatalogPath(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetCatalogPath("/data/catalog.json", true))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "/data/catalog.json", settings.Catalog.Path)
	assert.True(t, settings.Catalog.Watch)
}

func TestSettingsService_SetCatalogPath_Empty(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetCatalogPath("", false)

	require.Error(t, err)
}

func TestSettingsService_Validate(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	// Defaults include a local provider with a model, so discovery is
	// usable out of the box.
	assert.NoError(t, service.Validate())
}

func TestSettingsService_Validate_BadDiscoveryDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("discovery.min_angle", 400.0)
	service := NewSettingsService(store, nil)

	err := service.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	defaults := service.GetDefaults()

	assert.Equal(t, domain.DefaultAppSettings(), defaults)
}

func TestSettingsService_ValidateEmbeddingConfig_NilValidator(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.NoError(t, service.ValidateEmbeddingConfig())
}
