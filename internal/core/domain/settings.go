package domain

import "time"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name. The model name doubles as the
	// cache version tag: changing models silently invalidates cached
	// vectors instead of serving stale cross-provider embeddings.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// Default sampler parameters, matching the random-prefix methodology:
// five-character prefixes over the identifier alphabet, roughly seven
// usable hits per successful prefix query.
const (
	DefaultPrefixLength   = 5
	DefaultMaxAttempts    = 200
	DefaultMaxInFlight    = 8
	DefaultAttemptTimeout = 10 * time.Second
	DefaultPerPrefixLimit = 10
	DefaultPerCategory    = 20
	DefaultPoolTTL        = 24 * time.Hour
	DefaultEmbeddingTTL   = 7 * 24 * time.Hour
)

// DefaultCategories are the topical buckets used by category sampling.
var DefaultCategories = []string{
	"music", "gaming", "news", "sports", "education", "technology",
	"science", "politics", "cooking", "travel", "fashion", "comedy",
}

// SamplerSettings holds candidate pool acquisition configuration.
type SamplerSettings struct {
	// PrefixLength is the length of random identifier prefixes.
	PrefixLength int

	// MaxAttempts is the sampling attempt budget per acquisition.
	MaxAttempts int

	// MaxInFlight bounds concurrent sampling attempts.
	MaxInFlight int

	// AttemptTimeout bounds a single lookup; a timed-out attempt counts
	// against the budget like any other failed attempt.
	AttemptTimeout time.Duration

	// PerPrefixLimit is the maximum results requested per prefix query.
	PerPrefixLimit int

	// PerCategoryLimit is the maximum results requested per category.
	PerCategoryLimit int

	// Categories are the topical buckets for category sampling.
	Categories []string

	// PoolTTL is how long cached pools stay valid.
	PoolTTL time.Duration
}

// DefaultSamplerSettings returns sampler settings with the defaults.
func DefaultSamplerSettings() SamplerSettings {
	return SamplerSettings{
		PrefixLength:     DefaultPrefixLength,
		MaxAttempts:      DefaultMaxAttempts,
		MaxInFlight:      DefaultMaxInFlight,
		AttemptTimeout:   DefaultAttemptTimeout,
		PerPrefixLimit:   DefaultPerPrefixLimit,
		PerCategoryLimit: DefaultPerCategory,
		Categories:       DefaultCategories,
		PoolTTL:          DefaultPoolTTL,
	}
}

// CatalogSettings holds item catalog configuration.
type CatalogSettings struct {
	// Path is the JSON catalog file path.
	Path string

	// Watch reloads the catalog when the file changes.
	Watch bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	Sampler   SamplerSettings
	Catalog   CatalogSettings
	Discovery DiscoveryOptions
}

// DefaultAppSettings returns the default application settings.
// Embedding defaults to Ollama so a fresh install works without keys.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
			BaseURL:  "http://localhost:11434",
		},
		Sampler:   DefaultSamplerSettings(),
		Discovery: DefaultDiscoveryOptions(),
	}
}

// AllEmbeddingProviders returns the providers that support embeddings,
// in display order.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI}
}

// DefaultEmbeddingModels maps each provider to its default model.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions maps known models to their vector sizes.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
