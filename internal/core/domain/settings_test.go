package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	ollama := EmbeddingSettings{Provider: AIProviderOllama, Model: "nomic-embed-text"}
	assert.True(t, ollama.IsConfigured())

	openaiNoKey := EmbeddingSettings{Provider: AIProviderOpenAI, Model: "text-embedding-3-small"}
	assert.False(t, openaiNoKey.IsConfigured())

	openaiWithKey := openaiNoKey
	openaiWithKey.APIKey = "sk-test"
	assert.True(t, openaiWithKey.IsConfigured())

	unset := EmbeddingSettings{}
	assert.False(t, unset.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	settings := DefaultAppSettings()

	assert.True(t, settings.Embedding.IsConfigured())
	assert.NoError(t, settings.Discovery.Validate())
	assert.Len(t, settings.Sampler.Categories, 12)
	assert.Equal(t, 5, settings.Sampler.PrefixLength)
}
