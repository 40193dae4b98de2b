package driven

import (
	"context"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// Implementations must be deterministic for identical text under a fixed
// provider/model configuration, and must wrap provider outages in
// domain.ErrEmbeddingUnavailable. Retry with backoff happens inside the
// adapter; the core sees only the final outcome.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) (domain.Embedding, error)

	// EmbedBatch generates embeddings for multiple texts, positionally
	// aligned with the input. More efficient than calling Embed in a
	// loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([]domain.Embedding, error)

	// Dimensions returns the embedding vector size (e.g. 384, 768, 1536).
	// All embeddings compared against one another must share this value.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	// It doubles as the version tag for cached vectors.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
