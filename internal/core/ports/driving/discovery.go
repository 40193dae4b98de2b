package driving

import (
	"context"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

// Analysis is the result of analysing a single reference item.
type Analysis struct {
	// Reference is the analysed item with metadata resolved.
	Reference domain.Item `json:"reference"`

	// Results are the contra items found for the reference.
	Results []domain.RankedResult `json:"results"`

	// MeanDistance is the mean cosine distance across Results.
	MeanDistance float64 `json:"mean_distance"`

	// MeanAngle is the mean angle in degrees across Results.
	MeanAngle float64 `json:"mean_angle"`
}

// Stats describes the engine's caches and active thresholds.
type Stats struct {
	// EmbeddingModel is the active embedding model name.
	EmbeddingModel string `json:"embedding_model"`

	// Dimensions is the embedding vector size.
	Dimensions int `json:"dimensions"`

	// MinDistance and MinAngle are the configured default thresholds.
	MinDistance float64 `json:"min_distance"`
	MinAngle    float64 `json:"min_angle"`

	// CachedEmbeddings counts embeddings resolved during this session.
	CachedEmbeddings int `json:"cached_embeddings"`
}

// DiscoveryService finds content diametrically opposed to a reference set.
type DiscoveryService interface {
	// Discover returns contra items for the given reference identifiers,
	// ranked by opposition. An empty result after filtering is a valid,
	// non-error outcome.
	Discover(ctx context.Context, referenceIDs []string, opts domain.DiscoveryOptions) ([]domain.RankedResult, error)

	// Analyze runs discovery for a single reference item and summarises
	// the results.
	Analyze(ctx context.Context, referenceID string, opts domain.DiscoveryOptions) (*Analysis, error)

	// Compare computes the full set of pairwise metrics between two items.
	Compare(ctx context.Context, idA, idB string) (*domain.Comparison, error)

	// Stats reports cache sizes and active thresholds.
	Stats(ctx context.Context) (*Stats, error)
}
