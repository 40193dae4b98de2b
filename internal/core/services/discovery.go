package services

import (
	"context"
	"fmt"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driven"
	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driving"
	"github.com/contra-labs/contrafeed-cli/internal/logger"
)

// Ensure DiscoveryOrchestrator implements the interface.
var _ driving.DiscoveryService = (*DiscoveryOrchestrator)(nil)

// DiscoveryOrchestrator composes the pool manager, embedding resolver,
// scorer and ranker into the end-to-end contra discovery operation.
type DiscoveryOrchestrator struct {
	metadata driven.MetadataSource
	pool     driving.PoolManager
	resolver *EmbeddingResolver
	scorer   *Scorer
	ranker   *Ranker
	defaults domain.DiscoveryOptions
}

// NewDiscoveryOrchestrator creates a discovery orchestrator. defaults
// are the configured discovery options, reported by Stats.
func NewDiscoveryOrchestrator(
	metadata driven.MetadataSource,
	pool driving.PoolManager,
	resolver *EmbeddingResolver,
	defaults domain.DiscoveryOptions,
) *DiscoveryOrchestrator {
	return &DiscoveryOrchestrator{
		metadata: metadata,
		pool:     pool,
		resolver: resolver,
		scorer:   NewScorer(),
		ranker:   NewRanker(),
		defaults: defaults,
	}
}

// Discover finds items diametrically opposed to the reference set.
func (o *DiscoveryOrchestrator) Discover(ctx context.Context, referenceIDs []string, opts domain.DiscoveryOptions) ([]domain.RankedResult, error) {
	if len(referenceIDs) == 0 {
		return nil, fmt.Errorf("%w: empty reference set", domain.ErrInvalidInput)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// 1. Resolve reference metadata.
	references, err := o.metadata.FetchItems(ctx, referenceIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch reference items: %w", err)
	}
	if len(references) == 0 {
		return nil, fmt.Errorf("%w: no reference items could be resolved", domain.ErrNotFound)
	}

	return o.discover(ctx, references, opts)
}

// discover runs the pipeline over references whose metadata is already
// resolved.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *DiscoveryOrchestrator) discover(ctx context.Context, references []domain.Item, opts domain.DiscoveryOptions) ([]domain.RankedResult, error) {
	logger.Section("Contra Discovery")
	logger.Debug("References: %d, method: %s, sample size: %d", len(references), opts.Method, opts.SampleSize)

	// 2. Resolve reference embeddings. A reference that cannot be
	// embedded is dropped with a warning; losing every reference is
	// fatal because there is nothing left to oppose.
	refVectors := make([]domain.Embedding, 0, len(references))
	refIDs := make([]string, 0, len(references))
	for i := range references {
		emb, err := o.resolver.Resolve(ctx, &references[i])
		if err != nil {
			logger.Warn("Skipping reference %s: %v", references[i].ID, err)
			continue
		}
		refVectors = append(refVectors, emb)
		refIDs = append(refIDs, references[i].ID)
	}
	if len(refVectors) == 0 {
		return nil, fmt.Errorf("embedding reference set: %w", domain.ErrEmbeddingUnavailable)
	}

	// 3. Acquire the candidate pool.
	pool, err := o.pool.AcquirePool(ctx, opts.SampleSize, opts.Strategy, opts.UseCache)
	if err != nil {
		return nil, err
	}
	logger.Info("Candidate pool: %d items (under-sized: %t)", pool.Size(), pool.Provenance.UnderSized)

	// 4. Resolve candidate embeddings. This is the dominant cost, fanned
	// out across bounded workers; a failed candidate is excluded from
	// scoring rather than aborting the batch.
	embeddings, errs := o.resolver.ResolveBatch(ctx, pool.Items)

	candidates := make([]domain.Item, 0, pool.Size())
	vectors := make([]domain.Embedding, 0, pool.Size())
	for i := range pool.Items {
		if errs[i] != nil {
			logger.Debug("Excluding candidate %s: %v", pool.Items[i].ID, errs[i])
			continue
		}
		candidates = append(candidates, pool.Items[i])
		vectors = append(vectors, embeddings[i])
	}
	logger.Debug("Embedded %d of %d candidates", len(candidates), pool.Size())

	// 5. Score.
	scores, err := o.scorer.Score(refVectors, vectors, opts.Method)
	if err != nil {
		return nil, fmt.Errorf("scoring candidates: %w", err)
	}

	// 6. Filter and rank. An empty result is a valid outcome; the
	// caller decides whether to widen the pool or relax thresholds.
	thresholds := Thresholds{MinDistance: opts.MinDistance, MinAngle: opts.MinAngle}
	results := o.ranker.Rank(candidates, scores, refIDs, thresholds, opts.Limit)

	logger.Info("Discovery complete: %d contra items", len(results))
	return results, nil
}

// Analyze runs discovery for a single reference item and summarises the
// outcome.
func (o *DiscoveryOrchestrator) Analyze(ctx context.Context, referenceID string, opts domain.DiscoveryOptions) (*driving.Analysis, error) {
	if referenceID == "" {
		return nil, fmt.Errorf("%w: empty reference identifier", domain.ErrInvalidInput)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	reference, err := o.metadata.FetchItem(ctx, referenceID)
	if err != nil {
		return nil, fmt.Errorf("fetch reference item: %w", err)
	}

	// The fetched item feeds the pipeline directly; fetching it again
	// through Discover would double the metadata round-trips.
	results, err := o.discover(ctx, []domain.Item{*reference}, opts)
	if err != nil {
		return nil, err
	}

	analysis := &driving.Analysis{
		Reference: *reference,
		Results:   results,
	}
	if len(results) > 0 {
		var distSum, angleSum float64
		for _, r := range results {
			distSum += r.Score.Distance
			angleSum += r.Score.Angle
		}
		analysis.MeanDistance = distSum / float64(len(results))
		analysis.MeanAngle = angleSum / float64(len(results))
	}
	return analysis, nil
}

// Compare computes the full pairwise metrics between two items.
func (o *DiscoveryOrchestrator) Compare(ctx context.Context, idA, idB string) (*domain.Comparison, error) {
	if idA == "" || idB == "" {
		return nil, fmt.Errorf("%w: both identifiers are required", domain.ErrInvalidInput)
	}

	itemA, err := o.metadata.FetchItem(ctx, idA)
	if err != nil {
		return nil, fmt.Errorf("fetch item %s: %w", idA, err)
	}
	itemB, err := o.metadata.FetchItem(ctx, idB)
	if err != nil {
		return nil, fmt.Errorf("fetch item %s: %w", idB, err)
	}

	embA, err := o.resolver.Resolve(ctx, itemA)
	if err != nil {
		return nil, err
	}
	embB, err := o.resolver.Resolve(ctx, itemB)
	if err != nil {
		return nil, err
	}

	return o.scorer.Compare(embA, embB)
}

// Stats reports the active model and configured thresholds plus session
// cache activity.
func (o *DiscoveryOrchestrator) Stats(_ context.Context) (*driving.Stats, error) {
	return &driving.Stats{
		EmbeddingModel:   o.resolver.ModelName(),
		Dimensions:       o.resolver.Dimensions(),
		MinDistance:      o.defaults.MinDistance,
		MinAngle:         o.defaults.MinAngle,
		CachedEmbeddings: o.resolver.ResolvedCount(),
	}, nil
}
