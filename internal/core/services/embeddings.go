package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driven"
	"github.com/contra-labs/contrafeed-cli/internal/logger"
)

// EmbeddingResolver resolves item embeddings through a persistent cache.
//
// Cache keys include the model name, so switching providers or models
// silently invalidates old entries instead of serving stale
// cross-provider vectors. Concurrent requests for the same item share a
// single provider call: the first caller computes, the rest wait.
type EmbeddingResolver struct {
	service driven.EmbeddingService
	cache   driven.CacheStore
	ttl     time.Duration
	workers int

	mu       sync.Mutex
	inflight map[string]*inflightEmbed
	resolved int
}

// inflightEmbed tracks a provider call in progress for one cache key.
type inflightEmbed struct {
	done chan struct{}
	emb  domain.Embedding
	err  error
}

// DefaultEmbedWorkers bounds concurrent provider calls during batch
// resolution.
const DefaultEmbedWorkers = 4

// NewEmbeddingResolver creates a resolver over the given provider and
// cache. A nil cache disables persistence but keeps in-flight dedup.
func NewEmbeddingResolver(service driven.EmbeddingService, cache driven.CacheStore, ttl time.Duration) *EmbeddingResolver {
	return &EmbeddingResolver{
		service:  service,
		cache:    cache,
		ttl:      ttl,
		workers:  DefaultEmbedWorkers,
		inflight: make(map[string]*inflightEmbed),
	}
}

// SetWorkers overrides the batch concurrency bound. Values below one are
// ignored.
func (r *EmbeddingResolver) SetWorkers(n int) {
	if n >= 1 {
		r.workers = n
	}
}

// ModelName returns the active embedding model name.
func (r *EmbeddingResolver) ModelName() string {
	return r.service.ModelName()
}

// Dimensions returns the embedding vector size.
func (r *EmbeddingResolver) Dimensions() int {
	return r.service.Dimensions()
}

// ResolvedCount returns how many embeddings this resolver has computed
// or loaded during the session.
func (r *EmbeddingResolver) ResolvedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}

// cacheKey builds the cache key for an item under the active model.
func (r *EmbeddingResolver) cacheKey(itemID string) string {
	return "embedding/" + r.service.ModelName() + "/" + itemID
}

// Resolve returns the embedding for an item, computing and caching it on
// first use. An item whose text is empty after cleaning cannot be
// embedded and fails with domain.ErrInvalidInput; a zero vector from the
// provider fails with domain.ErrDegenerateVector. Failures are never
// written to the cache.
func (r *EmbeddingResolver) Resolve(ctx context.Context, item *domain.Item) (domain.Embedding, error) {
	if item.Embedding != nil {
		return item.Embedding, nil
	}

	key := r.cacheKey(item.ID)

	if emb, ok := r.cacheGet(ctx, key); ok {
		r.countResolved()
		item.Embedding = emb
		return emb, nil
	}

	// In-flight dedup: one provider call per key, later callers wait.
	r.mu.Lock()
	if call, ok := r.inflight[key]; ok {
		r.mu.Unlock()
		select {
		case <-call.done:
			return call.emb, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightEmbed{done: make(chan struct{})}
	r.inflight[key] = call
	r.mu.Unlock()

	call.emb, call.err = r.compute(ctx, item, key)
	close(call.done)

	r.mu.Lock()
	delete(r.inflight, key)
	r.mu.Unlock()

	if call.err == nil {
		item.Embedding = call.emb
	}
	return call.emb, call.err
}

// compute performs the provider call and write-through.
func (r *EmbeddingResolver) compute(ctx context.Context, item *domain.Item, key string) (domain.Embedding, error) {
	text := item.EmbeddingText()
	if text == "" {
		return nil, fmt.Errorf("%w: item %s has no embeddable text", domain.ErrInvalidInput, item.ID)
	}

	emb, err := r.service.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding item %s: %w", item.ID, err)
	}

	if emb.IsZero() {
		return nil, fmt.Errorf("item %s: %w", item.ID, domain.ErrDegenerateVector)
	}

	r.countResolved()
	r.cachePut(ctx, key, emb)
	return emb, nil
}

// ResolveBatch resolves embeddings for all items using a bounded worker
// fan-out. Results and errors are positionally aligned with items, so a
// single failing item never aborts the batch: its slot carries the error
// and the caller excludes it.
func (r *EmbeddingResolver) ResolveBatch(ctx context.Context, items []domain.Item) ([]domain.Embedding, []error) {
	embeddings := make([]domain.Embedding, len(items))
	errs := make([]error, len(items))

	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			embeddings[i], errs[i] = r.Resolve(ctx, &items[i])
		}(i)
	}
	wg.Wait()

	return embeddings, errs
}

func (r *EmbeddingResolver) countResolved() {
	r.mu.Lock()
	r.resolved++
	r.mu.Unlock()
}

// cacheGet loads a cached vector, treating any decode failure as a miss.
func (r *EmbeddingResolver) cacheGet(ctx context.Context, key string) (domain.Embedding, bool) {
	if r.cache == nil {
		return nil, false
	}
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var emb domain.Embedding
	if err := json.Unmarshal(data, &emb); err != nil {
		logger.Warn("Discarding undecodable cached embedding %s: %v", key, err)
		return nil, false
	}
	if len(emb) == 0 {
		return nil, false
	}
	return emb, true
}

// cachePut writes a vector through to the cache. Cache failures are
// logged, not surfaced: the cache is a performance layer.
func (r *EmbeddingResolver) cachePut(ctx context.Context, key string, emb domain.Embedding) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(emb)
	if err != nil {
		return
	}
	if err := r.cache.Put(ctx, key, data, r.ttl); err != nil {
		logger.Warn("Failed to cache embedding %s: %v", key, err)
	}
}
