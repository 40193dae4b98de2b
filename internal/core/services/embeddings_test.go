package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contra-labs/contrafeed-cli/internal/adapters/driven/storage/memory"
	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

func TestEmbeddingResolver_Resolve(t *testing.T) {
	svc := &mockEmbeddingService{
		vectors: map[string]domain.Embedding{
			embedKey("jazz piano"): {1, 0},
		},
	}
	resolver := NewEmbeddingResolver(svc, memory.NewCacheStore(), time.Hour)

	item := testItem("v1", "jazz piano")
	emb, err := resolver.Resolve(context.Background(), &item)

	require.NoError(t, err)
	assert.Equal(t, domain.Embedding{1, 0}, emb)
	assert.Equal(t, domain.Embedding{1, 0}, item.Embedding, "vector attached to the item")
	assert.Equal(t, 1, resolver.ResolvedCount())
}

func TestEmbeddingResolver_Resolve_UsesItemEmbedding(t *testing.T) {
	svc := &mockEmbeddingService{}
	resolver := NewEmbeddingResolver(svc, nil, time.Hour)

	item := testItem("v1", "jazz piano")
	item.Embedding = domain.Embedding{0, 1}

	emb, err := resolver.Resolve(context.Background(), &item)

	require.NoError(t, err)
	assert.Equal(t, domain.Embedding{0, 1}, emb)
	assert.Zero(t, svc.embedCalls(), "no provider call for a pre-resolved item")
}

func TestEmbeddingResolver_Resolve_CacheRoundTrip(t *testing.T) {
	cache := memory.NewCacheStore()
	svc := &mockEmbeddingService{
		vectors: map[string]domain.Embedding{
			embedKey("jazz piano"): {1, 0},
		},
	}

	first := NewEmbeddingResolver(svc, cache, time.Hour)
	item := testItem("v1", "jazz piano")
	_, err := first.Resolve(context.Background(), &item)
	require.NoError(t, err)

	// A second resolver over the same cache serves from it.
	second := NewEmbeddingResolver(svc, cache, time.Hour)
	again := testItem("v1", "jazz piano")
	emb, err := second.Resolve(context.Background(), &again)

	require.NoError(t, err)
	assert.Equal(t, domain.Embedding{1, 0}, emb)
	assert.Equal(t, 1, svc.embedCalls(), "second resolution hits the cache")
}

func TestEmbeddingResolver_Resolve_ModelChangeInvalidates(t *testing.T) {
	cache := memory.NewCacheStore()

	oldModel := &mockEmbeddingService{
		model:   "old-model",
		vectors: map[string]domain.Embedding{embedKey("jazz piano"): {1, 0}},
	}
	item := testItem("v1", "jazz piano")
	_, err := NewEmbeddingResolver(oldModel, cache, time.Hour).Resolve(context.Background(), &item)
	require.NoError(t, err)

	// Same item, different model: the old cached vector must not be used.
	newModel := &mockEmbeddingService{
		model:   "new-model",
		vectors: map[string]domain.Embedding{embedKey("jazz piano"): {0, 1}},
	}
	fresh := testItem("v1", "jazz piano")
	emb, err := NewEmbeddingResolver(newModel, cache, time.Hour).Resolve(context.Background(), &fresh)

	require.NoError(t, err)
	assert.Equal(t, domain.Embedding{0, 1}, emb)
	assert.Equal(t, 1, newModel.embedCalls())
}

func TestEmbeddingResolver_Resolve_EmptyText(t *testing.T) {
	svc := &mockEmbeddingService{fallback: domain.Embedding{1, 0}}
	resolver := NewEmbeddingResolver(svc, nil, time.Hour)

	item := domain.Item{ID: "v1", Available: true}
	_, err := resolver.Resolve(context.Background(), &item)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, svc.embedCalls())
}

func TestEmbeddingResolver_Resolve_ZeroVector(t *testing.T) {
	cache := memory.NewCacheStore()
	svc := &mockEmbeddingService{fallback: domain.Embedding{0, 0}}
	resolver := NewEmbeddingResolver(svc, cache, time.Hour)

	item := testItem("v1", "jazz piano")
	_, err := resolver.Resolve(context.Background(), &item)

	assert.ErrorIs(t, err, domain.ErrDegenerateVector)
	assert.Zero(t, cache.Len(), "failures are never cached")
}

func TestEmbeddingResolver_Resolve_ProviderError(t *testing.T) {
	cache := memory.NewCacheStore()
	svc := &mockEmbeddingService{embedErr: errors.New("provider down")}
	resolver := NewEmbeddingResolver(svc, cache, time.Hour)

	item := testItem("v1", "jazz piano")
	_, err := resolver.Resolve(context.Background(), &item)

	assert.Error(t, err)
	assert.Zero(t, cache.Len(), "failures are never cached")
}

func TestEmbeddingResolver_Resolve_InflightDedup(t *testing.T) {
	svc := &mockEmbeddingService{
		vectors: map[string]domain.Embedding{embedKey("jazz piano"): {1, 0}},
		delay:   50 * time.Millisecond,
	}
	resolver := NewEmbeddingResolver(svc, memory.NewCacheStore(), time.Hour)

	const goroutines = 16
	var wg sync.WaitGroup
	embeddings := make([]domain.Embedding, goroutines)
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item := testItem("v1", "jazz piano")
			embeddings[i], errs[i] = resolver.Resolve(context.Background(), &item)
		}(i)
	}
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, domain.Embedding{1, 0}, embeddings[i])
	}
	// All callers overlap with the slow provider call, so they share it.
	assert.Equal(t, 1, svc.embedCalls())
}

func TestEmbeddingResolver_ResolveBatch(t *testing.T) {
	svc := &mockEmbeddingService{
		vectors: map[string]domain.Embedding{
			embedKey("first"):  {1, 0},
			embedKey("second"): {0, 1},
		},
		fallback: domain.Embedding{0, 0}, // unknown titles come back degenerate
	}
	resolver := NewEmbeddingResolver(svc, memory.NewCacheStore(), time.Hour)

	items := []domain.Item{
		testItem("a", "first"),
		testItem("b", "unknown"),
		testItem("c", "second"),
	}

	embeddings, errs := resolver.ResolveBatch(context.Background(), items)

	require.Len(t, embeddings, 3)
	require.Len(t, errs, 3)

	assert.NoError(t, errs[0])
	assert.Equal(t, domain.Embedding{1, 0}, embeddings[0])

	assert.ErrorIs(t, errs[1], domain.ErrDegenerateVector, "one bad item does not abort the batch")

	assert.NoError(t, errs[2])
	assert.Equal(t, domain.Embedding{0, 1}, embeddings[2])
}

func TestEmbeddingResolver_SetWorkers(t *testing.T) {
	resolver := NewEmbeddingResolver(&mockEmbeddingService{}, nil, time.Hour)

	resolver.SetWorkers(0)
	assert.Equal(t, DefaultEmbedWorkers, resolver.workers, "invalid values ignored")

	resolver.SetWorkers(2)
	assert.Equal(t, 2, resolver.workers)
}
