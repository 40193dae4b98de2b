package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contra-labs/contrafeed-cli/internal/adapters/driven/storage/memory"
	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

// testSamplerSettings returns sampler settings sized for fast tests.
func testSamplerSettings() domain.SamplerSettings {
	s := domain.DefaultSamplerSettings()
	s.MaxAttempts = 20
	s.MaxInFlight = 4
	s.AttemptTimeout = time.Second
	s.PerPrefixLimit = 10
	s.PerCategoryLimit = 10
	return s
}

// catalogOf builds a metadata mock over n sequential identifiers.
func catalogOf(n int) (*mockMetadataSource, []string) {
	items := make(map[string]domain.Item, n)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("vid%03d", i)
		items[id] = testItem(id, "title "+id)
		ids[i] = id
	}
	return &mockMetadataSource{items: items}, ids
}

// servePrefixIDs returns a prefix function handing out the given ids in
// fixed chunks, one chunk per query. Safe for concurrent workers.
func servePrefixIDs(ids []string, chunk int) func(string, int) ([]string, error) {
	var mu sync.Mutex
	next := 0
	return func(_ string, _ int) ([]string, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(ids) {
			return nil, nil
		}
		end := next + chunk
		if end > len(ids) {
			end = len(ids)
		}
		out := ids[next:end]
		next = end
		return out, nil
	}
}

func TestPoolManager_AcquirePool_Prefix(t *testing.T) {
	metadata, ids := catalogOf(30)
	settings := testSamplerSettings()
	settings.MaxInFlight = 1 // keep the serving order deterministic
	lookup := &mockPrefixSearcher{prefixFn: servePrefixIDs(ids, 10)}

	manager := NewPoolManager(lookup, metadata, nil, settings)

	pool, err := manager.AcquirePool(context.Background(), 20, domain.StrategyPrefix, false)

	require.NoError(t, err)
	assert.Equal(t, 20, pool.Size())
	assert.Equal(t, domain.StrategyPrefix, pool.Provenance.Strategy)
	assert.Equal(t, 20, pool.Provenance.RequestedSize)
	assert.Equal(t, 20, pool.Provenance.ActualSize)
	assert.False(t, pool.Provenance.UnderSized)
	assert.NotEmpty(t, pool.Provenance.PoolID)
	assert.Positive(t, pool.Provenance.Attempts)
}

func TestPoolManager_AcquirePool_UnderSized(t *testing.T) {
	metadata, ids := catalogOf(5)
	lookup := &mockPrefixSearcher{prefixFn: servePrefixIDs(ids, 5)}

	manager := NewPoolManager(lookup, metadata, nil, testSamplerSettings())

	pool, err := manager.AcquirePool(context.Background(), 50, domain.StrategyPrefix, false)

	require.NoError(t, err)
	assert.Equal(t, 5, pool.Size())
	assert.True(t, pool.Provenance.UnderSized, "an under-sized pool is not an error")
}

func TestPoolManager_AcquirePool_SurvivesFailedAttempts(t *testing.T) {
	metadata, ids := catalogOf(10)
	calls := 0
	lookup := &mockPrefixSearcher{prefixFn: func(_ string, _ int) ([]string, error) {
		calls++
		if calls%2 == 1 {
			return nil, errors.New("lookup timeout")
		}
		return ids, nil
	}}

	settings := testSamplerSettings()
	settings.MaxInFlight = 1
	manager := NewPoolManager(lookup, metadata, nil, settings)

	pool, err := manager.AcquirePool(context.Background(), 10, domain.StrategyPrefix, false)

	require.NoError(t, err)
	assert.Equal(t, 10, pool.Size(), "failed attempts are skipped, not fatal")
}

func TestPoolManager_AcquirePool_AllAttemptsFail(t *testing.T) {
	metadata, _ := catalogOf(0)
	lookup := &mockPrefixSearcher{prefixFn: func(_ string, _ int) ([]string, error) {
		return nil, errors.New("backend down")
	}}

	manager := NewPoolManager(lookup, metadata, nil, testSamplerSettings())

	_, err := manager.AcquirePool(context.Background(), 10, domain.StrategyPrefix, false)

	assert.ErrorIs(t, err, domain.ErrSamplingUnavailable)
}

func TestPoolManager_AcquirePool_Category(t *testing.T) {
	metadata, ids := catalogOf(9)
	settings := testSamplerSettings()
	settings.Categories = []string{"music", "gaming", "news"}
	lookup := &mockPrefixSearcher{topics: map[string][]string{
		"music":  ids[0:3],
		"gaming": ids[3:6],
		"news":   ids[6:9],
	}}

	manager := NewPoolManager(lookup, metadata, nil, settings)

	pool, err := manager.AcquirePool(context.Background(), 9, domain.StrategyCategory, false)

	require.NoError(t, err)
	assert.Equal(t, 9, pool.Size())
	assert.Equal(t, domain.StrategyCategory, pool.Provenance.Strategy)
}

func TestPoolManager_AcquirePool_HybridTopsUp(t *testing.T) {
	metadata, ids := catalogOf(10)
	settings := testSamplerSettings()
	settings.MaxAttempts = 1
	settings.MaxInFlight = 1
	settings.Categories = []string{"music"}

	// One prefix attempt yields 4 items; categories supply the rest.
	lookup := &mockPrefixSearcher{
		prefixFn: servePrefixIDs(ids[:4], 4),
		topics:   map[string][]string{"music": ids[4:]},
	}

	manager := NewPoolManager(lookup, metadata, nil, settings)

	pool, err := manager.AcquirePool(context.Background(), 10, domain.StrategyHybrid, false)

	require.NoError(t, err)
	assert.Equal(t, 10, pool.Size())
}

func TestPoolManager_AcquirePool_SessionDedup(t *testing.T) {
	metadata, ids := catalogOf(10)
	lookup := &mockPrefixSearcher{prefixFn: func(_ string, _ int) ([]string, error) {
		return ids, nil
	}}

	manager := NewPoolManager(lookup, metadata, nil, testSamplerSettings())

	first, err := manager.AcquirePool(context.Background(), 10, domain.StrategyPrefix, false)
	require.NoError(t, err)
	require.Equal(t, 10, first.Size())

	// Every identifier was handed out already; the second acquisition
	// finds nothing new.
	_, err = manager.AcquirePool(context.Background(), 10, domain.StrategyPrefix, false)
	assert.ErrorIs(t, err, domain.ErrSamplingUnavailable)

	// Resetting the session makes them available again.
	manager.ResetSession()
	third, err := manager.AcquirePool(context.Background(), 10, domain.StrategyPrefix, false)
	require.NoError(t, err)
	assert.Equal(t, 10, third.Size())
}

func TestPoolManager_AcquirePool_CacheFirst(t *testing.T) {
	metadata, ids := catalogOf(10)
	cache := memory.NewCacheStore()
	lookup := &mockPrefixSearcher{prefixFn: servePrefixIDs(ids, 10)}

	manager := NewPoolManager(lookup, metadata, cache, testSamplerSettings())

	first, err := manager.AcquirePool(context.Background(), 10, domain.StrategyPrefix, true)
	require.NoError(t, err)
	require.Equal(t, 10, first.Size())

	queriesAfterFirst := lookup.queries

	second, err := manager.AcquirePool(context.Background(), 10, domain.StrategyPrefix, true)
	require.NoError(t, err)

	assert.Equal(t, 10, second.Size())
	assert.Equal(t, first.Provenance.PoolID, second.Provenance.PoolID, "served from cache")
	assert.Equal(t, queriesAfterFirst, lookup.queries, "no new lookups")
}

func TestPoolManager_AcquirePool_CacheBypass(t *testing.T) {
	metadata, ids := catalogOf(20)
	cache := memory.NewCacheStore()
	settings := testSamplerSettings()
	settings.MaxInFlight = 1
	lookup := &mockPrefixSearcher{prefixFn: servePrefixIDs(ids, 10)}

	manager := NewPoolManager(lookup, metadata, cache, settings)

	first, err := manager.AcquirePool(context.Background(), 10, domain.StrategyPrefix, true)
	require.NoError(t, err)

	second, err := manager.AcquirePool(context.Background(), 10, domain.StrategyPrefix, false)
	require.NoError(t, err)

	assert.NotEqual(t, first.Provenance.PoolID, second.Provenance.PoolID, "cache bypassed")
}

func TestPoolManager_AcquirePool_StaleCacheFallback(t *testing.T) {
	metadata, ids := catalogOf(10)
	cache := memory.NewCacheStore()
	settings := testSamplerSettings()

	lookup := &mockPrefixSearcher{prefixFn: servePrefixIDs(ids, 10)}
	manager := NewPoolManager(lookup, metadata, cache, settings)

	// Seed the cache with a successful acquisition.
	first, err := manager.AcquirePool(context.Background(), 10, domain.StrategyPrefix, true)
	require.NoError(t, err)
	require.Equal(t, 10, first.Size())

	// Sampling now fails and the session dedup blocks every identifier,
	// but the cached pool still serves the bypass request.
	lookup.mu.Lock()
	lookup.prefixFn = func(_ string, _ int) ([]string, error) {
		return nil, errors.New("backend down")
	}
	lookup.mu.Unlock()

	fallback, err := manager.AcquirePool(context.Background(), 5, domain.StrategyPrefix, false)

	require.NoError(t, err)
	assert.Equal(t, 5, fallback.Size(), "cached pool truncated to the request")
	assert.Equal(t, first.Provenance.PoolID, fallback.Provenance.PoolID)
}

func TestPoolManager_AcquirePool_StaleCacheFallback_LargePool(t *testing.T) {
	metadata, ids := catalogOf(1400)
	cache := memory.NewCacheStore()
	settings := testSamplerSettings()
	settings.MaxAttempts = 30

	lookup := &mockPrefixSearcher{prefixFn: servePrefixIDs(ids, 100)}
	manager := NewPoolManager(lookup, metadata, cache, settings)

	// The seed pool lands in a cache bucket well above the ones a
	// small-size scan would inspect.
	first, err := manager.AcquirePool(context.Background(), 1400, domain.StrategyPrefix, true)
	require.NoError(t, err)
	require.Equal(t, 1400, first.Size())

	lookup.mu.Lock()
	lookup.prefixFn = func(_ string, _ int) ([]string, error) {
		return nil, errors.New("backend down")
	}
	lookup.mu.Unlock()

	fallback, err := manager.AcquirePool(context.Background(), 1400, domain.StrategyPrefix, false)

	require.NoError(t, err)
	assert.Equal(t, 1400, fallback.Size())
	assert.Equal(t, first.Provenance.PoolID, fallback.Provenance.PoolID)
}

func TestPoolManager_AcquirePool_HybridJoinsPhaseErrors(t *testing.T) {
	metadata, _ := catalogOf(0)
	prefixErr := errors.New("prefix backend down")
	topicErr := errors.New("topic backend down")
	lookup := &mockPrefixSearcher{
		prefixFn: func(_ string, _ int) ([]string, error) { return nil, prefixErr },
		topicErr: topicErr,
	}
	settings := testSamplerSettings()
	settings.Categories = []string{"music"}

	manager := NewPoolManager(lookup, metadata, nil, settings)

	_, err := manager.AcquirePool(context.Background(), 10, domain.StrategyHybrid, false)

	assert.ErrorIs(t, err, domain.ErrSamplingUnavailable)
	assert.ErrorIs(t, err, prefixErr)
	assert.ErrorIs(t, err, topicErr)
}

func TestPoolManager_AcquirePool_HybridKeepsPrefixError(t *testing.T) {
	metadata, _ := catalogOf(0)
	prefixErr := errors.New("prefix backend down")
	settings := testSamplerSettings()
	settings.Categories = []string{"music"}

	// The category phase succeeds but finds nothing; the prefix error
	// must still name the cause.
	lookup := &mockPrefixSearcher{
		prefixFn: func(_ string, _ int) ([]string, error) { return nil, prefixErr },
		topics:   map[string][]string{},
	}

	manager := NewPoolManager(lookup, metadata, nil, settings)

	_, err := manager.AcquirePool(context.Background(), 10, domain.StrategyHybrid, false)

	assert.ErrorIs(t, err, domain.ErrSamplingUnavailable)
	assert.ErrorIs(t, err, prefixErr)
}

func TestPoolManager_AcquirePool_InvalidInput(t *testing.T) {
	metadata, _ := catalogOf(0)
	manager := NewPoolManager(&mockPrefixSearcher{}, metadata, nil, testSamplerSettings())

	_, err := manager.AcquirePool(context.Background(), 0, domain.StrategyPrefix, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = manager.AcquirePool(context.Background(), 10, "exhaustive", false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPoolManager_AcquirePool_UnresolvableIdentifiers(t *testing.T) {
	// Lookup returns ids the metadata source does not know.
	metadata, ids := catalogOf(5)
	all := append([]string{"ghost1", "ghost2"}, ids...)
	lookup := &mockPrefixSearcher{prefixFn: func(_ string, _ int) ([]string, error) {
		return all, nil
	}}

	manager := NewPoolManager(lookup, metadata, nil, testSamplerSettings())

	pool, err := manager.AcquirePool(context.Background(), 10, domain.StrategyPrefix, false)

	require.NoError(t, err)
	assert.Equal(t, 5, pool.Size(), "unresolvable identifiers dropped silently")
}
