package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driven"
	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driving"
	"github.com/contra-labs/contrafeed-cli/internal/logger"
)

// Ensure PoolManager implements the interface.
var _ driving.PoolManager = (*PoolManager)(nil)

// identifierAlphabet is the character set item identifiers are drawn
// from. Random prefixes over this alphabet approximate an unbiased
// sample of the identifier space.
const identifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// metadataBatchSize is how many identifiers are resolved per metadata
// request. Matches the upstream batch limit.
const metadataBatchSize = 50

// poolCacheBucket is the granularity of pool cache keys. Requests are
// rounded up to the next bucket so nearby sizes share one cache entry.
const poolCacheBucket = 250

// PoolManager acquires candidate pools by sampling an external lookup,
// deduplicates them across the session and caches them with a TTL.
type PoolManager struct {
	lookup   driven.PrefixSearcher
	metadata driven.MetadataSource
	cache    driven.CacheStore
	settings domain.SamplerSettings

	// seen holds identifiers already handed out this session, so
	// repeated acquisitions do not return the same candidates twice.
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewPoolManager creates a pool manager. The cache may be nil, which
// disables pool caching but leaves acquisition fully functional.
func NewPoolManager(
	lookup driven.PrefixSearcher,
	metadata driven.MetadataSource,
	cache driven.CacheStore,
	settings domain.SamplerSettings,
) *PoolManager {
	return &PoolManager{
		lookup:   lookup,
		metadata: metadata,
		cache:    cache,
		settings: settings,
		seen:     make(map[string]struct{}),
	}
}

// ResetSession clears the session-level dedup set.
func (m *PoolManager) ResetSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = make(map[string]struct{})
}

// AcquirePool returns a candidate pool of up to targetSize items.
//
// The cache is consulted first: an unexpired pool for the same strategy
// and a size of at least targetSize is returned as a truncated copy.
// Fresh acquisitions are written through. If sampling produces nothing,
// the cache is consulted once more before failing, stale-but-present
// beating a hard domain.ErrSamplingUnavailable.
func (m *PoolManager) AcquirePool(ctx context.Context, targetSize int, strategy domain.SamplingStrategy, useCache bool) (*domain.CandidatePool, error) {
	if targetSize <= 0 {
		return nil, fmt.Errorf("%w: target size must be positive, got %d", domain.ErrInvalidInput, targetSize)
	}
	if !strategy.IsValid() {
		return nil, fmt.Errorf("%w: unknown sampling strategy %q", domain.ErrInvalidInput, strategy)
	}

	logger.Section("Pool Acquisition")
	logger.Debug("Target size: %d, strategy: %s, cache: %t", targetSize, strategy, useCache)

	if useCache {
		if pool := m.cachedPool(ctx, strategy, targetSize, targetSize); pool != nil {
			logger.Info("Serving pool from cache (%d items)", pool.Size())
			return pool.Truncated(targetSize), nil
		}
	}

	pool, err := m.acquireFresh(ctx, targetSize, strategy)
	if err != nil || pool == nil || pool.Size() == 0 {
		// Sampling produced nothing. A stale-but-unexpired cache entry
		// is preferable to a hard failure.
		if fallback := m.cachedPool(ctx, strategy, 1, targetSize); fallback != nil {
			logger.Warn("Sampling failed, serving cached pool (%d items)", fallback.Size())
			return fallback.Truncated(targetSize), nil
		}
		if err == nil {
			err = errors.New("no candidates found")
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSamplingUnavailable, err)
	}

	m.writeThrough(ctx, strategy, pool)
	return pool, nil
}

// acquireFresh runs the sampling strategy end to end: gather
// identifiers, resolve metadata, dedup, record provenance.
func (m *PoolManager) acquireFresh(ctx context.Context, targetSize int, strategy domain.SamplingStrategy) (*domain.CandidatePool, error) {
	var (
		ids      []string
		attempts int
		err      error
	)

	switch strategy {
	case domain.StrategyPrefix:
		ids, attempts, err = m.samplePrefixes(ctx, targetSize)
	case domain.StrategyCategory:
		ids, err = m.sampleCategories(ctx, targetSize, nil)
	case domain.StrategyHybrid:
		ids, attempts, err = m.samplePrefixes(ctx, targetSize)
		if len(ids) < targetSize && ctx.Err() == nil {
			// Categories top up a prefix phase that under-delivered.
			have := make(map[string]struct{}, len(ids))
			for _, id := range ids {
				have[id] = struct{}{}
			}
			more, catErr := m.sampleCategories(ctx, targetSize-len(ids), have)
			ids = append(ids, more...)
			// Keep both phase errors so the failure names its real cause.
			err = errors.Join(err, catErr)
		}
	}

	if len(ids) == 0 {
		return nil, err
	}

	items, fetchErr := m.resolveItems(ctx, ids, targetSize)
	if len(items) == 0 {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, err
	}

	pool := &domain.CandidatePool{
		Items: items,
		Provenance: domain.PoolProvenance{
			PoolID:        uuid.NewString(),
			Strategy:      strategy,
			SampledAt:     time.Now().UTC(),
			RequestedSize: targetSize,
			ActualSize:    len(items),
			UnderSized:    len(items) < targetSize,
			Attempts:      attempts,
		},
	}

	if pool.Provenance.UnderSized {
		logger.Warn("Pool under-sized: %d of %d requested", len(items), targetSize)
	} else {
		logger.Info("Acquired pool of %d items in %d attempts", len(items), attempts)
	}

	return pool, nil
}

// samplePrefixes issues random-prefix lookups until the target is met or
// the attempt budget runs out. Attempts run concurrently up to the
// configured in-flight bound, each under its own timeout; a failed or
// empty attempt is skipped and counted against the budget.
func (m *PoolManager) samplePrefixes(ctx context.Context, targetSize int) ([]string, int, error) {
	var (
		mu       sync.Mutex
		found    = make(map[string]struct{})
		order    []string
		attempts int
		lastErr  error
	)

	workers := m.settings.MaxInFlight
	if workers < 1 {
		workers = 1
	}

	// reserve hands out attempt slots; done reports whether the worker
	// should stop. Checked between attempts, cancellation is cooperative.
	reserve := func() bool {
		mu.Lock()
		defer mu.Unlock()
		if attempts >= m.settings.MaxAttempts || len(order) >= targetSize {
			return false
		}
		attempts++
		return true
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for reserve() {
				if ctx.Err() != nil {
					return
				}

				prefix := m.randomPrefix()
				attemptCtx, cancel := context.WithTimeout(ctx, m.settings.AttemptTimeout)
				ids, err := m.lookup.SearchByPrefix(attemptCtx, prefix, m.settings.PerPrefixLimit)
				cancel()

				if err != nil {
					// Skip and move on; a slow or failing lookup must
					// not block the other attempts.
					mu.Lock()
					lastErr = err
					mu.Unlock()
					logger.Debug("Prefix %q failed: %v", prefix, err)
					continue
				}

				mu.Lock()
				for _, id := range ids {
					if _, dup := found[id]; dup {
						continue
					}
					found[id] = struct{}{}
					order = append(order, id)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	logger.Debug("Prefix sampling: %d unique identifiers in %d attempts", len(order), attempts)
	return order, attempts, lastErr
}

// sampleCategories draws identifiers from the configured topical
// buckets, skipping any already present in exclude.
func (m *PoolManager) sampleCategories(ctx context.Context, need int, exclude map[string]struct{}) ([]string, error) {
	if exclude == nil {
		exclude = make(map[string]struct{})
	}

	var (
		out     []string
		lastErr error
	)

	for _, category := range m.settings.Categories {
		if len(out) >= need || ctx.Err() != nil {
			break
		}

		attemptCtx, cancel := context.WithTimeout(ctx, m.settings.AttemptTimeout)
		ids, err := m.lookup.SearchByTopic(attemptCtx, category, m.settings.PerCategoryLimit)
		cancel()

		if err != nil {
			lastErr = err
			logger.Debug("Category %q failed: %v", category, err)
			continue
		}

		for _, id := range ids {
			if _, dup := exclude[id]; dup {
				continue
			}
			exclude[id] = struct{}{}
			out = append(out, id)
		}
	}

	logger.Debug("Category sampling: %d identifiers", len(out))
	return out, lastErr
}

// resolveItems fetches metadata for sampled identifiers in batches,
// dropping identifiers seen earlier in the session, until targetSize
// items are collected.
func (m *PoolManager) resolveItems(ctx context.Context, ids []string, targetSize int) ([]domain.Item, error) {
	fresh := m.claimUnseen(ids)

	var (
		items   []domain.Item
		lastErr error
	)

	for start := 0; start < len(fresh) && len(items) < targetSize; start += metadataBatchSize {
		end := start + metadataBatchSize
		if end > len(fresh) {
			end = len(fresh)
		}

		batch, err := m.metadata.FetchItems(ctx, fresh[start:end])
		if err != nil {
			lastErr = err
			logger.Warn("Metadata batch failed: %v", err)
			continue
		}
		items = append(items, batch...)
	}

	if len(items) > targetSize {
		items = items[:targetSize]
	}
	return items, lastErr
}

// claimUnseen records ids in the session dedup set and returns the ones
// not seen before.
func (m *PoolManager) claimUnseen(ids []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	fresh := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := m.seen[id]; dup {
			continue
		}
		m.seen[id] = struct{}{}
		fresh = append(fresh, id)
	}
	return fresh
}

// randomPrefix generates a random identifier prefix.
func (m *PoolManager) randomPrefix() string {
	n := m.settings.PrefixLength
	if n < 1 {
		n = domain.DefaultPrefixLength
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = identifierAlphabet[rand.IntN(len(identifierAlphabet))]
	}
	return string(buf)
}

// poolCacheBucketOf rounds a size up to its cache bucket.
func poolCacheBucketOf(size int) int {
	return ((size + poolCacheBucket - 1) / poolCacheBucket) * poolCacheBucket
}

// poolCacheKey buckets a requested size so nearby requests share an
// entry. Lookups scan a range of buckets, since a bigger cached pool
// satisfies a smaller request by truncation.
func poolCacheKey(strategy domain.SamplingStrategy, size int) string {
	return fmt.Sprintf("pool/%s/%d", strategy, poolCacheBucketOf(size))
}

// cachedPoolBuckets is how many size buckets above the target bucket a
// cache lookup inspects.
const cachedPoolBuckets = 4

// cachedPool returns an unexpired cached pool of at least minSize items
// for the strategy, or nil. The scan covers every bucket from minSize
// up through targetSize plus a few above it, so a fallback with a low
// minSize still finds pools cached under large request sizes. The
// caller truncates to the size it needs.
func (m *PoolManager) cachedPool(ctx context.Context, strategy domain.SamplingStrategy, minSize, targetSize int) *domain.CandidatePool {
	if m.cache == nil {
		return nil
	}

	last := poolCacheBucketOf(targetSize) + cachedPoolBuckets*poolCacheBucket
	for bucket := poolCacheBucketOf(minSize); bucket <= last; bucket += poolCacheBucket {
		key := fmt.Sprintf("pool/%s/%d", strategy, bucket)
		data, err := m.cache.Get(ctx, key)
		if err != nil {
			continue
		}

		var pool domain.CandidatePool
		if err := json.Unmarshal(data, &pool); err != nil {
			logger.Warn("Discarding undecodable cached pool %s: %v", key, err)
			continue
		}
		if pool.Size() < minSize {
			continue
		}
		return &pool
	}
	return nil
}

// writeThrough stores a freshly acquired pool. Only successful
// acquisitions reach this point; failures are never cached as successes.
func (m *PoolManager) writeThrough(ctx context.Context, strategy domain.SamplingStrategy, pool *domain.CandidatePool) {
	if m.cache == nil {
		return
	}

	data, err := json.Marshal(pool)
	if err != nil {
		return
	}

	key := poolCacheKey(strategy, pool.Provenance.RequestedSize)
	if err := m.cache.Put(ctx, key, data, m.settings.PoolTTL); err != nil {
		logger.Warn("Failed to cache pool %s: %v", key, err)
	}
}
