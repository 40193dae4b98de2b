// Package catalog provides decorators shared by catalog adapters.
package catalog

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driven"
)

// RateLimitConfig holds token bucket configuration for lookup requests.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimit is a conservative default for remote lookup backends.
// Prefix sampling fires many speculative searches in parallel, so the
// sustained rate stays well below typical API quotas.
var DefaultRateLimit = RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10}

var _ driven.PrefixSearcher = (*RateLimitedSearcher)(nil)

// RateLimitedSearcher wraps a PrefixSearcher with a token bucket so that
// sampling bursts cannot exceed a backend's quota.
type RateLimitedSearcher struct {
	inner   driven.PrefixSearcher
	limiter *rate.Limiter
}

// NewRateLimitedSearcher wraps inner with the default rate limit.
func NewRateLimitedSearcher(inner driven.PrefixSearcher) *RateLimitedSearcher {
	return NewRateLimitedSearcherWithConfig(inner, DefaultRateLimit)
}

// NewRateLimitedSearcherWithConfig wraps inner with a custom rate limit.
func NewRateLimitedSearcherWithConfig(inner driven.PrefixSearcher, cfg RateLimitConfig) *RateLimitedSearcher {
	return &RateLimitedSearcher{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// SearchByPrefix blocks until the token bucket permits a request, then
// delegates to the wrapped searcher.
func (s *RateLimitedSearcher) SearchByPrefix(ctx context.Context, prefix string, maxResults int) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.SearchByPrefix(ctx, prefix, maxResults)
}

// SearchByTopic blocks until the token bucket permits a request, then
// delegates to the wrapped searcher.
func (s *RateLimitedSearcher) SearchByTopic(ctx context.Context, topic string, maxResults int) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.SearchByTopic(ctx, topic, maxResults)
}
