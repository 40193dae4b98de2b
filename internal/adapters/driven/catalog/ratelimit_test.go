package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	prefixCalls int
	topicCalls  int
	err         error
}

func (s *stubSearcher) SearchByPrefix(_ context.Context, prefix string, _ int) ([]string, error) {
	s.prefixCalls++
	if s.err != nil {
		return nil, s.err
	}
	return []string{prefix + "01"}, nil
}

func (s *stubSearcher) SearchByTopic(_ context.Context, topic string, _ int) ([]string, error) {
	s.topicCalls++
	if s.err != nil {
		return nil, s.err
	}
	return []string{topic + "-id"}, nil
}

func TestRateLimitedSearcher_Delegates(t *testing.T) {
	inner := &stubSearcher{}
	searcher := NewRateLimitedSearcher(inner)
	ctx := context.Background()

	ids, err := searcher.SearchByPrefix(ctx, "abc", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc01"}, ids)
	assert.Equal(t, 1, inner.prefixCalls)

	ids, err = searcher.SearchByTopic(ctx, "music", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"music-id"}, ids)
	assert.Equal(t, 1, inner.topicCalls)
}

func TestRateLimitedSearcher_PropagatesErrors(t *testing.T) {
	innerErr := errors.New("backend down")
	searcher := NewRateLimitedSearcher(&stubSearcher{err: innerErr})

	_, err := searcher.SearchByPrefix(context.Background(), "abc", 10)

	assert.ErrorIs(t, err, innerErr)
}

func TestRateLimitedSearcher_ThrottlesBeyondBurst(t *testing.T) {
	inner := &stubSearcher{}
	searcher := NewRateLimitedSearcherWithConfig(inner, RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         1,
	})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := searcher.SearchByPrefix(ctx, "abc", 10)
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	// First call spends the burst token; the next two each wait ~20ms.
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Equal(t, 3, inner.prefixCalls)
}

func TestRateLimitedSearcher_RespectsContextCancellation(t *testing.T) {
	searcher := NewRateLimitedSearcherWithConfig(&stubSearcher{}, RateLimitConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         1,
	})

	ctx := context.Background()
	// Spend the only token.
	_, err := searcher.SearchByPrefix(ctx, "abc", 10)
	require.NoError(t, err)

	cancelled, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	_, err = searcher.SearchByTopic(cancelled, "music", 10)
	assert.Error(t, err)
}
