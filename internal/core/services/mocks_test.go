package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockMetadataSource implements driven.MetadataSource for testing.
type mockMetadataSource struct {
	mu       sync.Mutex
	items    map[string]domain.Item
	fetchErr error
	calls    int
}

func (m *mockMetadataSource) FetchItem(_ context.Context, id string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return &item, nil
}

func (m *mockMetadataSource) FetchItems(_ context.Context, ids []string) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockMetadataSource) fetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockPrefixSearcher implements driven.PrefixSearcher for testing.
// prefixFn receives every prefix query; topics maps category names to
// identifier lists.
type mockPrefixSearcher struct {
	mu       sync.Mutex
	prefixFn func(prefix string, maxResults int) ([]string, error)
	topics   map[string][]string
	topicErr error
	queries  int
}

func (m *mockPrefixSearcher) SearchByPrefix(_ context.Context, prefix string, maxResults int) ([]string, error) {
	m.mu.Lock()
	m.queries++
	fn := m.prefixFn
	m.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(prefix, maxResults)
}

func (m *mockPrefixSearcher) SearchByTopic(_ context.Context, topic string, maxResults int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	if m.topicErr != nil {
		return nil, m.topicErr
	}
	ids := m.topics[topic]
	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// vectors maps embedding text to the vector to return.
type mockEmbeddingService struct {
	mu       sync.Mutex
	vectors  map[string]domain.Embedding
	fallback domain.Embedding
	embedErr error
	delay    time.Duration
	dims     int
	model    string
	calls    int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) (domain.Embedding, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if emb, ok := m.vectors[text]; ok {
		return emb, nil
	}
	return m.fallback, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	out := make([]domain.Embedding, len(texts))
	for i, text := range texts {
		emb, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 2
}

func (m *mockEmbeddingService) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return "mock-model"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) embedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Test data helpers ---

// testItem builds an available item whose title doubles as embedding
// lookup text in the mock embedding service.
func testItem(id, title string) domain.Item {
	return domain.Item{ID: id, Title: title, Available: true}
}

// embedKey returns the embedding text the resolver will generate for a
// title-only item: the cleaned title twice.
func embedKey(title string) string {
	return title + " " + title
}
