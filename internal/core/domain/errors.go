package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested item does not exist upstream.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as an
	// empty reference set or a threshold outside its valid range.
	// Rejected before any external call and never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSamplingUnavailable indicates pool acquisition exhausted its
	// attempt budget with no usable cache entry to fall back on.
	// Callers may retry with a smaller target size.
	ErrSamplingUnavailable = errors.New("sampling unavailable")

	// ErrEmbeddingUnavailable indicates the embedding provider is
	// unreachable or not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDegenerateVector indicates a zero-magnitude embedding.
	// The offending item is excluded from scoring, never fatal.
	ErrDegenerateVector = errors.New("degenerate vector")

	// ErrDimensionMismatch indicates two embeddings of different lengths
	// were compared. This is a configuration error, not a per-item error.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCacheMiss indicates a cache key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")
)
