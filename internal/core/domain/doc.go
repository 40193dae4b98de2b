// Package domain defines the core business entities for contrafeed.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Item: A piece of content with the text fields used for embedding
//   - Embedding: A fixed-length vector representation of an item
//   - CandidatePool: A sampled universe of items to search for contra content
//   - OppositionScore: Distance/angle metrics for one candidate
//   - RankedResult: A candidate paired with its score, in ranked order
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
