package services

import (
	"fmt"
	"math"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

// Scorer computes opposition metrics between reference and candidate
// vectors. Scoring is pure and in-memory; all methods are safe for
// concurrent use.
type Scorer struct{}

// NewScorer creates a new opposition scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Similarity returns the cosine similarity between a and b, in [-1, 1].
// A zero-magnitude vector is domain.ErrDegenerateVector; mismatched
// lengths are domain.ErrDimensionMismatch. Neither case ever yields NaN.
func (s *Scorer) Similarity(a, b domain.Embedding) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, domain.ErrDegenerateVector
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Distance returns the cosine distance 1 - similarity, in [0, 2].
func (s *Scorer) Distance(a, b domain.Embedding) (float64, error) {
	sim, err := s.Similarity(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - sim, nil
}

// Angle returns the angular separation between a and b in degrees,
// in [0, 180]. The similarity is clamped to [-1, 1] before the arccos:
// floating-point error can push it slightly outside the valid domain.
func (s *Scorer) Angle(a, b domain.Embedding) (float64, error) {
	sim, err := s.Similarity(a, b)
	if err != nil {
		return 0, err
	}
	sim = math.Max(-1, math.Min(1, sim))
	return math.Acos(sim) * 180 / math.Pi, nil
}

// Euclidean returns the straight-line distance between a and b.
func (s *Scorer) Euclidean(a, b domain.Embedding) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Compare computes the full set of pairwise metrics between two vectors,
// including the coarse relationship label.
func (s *Scorer) Compare(a, b domain.Embedding) (*domain.Comparison, error) {
	sim, err := s.Similarity(a, b)
	if err != nil {
		return nil, err
	}
	angle, err := s.Angle(a, b)
	if err != nil {
		return nil, err
	}
	euclidean, err := s.Euclidean(a, b)
	if err != nil {
		return nil, err
	}
	return &domain.Comparison{
		Similarity:   sim,
		Distance:     1 - sim,
		Angle:        angle,
		Euclidean:    euclidean,
		Relationship: domain.ClassifyAngle(angle),
	}, nil
}

// Score computes an opposition score per candidate, positionally aligned
// with candidates.
//
// The reference set must be non-empty, every vector must share the same
// dimensionality, and no vector may be zero-magnitude. Degenerate inputs
// are the caller's responsibility to exclude beforehand: failing here is
// a contract violation, never a silent NaN.
func (s *Scorer) Score(references, candidates []domain.Embedding, method domain.Method) ([]domain.OppositionScore, error) {
	if len(references) == 0 {
		return nil, fmt.Errorf("%w: empty reference set", domain.ErrInvalidInput)
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: unknown method %q", domain.ErrInvalidInput, method)
	}

	switch method {
	case domain.MethodCentroid:
		return s.scoreCentroid(references, candidates)
	default:
		return s.scorePairwise(references, candidates)
	}
}

// scorePairwise compares each candidate against every reference vector
// and aggregates as (minimum distance, mean angle). The min-distance
// floor excludes candidates close to any single reference item, even
// ones far from the rest of the set.
func (s *Scorer) scorePairwise(references, candidates []domain.Embedding) ([]domain.OppositionScore, error) {
	scores := make([]domain.OppositionScore, len(candidates))

	for i, candidate := range candidates {
		minDistance := math.Inf(1)
		var angleSum float64

		for _, ref := range references {
			sim, err := s.Similarity(ref, candidate)
			if err != nil {
				return nil, fmt.Errorf("scoring candidate %d: %w", i, err)
			}

			if d := 1 - sim; d < minDistance {
				minDistance = d
			}

			clamped := math.Max(-1, math.Min(1, sim))
			angleSum += math.Acos(clamped) * 180 / math.Pi
		}

		scores[i] = domain.OppositionScore{
			Distance: minDistance,
			Angle:    angleSum / float64(len(references)),
			Method:   domain.MethodPairwise,
		}
	}

	return scores, nil
}

// scoreCentroid reduces the reference set to its unnormalised mean and
// scores each candidate against that single vector.
func (s *Scorer) scoreCentroid(references, candidates []domain.Embedding) ([]domain.OppositionScore, error) {
	dims := references[0].Dimensions()
	for _, ref := range references {
		if ref.Dimensions() != dims {
			return nil, fmt.Errorf("%w: reference set mixes %d and %d",
				domain.ErrDimensionMismatch, dims, ref.Dimensions())
		}
	}

	centroid := domain.Centroid(references)
	if centroid.IsZero() {
		// References that cancel out exactly leave no direction to
		// oppose.
		return nil, fmt.Errorf("reference centroid: %w", domain.ErrDegenerateVector)
	}

	scores := make([]domain.OppositionScore, len(candidates))
	for i, candidate := range candidates {
		dist, err := s.Distance(centroid, candidate)
		if err != nil {
			return nil, fmt.Errorf("scoring candidate %d: %w", i, err)
		}
		angle, err := s.Angle(centroid, candidate)
		if err != nil {
			return nil, fmt.Errorf("scoring candidate %d: %w", i, err)
		}
		scores[i] = domain.OppositionScore{
			Distance: dist,
			Angle:    angle,
			Method:   domain.MethodCentroid,
		}
	}

	return scores, nil
}
