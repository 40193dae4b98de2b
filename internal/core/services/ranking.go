package services

import (
	"sort"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
	"github.com/contra-labs/contrafeed-cli/internal/logger"
)

// Thresholds are the hard exclusion limits applied during ranking.
type Thresholds struct {
	// MinDistance is the minimum cosine distance, in [0, 2].
	MinDistance float64

	// MinAngle is the minimum angle in degrees, in [0, 180].
	MinAngle float64
}

// Ranker applies threshold filtering, deduplication and availability
// filtering to scored candidates, then orders the survivors.
type Ranker struct{}

// NewRanker creates a new ranking pipeline.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank filters and orders scored candidates. Candidates and scores must
// be positionally aligned. referenceIDs are the identifiers of the
// reference set; candidates matching any of them are excluded.
//
// Filters apply in order, each a hard exclusion: reference identifier,
// unavailable item, duplicate, distance below threshold, angle below
// threshold. Survivors are ordered by angle descending, then distance
// descending, then identifier ascending for determinism, and truncated
// to limit only after ordering. An empty result is a valid outcome.
func (r *Ranker) Rank(
	candidates []domain.Item,
	scores []domain.OppositionScore,
	referenceIDs []string,
	thresholds Thresholds,
	limit int,
) []domain.RankedResult {
	refs := make(map[string]struct{}, len(referenceIDs))
	for _, id := range referenceIDs {
		refs[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(candidates))
	results := make([]domain.RankedResult, 0, len(candidates))

	var droppedRef, droppedUnavailable, droppedDup, droppedDistance, droppedAngle int

	for i := range candidates {
		item := candidates[i]
		score := scores[i]

		if _, isRef := refs[item.ID]; isRef {
			droppedRef++
			continue
		}

		if !item.Available {
			droppedUnavailable++
			continue
		}

		key := item.DeduplicationKey()
		if _, dup := seen[key]; dup {
			droppedDup++
			continue
		}
		seen[key] = struct{}{}

		if score.Distance < thresholds.MinDistance {
			droppedDistance++
			continue
		}

		if score.Angle < thresholds.MinAngle {
			droppedAngle++
			continue
		}

		results = append(results, domain.RankedResult{Item: item, Score: score})
	}

	logger.Debug("Ranking: %d candidates, dropped %d reference / %d unavailable / %d duplicate / %d distance / %d angle, %d survive",
		len(candidates), droppedRef, droppedUnavailable, droppedDup, droppedDistance, droppedAngle, len(results))

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score.Angle != b.Score.Angle {
			return a.Score.Angle > b.Score.Angle
		}
		if a.Score.Distance != b.Score.Distance {
			return a.Score.Distance > b.Score.Distance
		}
		return a.Item.ID < b.Item.ID
	})

	// Truncating before ordering would let a weak candidate found early
	// crowd out a stronger one found later in the unordered scan.
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results
}
