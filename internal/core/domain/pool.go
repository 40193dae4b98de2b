package domain

import "time"

// SamplingStrategy identifies how a candidate pool was sampled.
type SamplingStrategy string

// Available sampling strategies.
const (
	// StrategyPrefix draws candidates by querying random fixed-length
	// identifier prefixes against the upstream lookup.
	StrategyPrefix SamplingStrategy = "prefix"

	// StrategyCategory draws candidates from a configured list of
	// topical buckets.
	StrategyCategory SamplingStrategy = "category"

	// StrategyHybrid combines prefix sampling with category sampling,
	// using categories to top up when prefix sampling under-delivers.
	StrategyHybrid SamplingStrategy = "hybrid"
)

// IsValid returns true if the strategy is recognised.
func (s SamplingStrategy) IsValid() bool {
	switch s {
	case StrategyPrefix, StrategyCategory, StrategyHybrid:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s SamplingStrategy) String() string {
	return string(s)
}

// PoolProvenance records how and when a candidate pool was obtained.
type PoolProvenance struct {
	// PoolID uniquely identifies this acquisition.
	PoolID string `json:"pool_id"`

	// Strategy is the sampling strategy used.
	Strategy SamplingStrategy `json:"strategy"`

	// SampledAt is when the acquisition completed.
	SampledAt time.Time `json:"sampled_at"`

	// RequestedSize is the target size the caller asked for.
	RequestedSize int `json:"requested_size"`

	// ActualSize is the number of unique candidates obtained.
	ActualSize int `json:"actual_size"`

	// UnderSized is true when the attempt budget was exhausted before
	// the target size was reached. Not an error; callers may relax
	// thresholds or retry with a smaller target.
	UnderSized bool `json:"under_sized"`

	// Attempts is the number of sampling attempts issued.
	Attempts int `json:"attempts"`
}

// CandidatePool is a deduplicated set of items sampled from some
// population, together with its provenance.
type CandidatePool struct {
	Items      []Item         `json:"items"`
	Provenance PoolProvenance `json:"provenance"`
}

// Size returns the number of items in the pool.
func (p *CandidatePool) Size() int {
	return len(p.Items)
}

// Truncated returns a copy of the pool limited to n items. The provenance
// is copied unchanged so the original acquisition remains traceable.
func (p *CandidatePool) Truncated(n int) *CandidatePool {
	items := p.Items
	if n < len(items) {
		items = items[:n]
	}
	out := &CandidatePool{
		Items:      make([]Item, len(items)),
		Provenance: p.Provenance,
	}
	copy(out.Items, items)
	return out
}

// ContainsID reports whether the pool already holds the identifier.
func (p *CandidatePool) ContainsID(id string) bool {
	for i := range p.Items {
		if p.Items[i].ID == id {
			return true
		}
	}
	return false
}
