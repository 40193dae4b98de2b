package domain

import "fmt"

// Default discovery parameters. The distance and angle thresholds follow
// the random-sample methodology the sampler is built on: a candidate must
// sit past orthogonal (distance 0.7) and within 30 degrees of diametric
// opposition (angle 150) to count as contra.
const (
	DefaultMethod      = MethodPairwise
	DefaultSampleSize  = 1000
	DefaultMinDistance = 0.7
	DefaultMinAngle    = 150.0
	DefaultLimit       = 20
)

// DiscoveryOptions configures a discovery query.
type DiscoveryOptions struct {
	// Method selects the opposition strategy.
	Method Method `json:"method"`

	// SampleSize is the candidate pool target size.
	SampleSize int `json:"sample_size"`

	// MinDistance is the minimum cosine distance threshold, in [0, 2].
	// For MethodPairwise it applies to the minimum distance to any
	// reference item.
	MinDistance float64 `json:"min_distance"`

	// MinAngle is the minimum angle threshold in degrees, in [0, 180].
	MinAngle float64 `json:"min_angle"`

	// Limit is the maximum number of ranked results to return.
	Limit int `json:"limit"`

	// Strategy selects how the candidate pool is sampled.
	Strategy SamplingStrategy `json:"strategy"`

	// UseCache controls whether a cached pool may satisfy the query.
	UseCache bool `json:"use_cache"`
}

// DefaultDiscoveryOptions returns options populated with the defaults.
func DefaultDiscoveryOptions() DiscoveryOptions {
	return DiscoveryOptions{
		Method:      DefaultMethod,
		SampleSize:  DefaultSampleSize,
		MinDistance: DefaultMinDistance,
		MinAngle:    DefaultMinAngle,
		Limit:       DefaultLimit,
		Strategy:    StrategyHybrid,
		UseCache:    true,
	}
}

// Validate checks all option fields against their valid ranges.
// Violations are ErrInvalidInput: rejected before any external call.
func (o DiscoveryOptions) Validate() error {
	if !o.Method.IsValid() {
		return fmt.Errorf("%w: unknown method %q", ErrInvalidInput, o.Method)
	}
	if !o.Strategy.IsValid() {
		return fmt.Errorf("%w: unknown sampling strategy %q", ErrInvalidInput, o.Strategy)
	}
	if o.SampleSize <= 0 {
		return fmt.Errorf("%w: sample size must be positive, got %d", ErrInvalidInput, o.SampleSize)
	}
	if o.MinDistance < 0 || o.MinDistance > 2 {
		return fmt.Errorf("%w: min distance must be in [0, 2], got %g", ErrInvalidInput, o.MinDistance)
	}
	if o.MinAngle < 0 || o.MinAngle > 180 {
		return fmt.Errorf("%w: min angle must be in [0, 180], got %g", ErrInvalidInput, o.MinAngle)
	}
	if o.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidInput, o.Limit)
	}
	return nil
}
