package driven

import "context"

// PrefixSearcher looks up item identifiers by prefix.
//
// Used only by the pool manager's random-prefix strategy. An empty result
// is a valid outcome, not an error; the sampler simply moves on to the
// next random prefix.
type PrefixSearcher interface {
	// SearchByPrefix returns up to maxResults identifiers matching the
	// given prefix.
	SearchByPrefix(ctx context.Context, prefix string, maxResults int) ([]string, error)

	// SearchByTopic returns up to maxResults identifiers for a topical
	// bucket. Used by the category sampling strategy.
	SearchByTopic(ctx context.Context, topic string, maxResults int) ([]string, error)
}
