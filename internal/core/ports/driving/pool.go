package driving

import (
	"context"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

// PoolManager acquires and caches candidate pools.
type PoolManager interface {
	// AcquirePool returns a candidate pool of up to targetSize items
	// sampled with the given strategy. A cached, unexpired pool of
	// sufficient size satisfies the request when useCache is true.
	//
	// An under-sized pool is returned as-is with its provenance marked,
	// never as an error; domain.ErrSamplingUnavailable is reserved for
	// acquisitions that produced nothing and found no usable cache entry.
	AcquirePool(ctx context.Context, targetSize int, strategy domain.SamplingStrategy, useCache bool) (*domain.CandidatePool, error)
}
