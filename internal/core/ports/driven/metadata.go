package driven

import (
	"context"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
)

// MetadataSource supplies item metadata by identifier.
//
// Implementations must provide title/description/tags text sufficient for
// embedding, an availability flag and a stable identifier. A missing item
// is domain.ErrNotFound, not an empty Item.
type MetadataSource interface {
	// FetchItem retrieves metadata for a single item.
	FetchItem(ctx context.Context, id string) (*domain.Item, error)

	// FetchItems retrieves metadata for multiple items. Identifiers that
	// cannot be resolved are silently omitted from the result; the batch
	// never fails because of a single missing item.
	FetchItems(ctx context.Context, ids []string) ([]domain.Item, error)
}
