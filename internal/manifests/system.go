package manifests

import (
	"context"

	"github.com/google/uuid"
	"github.com/tfiliano/dt-route-planner/internal/extraction"
	"github.com/tfiliano/dt-route-planner/pkg/pagination"
)

// System defines the manifest store operations: atomic persistence of
// an extraction result, id-or-reference lookup, filtered searches, and
// aggregate statistics.
type System interface {
	Store(ctx context.Context, extracted *extraction.Manifest, meta ItemMeta) (*Manifest, error)
	Find(ctx context.Context, id uuid.UUID) (*Manifest, error)
	FindByReference(ctx context.Context, ref string) (*Manifest, error)
	Resolve(ctx context.Context, external string) (*Manifest, error)
	SearchManifests(ctx context.Context, page pagination.PageRequest, filters ManifestFilters) (*pagination.PageResult[Summary], error)
	SearchDeliveries(ctx context.Context, page pagination.PageRequest, filters DeliveryFilters) (*pagination.PageResult[DeliveryDetail], error)
	Statistics(ctx context.Context) (*Statistics, error)
}
