package catalog

import (
	"context"

	domcat "github.com/kailas-cloud/ftsi/internal/domain/catalog"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
)

// Repository defines the storage contract for catalog counts.
type Repository interface {
	Status(ctx context.Context, catalog string) (domcat.Status, error)
	Names(ctx context.Context) ([]string, error)
}

// Counter counts the indexed records of one entity.
type Counter interface {
	Count(ctx context.Context, e entity.Entity) (int, error)
}

// Schemas resolves registered entities.
type Schemas interface {
	Describe(name string) (entity.Entity, error)
	Entities() []entity.Entity
}
