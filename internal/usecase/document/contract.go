package document

import (
	"context"

	domdoc "github.com/kailas-cloud/ftsi/internal/domain/document"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
)

// Repository defines the storage contract for document writes.
type Repository interface {
	Insert(ctx context.Context, catalog string, docs []*domdoc.Document) error
	Replace(ctx context.Context, e entity.Entity, key string, doc *domdoc.Document) (removed int, err error)
	DeleteByKey(ctx context.Context, e entity.Entity, key string) (int, error)
	DeleteEntity(ctx context.Context, e entity.Entity) (int, error)
	Clear(ctx context.Context, catalog string) (int, error)
	Drop(ctx context.Context, catalog string) error
	Catalogs(ctx context.Context) ([]string, error)
}

// Schemas resolves registered entities.
type Schemas interface {
	Describe(name string) (entity.Entity, error)
}
