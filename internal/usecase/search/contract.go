package search

import (
	"context"

	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/search/highlight"
	"github.com/kailas-cloud/ftsi/internal/domain/search/request"
	"github.com/kailas-cloud/ftsi/internal/domain/search/result"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	Search(ctx context.Context, e entity.Entity, req *request.Request, hl highlight.Config) (result.Page, error)
}

// Schemas resolves registered entities.
type Schemas interface {
	Describe(name string) (entity.Entity, error)
}
