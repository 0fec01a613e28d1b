// Package app wires catalogs, repositories and services into one unit.
package app

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/search/highlight"
	catalogrepo "github.com/kailas-cloud/ftsi/internal/repository/catalog"
	documentrepo "github.com/kailas-cloud/ftsi/internal/repository/document"
	searchrepo "github.com/kailas-cloud/ftsi/internal/repository/search"
	catalogsvc "github.com/kailas-cloud/ftsi/internal/usecase/catalog"
	documentuc "github.com/kailas-cloud/ftsi/internal/usecase/document"
	healthuc "github.com/kailas-cloud/ftsi/internal/usecase/health"
	searchuc "github.com/kailas-cloud/ftsi/internal/usecase/search"
)

// Options tunes the services.
type Options struct {
	Highlight   highlight.Config
	MaxPageSize int
	// Analyzer applies to text fields of catalogs created from now on.
	Analyzer string
}

// App holds the services built over one catalog store and registry.
type App struct {
	Schemas   *entity.Registry
	Documents *documentuc.Service
	Search    *searchuc.Service
	Catalogs  *catalogsvc.Service
	Health    *healthuc.Service

	docs *documentrepo.Repo
}

// New builds every repository and service. The caller owns store and closes it.
func New(store db.Catalogs, schemas *entity.Registry, opts Options) *App {
	docRepo := documentrepo.New(store, schemas, documentrepo.WithAnalyzer(opts.Analyzer))
	searchRepo := searchrepo.New(store)
	catRepo := catalogrepo.New(store)

	return &App{
		Schemas:   schemas,
		Documents: documentuc.New(docRepo, schemas),
		Search: searchuc.New(searchRepo, schemas,
			searchuc.WithHighlight(opts.Highlight),
			searchuc.WithMaxPageSize(opts.MaxPageSize),
		),
		Catalogs: catalogsvc.New(catRepo, searchRepo, schemas),
		Health:   healthuc.New(store, catRepo),
		docs:     docRepo,
	}
}

// Register adds e to Schemas once its catalog, as stored, maps every field
// e indexes. Otherwise the error is a domain.SchemaError wrapping
// domain.ErrConflict and nothing is registered.
func (a *App) Register(ctx context.Context, e entity.Entity) error {
	if err := a.docs.Admit(ctx, e); err != nil {
		return err
	}
	return a.Schemas.Register(e)
}

// Verify checks every registered entity against its stored catalog.
func (a *App) Verify(ctx context.Context) error {
	for _, e := range a.Schemas.Entities() {
		if err := a.docs.Admit(ctx, e); err != nil {
			return fmt.Errorf("entity %s: %w", e.Name(), err)
		}
	}
	return nil
}
