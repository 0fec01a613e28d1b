package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/ftsi/internal/db"
	domcat "github.com/kailas-cloud/ftsi/internal/domain/catalog"
)

// store is the consumer interface for catalog reads (ISP).
type store interface {
	Reader(ctx context.Context, catalog string) (db.Reader, error)
	Names(ctx context.Context) ([]string, error)
}

// Repo implements usecase/catalog.Repository.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Status reads counts through a fresh reader. A catalog that was never written has zero counts.
func (r *Repo) Status(ctx context.Context, name string) (domcat.Status, error) {
	rd, err := r.store.Reader(ctx, name)
	if errors.Is(err, db.ErrCatalogNotFound) {
		return domcat.NewStatus(name, 0, 0, 0), nil
	}
	if err != nil {
		return domcat.Status{}, fmt.Errorf("status %s: %w", name, db.ToDomain(name, err))
	}
	defer func() { _ = rd.Close() }()

	st, err := rd.Stats(ctx)
	if err != nil {
		return domcat.Status{}, fmt.Errorf("status %s: %w", name, db.ToDomain(name, err))
	}
	return domcat.NewStatus(name, st.Live, st.Deleted, st.MaxSlot), nil
}

// Names lists every catalog known to the store.
func (r *Repo) Names(ctx context.Context) ([]string, error) {
	names, err := r.store.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", db.ToDomain("", err))
	}
	return names, nil
}
