package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domcat "github.com/kailas-cloud/ftsi/internal/domain/catalog"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/usecase/observe"
)

// Service reports catalog status and record totals.
// Every call reads a fresh snapshot; counts may be stale as soon as they return.
type Service struct {
	repo    Repository
	counter Counter
	schemas Schemas
}

// New creates a catalog service.
func New(repo Repository, counter Counter, schemas Schemas) *Service {
	return &Service{repo: repo, counter: counter, schemas: schemas}
}

// Entities returns the registered entities sorted by name.
func (s *Service) Entities() []entity.Entity {
	return s.schemas.Entities()
}

// Status returns document counts of the entity's catalog.
func (s *Service) Status(ctx context.Context, entityName string) (st domcat.Status, err error) {
	start := time.Now()
	defer func() { observe.Operation(ctx, "status", entityName, start, err, zap.Int("num", st.Num())) }()

	e, err := s.schemas.Describe(entityName)
	if err != nil {
		return domcat.Status{}, err
	}
	st, err = s.repo.Status(ctx, e.Catalog())
	if err != nil {
		return domcat.Status{}, fmt.Errorf("status: %w", err)
	}
	return st, nil
}

// StatusOf returns document counts of a catalog by name.
func (s *Service) StatusOf(ctx context.Context, catalog string) (domcat.Status, error) {
	st, err := s.repo.Status(ctx, catalog)
	if err != nil {
		return domcat.Status{}, fmt.Errorf("status: %w", err)
	}
	return st, nil
}

// Totals returns how many records of the entity are indexed.
func (s *Service) Totals(ctx context.Context, entityName string) (n int, err error) {
	start := time.Now()
	defer func() { observe.Operation(ctx, "totals", entityName, start, err, zap.Int("total", n)) }()

	e, err := s.schemas.Describe(entityName)
	if err != nil {
		return 0, err
	}
	n, err = s.counter.Count(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("totals: %w", err)
	}
	return n, nil
}

// TotalsAll returns the live document count summed over every known catalog.
// Catalogs are read one after another, so the sum is not a global snapshot.
func (s *Service) TotalsAll(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { observe.Operation(ctx, "totals_all", "", start, err, zap.Int("total", n)) }()

	names, err := s.repo.Names(ctx)
	if err != nil {
		return 0, err
	}
	for _, name := range names {
		st, err := s.repo.Status(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("totals: %w", err)
		}
		n += st.Num()
	}
	return n, nil
}

// Statuses returns the status of every known catalog.
func (s *Service) Statuses(ctx context.Context) ([]domcat.Status, error) {
	names, err := s.repo.Names(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domcat.Status, 0, len(names))
	for _, name := range names {
		st, err := s.repo.Status(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		out = append(out, st)
	}
	return out, nil
}
