package document

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ftsi/internal/domain"
	domdoc "github.com/kailas-cloud/ftsi/internal/domain/document"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/metrics"
	"github.com/kailas-cloud/ftsi/internal/usecase/observe"
)

// Record is one application record of a registered entity.
type Record struct {
	Entity string
	Values domdoc.Values
}

// Service handles indexing, update and deletion of records.
type Service struct {
	repo    Repository
	schemas Schemas
}

// New creates a document service.
func New(repo Repository, schemas Schemas) *Service {
	return &Service{repo: repo, schemas: schemas}
}

// Create projects and indexes records. Every record is validated before any
// catalog is written; records of one catalog are committed together.
func (s *Service) Create(ctx context.Context, records ...Record) (n int, err error) {
	start := time.Now()
	defer func() { observe.Operation(ctx, "create", entityLabel(records), start, err, zap.Int("count", n)) }()

	var (
		order   []string
		batches = make(map[string][]*domdoc.Document)
		counts  = make(map[string]int)
	)
	for i, r := range records {
		e, err := s.schemas.Describe(r.Entity)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		doc, err := domdoc.ToDocument(e, r.Values)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		if _, ok := batches[e.Catalog()]; !ok {
			order = append(order, e.Catalog())
		}
		batches[e.Catalog()] = append(batches[e.Catalog()], &doc)
		counts[e.Name()]++
	}

	for _, catalog := range order {
		if err := s.repo.Insert(ctx, catalog, batches[catalog]); err != nil {
			return n, fmt.Errorf("create: %w", err)
		}
		n += len(batches[catalog])
	}
	for name, c := range counts {
		metrics.DocumentsIndexedTotal.WithLabelValues(name).Add(float64(c))
	}
	return n, nil
}

// Update replaces every indexed record sharing the record's key with the record.
// Removal and insertion are committed atomically.
func (s *Service) Update(ctx context.Context, entityName string, v domdoc.Values) (err error) {
	start := time.Now()
	defer func() { observe.Operation(ctx, "update", entityName, start, err) }()

	e, err := s.keyed(entityName)
	if err != nil {
		return err
	}
	key, err := domdoc.KeyOf(e, v)
	if err != nil {
		return err
	}
	if key == "" {
		k, _ := e.Key()
		return domain.NewMappingError(e.Name(), k.Name(), domain.ErrMissingKeyValue)
	}
	doc, err := domdoc.ToDocument(e, v)
	if err != nil {
		return err
	}

	removed, err := s.repo.Replace(ctx, e, key, &doc)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	metrics.DocumentsDeletedTotal.WithLabelValues(e.Name()).Add(float64(removed))
	metrics.DocumentsIndexedTotal.WithLabelValues(e.Name()).Inc()
	return nil
}

// Delete removes every record of the entity whose key equals key and returns how many.
// An empty key removes nothing.
func (s *Service) Delete(ctx context.Context, entityName, key string) (n int, err error) {
	start := time.Now()
	defer func() { observe.Operation(ctx, "delete", entityName, start, err, zap.Int("count", n)) }()

	e, err := s.schemas.Describe(entityName)
	if err != nil {
		return 0, err
	}
	if key == "" {
		return 0, nil
	}
	if !e.HasKey() {
		return 0, domain.NewNoKeyDefined(e.Name())
	}

	n, err = s.repo.DeleteByKey(ctx, e, key)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	metrics.DocumentsDeletedTotal.WithLabelValues(e.Name()).Add(float64(n))
	return n, nil
}

// DeleteAll removes every record of the entity. The catalog is kept.
func (s *Service) DeleteAll(ctx context.Context, entityName string) (n int, err error) {
	start := time.Now()
	defer func() { observe.Operation(ctx, "delete_all", entityName, start, err, zap.Int("count", n)) }()

	e, err := s.schemas.Describe(entityName)
	if err != nil {
		return 0, err
	}
	n, err = s.repo.DeleteEntity(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("delete all: %w", err)
	}
	metrics.DocumentsDeletedTotal.WithLabelValues(e.Name()).Add(float64(n))
	return n, nil
}

// DeleteEverything clears every known catalog and returns how many records were removed.
func (s *Service) DeleteEverything(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { observe.Operation(ctx, "delete_everything", "", start, err, zap.Int("count", n)) }()

	catalogs, err := s.repo.Catalogs(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range catalogs {
		removed, err := s.repo.Clear(ctx, c)
		if err != nil {
			return n, fmt.Errorf("delete everything: %w", err)
		}
		n += removed
	}
	return n, nil
}

// Drop tears down the entity's catalog, including records of entities sharing it.
func (s *Service) Drop(ctx context.Context, entityName string) (err error) {
	start := time.Now()
	defer func() { observe.Operation(ctx, "drop", entityName, start, err) }()

	e, err := s.schemas.Describe(entityName)
	if err != nil {
		return err
	}
	if err := s.repo.Drop(ctx, e.Catalog()); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	return nil
}

func (s *Service) keyed(entityName string) (entity.Entity, error) {
	e, err := s.schemas.Describe(entityName)
	if err != nil {
		return entity.Entity{}, err
	}
	if !e.HasKey() {
		return entity.Entity{}, domain.NewNoKeyDefined(e.Name())
	}
	return e, nil
}

// entityLabel is the metric label for a batch: its entity when uniform, "mixed" otherwise.
func entityLabel(records []Record) string {
	if len(records) == 0 {
		return ""
	}
	name := records[0].Entity
	for _, r := range records[1:] {
		if r.Entity != name {
			return "mixed"
		}
	}
	return name
}
