package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/domain"
	domdoc "github.com/kailas-cloud/ftsi/internal/domain/document"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
)

// store is the consumer interface for catalog writes (ISP).
type store interface {
	Writer(ctx context.Context, def *db.CatalogDefinition) (db.Writer, error)
	Check(ctx context.Context, def *db.CatalogDefinition) error
	Reader(ctx context.Context, catalog string) (db.Reader, error)
	Names(ctx context.Context) ([]string, error)
	Drop(ctx context.Context, catalog string) error
}

// members resolves the entities sharing a catalog.
type members interface {
	Members(catalog string) []entity.Entity
}

// Repo implements usecase/document.Repository.
// Every call acquires one writer and releases it before returning.
type Repo struct {
	store    store
	members  members
	analyzer string
}

// Option configures the Repo.
type Option func(*Repo)

// WithAnalyzer selects the analyzer of text fields in catalogs this repo creates.
// Empty means db.DefaultAnalyzer.
func WithAnalyzer(name string) Option {
	return func(r *Repo) { r.analyzer = name }
}

// New creates a document repository.
func New(s store, m members, opts ...Option) *Repo {
	r := &Repo{store: s, members: m}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Repo) definition(catalog string, extra ...entity.Entity) (*db.CatalogDefinition, error) {
	def, err := db.DefinitionFor(catalog, r.analyzer, append(r.members.Members(catalog), extra...)...)
	if err != nil {
		return nil, fmt.Errorf("catalog definition %s: %w", catalog, err)
	}
	return def, nil
}

// Admit checks that e can join its catalog as it exists in storage.
// A catalog already created without one of e's fields, or with another
// analyzer, is a domain.SchemaError wrapping domain.ErrConflict.
func (r *Repo) Admit(ctx context.Context, e entity.Entity) error {
	def, err := r.definition(e.Catalog(), e)
	if err != nil {
		return domain.NewSchemaError(e.Name(), "", err)
	}
	err = r.store.Check(ctx, def)
	var drift *db.MappingDriftError
	if errors.As(err, &drift) {
		return drift.Schema(e.Name())
	}
	if err != nil {
		return fmt.Errorf("check %s: %w", e.Catalog(), db.ToDomain(e.Catalog(), err))
	}
	return nil
}

// withWriter runs fn with an exclusive writer on catalog and commits on success.
// The writer is closed on every path; uncommitted changes are discarded.
func (r *Repo) withWriter(ctx context.Context, catalog string, fn func(w db.Writer) error) (err error) {
	def, err := r.definition(catalog)
	if err != nil {
		return err
	}
	w, err := r.store.Writer(ctx, def)
	if err != nil {
		return db.ToDomain(catalog, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = db.ToDomain(catalog, cerr)
		}
	}()

	if err := fn(w); err != nil {
		return db.ToDomain(catalog, err)
	}
	if err := w.Commit(ctx); err != nil {
		return db.ToDomain(catalog, err)
	}
	return nil
}

// exists reports whether catalog has ever been written.
func (r *Repo) exists(ctx context.Context, catalog string) (bool, error) {
	rd, err := r.store.Reader(ctx, catalog)
	if errors.Is(err, db.ErrCatalogNotFound) {
		return false, nil
	}
	if err != nil {
		return false, db.ToDomain(catalog, err)
	}
	return true, rd.Close()
}

// Insert adds documents to a catalog in one commit.
func (r *Repo) Insert(ctx context.Context, catalog string, docs []*domdoc.Document) error {
	err := r.withWriter(ctx, catalog, func(w db.Writer) error {
		for _, d := range docs {
			if err := w.Add(d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert into %s: %w", catalog, err)
	}
	return nil
}

// Replace removes every document of e whose key equals key and adds doc.
// Both changes are committed in one batch. Returns how many documents were removed.
func (r *Repo) Replace(ctx context.Context, e entity.Entity, key string, doc *domdoc.Document) (int, error) {
	var removed int
	err := r.withWriter(ctx, e.Catalog(), func(w db.Writer) error {
		n, err := w.Delete(ctx, keyQuery(e, key))
		if err != nil {
			return err
		}
		removed = n
		return w.Add(doc)
	})
	if err != nil {
		return 0, fmt.Errorf("replace %s %q: %w", e.Name(), key, err)
	}
	return removed, nil
}

// DeleteByKey removes every document of e whose key equals key, then merges
// deletes away so counts reflect the removal.
func (r *Repo) DeleteByKey(ctx context.Context, e entity.Entity, key string) (int, error) {
	n, err := r.deleteMatching(ctx, e.Catalog(), keyQuery(e, key))
	if err != nil {
		return 0, fmt.Errorf("delete %s %q: %w", e.Name(), key, err)
	}
	return n, nil
}

// DeleteEntity removes every document of e. Other entities sharing its catalog are kept.
func (r *Repo) DeleteEntity(ctx context.Context, e entity.Entity) (int, error) {
	n, err := r.deleteMatching(ctx, e.Catalog(), entityQuery(e))
	if err != nil {
		return 0, fmt.Errorf("delete all %s: %w", e.Name(), err)
	}
	return n, nil
}

// Clear removes every document in a catalog. The catalog itself is kept.
func (r *Repo) Clear(ctx context.Context, catalog string) (int, error) {
	n, err := r.deleteMatching(ctx, catalog, db.MatchAllQuery{})
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", catalog, err)
	}
	return n, nil
}

// deleteMatching is a no-op on a catalog that was never written.
func (r *Repo) deleteMatching(ctx context.Context, catalog string, q db.Query) (int, error) {
	ok, err := r.exists(ctx, catalog)
	if err != nil || !ok {
		return 0, err
	}

	var removed int
	err = r.withWriter(ctx, catalog, func(w db.Writer) error {
		n, err := w.Delete(ctx, q)
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}

	// Merge after the commit so deleted documents stop counting toward status.
	err = r.withWriter(ctx, catalog, func(w db.Writer) error {
		return w.ForceMergeDeletes(ctx)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Drop removes a catalog and its storage.
func (r *Repo) Drop(ctx context.Context, catalog string) error {
	if err := r.store.Drop(ctx, catalog); err != nil {
		return fmt.Errorf("drop %s: %w", catalog, db.ToDomain(catalog, err))
	}
	return nil
}

// Catalogs lists every catalog known to the store.
func (r *Repo) Catalogs(ctx context.Context) ([]string, error) {
	names, err := r.store.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", db.ToDomain("", err))
	}
	return names, nil
}

func entityQuery(e entity.Entity) db.Query {
	return db.TermQuery{Field: db.EntityField, Value: e.Name()}
}

func keyQuery(e entity.Entity, key string) db.Query {
	k, _ := e.Key()
	return db.ConjunctionQuery{Clauses: []db.Query{
		entityQuery(e),
		db.TermQuery{Field: k.Name(), Value: key},
	}}
}
