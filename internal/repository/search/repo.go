package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/search/highlight"
	"github.com/kailas-cloud/ftsi/internal/domain/search/mode"
	"github.com/kailas-cloud/ftsi/internal/domain/search/request"
	"github.com/kailas-cloud/ftsi/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Reader(ctx context.Context, catalog string) (db.Reader, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs a term or keywords request against the entity's catalog and
// assembles the requested page. A catalog that was never written yields an empty page.
func (r *Repo) Search(
	ctx context.Context, e entity.Entity, req *request.Request, hl highlight.Config,
) (result.Page, error) {
	q, err := buildQuery(e, req)
	if err != nil {
		return result.Page{}, err
	}
	keys, err := sortKeys(e, req.Sort())
	if err != nil {
		return result.Page{}, err
	}

	from, size, ok := req.Window()
	sr := &db.SearchRequest{Query: q, From: from, Size: size, Sort: keys}
	if ok && hl.Enabled() {
		sr.Highlight = &db.Highlight{
			PreTag:       hl.PreTag,
			PostTag:      hl.PostTag,
			FragmentSize: hl.Size(),
			Fields:       highlightFields(e),
		}
	}

	res, err := r.search(ctx, e.Catalog(), sr)
	if errors.Is(err, db.ErrCatalogNotFound) {
		return result.Empty(req.Page(), req.PageSize()), nil
	}
	if err != nil {
		return result.Page{}, fmt.Errorf("search %s: %w", e.Name(), err)
	}

	content, err := assemble(e, res.Entries)
	if err != nil {
		return result.Page{}, err
	}
	return result.New(req.Page(), req.PageSize(), res.Total, req.HasMore(res.Total), content), nil
}

// Count returns how many documents of the entity are indexed.
func (r *Repo) Count(ctx context.Context, e entity.Entity) (int, error) {
	res, err := r.search(ctx, e.Catalog(), &db.SearchRequest{Query: entityClause(e), Size: 0})
	if errors.Is(err, db.ErrCatalogNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", e.Name(), err)
	}
	return res.Total, nil
}

// search opens a fresh reader, so each call sees the latest commit.
func (r *Repo) search(ctx context.Context, catalog string, sr *db.SearchRequest) (*db.SearchResult, error) {
	rd, err := r.store.Reader(ctx, catalog)
	if err != nil {
		return nil, db.ToDomain(catalog, err)
	}
	defer func() { _ = rd.Close() }()

	res, err := rd.Search(ctx, sr)
	if err != nil {
		return nil, db.ToDomain(catalog, err)
	}
	return res, nil
}

func buildQuery(e entity.Entity, req *request.Request) (db.Query, error) {
	switch req.Mode() {
	case mode.Term:
		q, err := termQuery(e, req.Field(), req.Value())
		if err != nil {
			return nil, err
		}
		return db.ConjunctionQuery{Clauses: []db.Query{entityClause(e), q}}, nil
	case mode.Keywords:
		return freeTextQuery(e, req.Keywords(), req.Conditions())
	default:
		return nil, fmt.Errorf("unsupported search mode: %s", req.Mode())
	}
}
