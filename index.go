package ftsi

import (
	"context"

	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/search/result"
	documentuc "github.com/kailas-cloud/ftsi/internal/usecase/document"
)

// Index is a typed handle on the records of one entity type.
type Index[R any] struct {
	client *Client
	schema Schema[R]
	entity entity.Entity
}

// NewIndex registers the schema with the client and returns its index.
// Registering an identical schema twice is allowed; a different schema
// under the same name fails with ErrConflict. So does a schema indexing a
// field its catalog was created without, since catalog mappings are fixed
// once the first record is written.
func NewIndex[R any](c *Client, s Schema[R]) (*Index[R], error) {
	e, err := s.describe()
	if err != nil {
		return nil, err
	}
	if err := c.app.Register(c.ctx(context.Background()), e); err != nil {
		return nil, err
	}
	return &Index[R]{client: c, schema: s, entity: e}, nil
}

// Client returns the client the index is registered with.
func (ix *Index[R]) Client() *Client { return ix.client }

// Name returns the entity type name.
func (ix *Index[R]) Name() string { return ix.entity.Name() }

// Catalog returns the catalog the records are stored in.
func (ix *Index[R]) Catalog() string { return ix.entity.Catalog() }

// Create indexes records and returns how many were written.
// Nothing is written when any record fails to map.
func (ix *Index[R]) Create(ctx context.Context, records ...R) (n int, err error) {
	call := ix.client.obs.begin("create", ix.Name())
	defer func() { call.end(err, n) }()

	recs := make([]documentuc.Record, len(records))
	for i := range records {
		recs[i] = documentuc.Record{Entity: ix.Name(), Values: ix.schema.values(&records[i])}
	}
	return ix.client.app.Documents.Create(ix.client.ctx(ctx), recs...)
}

// Update replaces every indexed record sharing r's key with r.
func (ix *Index[R]) Update(ctx context.Context, r R) (err error) {
	call := ix.client.obs.begin("update", ix.Name())
	defer func() { call.end(err, 1) }()

	return ix.client.app.Documents.Update(ix.client.ctx(ctx), ix.Name(), ix.schema.values(&r))
}

// Delete removes the records with the given key and returns how many were removed.
func (ix *Index[R]) Delete(ctx context.Context, key string) (n int, err error) {
	call := ix.client.obs.begin("delete", ix.Name())
	defer func() { call.end(err, n) }()

	return ix.client.app.Documents.Delete(ix.client.ctx(ctx), ix.Name(), key)
}

// DeleteAll removes every record of this entity type. Other entity types
// sharing the catalog are untouched.
func (ix *Index[R]) DeleteAll(ctx context.Context) (n int, err error) {
	call := ix.client.obs.begin("delete_all", ix.Name())
	defer func() { call.end(err, n) }()

	return ix.client.app.Documents.DeleteAll(ix.client.ctx(ctx), ix.Name())
}

// Drop removes the entity's catalog from storage, including the records of
// other entity types sharing it.
func (ix *Index[R]) Drop(ctx context.Context) (err error) {
	call := ix.client.obs.begin("drop", ix.Name())
	defer func() { call.end(err, 0) }()

	return ix.client.app.Documents.Drop(ix.client.ctx(ctx), ix.Name())
}

// Status returns the document counts of the entity's catalog.
func (ix *Index[R]) Status(ctx context.Context) (_ Status, err error) {
	call := ix.client.obs.begin("status", ix.Name())
	defer func() { call.end(err, 0) }()

	st, err := ix.client.app.Catalogs.Status(ix.client.ctx(ctx), ix.Name())
	if err != nil {
		return Status{}, err
	}
	return statusFromDomain(st), nil
}

// Totals returns how many records of this entity type are indexed.
func (ix *Index[R]) Totals(ctx context.Context) (n int, err error) {
	call := ix.client.obs.begin("totals", ix.Name())
	defer func() { call.end(err, 0) }()

	return ix.client.app.Catalogs.Totals(ix.client.ctx(ctx), ix.Name())
}

// Find returns the records whose field equals value exactly.
// page counts from 1; pageSize below 1 uses the default.
func (ix *Index[R]) Find(ctx context.Context, fieldName, value string, page, pageSize int) (p Page[R], err error) {
	call := ix.client.obs.begin("find", ix.Name())
	defer func() { call.end(err, len(p.Content)) }()

	res, err := ix.client.app.Search.SearchTerm(ix.client.ctx(ctx), ix.Name(), fieldName, value, page, pageSize)
	if err != nil {
		return Page[R]{}, err
	}
	return ix.page(res)
}

// Search starts a keywords search on this entity type.
func (ix *Index[R]) Search() *SearchBuilder[R] {
	return &SearchBuilder[R]{index: ix}
}

func (ix *Index[R]) page(res result.Page) (Page[R], error) {
	content := make([]R, 0, len(res.Content()))
	for _, v := range res.Content() {
		r, err := ix.schema.record(v)
		if err != nil {
			return Page[R]{}, err
		}
		content = append(content, r)
	}
	return Page[R]{
		Page:     res.Page(),
		PageSize: res.PageSize(),
		HasMore:  res.HasMore(),
		Total:    res.Total(),
		Content:  content,
	}, nil
}
