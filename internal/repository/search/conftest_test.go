package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/entity/field"
)

type mockReader struct {
	searchFn func(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error)
	closed   int
}

func (m *mockReader) Stats(_ context.Context) (db.Stats, error) { return db.Stats{}, nil }

func (m *mockReader) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &db.SearchResult{}, nil
}

func (m *mockReader) Close() error {
	m.closed++
	return nil
}

// mockStore implements the consumer interface for tests.
type mockStore struct {
	reader    *mockReader
	readerErr error
	catalogs  []string
}

func (m *mockStore) Reader(_ context.Context, catalog string) (db.Reader, error) {
	m.catalogs = append(m.catalogs, catalog)
	if m.readerErr != nil {
		return nil, m.readerErr
	}
	return m.reader, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{reader: &mockReader{}}
	return New(ms), ms
}

func testEntity(t *testing.T) entity.Entity {
	t.Helper()
	e, err := entity.New("Article", []entity.FieldSpec{
		{Name: "id", Kind: field.Text, Key: true, Ignored: true},
		{Name: "title", Kind: field.Text},
		{Name: "type", Kind: field.Text, Mode: field.Exact},
		{Name: "views", Kind: field.Int64},
		{Name: "score", Kind: field.Float32},
		{Name: "internal", Kind: field.Text, Ignored: true},
	}, entity.InCatalog("content"))
	if err != nil {
		t.Fatalf("entity.New: %v", err)
	}
	return e
}
