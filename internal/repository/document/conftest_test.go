package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/ftsi/internal/db"
	domdoc "github.com/kailas-cloud/ftsi/internal/domain/document"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/entity/field"
)

// mockWriter records staged operations.
type mockWriter struct {
	added     []*domdoc.Document
	deletes   []db.Query
	deleteN   int
	deleteErr error
	addErr    error
	commitErr error
	commits   int
	merges    int
	closed    int
}

func (w *mockWriter) Add(doc *domdoc.Document) error {
	if w.addErr != nil {
		return w.addErr
	}
	w.added = append(w.added, doc)
	return nil
}

func (w *mockWriter) Delete(_ context.Context, q db.Query) (int, error) {
	w.deletes = append(w.deletes, q)
	return w.deleteN, w.deleteErr
}

func (w *mockWriter) DeleteAll(ctx context.Context) (int, error) {
	return w.Delete(ctx, db.MatchAllQuery{})
}

func (w *mockWriter) Commit(_ context.Context) error {
	if w.commitErr != nil {
		return w.commitErr
	}
	w.commits++
	return nil
}

func (w *mockWriter) ForceMergeDeletes(_ context.Context) error {
	w.merges++
	return nil
}

func (w *mockWriter) Close() error {
	w.closed++
	return nil
}

type mockReader struct {
	closed int
}

func (r *mockReader) Stats(_ context.Context) (db.Stats, error) { return db.Stats{}, nil }

func (r *mockReader) Search(_ context.Context, _ *db.SearchRequest) (*db.SearchResult, error) {
	return &db.SearchResult{}, nil
}

func (r *mockReader) Close() error {
	r.closed++
	return nil
}

// mockStore implements the consumer interface for tests.
type mockStore struct {
	writer    *mockWriter
	writerErr error
	defs      []*db.CatalogDefinition
	reader    *mockReader
	readerErr error
	names     []string
	dropped   []string
	checkErr  error
	checked   []*db.CatalogDefinition
}

func (m *mockStore) Check(_ context.Context, def *db.CatalogDefinition) error {
	m.checked = append(m.checked, def)
	return m.checkErr
}

func (m *mockStore) Writer(_ context.Context, def *db.CatalogDefinition) (db.Writer, error) {
	if m.writerErr != nil {
		return nil, m.writerErr
	}
	m.defs = append(m.defs, def)
	return m.writer, nil
}

func (m *mockStore) Reader(_ context.Context, _ string) (db.Reader, error) {
	if m.readerErr != nil {
		return nil, m.readerErr
	}
	return m.reader, nil
}

func (m *mockStore) Names(_ context.Context) ([]string, error) { return m.names, nil }

func (m *mockStore) Drop(_ context.Context, catalog string) error {
	m.dropped = append(m.dropped, catalog)
	return nil
}

type staticMembers map[string][]entity.Entity

func (s staticMembers) Members(catalog string) []entity.Entity { return s[catalog] }

func testEntity(t *testing.T) entity.Entity {
	t.Helper()
	e, err := entity.New("Article", []entity.FieldSpec{
		{Name: "id", Kind: field.Text, Key: true},
		{Name: "title", Kind: field.Text},
	})
	if err != nil {
		t.Fatalf("entity.New: %v", err)
	}
	return e
}

func testDocument(t *testing.T, e entity.Entity, id, title string) *domdoc.Document {
	t.Helper()
	d, err := domdoc.ToDocument(e, domdoc.Values{"id": id, "title": title})
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	return &d
}

func newTestRepo(t *testing.T) (*Repo, *mockStore, entity.Entity) {
	t.Helper()
	e := testEntity(t)
	ms := &mockStore{writer: &mockWriter{}, reader: &mockReader{}}
	return New(ms, staticMembers{"Article": {e}}), ms, e
}
