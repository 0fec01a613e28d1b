package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/domain"
	"github.com/kailas-cloud/ftsi/internal/domain/search/filter"
	"github.com/kailas-cloud/ftsi/internal/domain/search/highlight"
	"github.com/kailas-cloud/ftsi/internal/domain/search/request"
)

func TestSearch_TermPage(t *testing.T) {
	repo, ms := newTestRepo(t)
	e := testEntity(t)

	var got *db.SearchRequest
	ms.reader.searchFn = func(_ context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
		got = req
		return &db.SearchResult{Total: 5, Entries: []db.SearchEntry{
			{ID: "a", Fields: map[string]string{"id": "3", "title": "hi", "views": "7"}},
			{ID: "b", Fields: map[string]string{"id": "4", "title": "hi there"}},
		}}, nil
	}

	req, err := request.NewTerm("title", "hi", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	page, err := repo.Search(context.Background(), e, &req, highlight.Disabled())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ms.catalogs[0] != "content" {
		t.Fatalf("expected catalog content, got %s", ms.catalogs[0])
	}
	if got.From != 2 || got.Size != 2 {
		t.Fatalf("window from=%d size=%d", got.From, got.Size)
	}
	if got.Highlight != nil {
		t.Fatal("expected no highlight request")
	}
	if page.Total() != 5 || !page.HasMore() || page.Page() != 2 || page.PageSize() != 2 {
		t.Fatalf("unexpected envelope: total=%d more=%v", page.Total(), page.HasMore())
	}
	content := page.Content()
	if len(content) != 2 {
		t.Fatalf("expected 2 records, got %d", len(content))
	}
	if content[0]["views"] != int64(7) {
		t.Fatalf("expected int64 views, got %#v", content[0]["views"])
	}
	if ms.reader.closed != 1 {
		t.Fatal("expected reader closed")
	}
}

func TestSearch_HighlightSubstitutesFragments(t *testing.T) {
	repo, ms := newTestRepo(t)
	e := testEntity(t)

	var got *db.SearchRequest
	ms.reader.searchFn = func(_ context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
		got = req
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{{
			ID:        "a",
			Fields:    map[string]string{"id": "1", "title": "Hello World", "type": "Article"},
			Fragments: map[string]string{"title": "<b>Hello</b> World"},
		}}}, nil
	}

	req, _ := request.NewKeywords("hello", filter.Conditions{}, 1, 10)
	page, err := repo.Search(context.Background(), e, &req, highlight.Config{PreTag: "<b>", PostTag: "</b>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Highlight == nil || got.Highlight.FragmentSize != highlight.DefaultFragmentSize {
		t.Fatalf("unexpected highlight request: %#v", got.Highlight)
	}
	rec := page.Content()[0]
	if rec["title"] != "<b>Hello</b> World" {
		t.Fatalf("expected fragment, got %v", rec["title"])
	}
	if rec["type"] != "Article" {
		t.Fatalf("expected stored value passthrough, got %v", rec["type"])
	}
}

func TestSearch_MissingCatalogIsEmptyPage(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.readerErr = db.ErrCatalogNotFound

	req, _ := request.NewKeywords("", filter.Conditions{}, 0, 0)
	page, err := repo.Search(context.Background(), testEntity(t), &req, highlight.Disabled())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total() != 0 || page.HasMore() || len(page.Content()) != 0 {
		t.Fatal("expected empty page")
	}
	if page.Page() != 1 || page.PageSize() != 10 {
		t.Fatalf("expected clamped page 1/10, got %d/%d", page.Page(), page.PageSize())
	}
}

func TestSearch_ConversionFailureFailsPage(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.reader.searchFn = func(_ context.Context, _ *db.SearchRequest) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{ID: "a", Fields: map[string]string{"views": "not a number"}},
		}}, nil
	}

	req, _ := request.NewKeywords("x", filter.Conditions{}, 1, 10)
	_, err := repo.Search(context.Background(), testEntity(t), &req, highlight.Disabled())
	if !errors.Is(err, domain.ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
}

func TestSearch_EngineErrorIsIOError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.reader.searchFn = func(_ context.Context, _ *db.SearchRequest) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("segment corrupt")}
	}

	req, _ := request.NewKeywords("x", filter.Conditions{}, 1, 10)
	_, err := repo.Search(context.Background(), testEntity(t), &req, highlight.Disabled())
	if !errors.Is(err, domain.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}

func TestSearch_ParseErrorPassesThrough(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.reader.searchFn = func(_ context.Context, _ *db.SearchRequest) (*db.SearchResult, error) {
		return nil, domain.NewParseError("title:(", errors.New("syntax error"))
	}

	req, _ := request.NewKeywords("title:(", filter.Conditions{}, 1, 10)
	_, err := repo.Search(context.Background(), testEntity(t), &req, highlight.Disabled())
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)
	var got *db.SearchRequest
	ms.reader.searchFn = func(_ context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
		got = req
		return &db.SearchResult{Total: 3}, nil
	}

	n, err := repo.Count(context.Background(), testEntity(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
	if got.Size != 0 {
		t.Fatalf("expected size 0, got %d", got.Size)
	}
	if got.Query != (db.TermQuery{Field: db.EntityField, Value: "Article"}) {
		t.Fatalf("unexpected query: %#v", got.Query)
	}
}

func TestCount_MissingCatalog(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.readerErr = db.ErrCatalogNotFound

	n, err := repo.Count(context.Background(), testEntity(t))
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestSearch_UnaddressablePageOnlyCounts(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got *db.SearchRequest
	ms.reader.searchFn = func(_ context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
		got = req
		return &db.SearchResult{Total: 3}, nil
	}

	req, err := request.NewKeywords("hello", filter.Conditions{}, math.MaxInt/10+1, 10)
	if err != nil {
		t.Fatal(err)
	}
	hl := highlight.Config{PreTag: "<em>", PostTag: "</em>"}
	page, err := repo.Search(context.Background(), testEntity(t), &req, hl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.From != 0 || got.Size != 0 || got.Highlight != nil {
		t.Fatalf("expected a count-only request, got from=%d size=%d highlight=%v", got.From, got.Size, got.Highlight)
	}
	if page.Total() != 3 || page.HasMore() || len(page.Content()) != 0 || page.Page() != math.MaxInt/10+1 {
		t.Fatalf("unexpected envelope: page=%d total=%d more=%v", page.Page(), page.Total(), page.HasMore())
	}
}
