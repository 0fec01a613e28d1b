package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/ftsi/internal/app"
	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/db/bleve"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/entity/field"
	"github.com/kailas-cloud/ftsi/internal/domain/search/highlight"
)

const seedBody = `[
	{"id": "1", "title": "Hello World", "type": "Article", "views": 10},
	{"id": "2", "title": "Hello", "type": "News", "views": 30},
	{"id": "3", "title": "hi", "type": "Article", "views": 20}
]`

func newTestRouter(t *testing.T, hl highlight.Config) http.Handler {
	t.Helper()
	return newLoggedRouter(t, hl, nil)
}

func newLoggedRouter(t *testing.T, hl highlight.Config, logger *zap.Logger, opts ...ServerOption) http.Handler {
	t.Helper()
	store, err := bleve.NewStore(db.InMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := entity.NewRegistry()
	article, err := entity.New("Article", []entity.FieldSpec{
		{Name: "id", Kind: field.Text, Key: true, Ignored: true},
		{Name: "title", Kind: field.Text},
		{Name: "type", Kind: field.Text, Mode: field.Exact},
		{Name: "views", Kind: field.Int64},
	})
	require.NoError(t, err)
	require.NoError(t, reg.Register(article))
	tag, err := entity.New("Tag", []entity.FieldSpec{{Name: "label", Kind: field.Text}})
	require.NoError(t, err)
	require.NoError(t, reg.Register(tag))

	a := app.New(store, reg, app.Options{Highlight: hl, MaxPageSize: 50})
	srv := NewServer(a.Schemas, a.Documents, a.Search, a.Catalogs, a.Health, logger, opts...)
	return NewRouter(srv, nil)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func seeded(t *testing.T, hl highlight.Config) http.Handler {
	t.Helper()
	h := newTestRouter(t, hl)
	rr := do(t, h, http.MethodPost, "/api/v1/entities/Article/records", seedBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, 3, decode[CreateResponse](t, rr).Created)
	return h
}

func TestServer_ExampleScenario(t *testing.T) {
	h := seeded(t, highlight.Disabled())

	rr := do(t, h, http.MethodGet, "/api/v1/entities/Article/search?field=title&value=hi", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page := decode[SearchResponse](t, rr)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "3", page.Content[0]["id"])
	assert.Equal(t, float64(20), page.Content[0]["views"])

	rr = do(t, h, http.MethodGet, "/api/v1/entities/Article/search?q="+url.QueryEscape("Hello World"), "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 2, decode[SearchResponse](t, rr).Total)

	rr = do(t, h, http.MethodGet, "/api/v1/totals?entity=Article", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3, decode[TotalsResponse](t, rr).Total)

	rr = do(t, h, http.MethodDelete, "/api/v1/entities/Article/records/1", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, decode[DeleteResponse](t, rr).Deleted)

	rr = do(t, h, http.MethodGet, "/api/v1/entities/Article/status", "")
	require.Equal(t, http.StatusOK, rr.Code)
	st := decode[StatusResponse](t, rr)
	assert.Equal(t, 2, st.Num)
	assert.Equal(t, 2, st.Total)
	assert.Zero(t, st.NumDeleted)
}

func TestServer_KeywordsWithConditionsAndSort(t *testing.T) {
	h := seeded(t, highlight.Disabled())

	rr := do(t, h, http.MethodGet, "/api/v1/entities/Article/search?q=hello&where=type:Article", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page := decode[SearchResponse](t, rr)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "1", page.Content[0]["id"])

	rr = do(t, h, http.MethodGet, "/api/v1/entities/Article/search?sort=-views&page=2&page_size=1", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page = decode[SearchResponse](t, rr)
	assert.Equal(t, 3, page.Total)
	assert.True(t, page.HasMore)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "3", page.Content[0]["id"])
}

func TestServer_DefaultPageSize(t *testing.T) {
	h := newLoggedRouter(t, highlight.Disabled(), nil, WithDefaultPageSize(2))
	rr := do(t, h, http.MethodPost, "/api/v1/entities/Article/records", seedBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/v1/entities/Article/search", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page := decode[SearchResponse](t, rr)
	assert.Equal(t, 2, page.PageSize)
	assert.Len(t, page.Content, 2)
	assert.True(t, page.HasMore)

	rr = do(t, h, http.MethodGet, "/api/v1/entities/Article/search?page_size=0", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page = decode[SearchResponse](t, rr)
	assert.Equal(t, 10, page.PageSize)
	assert.Len(t, page.Content, 3)
	assert.False(t, page.HasMore)
}

func TestServer_Highlight(t *testing.T) {
	h := seeded(t, highlight.Config{PreTag: "<b>", PostTag: "</b>"})

	rr := do(t, h, http.MethodGet, "/api/v1/entities/Article/search?q=world", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page := decode[SearchResponse](t, rr)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Hello <b>World</b>", page.Content[0]["title"])
}

func TestServer_UpdateReplacesByKey(t *testing.T) {
	h := seeded(t, highlight.Disabled())

	rr := do(t, h, http.MethodPut, "/api/v1/entities/Article/records",
		`{"id": "2", "title": "Goodbye", "type": "News", "views": 31}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/v1/totals?entity=Article", "")
	assert.Equal(t, 3, decode[TotalsResponse](t, rr).Total)

	rr = do(t, h, http.MethodGet, "/api/v1/entities/Article/search?field=views&value=31", "")
	page := decode[SearchResponse](t, rr)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Goodbye", page.Content[0]["title"])
}

func TestServer_DeleteAllAndEverything(t *testing.T) {
	h := seeded(t, highlight.Disabled())
	rr := do(t, h, http.MethodPost, "/api/v1/entities/Tag/records", `{"label": "go"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodDelete, "/api/v1/entities/Article/records", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/v1/totals", "")
	assert.Equal(t, 1, decode[TotalsResponse](t, rr).Total)

	rr = do(t, h, http.MethodDelete, "/api/v1/records", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/v1/totals", "")
	assert.Zero(t, decode[TotalsResponse](t, rr).Total)
}

func TestServer_ListEntities(t *testing.T) {
	h := newTestRouter(t, highlight.Disabled())

	rr := do(t, h, http.MethodGet, "/api/v1/entities", "")
	require.Equal(t, http.StatusOK, rr.Code)
	items := decode[[]EntityResponse](t, rr)
	require.Len(t, items, 2)
	assert.Equal(t, "Article", items[0].Name)
	assert.Equal(t, "Article", items[0].Catalog)
	assert.Len(t, items[0].Fields, 4)
	assert.Equal(t, "Tag", items[1].Name)
}

func TestServer_MissingCatalogIsEmpty(t *testing.T) {
	h := newTestRouter(t, highlight.Disabled())

	rr := do(t, h, http.MethodGet, "/api/v1/entities/Article/search?q=anything", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page := decode[SearchResponse](t, rr)
	assert.Zero(t, page.Total)
	assert.NotNil(t, page.Content)

	rr = do(t, h, http.MethodDelete, "/api/v1/entities/Article/records/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, decode[DeleteResponse](t, rr).Deleted)
}

func TestServer_Errors(t *testing.T) {
	h := seeded(t, highlight.Disabled())

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   ErrorCode
	}{
		{"unknown entity", http.MethodGet, "/api/v1/entities/Nope/search?q=x", "", http.StatusNotFound, ErrorCodeEntityNotFound},
		{"unknown entity on create", http.MethodPost, "/api/v1/entities/Nope/records", `{}`, http.StatusNotFound, ErrorCodeEntityNotFound},
		{"malformed where", http.MethodGet, "/api/v1/entities/Article/search?where=type", "", http.StatusBadRequest, ErrorCodeBadRequest},
		{"malformed page", http.MethodGet, "/api/v1/entities/Article/search?page=x", "", http.StatusBadRequest, ErrorCodeBadRequest},
		{"query syntax", http.MethodGet, "/api/v1/entities/Article/search?q=" + url.QueryEscape("title:("), "", http.StatusBadRequest, ErrorCodeInvalidQuery},
		{"unknown condition field", http.MethodGet, "/api/v1/entities/Article/search?where=color:red", "", http.StatusBadRequest, ErrorCodeValidationFailed},
		{"sort on analyzed text", http.MethodGet, "/api/v1/entities/Article/search?sort=title", "", http.StatusBadRequest, ErrorCodeValidationFailed},
		{"malformed numeric term", http.MethodGet, "/api/v1/entities/Article/search?field=views&value=ten", "", http.StatusBadRequest, ErrorCodeInvalidQuery},
		{"update without key", http.MethodPut, "/api/v1/entities/Tag/records", `{"label": "go"}`, http.StatusBadRequest, ErrorCodeNoKeyDefined},
		{"delete without key", http.MethodDelete, "/api/v1/entities/Tag/records/go", "", http.StatusBadRequest, ErrorCodeNoKeyDefined},
		{"wrong value type", http.MethodPost, "/api/v1/entities/Article/records", `{"id": "9", "views": "many"}`, http.StatusBadRequest, ErrorCodeMappingFailed},
		{"undeclared field", http.MethodPost, "/api/v1/entities/Article/records", `{"id": "9", "color": "red"}`, http.StatusBadRequest, ErrorCodeMappingFailed},
		{"update with empty key", http.MethodPut, "/api/v1/entities/Article/records", `{"id": "", "title": "x"}`, http.StatusBadRequest, ErrorCodeMappingFailed},
		{"invalid json", http.MethodPost, "/api/v1/entities/Article/records", `{`, http.StatusBadRequest, ErrorCodeBadRequest},
		{"empty array", http.MethodPost, "/api/v1/entities/Article/records", `[]`, http.StatusBadRequest, ErrorCodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rr).Code)
		})
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, highlight.Disabled())

	rr := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[HealthResponse](t, rr)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Checks["storage"])

	rr = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddleware_RequestIDAndRecover(t *testing.T) {
	h := newTestRouter(t, highlight.Disabled())
	rr := do(t, h, http.MethodGet, "/api/v1/entities", "")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	panicking := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr = do(t, panicking, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, ErrorCodeInternalError, decode[ErrorResponse](t, rr).Code)
}

func TestMiddleware_RequestLoggerCarriesCatalog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := newLoggedRouter(t, highlight.Disabled(), zap.New(core))

	rr := do(t, h, http.MethodGet, "/api/v1/entities/Article/status", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	ops := logs.FilterMessage("index operation completed").All()
	require.Len(t, ops, 1)
	fields := ops[0].ContextMap()
	assert.Equal(t, "Article", fields["catalog"])
	assert.Equal(t, "status", fields["op"])
	assert.Equal(t, rr.Header().Get("X-Request-ID"), fields["request_id"])

	events := logs.FilterMessage("http_request").All()
	require.Len(t, events, 1)
	event := events[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), event["status"])
	assert.Equal(t, "/api/v1/entities/{entity}/status", event["route"])
	assert.Equal(t, "Article", event["entity"])
	assert.Equal(t, zapcore.InfoLevel, events[0].Level)
}

func TestParseWhere(t *testing.T) {
	got, err := parseWhere([]string{"type:Article", "url:http://x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"type": "Article", "url": "http://x"}, got)

	_, err = parseWhere([]string{"type:a", "type:b"})
	assert.Error(t, err)

	got, err = parseWhere(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
