package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ftsi/internal/domain"
	domdoc "github.com/kailas-cloud/ftsi/internal/domain/document"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	catalogsvc "github.com/kailas-cloud/ftsi/internal/usecase/catalog"
	documentuc "github.com/kailas-cloud/ftsi/internal/usecase/document"
	healthuc "github.com/kailas-cloud/ftsi/internal/usecase/health"
	searchuc "github.com/kailas-cloud/ftsi/internal/usecase/search"
)

// maxBodyBytes bounds record upload bodies.
const maxBodyBytes = 32 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Schemas resolves registered entities for request decoding.
type Schemas interface {
	Describe(name string) (entity.Entity, error)
}

// Server serves the HTTP API over the indexing services.
type Server struct {
	schemas       Schemas
	documents     *documentuc.Service
	search        *searchuc.Service
	catalogs      *catalogsvc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler

	defaultPageSize int
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithDefaultPageSize sets the page size of searches that omit page_size.
// An explicit page_size below 1 still falls back to 10.
func WithDefaultPageSize(n int) ServerOption {
	return func(s *Server) { s.defaultPageSize = n }
}

// NewServer creates an HTTP API server.
func NewServer(
	schemas Schemas,
	documents *documentuc.Service,
	search *searchuc.Service,
	catalogs *catalogsvc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
	opts ...ServerOption,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		schemas:   schemas,
		documents: documents,
		search:    search,
		catalogs:  catalogs,
		health:    health,
		logger:    logger,
	}
	for _, o := range opts {
		o(s)
	}
	// Order matters: a SchemaError for an unknown field also matches ErrSchema.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownEntity, http.StatusNotFound, ErrorCodeEntityNotFound),
		sentinelHandler(domain.ErrNoKeyDefined, http.StatusBadRequest, ErrorCodeNoKeyDefined),
		sentinelHandler(domain.ErrSchema, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrMapping, http.StatusBadRequest, ErrorCodeMappingFailed),
		sentinelHandler(domain.ErrParse, http.StatusBadRequest, ErrorCodeInvalidQuery),
		sentinelHandler(domain.ErrIO, http.StatusInternalServerError, ErrorCodeIOError),
	}
	return s
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/entities", s.ListEntities)
		r.Get("/totals", s.GetTotals)
		r.Delete("/records", s.DeleteEverything)

		r.Route("/entities/{entity}", func(r chi.Router) {
			r.Use(s.catalogLogger)
			r.Get("/status", s.GetStatus)
			r.Get("/search", s.Search)
			r.Post("/records", s.CreateRecords)
			r.Put("/records", s.UpdateRecord)
			r.Delete("/records", s.DeleteAll)
			r.Delete("/records/{key}", s.DeleteRecord)
		})
	})
}

// ListEntities handles GET /api/v1/entities.
func (s *Server) ListEntities(w http.ResponseWriter, _ *http.Request) {
	ents := s.catalogs.Entities()
	items := make([]EntityResponse, len(ents))
	for i, e := range ents {
		items[i] = entityToResponse(e)
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateRecords handles POST /api/v1/entities/{entity}/records.
// The body is one JSON object or an array of them.
func (s *Server) CreateRecords(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entity(w, r)
	if !ok {
		return
	}
	objs, err := decodeRecords(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(objs) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "at least one record is required")
		return
	}

	records := make([]documentuc.Record, len(objs))
	for i, obj := range objs {
		v, err := domdoc.Coerce(e, obj)
		if err != nil {
			s.handleDomainError(w, fmt.Errorf("record %d: %w", i, err))
			return
		}
		records[i] = documentuc.Record{Entity: e.Name(), Values: v}
	}

	n, err := s.documents.Create(r.Context(), records...)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateResponse{Created: n})
}

// UpdateRecord handles PUT /api/v1/entities/{entity}/records and echoes the stored record.
func (s *Server) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entity(w, r)
	if !ok {
		return
	}
	obj, err := decodeObject(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	v, err := domdoc.Coerce(e, obj)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.documents.Update(r.Context(), e.Name(), v); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// DeleteRecord handles DELETE /api/v1/entities/{entity}/records/{key}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	var key string
	if err := runtime.BindStyledParameterWithOptions("simple", "key", chi.URLParam(r, "key"), &key,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true}); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid key: "+err.Error())
		return
	}
	n, err := s.documents.Delete(r.Context(), chi.URLParam(r, "entity"), key)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: n})
}

// DeleteAll handles DELETE /api/v1/entities/{entity}/records.
func (s *Server) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if _, err := s.documents.DeleteAll(r.Context(), chi.URLParam(r, "entity")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEverything handles DELETE /api/v1/records.
func (s *Server) DeleteEverything(w http.ResponseWriter, r *http.Request) {
	if _, err := s.documents.DeleteEverything(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStatus handles GET /api/v1/entities/{entity}/status.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.catalogs.Status(r.Context(), chi.URLParam(r, "entity"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusToResponse(st))
}

// GetTotals handles GET /api/v1/totals. Without ?entity= it sums every catalog.
func (s *Server) GetTotals(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := runtime.BindQueryParameter("form", true, false, "entity", r.URL.Query(), &name); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	var (
		n   int
		err error
	)
	if name == "" {
		n, err = s.catalogs.TotalsAll(r.Context())
	} else {
		n, err = s.catalogs.Totals(r.Context(), name)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TotalsResponse{Entity: name, Total: n})
}

// searchParams are the query parameters of GET .../search.
type searchParams struct {
	Field    string
	Value    string
	Q        string
	Where    []string
	Sort     []string
	Page     int
	PageSize int
}

// bindSearchParams leaves PageSize at the server default when page_size is absent.
func (s *Server) bindSearchParams(r *http.Request) (searchParams, error) {
	p := searchParams{PageSize: s.defaultPageSize}
	q := r.URL.Query()
	binds := []struct {
		name string
		dest any
	}{
		{"field", &p.Field},
		{"value", &p.Value},
		{"q", &p.Q},
		{"where", &p.Where},
		{"sort", &p.Sort},
		{"page", &p.Page},
		{"page_size", &p.PageSize},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return searchParams{}, fmt.Errorf("parameter %s: %w", b.name, err)
		}
	}
	return p, nil
}

// Search handles GET /api/v1/entities/{entity}/search.
// With field= it is a term search, otherwise a keywords search over q=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	p, err := s.bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	name := chi.URLParam(r, "entity")

	if p.Field != "" {
		page, err := s.search.SearchTerm(r.Context(), name, p.Field, p.Value, p.Page, p.PageSize)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pageToResponse(&page))
		return
	}

	conds, err := parseWhere(p.Where)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	page, err := s.search.SearchKeywords(r.Context(), name, p.Q, conds, p.Page, p.PageSize, p.Sort...)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(&page))
}

// parseWhere turns field:value pairs into AND conditions.
func parseWhere(where []string) (map[string]string, error) {
	if len(where) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(where))
	for _, w := range where {
		k, v, ok := strings.Cut(w, ":")
		if !ok || k == "" {
			return nil, fmt.Errorf("where %q must be field:value", w)
		}
		if _, dup := out[k]; dup {
			return nil, fmt.Errorf("where: field %q given twice", k)
		}
		out[k] = v
	}
	return out, nil
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if !report.Serving() {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{
		Status:   string(report.Status),
		Checks:   checks,
		Catalogs: report.Catalogs,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// entity resolves the {entity} path parameter, writing the error reply on failure.
func (s *Server) entity(w http.ResponseWriter, r *http.Request) (entity.Entity, bool) {
	e, err := s.schemas.Describe(chi.URLParam(r, "entity"))
	if err != nil {
		s.handleDomainError(w, err)
		return entity.Entity{}, false
	}
	return e, true
}

// decodeRecords reads one object or an array of objects. Numbers stay json.Number
// so integers keep full precision until coerced to their declared kind.
func decodeRecords(body io.Reader) ([]map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var objs []map[string]any
		if err := newDecoder(trimmed).Decode(&objs); err != nil {
			return nil, err
		}
		return objs, nil
	}
	obj, err := decodeObject(bytes.NewReader(trimmed))
	if err != nil {
		return nil, err
	}
	return []map[string]any{obj}, nil
}

func decodeObject(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("record must be a JSON object")
	}
	return obj, nil
}

func newDecoder(data []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns the error text for client errors and a fixed
// message for storage failures, which may carry paths.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrIO) {
		return domain.ErrIO.Error()
	}
	for _, s := range []error{
		domain.ErrUnknownEntity,
		domain.ErrNoKeyDefined,
		domain.ErrSchema,
		domain.ErrMapping,
		domain.ErrParse,
	} {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
