package chi

import (
	domcat "github.com/kailas-cloud/ftsi/internal/domain/catalog"
	domdoc "github.com/kailas-cloud/ftsi/internal/domain/document"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/search/result"
)

// ErrorCode is a machine-readable error code returned in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeEntityNotFound   ErrorCode = "entity_not_found"
	ErrorCodeNoKeyDefined     ErrorCode = "no_key_defined"
	ErrorCodeMappingFailed    ErrorCode = "mapping_failed"
	ErrorCodeInvalidQuery     ErrorCode = "invalid_query"
	ErrorCodeIOError          ErrorCode = "io_error"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// EntityResponse describes one registered entity.
type EntityResponse struct {
	Name    string             `json:"name"`
	Catalog string             `json:"catalog"`
	Fields  []entity.FieldSpec `json:"fields"`
}

// CreateResponse reports how many records were indexed.
type CreateResponse struct {
	Created int `json:"created"`
}

// DeleteResponse reports how many records were removed.
type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

// StatusResponse holds the document counts of a catalog.
type StatusResponse struct {
	Catalog    string `json:"catalog"`
	Num        int    `json:"num"`
	NumDeleted int    `json:"num_deleted"`
	Total      int    `json:"total"`
}

// TotalsResponse holds a record count.
type TotalsResponse struct {
	Entity string `json:"entity,omitempty"`
	Total  int    `json:"total"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	HasMore  bool            `json:"has_more"`
	Total    int             `json:"total"`
	Content  []domdoc.Values `json:"content"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Catalogs int               `json:"catalogs"`
}

func entityToResponse(e entity.Entity) EntityResponse {
	return EntityResponse{Name: e.Name(), Catalog: e.Catalog(), Fields: e.Specs()}
}

func statusToResponse(st domcat.Status) StatusResponse {
	return StatusResponse{
		Catalog:    st.Catalog(),
		Num:        st.Num(),
		NumDeleted: st.NumDeleted(),
		Total:      st.Total(),
	}
}

func pageToResponse(p *result.Page) SearchResponse {
	content := p.Content()
	if content == nil {
		content = []domdoc.Values{}
	}
	return SearchResponse{
		Page:     p.Page(),
		PageSize: p.PageSize(),
		HasMore:  p.HasMore(),
		Total:    p.Total(),
		Content:  content,
	}
}
