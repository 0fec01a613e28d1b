package request

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/ftsi/internal/domain/search/filter"
	"github.com/kailas-cloud/ftsi/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed keyword query length.
	MaxQueryLength  = 4096
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxSortKeys     = 8
)

// Request is a validated, paginated search.
type Request struct {
	searchMode mode.Mode
	field      string
	value      string
	keywords   string
	conditions filter.Conditions
	sort       []string
	page       int
	pageSize   int
}

// Clamp normalizes pagination: page < 1 becomes 1, pageSize < 1 becomes 10.
func Clamp(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// NewTerm creates an exact-match search on one field.
func NewTerm(field, value string, page, pageSize int) (Request, error) {
	if field == "" {
		return Request{}, fmt.Errorf("field is required")
	}
	page, pageSize = Clamp(page, pageSize)
	return Request{
		searchMode: mode.Term,
		field:      field,
		value:      value,
		page:       page,
		pageSize:   pageSize,
	}, nil
}

// NewKeywords creates a free-text search. Blank keywords match every document.
// Sort keys name fields; a leading "-" sorts descending.
func NewKeywords(
	keywords string, conditions filter.Conditions, page, pageSize int, sort ...string,
) (Request, error) {
	if len(keywords) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if len(sort) > MaxSortKeys {
		return Request{}, fmt.Errorf("too many sort keys (max %d)", MaxSortKeys)
	}
	for _, s := range sort {
		if strings.TrimPrefix(s, "-") == "" {
			return Request{}, fmt.Errorf("sort key is empty")
		}
	}
	page, pageSize = Clamp(page, pageSize)
	return Request{
		searchMode: mode.Keywords,
		keywords:   keywords,
		conditions: conditions,
		sort:       sort,
		page:       page,
		pageSize:   pageSize,
	}, nil
}

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Field returns the term field (term mode only).
func (r *Request) Field() string { return r.field }

// Value returns the term value (term mode only).
func (r *Request) Value() string { return r.value }

// Keywords returns the free-text query (keywords mode only).
func (r *Request) Keywords() string { return r.keywords }

// Conditions returns the AND equality conditions.
func (r *Request) Conditions() filter.Conditions { return r.conditions }

// Sort returns the sort keys.
func (r *Request) Sort() []string { return r.sort }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// PageSize returns the page size.
func (r *Request) PageSize() int { return r.pageSize }

// Window returns the offset and size of the requested page within the ranked
// hits. ok is false when the page ends past math.MaxInt; such a page is
// always empty and must not reach the engine.
func (r *Request) Window() (from, size int, ok bool) {
	if r.page-1 > (math.MaxInt-r.pageSize)/r.pageSize {
		return 0, 0, false
	}
	return (r.page - 1) * r.pageSize, r.pageSize, true
}

// HasMore reports whether matches exist beyond the requested page.
func (r *Request) HasMore(total int) bool {
	if r.page > math.MaxInt/r.pageSize {
		return false
	}
	return total > r.page*r.pageSize
}
