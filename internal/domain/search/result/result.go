package result

import "github.com/kailas-cloud/ftsi/internal/domain/document"

// Page is one window of search matches (the envelope).
type Page struct {
	page     int
	pageSize int
	hasMore  bool
	total    int
	content  []document.Values
}

// New creates a search result page.
func New(page, pageSize, total int, hasMore bool, content []document.Values) Page {
	if content == nil {
		content = []document.Values{}
	}
	return Page{
		page: page, pageSize: pageSize, total: total,
		hasMore: hasMore, content: content,
	}
}

// Empty creates a page with no matches.
func Empty(page, pageSize int) Page {
	return New(page, pageSize, 0, false, nil)
}

// Page returns the 1-based page number.
func (p *Page) Page() int { return p.page }

// PageSize returns the requested page size.
func (p *Page) PageSize() int { return p.pageSize }

// HasMore reports whether matches exist beyond this page.
func (p *Page) HasMore() bool { return p.hasMore }

// Total returns the total number of matches.
func (p *Page) Total() int { return p.total }

// Content returns the reconstructed records in rank order.
func (p *Page) Content() []document.Values { return p.content }
