package ftsi

import "context"

// SearchBuilder provides a fluent API for keywords searches.
// Blank keywords with no conditions match every record of the entity type.
type SearchBuilder[R any] struct {
	index    *Index[R]
	keywords string
	where    map[string]string
	sort     []string
	page     int
	pageSize int
}

// Keywords sets the free-text query matched against every searchable field.
func (b *SearchBuilder[R]) Keywords(q string) *SearchBuilder[R] {
	b.keywords = q
	return b
}

// Where requires field to equal value. Conditions are combined with AND;
// a second Where on the same field replaces the first.
func (b *SearchBuilder[R]) Where(fieldName, value string) *SearchBuilder[R] {
	if b.where == nil {
		b.where = make(map[string]string)
	}
	b.where[fieldName] = value
	return b
}

// SortBy orders results by fields. A leading "-" sorts descending.
func (b *SearchBuilder[R]) SortBy(fields ...string) *SearchBuilder[R] {
	b.sort = append(b.sort, fields...)
	return b
}

// Page selects the 1-based result page.
func (b *SearchBuilder[R]) Page(n int) *SearchBuilder[R] {
	b.page = n
	return b
}

// PageSize sets the number of records per page.
func (b *SearchBuilder[R]) PageSize(n int) *SearchBuilder[R] {
	b.pageSize = n
	return b
}

// Do executes the search.
func (b *SearchBuilder[R]) Do(ctx context.Context) (p Page[R], err error) {
	ix := b.index
	call := ix.client.obs.begin("search", ix.Name())
	defer func() { call.end(err, len(p.Content)) }()

	res, err := ix.client.app.Search.SearchKeywords(
		ix.client.ctx(ctx), ix.Name(), b.keywords, b.where, b.page, b.pageSize, b.sort...,
	)
	if err != nil {
		return Page[R]{}, err
	}
	return ix.page(res)
}
