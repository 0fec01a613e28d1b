package db

// Query is an engine-neutral query tree.
type Query interface {
	isQuery()
}

// TermQuery matches documents whose field holds exactly Value as a term.
type TermQuery struct {
	Field string
	Value string
}

// NumericEqualQuery matches documents whose numeric field equals Value.
type NumericEqualQuery struct {
	Field string
	Value float64
}

// PhraseQuery matches documents whose field contains Value, analyzed like the field, as a phrase.
type PhraseQuery struct {
	Field string
	Value string
}

// QueryStringQuery is free text in the engine's query syntax.
// Unqualified clauses are evaluated against each of Fields and OR-ed.
type QueryStringQuery struct {
	Query  string
	Fields []string
}

// MatchAllQuery matches every document.
type MatchAllQuery struct{}

// ConjunctionQuery requires every clause to match.
type ConjunctionQuery struct {
	Clauses []Query
}

// DisjunctionQuery requires at least one clause to match.
type DisjunctionQuery struct {
	Clauses []Query
}

func (TermQuery) isQuery()         {}
func (NumericEqualQuery) isQuery() {}
func (PhraseQuery) isQuery()       {}
func (QueryStringQuery) isQuery()  {}
func (MatchAllQuery) isQuery()     {}
func (ConjunctionQuery) isQuery()  {}
func (DisjunctionQuery) isQuery()  {}

// Highlight asks the engine for best fragments of the given fields.
type Highlight struct {
	PreTag       string
	PostTag      string
	FragmentSize int
	Fields       []string
}

// SearchRequest is the input of Reader.Search.
type SearchRequest struct {
	Query     Query
	From      int
	Size      int
	Sort      []string // field names, "-" prefix for descending
	Highlight *Highlight
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Fields holds stored values keyed by entity field name; numeric values are their exact originals.
// Fragments holds highlighted fragments for fields where the query matched.
type SearchEntry struct {
	ID        string
	Score     float64
	Entity    string
	Fields    map[string]string
	Fragments map[string]string
}
