package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/domain"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/entity/field"
	"github.com/kailas-cloud/ftsi/internal/domain/search/filter"
)

// scoreSortKey orders by relevance.
const scoreSortKey = "_score"

func entityClause(e entity.Entity) db.Query {
	return db.TermQuery{Field: db.EntityField, Value: e.Name()}
}

// indexedField looks up a field that can be queried.
func indexedField(e entity.Entity, name string) (field.Field, error) {
	f, ok := e.Field(name)
	if !ok || !f.Indexed() {
		return field.Field{}, domain.NewSchemaError(e.Name(), name, domain.ErrUnknownField)
	}
	return f, nil
}

// termQuery is an exact lookup of one value on one field.
// Text fields match the value as a single term; numeric fields match the parsed number.
func termQuery(e entity.Entity, name, value string) (db.Query, error) {
	f, err := indexedField(e, name)
	if err != nil {
		return nil, err
	}
	if f.Kind().IsNumeric() {
		return numericQuery(f, value)
	}
	return db.TermQuery{Field: f.Name(), Value: value}, nil
}

// equalQuery is a literal equality condition.
// Analyzed text fields match the value as a phrase through the field's analyzer.
func equalQuery(e entity.Entity, c filter.Condition) (db.Query, error) {
	f, err := indexedField(e, c.Field())
	if err != nil {
		return nil, err
	}
	switch {
	case f.Kind().IsNumeric():
		return numericQuery(f, c.Value())
	case f.Analyzed():
		return db.PhraseQuery{Field: f.Name(), Value: c.Value()}, nil
	default:
		return db.TermQuery{Field: f.Name(), Value: c.Value()}, nil
	}
}

func numericQuery(f field.Field, value string) (db.Query, error) {
	var (
		v   float64
		err error
	)
	s := strings.TrimSpace(value)
	switch f.Kind() {
	case field.Int32:
		var n int64
		n, err = strconv.ParseInt(s, 10, 32)
		v = float64(n)
	case field.Int64:
		var n int64
		n, err = strconv.ParseInt(s, 10, 64)
		v = float64(n)
	case field.Float32:
		v, err = strconv.ParseFloat(s, 32)
	default:
		v, err = strconv.ParseFloat(s, 64)
	}
	if err != nil {
		return nil, domain.NewParseError(value, fmt.Errorf("field %q: %w", f.Name(), err))
	}
	return db.NumericEqualQuery{Field: f.Name(), Value: v}, nil
}

// searchable returns the fields free text is matched against: every non-ignored field.
func searchable(e entity.Entity) []string {
	var out []string
	for _, f := range e.Fields() {
		if !f.IsIgnored() {
			out = append(out, f.Name())
		}
	}
	return out
}

// freeTextQuery ORs the keywords across the searchable fields and ANDs a literal
// equality clause for every condition.
func freeTextQuery(e entity.Entity, keywords string, conds filter.Conditions) (db.Query, error) {
	clauses := []db.Query{
		entityClause(e),
		db.QueryStringQuery{Query: keywords, Fields: searchable(e)},
	}
	for _, c := range conds.Items() {
		q, err := equalQuery(e, c)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, q)
	}
	return db.ConjunctionQuery{Clauses: clauses}, nil
}

// sortKeys validates sort keys against the entity. Numeric and exact text
// fields sort; "_score" orders by relevance.
func sortKeys(e entity.Entity, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		name := strings.TrimPrefix(k, "-")
		if name == scoreSortKey {
			out = append(out, k)
			continue
		}
		f, err := indexedField(e, name)
		if err != nil {
			return nil, err
		}
		if f.Analyzed() {
			return nil, domain.NewSchemaError(e.Name(), name, fmt.Errorf("analyzed text field cannot be sorted"))
		}
		out = append(out, k)
	}
	return out, nil
}

// highlightFields are the indexed Text fields fragments are computed for.
func highlightFields(e entity.Entity) []string {
	var out []string
	for _, f := range e.Indexed() {
		if f.Highlighted() {
			out = append(out, f.Name())
		}
	}
	return out
}
