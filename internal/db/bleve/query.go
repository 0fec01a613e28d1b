package bleve

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/domain"
)

// buildQuery translates a neutral query tree into a bleve query.
// Query string parse failures surface as domain.ParseError.
func buildQuery(q db.Query) (query.Query, error) {
	switch v := q.(type) {
	case nil, db.MatchAllQuery, *db.MatchAllQuery:
		return bleve.NewMatchAllQuery(), nil
	case db.TermQuery:
		tq := bleve.NewTermQuery(v.Value)
		tq.SetField(v.Field)
		return tq, nil
	case db.NumericEqualQuery:
		val := v.Value
		inclusive := true
		nq := bleve.NewNumericRangeInclusiveQuery(&val, &val, &inclusive, &inclusive)
		nq.SetField(v.Field)
		return nq, nil
	case db.PhraseQuery:
		pq := bleve.NewMatchPhraseQuery(v.Value)
		pq.SetField(v.Field)
		return pq, nil
	case db.QueryStringQuery:
		return buildQueryString(v)
	case db.ConjunctionQuery:
		clauses, err := buildClauses(v.Clauses)
		if err != nil {
			return nil, err
		}
		return bleve.NewConjunctionQuery(clauses...), nil
	case db.DisjunctionQuery:
		clauses, err := buildClauses(v.Clauses)
		if err != nil {
			return nil, err
		}
		return bleve.NewDisjunctionQuery(clauses...), nil
	default:
		return nil, fmt.Errorf("unsupported query %T", q)
	}
}

func buildClauses(in []db.Query) ([]query.Query, error) {
	out := make([]query.Query, 0, len(in))
	for _, c := range in {
		bq, err := buildQuery(c)
		if err != nil {
			return nil, err
		}
		out = append(out, bq)
	}
	return out, nil
}

// buildQueryString parses the keywords once per field, pins unqualified
// clauses to that field and ORs the per-field queries.
func buildQueryString(q db.QueryStringQuery) (query.Query, error) {
	if strings.TrimSpace(q.Query) == "" {
		return bleve.NewMatchAllQuery(), nil
	}

	perField := make([]query.Query, 0, len(q.Fields))
	for _, f := range q.Fields {
		parsed, err := bleve.NewQueryStringQuery(q.Query).Parse()
		if err != nil {
			return nil, domain.NewParseError(q.Query, err)
		}
		retarget(parsed, f)
		perField = append(perField, parsed)
	}
	if len(perField) == 0 {
		// Validate syntax even when there is nothing to search.
		if _, err := bleve.NewQueryStringQuery(q.Query).Parse(); err != nil {
			return nil, domain.NewParseError(q.Query, err)
		}
		return bleve.NewMatchNoneQuery(), nil
	}
	if len(perField) == 1 {
		return perField[0], nil
	}
	return bleve.NewDisjunctionQuery(perField...), nil
}

// retarget sets field on every leaf that has no explicit field.
func retarget(q query.Query, field string) {
	switch v := q.(type) {
	case *query.BooleanQuery:
		if v.Must != nil {
			retarget(v.Must, field)
		}
		if v.Should != nil {
			retarget(v.Should, field)
		}
		if v.MustNot != nil {
			retarget(v.MustNot, field)
		}
	case *query.ConjunctionQuery:
		for _, c := range v.Conjuncts {
			retarget(c, field)
		}
	case *query.DisjunctionQuery:
		for _, c := range v.Disjuncts {
			retarget(c, field)
		}
	case query.FieldableQuery:
		if v.Field() == "" {
			v.SetField(field)
		}
	}
}
