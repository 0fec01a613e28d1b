package search

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/domain"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/entity/field"
	"github.com/kailas-cloud/ftsi/internal/domain/search/filter"
)

func TestTermQuery(t *testing.T) {
	e := testEntity(t)

	tests := []struct {
		name    string
		field   string
		value   string
		want    db.Query
		wantErr error
	}{
		{"text", "title", "hi", db.TermQuery{Field: "title", Value: "hi"}, nil},
		{"ignored key still indexed", "id", "1", db.TermQuery{Field: "id", Value: "1"}, nil},
		{"int", "views", " 42 ", db.NumericEqualQuery{Field: "views", Value: 42}, nil},
		{"float", "score", "1.5", db.NumericEqualQuery{Field: "score", Value: 1.5}, nil},
		{"malformed number", "views", "many", nil, domain.ErrParse},
		{"exponent is not an integer", "views", "1e3", nil, domain.ErrParse},
		{"unknown", "nope", "x", nil, domain.ErrUnknownField},
		{"ignored", "internal", "x", nil, domain.ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := termQuery(e, tt.field, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTermQuery_UnknownFieldIsSchemaError(t *testing.T) {
	_, err := termQuery(testEntity(t), "nope", "x")
	var se *domain.SchemaError
	if !errors.As(err, &se) || se.Field != "nope" {
		t.Fatalf("expected SchemaError for field nope, got %v", err)
	}
}

func TestFreeTextQuery_ConditionsAreLiteralEqualities(t *testing.T) {
	e := testEntity(t)
	conds, err := filter.FromMap(map[string]string{"type": "News", "title": "Hello World", "views": "3"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := freeTextQuery(e, "hello", conds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := db.ConjunctionQuery{Clauses: []db.Query{
		db.TermQuery{Field: db.EntityField, Value: "Article"},
		db.QueryStringQuery{Query: "hello", Fields: []string{"title", "type", "views", "score"}},
		db.PhraseQuery{Field: "title", Value: "Hello World"},
		db.TermQuery{Field: "type", Value: "News"},
		db.NumericEqualQuery{Field: "views", Value: 3},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v\nwant %#v", got, want)
	}
}

func TestFreeTextQuery_UnknownCondition(t *testing.T) {
	conds, _ := filter.FromMap(map[string]string{"missing": "x"})
	_, err := freeTextQuery(testEntity(t), "hello", conds)
	if !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestSortKeys(t *testing.T) {
	e := testEntity(t)

	got, err := sortKeys(e, []string{"-views", "type", "-_score"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"-views", "type", "-_score"}) {
		t.Fatalf("unexpected keys: %v", got)
	}

	if _, err := sortKeys(e, []string{"title"}); !errors.Is(err, domain.ErrSchema) {
		t.Fatalf("expected ErrSchema for analyzed field, got %v", err)
	}
	if _, err := sortKeys(e, []string{"-nope"}); !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestHighlightFields(t *testing.T) {
	got := highlightFields(testEntity(t))
	want := []string{"id", "title", "type"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestHighlightFields_SkipsOther(t *testing.T) {
	e, err := entity.New("Ticket", []entity.FieldSpec{
		{Name: "id", Kind: field.Text, Key: true},
		{Name: "subject", Kind: field.Text},
		{Name: "status", Kind: field.Other},
	})
	if err != nil {
		t.Fatalf("entity.New: %v", err)
	}
	got := highlightFields(e)
	if !reflect.DeepEqual(got, []string{"id", "subject"}) {
		t.Fatalf("got %v, want [id subject]", got)
	}
}
