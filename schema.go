package ftsi

import (
	"fmt"
	"reflect"

	"github.com/kailas-cloud/ftsi/internal/domain"
	domdoc "github.com/kailas-cloud/ftsi/internal/domain/document"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/entity/field"
)

// Numeric is the set of Go number types a field can be bound to.
type Numeric interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Schema declares how records of type R are indexed.
type Schema[R any] struct {
	name    string
	catalog string
	fields  []Field[R]
}

// NewSchema declares an entity type. The catalog defaults to name.
func NewSchema[R any](name string, fields ...Field[R]) Schema[R] {
	return Schema[R]{name: name, fields: fields}
}

// InCatalog returns a copy of the schema stored in the named catalog.
// Several entity types may share a catalog when their common fields agree.
func (s Schema[R]) InCatalog(catalog string) Schema[R] {
	s.catalog = catalog
	return s
}

// Name returns the entity type name.
func (s Schema[R]) Name() string { return s.name }

func (s Schema[R]) describe() (entity.Entity, error) {
	specs := make([]entity.FieldSpec, len(s.fields))
	for i, f := range s.fields {
		specs[i] = f.spec
	}
	return entity.New(s.name, specs, entity.InCatalog(s.catalog))
}

// values projects a record into field values. Unset fields are left out.
func (s Schema[R]) values(r *R) domdoc.Values {
	out := make(domdoc.Values, len(s.fields))
	for _, f := range s.fields {
		if v, ok := f.get(r); ok {
			out[f.spec.Name] = v
		}
	}
	return out
}

// record fills a zero R from reconstructed values.
func (s Schema[R]) record(v domdoc.Values) (R, error) {
	var r R
	for _, f := range s.fields {
		val, ok := v[f.spec.Name]
		if !ok {
			continue
		}
		if err := f.set(&r, val); err != nil {
			return r, domain.NewMappingError(s.name, f.spec.Name, fmt.Errorf("%w: %w", domain.ErrConversion, err))
		}
	}
	return r, nil
}

// Field binds one named field to an accessor on R.
type Field[R any] struct {
	spec entity.FieldSpec
	get  func(*R) (any, bool)
	set  func(*R, any) error
}

// FieldOption configures a Field.
type FieldOption func(*entity.FieldSpec)

// Key marks the field as the entity key. Only text fields can be keys.
func Key() FieldOption {
	return func(s *entity.FieldSpec) { s.Key = true }
}

// Ignore keeps the field out of the index. Key fields are indexed anyway.
func Ignore() FieldOption {
	return func(s *entity.FieldSpec) { s.Ignored = true }
}

// Exact indexes a text field as one untokenized term.
func Exact() FieldOption {
	return func(s *entity.FieldSpec) { s.Mode = field.Exact }
}

func newSpec(name string, kind field.Kind, opts []FieldOption) entity.FieldSpec {
	s := entity.FieldSpec{Name: name, Kind: kind}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Text binds a string field. An empty string is treated as unset.
func Text[R any](name string, acc func(*R) *string, opts ...FieldOption) Field[R] {
	return Field[R]{
		spec: newSpec(name, field.Text, opts),
		get: func(r *R) (any, bool) {
			s := *acc(r)
			return s, s != ""
		},
		set: func(r *R, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%T is not a string", v)
			}
			*acc(r) = s
			return nil
		},
	}
}

// Number binds a numeric field. Zero is indexed like any other value.
func Number[R any, N Numeric](name string, acc func(*R) *N, opts ...FieldOption) Field[R] {
	return Field[R]{
		spec: newSpec(name, kindOf[N](), opts),
		get: func(r *R) (any, bool) {
			return numberValue(*acc(r)), true
		},
		set: func(r *R, v any) error {
			n, err := fromNumber[N](v)
			if err != nil {
				return err
			}
			*acc(r) = n
			return nil
		},
	}
}

// OptionalNumber binds a numeric pointer field. Nil is treated as unset.
func OptionalNumber[R any, N Numeric](name string, acc func(*R) **N, opts ...FieldOption) Field[R] {
	return Field[R]{
		spec: newSpec(name, kindOf[N](), opts),
		get: func(r *R) (any, bool) {
			p := *acc(r)
			if p == nil {
				return nil, false
			}
			return numberValue(*p), true
		},
		set: func(r *R, v any) error {
			n, err := fromNumber[N](v)
			if err != nil {
				return err
			}
			*acc(r) = &n
			return nil
		},
	}
}

// Custom binds a field of any type through its string form. The value is
// indexed as one exact token; an empty formatted string is treated as unset.
func Custom[R, V any](
	name string, acc func(*R) *V, format func(V) string, parse func(string) (V, error), opts ...FieldOption,
) Field[R] {
	return Field[R]{
		spec: newSpec(name, field.Other, opts),
		get: func(r *R) (any, bool) {
			s := format(*acc(r))
			return s, s != ""
		},
		set: func(r *R, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%T is not a string", v)
			}
			val, err := parse(s)
			if err != nil {
				return err
			}
			*acc(r) = val
			return nil
		},
	}
}

func kindOf[N Numeric]() field.Kind {
	switch reflect.TypeFor[N]().Kind() {
	case reflect.Int32:
		return field.Int32
	case reflect.Float32:
		return field.Float32
	case reflect.Float64:
		return field.Float64
	default:
		return field.Int64
	}
}

// numberValue converts n to the Go type of its field kind.
func numberValue[N Numeric](n N) any {
	switch kindOf[N]() {
	case field.Int32:
		return int32(n)
	case field.Float32:
		return float32(n)
	case field.Float64:
		return float64(n)
	default:
		return int64(n)
	}
}

func fromNumber[N Numeric](v any) (N, error) {
	switch x := v.(type) {
	case int32:
		return N(x), nil
	case int64:
		return N(x), nil
	case float32:
		return N(x), nil
	case float64:
		return N(x), nil
	}
	return 0, fmt.Errorf("%T is not a number", v)
}
