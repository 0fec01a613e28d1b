package document

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/kailas-cloud/ftsi/internal/domain"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/entity/field"
)

// Values is one record as field name to value.
// Text fields hold string, numeric fields hold the Go type of their kind,
// other fields hold any value (string after reconstruction).
type Values map[string]any

// Field is one projected field with its engine representation flags.
type Field struct {
	Name     string
	Kind     field.Kind
	Text     string  // text and other kinds
	Number   float64 // numeric kinds, indexed and sortable
	Raw      string  // exact original of a numeric value
	Indexed  bool
	Analyzed bool
	Stored   bool
	Sortable bool
}

// Document is the engine-neutral projection of one record (immutable value object).
type Document struct {
	id      string
	entity  string
	catalog string
	key     string
	fields  []Field
}

// ID returns the engine document identifier.
func (d *Document) ID() string { return d.id }

// Entity returns the entity type name.
func (d *Document) Entity() string { return d.entity }

// Catalog returns the target catalog name.
func (d *Document) Catalog() string { return d.catalog }

// Key returns the key value, empty when the entity has no key.
func (d *Document) Key() string { return d.key }

// Fields returns the projected fields.
func (d *Document) Fields() []Field { return d.fields }

// ToDocument projects a record into a Document.
// Absent and nil values are skipped, as are ignored non-key fields.
func ToDocument(e entity.Entity, v Values) (Document, error) {
	doc := Document{
		id:      uuid.NewString(),
		entity:  e.Name(),
		catalog: e.Catalog(),
		fields:  make([]Field, 0, len(v)),
	}

	for _, f := range e.Fields() {
		if !f.Indexed() {
			continue
		}
		raw, ok := v[f.Name()]
		if !ok || raw == nil {
			continue
		}
		val, err := normalize(f, raw)
		if err != nil {
			return Document{}, domain.NewMappingError(e.Name(), f.Name(), err)
		}
		pf := project(f, val)
		if f.IsKey() {
			doc.key = pf.Text
		}
		doc.fields = append(doc.fields, pf)
	}
	return doc, nil
}

func project(f field.Field, val any) Field {
	pf := Field{Name: f.Name(), Kind: f.Kind(), Indexed: true, Stored: true}
	switch f.Kind() {
	case field.Text:
		pf.Text = val.(string) //nolint:forcetypeassert // normalize guarantees string
		pf.Analyzed = f.Analyzed()
	case field.Int32, field.Int64, field.Float32, field.Float64:
		pf.Number, pf.Raw = numericForms(val)
		pf.Sortable = true
	default:
		pf.Text = fmt.Sprint(val)
	}
	return pf
}

func numericForms(val any) (float64, string) {
	switch n := val.(type) {
	case int32:
		return float64(n), strconv.FormatInt(int64(n), 10)
	case int64:
		return float64(n), strconv.FormatInt(n, 10)
	case float32:
		return float64(n), strconv.FormatFloat(float64(n), 'g', -1, 32)
	case float64:
		return n, strconv.FormatFloat(n, 'g', -1, 64)
	}
	return 0, ""
}

// normalize converts a loosely typed value to the Go type of the field's kind.
func normalize(f field.Field, raw any) (any, error) {
	if f.IsKey() {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", domain.ErrKeyTypeMismatch, raw)
		}
		return s, nil
	}

	switch f.Kind() {
	case field.Text:
		switch s := raw.(type) {
		case string:
			return s, nil
		case fmt.Stringer:
			return s.String(), nil
		}
		return nil, fmt.Errorf("%w: %T is not text", domain.ErrConversion, raw)
	case field.Int32:
		i, err := toInt(raw, math.MinInt32, math.MaxInt32)
		if err != nil {
			return nil, err
		}
		return int32(i), nil
	case field.Int64:
		return toInt(raw, math.MinInt64, math.MaxInt64)
	case field.Float32:
		fl, err := toFloat(raw)
		if err != nil {
			return nil, err
		}
		if math.Abs(fl) > math.MaxFloat32 && !math.IsInf(fl, 0) {
			return nil, fmt.Errorf("%w: %v overflows float32", domain.ErrConversion, fl)
		}
		return float32(fl), nil
	case field.Float64:
		return toFloat(raw)
	default:
		return raw, nil
	}
}

func toInt(raw any, lo, hi int64) (int64, error) {
	var i int64
	switch n := raw.(type) {
	case int:
		i = int64(n)
	case int8:
		i = int64(n)
	case int16:
		i = int64(n)
	case int32:
		i = int64(n)
	case int64:
		i = n
	case uint8:
		i = int64(n)
	case uint16:
		i = int64(n)
	case uint32:
		i = int64(n)
	case float64:
		if n != math.Trunc(n) || n < float64(lo) || n > float64(hi) {
			return 0, fmt.Errorf("%w: %v is not an integer in range", domain.ErrConversion, n)
		}
		i = int64(n)
	case json.Number:
		v, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", domain.ErrConversion, n, err)
		}
		i = v
	default:
		return 0, fmt.Errorf("%w: %T is not an integer", domain.ErrConversion, raw)
	}
	if i < lo || i > hi {
		return 0, fmt.Errorf("%w: %d out of range", domain.ErrConversion, i)
	}
	return i, nil
}

func toFloat(raw any) (float64, error) {
	switch n := raw.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		v, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", domain.ErrConversion, n, err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%w: %T is not a number", domain.ErrConversion, raw)
}

// Coerce converts a decoded JSON object into Values of the entity's declared kinds.
// Keys that name no declared field fail with ErrUnknownField.
func Coerce(e entity.Entity, in map[string]any) (Values, error) {
	out := make(Values, len(in))
	for name, raw := range in {
		f, ok := e.Field(name)
		if !ok {
			return nil, domain.NewMappingError(e.Name(), name, domain.ErrUnknownField)
		}
		if raw == nil {
			continue
		}
		val, err := normalize(f, raw)
		if err != nil {
			return nil, domain.NewMappingError(e.Name(), name, err)
		}
		out[name] = val
	}
	return out, nil
}

// FromStored rebuilds a record from stored field strings.
// Unknown stored names are ignored and missing fields are omitted.
// Any conversion failure fails the whole record.
func FromStored(e entity.Entity, stored map[string]string) (Values, error) {
	out := make(Values, len(stored))
	for _, f := range e.Fields() {
		s, ok := stored[f.Name()]
		if !ok {
			continue
		}
		val, err := parseStored(f.Kind(), s)
		if err != nil {
			return nil, domain.NewMappingError(e.Name(), f.Name(), err)
		}
		out[f.Name()] = val
	}
	return out, nil
}

func parseStored(kind field.Kind, s string) (any, error) {
	switch kind {
	case field.Int32:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConversion, err)
		}
		return int32(v), nil
	case field.Int64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConversion, err)
		}
		return v, nil
	case field.Float32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConversion, err)
		}
		return float32(v), nil
	case field.Float64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConversion, err)
		}
		return v, nil
	default:
		return s, nil
	}
}

// KeyOf extracts the key value of a record. Empty when absent.
func KeyOf(e entity.Entity, v Values) (string, error) {
	key, ok := e.Key()
	if !ok {
		return "", domain.NewNoKeyDefined(e.Name())
	}
	raw, ok := v[key.Name()]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", domain.NewMappingError(e.Name(), key.Name(),
			fmt.Errorf("%w: got %T", domain.ErrKeyTypeMismatch, raw))
	}
	return s, nil
}
