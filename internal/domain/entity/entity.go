package entity

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/ftsi/internal/domain"
	"github.com/kailas-cloud/ftsi/internal/domain/entity/field"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// MaxNameLength bounds entity and catalog names.
const MaxNameLength = 128

// MaxFields bounds the number of fields per entity.
const MaxFields = 256

// FieldSpec is the declarative per-field configuration supplied at registration.
type FieldSpec struct {
	Name    string     `yaml:"name" json:"name"`
	Kind    field.Kind `yaml:"kind" json:"kind"`
	Key     bool       `yaml:"key" json:"key,omitempty"`
	Ignored bool       `yaml:"ignored" json:"ignored,omitempty"`
	Mode    field.Mode `yaml:"mode" json:"mode,omitempty"`
}

// Entity is the registered indexing policy of one record type (immutable value object).
type Entity struct {
	name    string
	catalog string
	fields  []field.Field
	keyIdx  int
}

// Option configures an Entity.
type Option func(*Entity)

// InCatalog routes the entity to an explicitly named catalog.
func InCatalog(name string) Option {
	return func(e *Entity) {
		if name != "" {
			e.catalog = name
		}
	}
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: %q too long (max %d)", domain.ErrInvalidName, name, MaxNameLength)
	}
	if name == "." || name == ".." || !nameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q must match %s", domain.ErrInvalidName, name, nameRegex)
	}
	return nil
}

// New validates the field specs and creates an Entity.
// The catalog defaults to the entity name. All failures are SchemaError.
func New(name string, specs []FieldSpec, opts ...Option) (Entity, error) {
	if err := validateName(name); err != nil {
		return Entity{}, domain.NewSchemaError(name, "", err)
	}
	if len(specs) > MaxFields {
		return Entity{}, domain.NewSchemaError(name, "",
			fmt.Errorf("%w: too many fields (max %d)", domain.ErrSchema, MaxFields))
	}

	e := Entity{name: name, catalog: name, keyIdx: -1}
	for _, o := range opts {
		o(&e)
	}
	if err := validateName(e.catalog); err != nil {
		return Entity{}, domain.NewSchemaError(name, "", fmt.Errorf("catalog: %w", err))
	}

	e.fields = make([]field.Field, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		f, err := field.New(s.Name, s.Kind, fieldOptions(s)...)
		if err != nil {
			return Entity{}, domain.NewSchemaError(name, s.Name, err)
		}
		if seen[f.Name()] {
			return Entity{}, domain.NewSchemaError(name, f.Name(),
				fmt.Errorf("%w: duplicate field name", domain.ErrSchema))
		}
		seen[f.Name()] = true
		if f.IsKey() {
			if e.keyIdx != -1 {
				return Entity{}, domain.NewSchemaError(name, f.Name(), domain.ErrDuplicateKey)
			}
			e.keyIdx = len(e.fields)
		}
		e.fields = append(e.fields, f)
	}
	return e, nil
}

func fieldOptions(s FieldSpec) []field.Option {
	opts := []field.Option{field.WithMode(s.Mode)}
	if s.Key {
		opts = append(opts, field.AsKey())
	}
	if s.Ignored {
		opts = append(opts, field.Ignored())
	}
	return opts
}

// Name returns the entity type name.
func (e Entity) Name() string { return e.name }

// Catalog returns the catalog the entity's documents live in.
func (e Entity) Catalog() string { return e.catalog }

// Fields returns the declared fields in declaration order.
func (e Entity) Fields() []field.Field {
	out := make([]field.Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// Field looks up a field by name.
func (e Entity) Field(name string) (field.Field, bool) {
	for _, f := range e.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return field.Field{}, false
}

// Key returns the key field, if one is declared.
func (e Entity) Key() (field.Field, bool) {
	if e.keyIdx == -1 {
		return field.Field{}, false
	}
	return e.fields[e.keyIdx], true
}

// HasKey reports whether a key field is declared.
func (e Entity) HasKey() bool { return e.keyIdx != -1 }

// Indexed returns the fields written into documents.
func (e Entity) Indexed() []field.Field {
	out := make([]field.Field, 0, len(e.fields))
	for _, f := range e.fields {
		if f.Indexed() {
			out = append(out, f)
		}
	}
	return out
}

// Specs returns the declarative form of the entity's fields.
func (e Entity) Specs() []FieldSpec {
	out := make([]FieldSpec, len(e.fields))
	for i, f := range e.fields {
		out[i] = FieldSpec{
			Name:    f.Name(),
			Kind:    f.Kind(),
			Key:     f.IsKey(),
			Ignored: f.IsIgnored(),
			Mode:    f.Mode(),
		}
	}
	return out
}

// Equal reports whether two entities declare the same policy.
func (e Entity) Equal(o Entity) bool {
	if e.name != o.name || e.catalog != o.catalog || e.keyIdx != o.keyIdx || len(e.fields) != len(o.fields) {
		return false
	}
	for i := range e.fields {
		if e.fields[i] != o.fields[i] {
			return false
		}
	}
	return true
}
