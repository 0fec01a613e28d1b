package field

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/ftsi/internal/domain"
)

// Kind is the declared value kind of a field.
type Kind string

// Field kinds.
const (
	Text    Kind = "text"
	Int32   Kind = "int32"
	Int64   Kind = "int64"
	Float32 Kind = "float32"
	Float64 Kind = "float64"
	// Other covers any value indexed by its string form as a single exact token.
	Other Kind = "other"
)

// IsValid reports whether k is a supported kind.
func (k Kind) IsValid() bool {
	switch k {
	case Text, Int32, Int64, Float32, Float64, Other:
		return true
	}
	return false
}

// IsNumeric reports whether k is one of the numeric kinds.
func (k Kind) IsNumeric() bool {
	return k == Int32 || k == Int64 || k == Float32 || k == Float64
}

// Mode selects how a text field is tokenized.
type Mode string

const (
	// Fuzzy fields are analyzed into terms.
	Fuzzy Mode = "fuzzy"
	// Exact fields are indexed as one untokenized term.
	Exact Mode = "exact"
)

// MaxNameLength bounds field names.
const MaxNameLength = 64

// Field is an immutable value object describing how one record field is indexed.
type Field struct {
	name    string
	kind    Kind
	key     bool
	ignored bool
	mode    Mode
}

// Option configures a Field.
type Option func(*Field)

// AsKey marks the field as the entity key.
func AsKey() Option { return func(f *Field) { f.key = true } }

// Ignored excludes the field from indexing. A key field stays indexed.
func Ignored() Option { return func(f *Field) { f.ignored = true } }

// WithMode sets the text mode. Empty keeps the default.
func WithMode(m Mode) Option {
	return func(f *Field) {
		if m != "" {
			f.mode = m
		}
	}
}

// New validates and creates a Field.
// Names starting with "_" are reserved for engine bookkeeping.
func New(name string, kind Kind, opts ...Option) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("%w: field name is required", domain.ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return Field{}, fmt.Errorf("%w: field name %q too long (max %d)", domain.ErrInvalidName, name, MaxNameLength)
	}
	if strings.HasPrefix(name, "_") {
		return Field{}, fmt.Errorf("%w: field name %q is reserved", domain.ErrInvalidName, name)
	}
	if !kind.IsValid() {
		return Field{}, fmt.Errorf("%w: invalid kind %q", domain.ErrSchema, kind)
	}

	f := Field{name: name, kind: kind, mode: Fuzzy}
	for _, o := range opts {
		o(&f)
	}
	if f.mode != Fuzzy && f.mode != Exact {
		return Field{}, fmt.Errorf("%w: invalid text mode %q", domain.ErrSchema, f.mode)
	}
	if f.key && f.kind != Text {
		return Field{}, domain.ErrMissingKeyType
	}
	return f, nil
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Kind returns the declared value kind.
func (f Field) Kind() Kind { return f.kind }

// IsKey reports whether the field is the entity key.
func (f Field) IsKey() bool { return f.key }

// IsIgnored reports whether the field was declared ignored.
func (f Field) IsIgnored() bool { return f.ignored }

// Mode returns the text mode. Key and other fields always behave as exact.
func (f Field) Mode() Mode {
	if f.key || f.kind == Other {
		return Exact
	}
	return f.mode
}

// Indexed reports whether the field is written into documents.
func (f Field) Indexed() bool { return f.key || !f.ignored }

// Analyzed reports whether the field value is tokenized.
func (f Field) Analyzed() bool { return f.kind == Text && f.Mode() == Fuzzy }

// Highlighted reports whether search results may carry a marked-up fragment
// in place of the stored value. Other values go back through a caller's
// parser, so only Text qualifies.
func (f Field) Highlighted() bool { return f.kind == Text }
