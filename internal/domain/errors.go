package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema signals an invalid entity or field declaration.
	ErrSchema = errors.New("invalid schema")
	// ErrMissingKeyType signals a key field declared with a non-text kind.
	ErrMissingKeyType = errors.New("key field must be text")
	// ErrDuplicateKey signals more than one key field on an entity.
	ErrDuplicateKey = errors.New("more than one key field")
	// ErrInvalidName signals an entity, catalog or field name that cannot be used.
	ErrInvalidName = errors.New("invalid name")
	// ErrConflict signals a registration that contradicts an existing one.
	ErrConflict = errors.New("conflicting definition")
	// ErrUnknownEntity signals an entity type that was never registered.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrUnknownField signals a field that is not declared or not indexed.
	ErrUnknownField = errors.New("unknown field")

	// ErrNoKeyDefined signals an update or delete on an entity without a key field.
	ErrNoKeyDefined = errors.New("no key defined")

	// ErrMapping signals a projection or reconstruction failure.
	ErrMapping = errors.New("mapping failed")
	// ErrKeyTypeMismatch signals a key value that is not a string.
	ErrKeyTypeMismatch = errors.New("key value is not a string")
	// ErrConversion signals a stored or supplied value that cannot become its declared kind.
	ErrConversion = errors.New("value conversion failed")
	// ErrMissingKeyValue signals an update of a record whose key is empty.
	ErrMissingKeyValue = errors.New("key value is empty")

	// ErrParse signals a malformed free-text query or condition value.
	ErrParse = errors.New("query parse failed")
	// ErrIO signals a catalog open, commit or read failure.
	ErrIO = errors.New("index io failed")
)

// SchemaError describes a rejected entity or field declaration.
type SchemaError struct {
	Entity string
	Field  string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("%s: %v", ErrSchema, e.Err)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: entity %q field %q: %v", ErrSchema, e.Entity, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: entity %q: %v", ErrSchema, e.Entity, e.Err)
}

func (e *SchemaError) Unwrap() []error { return []error{ErrSchema, e.Err} }

// NewSchemaError creates a SchemaError. field may be empty.
func NewSchemaError(entity, field string, err error) error {
	return &SchemaError{Entity: entity, Field: field, Err: err}
}

// NoKeyDefinedError is returned when a keyed operation targets an entity without a key.
type NoKeyDefinedError struct {
	Entity string
}

func (e *NoKeyDefinedError) Error() string {
	return fmt.Sprintf("%s for entity %q", ErrNoKeyDefined, e.Entity)
}

func (e *NoKeyDefinedError) Unwrap() error { return ErrNoKeyDefined }

// NewNoKeyDefined creates a NoKeyDefinedError.
func NewNoKeyDefined(entity string) error {
	return &NoKeyDefinedError{Entity: entity}
}

// MappingError describes a failed record/document conversion.
type MappingError struct {
	Entity string
	Field  string
	Err    error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s: entity %q field %q: %v", ErrMapping, e.Entity, e.Field, e.Err)
}

func (e *MappingError) Unwrap() []error { return []error{ErrMapping, e.Err} }

// NewMappingError creates a MappingError.
func NewMappingError(entity, field string, err error) error {
	return &MappingError{Entity: entity, Field: field, Err: err}
}

// ParseError wraps a query the engine could not parse.
type ParseError struct {
	Query string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q: %v", ErrParse, e.Query, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// NewParseError creates a ParseError.
func NewParseError(query string, err error) error {
	return &ParseError{Query: query, Err: err}
}

// IOError wraps a storage failure on a catalog.
type IOError struct {
	Catalog string
	Op      string
	Err     error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: catalog %q: %s: %v", ErrIO, e.Catalog, e.Op, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// NewIOError creates an IOError.
func NewIOError(catalog, op string, err error) error {
	return &IOError{Catalog: catalog, Op: op, Err: err}
}
