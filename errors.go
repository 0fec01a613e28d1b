package ftsi

import "github.com/kailas-cloud/ftsi/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrSchema          = domain.ErrSchema
	ErrMissingKeyType  = domain.ErrMissingKeyType
	ErrDuplicateKey    = domain.ErrDuplicateKey
	ErrInvalidName     = domain.ErrInvalidName
	ErrConflict        = domain.ErrConflict
	ErrUnknownEntity   = domain.ErrUnknownEntity
	ErrUnknownField    = domain.ErrUnknownField
	ErrNoKeyDefined    = domain.ErrNoKeyDefined
	ErrMapping         = domain.ErrMapping
	ErrKeyTypeMismatch = domain.ErrKeyTypeMismatch
	ErrConversion      = domain.ErrConversion
	ErrMissingKeyValue = domain.ErrMissingKeyValue
	ErrParse           = domain.ErrParse
	ErrIO              = domain.ErrIO
)

// Typed errors carrying the entity, field, query or catalog involved.
// Use errors.As() to inspect.
type (
	SchemaError       = domain.SchemaError
	NoKeyDefinedError = domain.NoKeyDefinedError
	MappingError      = domain.MappingError
	ParseError        = domain.ParseError
	IOError           = domain.IOError
)
