package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/ftsi/internal/domain"
)

// Sentinel errors for catalog operations.
var (
	ErrCatalogNotFound = errors.New("db: catalog not found")
	ErrClosed          = errors.New("db: store closed")
	ErrWriterClosed    = errors.New("db: writer closed")
	ErrMappingDrift    = errors.New("db: catalog mapping differs from definition")
)

// Op constants name engine operations for error context.
const (
	OpOpen       = "open"
	OpCreate     = "create"
	OpBatch      = "batch"
	OpSearch     = "search"
	OpCount      = "count"
	OpDocument   = "document"
	OpForceMerge = "force_merge"
	OpClose      = "close"
	OpDrop       = "drop"
	OpList       = "list"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// MappingDriftError names definition fields an existing catalog does not map,
// or maps with another type or analyzer. Catalog mappings are fixed at creation.
type MappingDriftError struct {
	Catalog string
	Fields  []string
}

func (e *MappingDriftError) Error() string {
	return fmt.Sprintf("%s: catalog %q: %s", ErrMappingDrift, e.Catalog, strings.Join(e.Fields, ", "))
}

func (e *MappingDriftError) Unwrap() error { return ErrMappingDrift }

// Schema reports the drift as a conflicting declaration of entity. entity may be empty.
func (e *MappingDriftError) Schema(entity string) error {
	field := ""
	if len(e.Fields) == 1 {
		field = e.Fields[0]
	}
	return domain.NewSchemaError(entity, field, fmt.Errorf(
		"%w: catalog %q was created without a matching mapping for %s; drop it to rebuild",
		domain.ErrConflict, e.Catalog, strings.Join(e.Fields, ", ")))
}

// ToDomain converts an engine failure on a catalog into a domain.IOError.
// Mapping drift becomes a domain.SchemaError. Domain errors, missing catalogs and context errors pass through.
func ToDomain(catalog string, err error) error {
	if err == nil {
		return nil
	}
	var drift *MappingDriftError
	if errors.As(err, &drift) {
		return drift.Schema("")
	}
	switch {
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrMapping),
		errors.Is(err, domain.ErrSchema), errors.Is(err, domain.ErrIO),
		errors.Is(err, ErrCatalogNotFound):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("catalog %q: %w", catalog, err)
	}
	var de *Error
	if errors.As(err, &de) {
		return domain.NewIOError(catalog, de.Op, de.Err)
	}
	return domain.NewIOError(catalog, "engine", err)
}
