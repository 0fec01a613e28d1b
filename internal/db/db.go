package db

import (
	"context"

	"github.com/kailas-cloud/ftsi/internal/domain/document"
)

// StorageKind selects where catalogs live.
type StorageKind int

const (
	// StorageMemory keeps catalogs in process memory for the store's lifetime.
	StorageMemory StorageKind = iota
	// StorageDisk keeps one directory per catalog under a root path.
	StorageDisk
)

// Storage is the explicit catalog storage configuration.
type Storage struct {
	Kind StorageKind
	Path string
}

// InMemory returns an in-memory storage configuration.
func InMemory() Storage { return Storage{Kind: StorageMemory} }

// OnDisk returns an on-disk storage configuration rooted at path.
// An empty path falls back to InMemory.
func OnDisk(path string) Storage {
	if path == "" {
		return InMemory()
	}
	return Storage{Kind: StorageDisk, Path: path}
}

func (s Storage) String() string {
	if s.Kind == StorageDisk {
		return "disk:" + s.Path
	}
	return "memory"
}

// Catalogs is the catalog router facade over the index engine.
type Catalogs interface {
	Pinger
	// Writer opens or creates the catalog and acquires its exclusive writer.
	Writer(ctx context.Context, def *CatalogDefinition) (Writer, error)
	// Check fails with *MappingDriftError when an existing catalog does not map def.
	Check(ctx context.Context, def *CatalogDefinition) error
	// Reader opens an existing catalog for reading. ErrCatalogNotFound if it was never created.
	Reader(ctx context.Context, catalog string) (Reader, error)
	// Names lists every known catalog.
	Names(ctx context.Context) ([]string, error)
	// Drop closes a catalog and removes its storage.
	Drop(ctx context.Context, catalog string) error
	Close() error
}

// Pinger checks storage availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Writer is a single-operation write handle. Close releases it on every path;
// staged changes not committed before Close are discarded.
type Writer interface {
	Add(doc *document.Document) error
	// Delete stages removal of committed documents matching q and returns how many.
	Delete(ctx context.Context, q Query) (int, error)
	// DeleteAll stages removal of every committed document and returns how many.
	DeleteAll(ctx context.Context) (int, error)
	Commit(ctx context.Context) error
	// ForceMergeDeletes compacts segments so deleted documents stop occupying slots.
	ForceMergeDeletes(ctx context.Context) error
	Close() error
}

// Stats holds catalog document counts.
type Stats struct {
	Live    int // live documents
	Deleted int // deleted but not yet merged away
	MaxSlot int // live plus deleted
}

// Reader is a single-operation read handle over a consistent snapshot.
type Reader interface {
	Stats(ctx context.Context) (Stats, error)
	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)
	Close() error
}
