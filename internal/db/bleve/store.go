// Package bleve implements the catalog router on top of embedded bleve indexes.
// Each catalog is one bleve index, kept open until the store is closed.
package bleve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ftsi/internal/db"
)

// metaFile marks a directory as a bleve index.
const metaFile = "index_meta.json"

// catalog is one open index with its writer semaphore and in-flight handle count.
type catalog struct {
	name     string
	index    bleve.Index
	writer   chan struct{}
	inflight sync.WaitGroup
}

// Store implements db.Catalogs.
type Store struct {
	storage db.Storage
	logger  *zap.Logger

	mu       sync.Mutex
	catalogs map[string]*catalog
	closed   bool
}

var _ db.Catalogs = (*Store)(nil)

// NewStore creates a catalog store. On disk the root directory is created if missing.
func NewStore(storage db.Storage, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if storage.Kind == db.StorageDisk {
		if err := os.MkdirAll(storage.Path, 0o750); err != nil {
			return nil, &db.Error{Op: db.OpCreate, Err: fmt.Errorf("storage root %s: %w", storage.Path, err)}
		}
	}
	return &Store{
		storage:  storage,
		logger:   logger,
		catalogs: make(map[string]*catalog),
	}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.storage.Path, name)
}

// acquire returns an open catalog with one in-flight reference taken.
// A missing catalog is created from def; with a nil def it is ErrCatalogNotFound.
func (s *Store) acquire(name string, def *db.CatalogDefinition) (*catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, db.ErrClosed
	}
	if c, ok := s.catalogs[name]; ok {
		c.inflight.Add(1)
		return c, nil
	}

	idx, err := s.open(name, def)
	if err != nil {
		return nil, err
	}
	c := &catalog{name: name, index: idx, writer: make(chan struct{}, 1)}
	s.catalogs[name] = c
	c.inflight.Add(1)
	return c, nil
}

// open opens an existing index or, when def is set, creates it.
// Must be called with s.mu held.
func (s *Store) open(name string, def *db.CatalogDefinition) (bleve.Index, error) {
	if !db.IsValidIdentifier(name) {
		return nil, &db.Error{Op: db.OpOpen, Err: fmt.Errorf("invalid catalog name %q", name)}
	}

	if s.storage.Kind == db.StorageDisk {
		path := s.path(name)
		if _, err := os.Stat(filepath.Join(path, metaFile)); err == nil {
			idx, err := bleve.Open(path)
			if err != nil {
				return nil, &db.Error{Op: db.OpOpen, Err: err}
			}
			s.logger.Debug("catalog opened", zap.String("catalog", name), zap.String("path", path))
			return idx, nil
		}
		if def == nil {
			return nil, db.ErrCatalogNotFound
		}
		m, err := buildMapping(def)
		if err != nil {
			return nil, &db.Error{Op: db.OpCreate, Err: err}
		}
		idx, err := bleve.New(path, m)
		if err != nil {
			return nil, &db.Error{Op: db.OpCreate, Err: err}
		}
		s.logger.Info("catalog created", zap.String("catalog", name), zap.String("path", path))
		return idx, nil
	}

	if def == nil {
		return nil, db.ErrCatalogNotFound
	}
	m, err := buildMapping(def)
	if err != nil {
		return nil, &db.Error{Op: db.OpCreate, Err: err}
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, &db.Error{Op: db.OpCreate, Err: err}
	}
	s.logger.Info("catalog created", zap.String("catalog", name), zap.String("storage", "memory"))
	return idx, nil
}

// Writer opens or creates the catalog and waits for its exclusive writer.
// An existing catalog whose mapping lacks a field of def is a *db.MappingDriftError.
func (s *Store) Writer(ctx context.Context, def *db.CatalogDefinition) (db.Writer, error) {
	if def == nil {
		return nil, errors.New("catalog definition is required")
	}
	if err := def.Validate(); err != nil {
		return nil, &db.Error{Op: db.OpCreate, Err: err}
	}

	c, err := s.acquire(def.Name, def)
	if err != nil {
		return nil, err
	}
	if fields := drift(c.index.Mapping(), def); len(fields) > 0 {
		c.inflight.Done()
		return nil, &db.MappingDriftError{Catalog: def.Name, Fields: fields}
	}

	select {
	case c.writer <- struct{}{}:
	case <-ctx.Done():
		c.inflight.Done()
		return nil, fmt.Errorf("acquire writer %s: %w", def.Name, ctx.Err())
	}

	return &writer{cat: c, batch: c.index.NewBatch(), staged: make(map[string]struct{})}, nil
}

// Check reports whether an existing catalog maps every field of def.
// A catalog that was never created passes; it will be built from def.
func (s *Store) Check(_ context.Context, def *db.CatalogDefinition) error {
	if def == nil {
		return errors.New("catalog definition is required")
	}
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreate, Err: err}
	}

	c, err := s.acquire(def.Name, nil)
	if errors.Is(err, db.ErrCatalogNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer c.inflight.Done()

	if fields := drift(c.index.Mapping(), def); len(fields) > 0 {
		return &db.MappingDriftError{Catalog: def.Name, Fields: fields}
	}
	return nil
}

// Reader opens an existing catalog for reading.
func (s *Store) Reader(_ context.Context, name string) (db.Reader, error) {
	c, err := s.acquire(name, nil)
	if err != nil {
		return nil, err
	}
	return &reader{cat: c}, nil
}

// Names lists open catalogs and, on disk, every index directory under the root.
func (s *Store) Names(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, db.ErrClosed
	}

	seen := make(map[string]bool, len(s.catalogs))
	for name := range s.catalogs {
		seen[name] = true
	}

	if s.storage.Kind == db.StorageDisk {
		entries, err := os.ReadDir(s.storage.Path)
		if err != nil {
			return nil, &db.Error{Op: db.OpList, Err: err}
		}
		for _, e := range entries {
			if !e.IsDir() || seen[e.Name()] {
				continue
			}
			if _, err := os.Stat(filepath.Join(s.path(e.Name()), metaFile)); err == nil {
				seen[e.Name()] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Drop waits for in-flight handles, closes the catalog and removes its storage.
func (s *Store) Drop(ctx context.Context, name string) error {
	if !db.IsValidIdentifier(name) {
		return &db.Error{Op: db.OpDrop, Err: fmt.Errorf("invalid catalog name %q", name)}
	}

	s.mu.Lock()
	c, ok := s.catalogs[name]
	delete(s.catalogs, name)
	s.mu.Unlock()

	if ok {
		if err := waitInflight(ctx, c); err != nil {
			return err
		}
		if err := c.index.Close(); err != nil {
			return &db.Error{Op: db.OpClose, Err: err}
		}
	}

	if s.storage.Kind == db.StorageDisk {
		if err := os.RemoveAll(s.path(name)); err != nil {
			return &db.Error{Op: db.OpDrop, Err: err}
		}
	}
	s.logger.Info("catalog dropped", zap.String("catalog", name))
	return nil
}

func waitInflight(ctx context.Context, c *catalog) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for %s handles: %w", c.name, ctx.Err())
	}
}

// Ping reports whether the store accepts operations.
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return db.ErrClosed
	}
	if s.storage.Kind == db.StorageDisk {
		if _, err := os.Stat(s.storage.Path); err != nil {
			return &db.Error{Op: db.OpOpen, Err: err}
		}
	}
	return nil
}

// Close waits for in-flight handles and closes every catalog.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cats := s.catalogs
	s.catalogs = make(map[string]*catalog)
	s.mu.Unlock()

	var errs []error
	for _, c := range cats {
		c.inflight.Wait()
		if err := c.index.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	if len(errs) > 0 {
		return &db.Error{Op: db.OpClose, Err: errors.Join(errs...)}
	}
	return nil
}
