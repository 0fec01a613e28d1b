package entity

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/ftsi/internal/domain"
)

// Registry caches entity policies for the process lifetime.
// Safe for concurrent use; lookups take a read lock only.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]Entity
	catalogs map[string][]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]Entity),
		catalogs: make(map[string][]string),
	}
}

// Register adds an entity. Re-registering an identical definition is a no-op.
// A different definition under the same name, or a field whose kind or mode
// contradicts another entity sharing the catalog, fails with ErrConflict.
func (r *Registry) Register(e Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entities[e.Name()]; ok {
		if existing.Equal(e) {
			return nil
		}
		return domain.NewSchemaError(e.Name(), "", domain.ErrConflict)
	}

	for _, name := range r.catalogs[e.Catalog()] {
		other := r.entities[name]
		for _, f := range e.Indexed() {
			of, ok := other.Field(f.Name())
			if !ok || !of.Indexed() {
				continue
			}
			if of.Kind() != f.Kind() || of.Mode() != f.Mode() {
				return domain.NewSchemaError(e.Name(), f.Name(),
					fmt.Errorf("%w: catalog %q already maps it for %q", domain.ErrConflict, e.Catalog(), name))
			}
		}
	}

	r.entities[e.Name()] = e
	r.catalogs[e.Catalog()] = append(r.catalogs[e.Catalog()], e.Name())
	return nil
}

// Describe returns the registered policy for an entity type.
func (r *Registry) Describe(name string) (Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[name]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q", domain.ErrUnknownEntity, name)
	}
	return e, nil
}

// Entities returns all registered entities sorted by name.
func (r *Registry) Entities() []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entity, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Members returns the entities stored in a catalog, in registration order.
func (r *Registry) Members(catalog string) []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.catalogs[catalog]
	out := make([]Entity, len(names))
	for i, n := range names {
		out[i] = r.entities[n]
	}
	return out
}

// Catalogs returns the names of all catalogs with registered entities, sorted.
func (r *Registry) Catalogs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.catalogs))
	for c := range r.catalogs {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
