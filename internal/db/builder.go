package db

import (
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/entity/field"
)

// CatalogBuilder is a fluent builder for catalog definitions.
type CatalogBuilder struct {
	def  CatalogDefinition
	seen map[string]bool
}

// NewCatalog starts building a catalog definition.
// Every catalog carries the keyword EntityField.
func NewCatalog(name string) *CatalogBuilder {
	b := &CatalogBuilder{
		def:  CatalogDefinition{Name: name},
		seen: make(map[string]bool),
	}
	return b.add(EntityField, FieldKeyword)
}

func (b *CatalogBuilder) add(name string, t FieldType) *CatalogBuilder {
	if b.seen[name] {
		return b
	}
	b.seen[name] = true
	b.def.Fields = append(b.def.Fields, CatalogField{Name: name, Type: t})
	return b
}

// Keyword adds an untokenized, stored field.
func (b *CatalogBuilder) Keyword(name string) *CatalogBuilder { return b.add(name, FieldKeyword) }

// Text adds an analyzed, stored field.
func (b *CatalogBuilder) Text(name string) *CatalogBuilder { return b.add(name, FieldText) }

// Numeric adds an indexed numeric field and its stored raw companion.
func (b *CatalogBuilder) Numeric(name string) *CatalogBuilder {
	return b.add(name, FieldNumeric).add(RawName(name), FieldStored)
}

// Entity adds the indexed fields of an entity.
func (b *CatalogBuilder) Entity(e entity.Entity) *CatalogBuilder {
	for _, f := range e.Indexed() {
		switch fieldTypeOf(f) {
		case FieldNumeric:
			b.Numeric(f.Name())
		case FieldText:
			b.Text(f.Name())
		default:
			b.Keyword(f.Name())
		}
	}
	return b
}

// Analyzer selects the analyzer of every text field. Empty means DefaultAnalyzer.
func (b *CatalogBuilder) Analyzer(name string) *CatalogBuilder {
	b.def.Analyzer = name
	return b
}

// Build validates and returns the catalog definition.
func (b *CatalogBuilder) Build() (*CatalogDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Fields = append([]CatalogField(nil), b.def.Fields...)
	return &def, nil
}

// MustBuild calls Build and panics on error.
func (b *CatalogBuilder) MustBuild() *CatalogDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// DefinitionFor builds the mapping of a catalog shared by the given entities.
// analyzer applies to their text fields; empty means DefaultAnalyzer.
func DefinitionFor(catalog, analyzer string, members ...entity.Entity) (*CatalogDefinition, error) {
	b := NewCatalog(catalog).Analyzer(analyzer)
	for _, e := range members {
		b.Entity(e)
	}
	return b.Build()
}

// fieldTypeOf reports the catalog type a declared field maps to.
func fieldTypeOf(f field.Field) FieldType {
	switch {
	case f.Kind().IsNumeric():
		return FieldNumeric
	case f.Analyzed():
		return FieldText
	default:
		return FieldKeyword
	}
}
