package bleve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"

	// Text analyzers selectable through db.TextAnalyzers register on import.
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/web"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/de"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/en"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/es"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/fr"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/it"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/nl"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/pt"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/ru"

	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/domain/document"
)

// buildMapping turns a catalog definition into a static bleve index mapping.
// Unknown document properties are neither indexed nor stored.
func buildMapping(def *db.CatalogDefinition) (*mapping.IndexMappingImpl, error) {
	dm := bleve.NewDocumentStaticMapping()
	for _, f := range def.Fields {
		fm, err := fieldMapping(f, def.TextAnalyzer())
		if err != nil {
			return nil, err
		}
		dm.AddFieldMappingsAt(f.Name, fm)
	}

	im := bleve.NewIndexMapping()
	im.DefaultMapping = dm
	im.DefaultAnalyzer = def.TextAnalyzer()
	im.IndexDynamic = false
	im.StoreDynamic = false
	im.DocValuesDynamic = false
	if err := im.Validate(); err != nil {
		return nil, fmt.Errorf("validate mapping %s: %w", def.Name, err)
	}
	return im, nil
}

func fieldMapping(f db.CatalogField, analyzer string) (*mapping.FieldMapping, error) {
	var fm *mapping.FieldMapping
	switch f.Type {
	case db.FieldKeyword:
		fm = bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = true
		fm.IncludeTermVectors = true
		fm.DocValues = true
	case db.FieldText:
		fm = bleve.NewTextFieldMapping()
		fm.Analyzer = analyzer
		fm.Store = true
		fm.IncludeTermVectors = true
	case db.FieldNumeric:
		fm = bleve.NewNumericFieldMapping()
		fm.Store = false
		fm.DocValues = true
	case db.FieldStored:
		fm = bleve.NewTextFieldMapping()
		fm.Index = false
		fm.Store = true
		fm.IncludeTermVectors = false
		fm.DocValues = false
	default:
		return nil, fmt.Errorf("field %q: unsupported type %v", f.Name, f.Type)
	}
	fm.IncludeInAll = false
	return fm, nil
}

// drift returns the definition fields that m does not map the way
// buildMapping would, by their declared name. A numeric field's raw
// companion reports as the numeric field.
func drift(m mapping.IndexMapping, def *db.CatalogDefinition) []string {
	im, ok := m.(*mapping.IndexMappingImpl)
	if !ok || im.DefaultMapping == nil {
		return nil
	}

	var out []string
	for _, f := range def.Fields {
		want, err := fieldMapping(f, def.TextAnalyzer())
		if err != nil {
			continue
		}
		if sameField(im.DefaultMapping.Properties[f.Name], want) {
			continue
		}
		name := strings.TrimPrefix(f.Name, db.RawPrefix)
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func sameField(dm *mapping.DocumentMapping, want *mapping.FieldMapping) bool {
	if dm == nil || len(dm.Fields) == 0 {
		return false
	}
	got := dm.Fields[0]
	return got.Type == want.Type &&
		got.Analyzer == want.Analyzer &&
		got.Store == want.Store &&
		got.Index == want.Index &&
		got.DocValues == want.DocValues
}

// toBleveDocument flattens a projected document into the map bleve indexes.
func toBleveDocument(doc *document.Document) map[string]any {
	out := make(map[string]any, len(doc.Fields())*2+1)
	out[db.EntityField] = doc.Entity()
	for _, f := range doc.Fields() {
		if f.Kind.IsNumeric() {
			out[f.Name] = f.Number
			out[db.RawName(f.Name)] = f.Raw
			continue
		}
		out[f.Name] = f.Text
	}
	return out
}
