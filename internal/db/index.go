package db

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

// Reserved document fields written next to the entity fields.
const (
	// EntityField holds the entity type name of every document.
	EntityField = "_entity"
	// RawPrefix prefixes the stored-only companion holding a numeric value's exact original.
	RawPrefix = "_raw_"
)

// RawName returns the stored companion field name of a numeric field.
func RawName(field string) string { return RawPrefix + field }

// FieldType enumerates supported catalog field types.
type FieldType int

const (
	// FieldKeyword is indexed as one untokenized term.
	FieldKeyword FieldType = iota
	// FieldText is analyzed into terms.
	FieldText
	// FieldNumeric is indexed for range lookups and sorting, not stored.
	FieldNumeric
	// FieldStored is stored for retrieval only.
	FieldStored
)

func (t FieldType) String() string {
	switch t {
	case FieldKeyword:
		return "KEYWORD"
	case FieldText:
		return "TEXT"
	case FieldNumeric:
		return "NUMERIC"
	case FieldStored:
		return "STORED"
	}
	return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
}

// CatalogField describes a single field in a catalog mapping.
type CatalogField struct {
	Name string
	Type FieldType
}

// DefaultAnalyzer tokenizes text fields of a catalog that names no analyzer.
const DefaultAnalyzer = "standard"

// TextAnalyzers lists the analyzers a catalog may apply to its text fields.
// Language analyzers stem and drop stop words; cjk splits into bigrams.
var TextAnalyzers = []string{
	"standard", "simple", "web",
	"cjk", "de", "en", "es", "fr", "it", "nl", "pt", "ru",
}

// IsTextAnalyzer reports whether name is in TextAnalyzers.
func IsTextAnalyzer(name string) bool {
	return slices.Contains(TextAnalyzers, name)
}

// CatalogDefinition is the complete mapping of one catalog.
type CatalogDefinition struct {
	Name   string
	Fields []CatalogField
	// Analyzer applies to every text field. Empty means DefaultAnalyzer.
	Analyzer string
}

// TextAnalyzer returns the analyzer of the catalog's text fields.
func (c *CatalogDefinition) TextAnalyzer() string {
	if c.Analyzer == "" {
		return DefaultAnalyzer
	}
	return c.Analyzer
}

// Validate checks that the catalog definition is well-formed.
func (c *CatalogDefinition) Validate() error {
	if c.Name == "" {
		return errors.New("catalog name is required")
	}
	if !IsValidIdentifier(c.Name) {
		return errors.New("catalog name contains invalid characters")
	}
	if c.Analyzer != "" && !IsTextAnalyzer(c.Analyzer) {
		return errors.New("unknown text analyzer: " + c.Analyzer)
	}

	seen := make(map[string]bool, len(c.Fields))
	for i := range c.Fields {
		f := &c.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Field looks up a field by name.
func (c *CatalogDefinition) Field(name string) (CatalogField, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return CatalogField{}, false
}

// String returns a debug representation of the mapping.
func (c *CatalogDefinition) String() string {
	parts := []string{"CATALOG", c.Name}
	if c.Analyzer != "" {
		parts = append(parts, "ANALYZER", c.Analyzer)
	}
	parts = append(parts, "SCHEMA")
	for _, f := range c.Fields {
		parts = append(parts, f.Name, f.Type.String())
	}
	return strings.Join(parts, " ")
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_.:-]+ and is not a relative path element.
func IsValidIdentifier(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-' || r == '.'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
