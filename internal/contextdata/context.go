// Package contextdata holds the per-request buckets of candidate code items
// that the shrink stages reduce before hand-off.
package contextdata

import (
	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
)

// TypeDef is a type, interface or alias definition found in the codebase.
type TypeDef struct {
	Name       string `json:"name" yaml:"name"`
	Kind       string `json:"kind" yaml:"kind"`
	Definition string `json:"definition" yaml:"definition"`
	FilePath   string `json:"file_path" yaml:"file_path"`
}

// Constant is a named constant value.
type Constant struct {
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value" yaml:"value"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	FilePath string `json:"file_path" yaml:"file_path"`
}

// DesignToken is a styling value such as a color or spacing unit.
type DesignToken struct {
	TokenType string `json:"token_type" yaml:"token_type"`
	Name      string `json:"name" yaml:"name"`
	Value     string `json:"value" yaml:"value"`
	Context   string `json:"context,omitempty" yaml:"context,omitempty"`
	FilePath  string `json:"file_path" yaml:"file_path"`
}

// Schema is a validation or data schema definition.
type Schema struct {
	Name       string `json:"name" yaml:"name"`
	SchemaType string `json:"schema_type" yaml:"schema_type"`
	Definition string `json:"definition" yaml:"definition"`
	FilePath   string `json:"file_path" yaml:"file_path"`
}

// Category names a bucket of ContextData.
type Category string

const (
	CategoryRelevant     Category = "relevant_symbols"
	CategorySimilar      Category = "similar_symbols"
	CategoryTypes        Category = "types"
	CategoryConstants    Category = "constants"
	CategoryDesignTokens Category = "design_tokens"
	CategorySchemas      Category = "schemas"
)

// Categories lists every bucket in a stable order.
var Categories = []Category{
	CategoryRelevant,
	CategorySimilar,
	CategoryTypes,
	CategoryConstants,
	CategoryDesignTokens,
	CategorySchemas,
}

// ContextData is the collection of candidate items assembled for one request.
// It is not safe for concurrent mutation.
type ContextData struct {
	RelevantSymbols []search.SymbolMatch `json:"relevant_symbols" yaml:"relevant_symbols"`
	SimilarSymbols  []search.SymbolMatch `json:"similar_symbols" yaml:"similar_symbols"`
	Types           []TypeDef            `json:"types" yaml:"types"`
	Constants       []Constant           `json:"constants" yaml:"constants"`
	DesignTokens    []DesignToken        `json:"design_tokens" yaml:"design_tokens"`
	Schemas         []Schema             `json:"schemas" yaml:"schemas"`
}

// New returns an empty ContextData.
func New() *ContextData {
	return &ContextData{}
}

// Len returns the number of items in category c.
func (d *ContextData) Len(c Category) int {
	switch c {
	case CategoryRelevant:
		return len(d.RelevantSymbols)
	case CategorySimilar:
		return len(d.SimilarSymbols)
	case CategoryTypes:
		return len(d.Types)
	case CategoryConstants:
		return len(d.Constants)
	case CategoryDesignTokens:
		return len(d.DesignTokens)
	case CategorySchemas:
		return len(d.Schemas)
	}
	return 0
}

// Total returns the number of items across all categories.
func (d *ContextData) Total() int {
	n := 0
	for _, c := range Categories {
		n += d.Len(c)
	}
	return n
}

// Counts returns the item count per category.
func (d *ContextData) Counts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = d.Len(c)
	}
	return counts
}

// IsEmpty reports whether every category is empty.
func (d *ContextData) IsEmpty() bool {
	return d.Total() == 0
}

// Clone returns a copy whose slices do not alias d.
func (d *ContextData) Clone() *ContextData {
	return &ContextData{
		RelevantSymbols: append([]search.SymbolMatch(nil), d.RelevantSymbols...),
		SimilarSymbols:  append([]search.SymbolMatch(nil), d.SimilarSymbols...),
		Types:           append([]TypeDef(nil), d.Types...),
		Constants:       append([]Constant(nil), d.Constants...),
		DesignTokens:    append([]DesignToken(nil), d.DesignTokens...),
		Schemas:         append([]Schema(nil), d.Schemas...),
	}
}

// AddRelevant appends symbols to the relevant bucket.
func (d *ContextData) AddRelevant(symbols ...search.SymbolMatch) {
	d.RelevantSymbols = append(d.RelevantSymbols, symbols...)
}

// AddSimilar appends symbols to the similar bucket.
func (d *ContextData) AddSimilar(symbols ...search.SymbolMatch) {
	d.SimilarSymbols = append(d.SimilarSymbols, symbols...)
}

// Merge appends every bucket of other onto d, preserving order.
func (d *ContextData) Merge(other *ContextData) {
	if other == nil {
		return
	}
	d.RelevantSymbols = append(d.RelevantSymbols, other.RelevantSymbols...)
	d.SimilarSymbols = append(d.SimilarSymbols, other.SimilarSymbols...)
	d.Types = append(d.Types, other.Types...)
	d.Constants = append(d.Constants, other.Constants...)
	d.DesignTokens = append(d.DesignTokens, other.DesignTokens...)
	d.Schemas = append(d.Schemas, other.Schemas...)
}
