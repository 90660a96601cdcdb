package search

import "context"

// SymbolMatch is one symbol returned by a retrieval backend.
type SymbolMatch struct {
	Name      string  `json:"name" yaml:"name"`
	Kind      string  `json:"kind" yaml:"kind"`
	FilePath  string  `json:"file_path" yaml:"file_path"`
	Content   string  `json:"content" yaml:"content"`
	Language  string  `json:"language,omitempty" yaml:"language,omitempty"`
	StartLine int     `json:"start_line" yaml:"start_line"`
	EndLine   int     `json:"end_line" yaml:"end_line"`
	Score     float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

// Backend answers symbol lookups against an indexed codebase.
type Backend interface {
	// SearchSimilar returns at most k symbols ranked by similarity to query.
	SearchSimilar(ctx context.Context, query string, k int) ([]SymbolMatch, error)

	// SearchSymbols returns symbols whose name or content contains query.
	SearchSymbols(ctx context.Context, query string) ([]SymbolMatch, error)

	// FindSymbolsByName returns symbols whose name equals name exactly.
	FindSymbolsByName(ctx context.Context, name string) ([]SymbolMatch, error)
}
