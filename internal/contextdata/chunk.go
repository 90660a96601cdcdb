package contextdata

import (
	"strings"

	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
)

// Chunk is a normalized unit of retrieved content with provenance metadata.
type Chunk struct {
	ID        string         `json:"id" yaml:"id"`
	Content   string         `json:"content" yaml:"content"`
	FilePath  string         `json:"file_path" yaml:"file_path"`
	Language  string         `json:"language" yaml:"language"`
	Kind      string         `json:"kind" yaml:"kind"`
	StartLine int            `json:"start_line" yaml:"start_line"`
	EndLine   int            `json:"end_line" yaml:"end_line"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// IsFallback reports whether the chunk wraps an undecodable worker reply.
func (c Chunk) IsFallback() bool {
	v, ok := c.Metadata["fallback"].(bool)
	return ok && v
}

// Name returns the chunk's symbol name from metadata, falling back to its id.
func (c Chunk) Name() string {
	if name, ok := c.Metadata["name"].(string); ok && name != "" {
		return name
	}
	return c.ID
}

// WorkerResult is the normalized output of one worker execution.
type WorkerResult struct {
	WorkerID   string  `json:"worker_id" yaml:"worker_id"`
	Chunks     []Chunk `json:"chunks" yaml:"chunks"`
	Summary    string  `json:"summary" yaml:"summary"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// AddChunks routes chunks into buckets by kind. Fallback chunks are skipped
// and the number skipped is returned.
func (d *ContextData) AddChunks(chunks []Chunk) (skipped int) {
	for _, c := range chunks {
		if c.IsFallback() {
			skipped++
			continue
		}
		switch strings.ToLower(c.Kind) {
		case "type", "interface", "struct", "enum", "type_alias":
			d.Types = append(d.Types, TypeDef{
				Name:       c.Name(),
				Kind:       c.Kind,
				Definition: c.Content,
				FilePath:   c.FilePath,
			})
		case "schema":
			d.Schemas = append(d.Schemas, Schema{
				Name:       c.Name(),
				SchemaType: metaString(c.Metadata, "schema_type"),
				Definition: c.Content,
				FilePath:   c.FilePath,
			})
		case "constant", "const":
			d.Constants = append(d.Constants, Constant{
				Name:     c.Name(),
				Value:    c.Content,
				Category: metaString(c.Metadata, "category"),
				FilePath: c.FilePath,
			})
		case "token", "design_token", "style":
			d.DesignTokens = append(d.DesignTokens, DesignToken{
				TokenType: metaString(c.Metadata, "token_type"),
				Name:      c.Name(),
				Value:     c.Content,
				Context:   metaString(c.Metadata, "context"),
				FilePath:  c.FilePath,
			})
		default:
			d.RelevantSymbols = append(d.RelevantSymbols, search.SymbolMatch{
				Name:      c.Name(),
				Kind:      c.Kind,
				FilePath:  c.FilePath,
				Content:   c.Content,
				Language:  c.Language,
				StartLine: c.StartLine,
				EndLine:   c.EndLine,
			})
		}
	}
	return skipped
}

func metaString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
