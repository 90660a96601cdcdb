// Package shrink removes redundant and low-value items from a ContextData
// so it fits the token budget. Every operation only removes items.
package shrink

import (
	"github.com/DhavalSuthar-24/miow-context-master/internal/contextdata"
	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
)

// Deduplicate removes repeated items in place and returns how many were
// removed. Within a category the first occurrence wins. Symbols are keyed by
// name and file path, types and schemas by name and definition, constants
// and design tokens by name and value. A similar symbol whose name appears
// among the relevant symbols is dropped.
func Deduplicate(d *contextdata.ContextData) int {
	before := d.Total()

	d.RelevantSymbols = uniqueBy(d.RelevantSymbols, symbolKey)

	relevant := make(map[string]struct{}, len(d.RelevantSymbols))
	for _, s := range d.RelevantSymbols {
		relevant[s.Name] = struct{}{}
	}
	d.SimilarSymbols = filter(d.SimilarSymbols, func(s search.SymbolMatch) bool {
		_, dup := relevant[s.Name]
		return !dup
	})
	d.SimilarSymbols = uniqueBy(d.SimilarSymbols, symbolKey)

	d.Types = uniqueBy(d.Types, func(t contextdata.TypeDef) string { return pair(t.Name, t.Definition) })
	d.Constants = uniqueBy(d.Constants, func(c contextdata.Constant) string { return pair(c.Name, c.Value) })
	d.DesignTokens = uniqueBy(d.DesignTokens, func(t contextdata.DesignToken) string { return pair(t.Name, t.Value) })
	d.Schemas = uniqueBy(d.Schemas, func(s contextdata.Schema) string { return pair(s.Name, s.Definition) })

	return before - d.Total()
}

func symbolKey(s search.SymbolMatch) string {
	return pair(s.Name, s.FilePath)
}

func pair(a, b string) string {
	return a + "\x00" + b
}

func uniqueBy[T any](items []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	return filter(items, func(item T) bool {
		k := key(item)
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
		return true
	})
}

// filter keeps the items for which keep returns true, reusing the backing
// array.
func filter[T any](items []T, keep func(T) bool) []T {
	out := items[:0]
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	clear(items[len(out):])
	return out
}
