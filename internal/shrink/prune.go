package shrink

import (
	"strings"

	"github.com/DhavalSuthar-24/miow-context-master/internal/contextdata"
	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
)

// DefaultMaxItemsPerCategory is the per-category cap applied by the second
// prune tier.
const DefaultMaxItemsPerCategory = 10

// Tier names a prune strategy.
type Tier string

const (
	TierTestFiles  Tier = "test_files"
	TierCap        Tier = "category_cap"
	TierAggressive Tier = "aggressive"
)

// EstimateTokens approximates token usage as the character count of every
// item's content divided by four.
func EstimateTokens(d *contextdata.ContextData) int {
	chars := 0
	for _, s := range d.RelevantSymbols {
		chars += len(s.Content)
	}
	for _, s := range d.SimilarSymbols {
		chars += len(s.Content)
	}
	for _, t := range d.Types {
		chars += len(t.Definition)
	}
	for _, c := range d.Constants {
		chars += len(c.Value)
	}
	for _, t := range d.DesignTokens {
		chars += len(t.Value)
	}
	for _, s := range d.Schemas {
		chars += len(s.Definition)
	}
	return chars / 4
}

// IsTestPath reports whether path looks like a test or mock file.
func IsTestPath(path string) bool {
	return strings.Contains(path, ".test.") ||
		strings.Contains(path, ".spec.") ||
		strings.Contains(path, "__tests__") ||
		strings.Contains(path, "mock")
}

// PruneReport describes one Prune call.
type PruneReport struct {
	Budget       int    `json:"budget" yaml:"budget"`
	TokensBefore int    `json:"tokens_before" yaml:"tokens_before"`
	TokensAfter  int    `json:"tokens_after" yaml:"tokens_after"`
	ItemsRemoved int    `json:"items_removed" yaml:"items_removed"`
	Tiers        []Tier `json:"tiers,omitempty" yaml:"tiers,omitempty"`
}

// Pruner enforces a token budget.
type Pruner struct {
	MaxItemsPerCategory int
}

// NewPruner returns a pruner with the default category cap.
func NewPruner() *Pruner {
	return &Pruner{MaxItemsPerCategory: DefaultMaxItemsPerCategory}
}

// Prune shrinks d in place until EstimateTokens(d) <= budget, running the
// tiers in order and stopping after the first one that fits. When it
// returns, either the budget holds or the relevant, similar, constant and
// design token buckets are empty.
func (p *Pruner) Prune(d *contextdata.ContextData, budget int) (report PruneReport) {
	report = PruneReport{Budget: budget, TokensBefore: EstimateTokens(d)}
	before := d.Total()
	defer func() {
		report.TokensAfter = EstimateTokens(d)
		report.ItemsRemoved = before - d.Total()
	}()

	if report.TokensBefore <= budget {
		return report
	}

	tiers := []struct {
		name Tier
		run  func(*contextdata.ContextData, int)
	}{
		{TierTestFiles, func(d *contextdata.ContextData, _ int) { dropTestFiles(d) }},
		{TierCap, func(d *contextdata.ContextData, _ int) { capCategories(d, p.maxItems()) }},
		{TierAggressive, aggressive},
	}
	for _, tier := range tiers {
		report.Tiers = append(report.Tiers, tier.name)
		tier.run(d, budget)
		if EstimateTokens(d) <= budget {
			break
		}
	}
	return report
}

func (p *Pruner) maxItems() int {
	if p == nil || p.MaxItemsPerCategory <= 0 {
		return DefaultMaxItemsPerCategory
	}
	return p.MaxItemsPerCategory
}

func dropTestFiles(d *contextdata.ContextData) {
	keepSymbol := func(s search.SymbolMatch) bool { return !IsTestPath(s.FilePath) }
	d.RelevantSymbols = filter(d.RelevantSymbols, keepSymbol)
	d.SimilarSymbols = filter(d.SimilarSymbols, keepSymbol)
	d.Types = filter(d.Types, func(t contextdata.TypeDef) bool { return !IsTestPath(t.FilePath) })
	d.Constants = filter(d.Constants, func(c contextdata.Constant) bool { return !IsTestPath(c.FilePath) })
	d.DesignTokens = filter(d.DesignTokens, func(t contextdata.DesignToken) bool { return !IsTestPath(t.FilePath) })
	d.Schemas = filter(d.Schemas, func(s contextdata.Schema) bool { return !IsTestPath(s.FilePath) })
}

func capCategories(d *contextdata.ContextData, n int) {
	d.RelevantSymbols = truncate(d.RelevantSymbols, n)
	d.SimilarSymbols = truncate(d.SimilarSymbols, n)
	d.Types = truncate(d.Types, n)
	d.Constants = truncate(d.Constants, n)
	d.DesignTokens = truncate(d.DesignTokens, n)
	d.Schemas = truncate(d.Schemas, n)
}

func truncate[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func aggressive(d *contextdata.ContextData, budget int) {
	d.SimilarSymbols = nil
	d.Constants = nil
	d.DesignTokens = nil
	for len(d.RelevantSymbols) > 0 && EstimateTokens(d) > budget {
		d.RelevantSymbols = d.RelevantSymbols[:len(d.RelevantSymbols)-1]
	}
}
