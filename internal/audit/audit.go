// Package audit asks the model to keep only the essential items of large
// context categories.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/DhavalSuthar-24/miow-context-master/internal/contextdata"
	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
	"github.com/DhavalSuthar-24/miow-context-master/internal/metrics"
	"github.com/DhavalSuthar-24/miow-context-master/internal/provider"
	"github.com/DhavalSuthar-24/miow-context-master/internal/reply"
	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
	"github.com/DhavalSuthar-24/miow-context-master/internal/telemetry"
)

const (
	DefaultGlobalThreshold   = 12
	DefaultCategoryThreshold = 8
	DefaultPreviewChars      = 320
)

// Outcome is what happened to one category.
type Outcome string

const (
	// OutcomeOK means the category was replaced by the kept items.
	OutcomeOK Outcome = "ok"
	// OutcomeSkipped means the category was under its threshold.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeUnchanged means the model gave no usable selection.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeError means the call or decode failed.
	OutcomeError Outcome = "error"
)

// CategoryReport is the audit result of one category.
type CategoryReport struct {
	Category contextdata.Category `json:"category" yaml:"category"`
	Outcome  Outcome              `json:"outcome" yaml:"outcome"`
	Before   int                  `json:"before" yaml:"before"`
	After    int                  `json:"after" yaml:"after"`
	Error    string               `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the result of one Audit call.
type Report struct {
	Engaged    bool             `json:"engaged" yaml:"engaged"`
	Categories []CategoryReport `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Outcome returns the outcome recorded for c, or OutcomeSkipped.
func (r *Report) Outcome(c contextdata.Category) Outcome {
	for _, cr := range r.Categories {
		if cr.Category == c {
			return cr.Outcome
		}
	}
	return OutcomeSkipped
}

// Auditor filters ContextData categories through the model.
type Auditor struct {
	llm               provider.Provider
	globalThreshold   int
	categoryThreshold int
	previewChars      int
	logger            *log.Logger
	metrics           *metrics.Metrics
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithThresholds sets the global and per-category item counts that must be
// exceeded before the model is asked. Values below 0 are ignored.
func WithThresholds(global, category int) Option {
	return func(a *Auditor) {
		if global >= 0 {
			a.globalThreshold = global
		}
		if category >= 0 {
			a.categoryThreshold = category
		}
	}
}

// WithPreviewChars sets how many characters of content each item shows.
func WithPreviewChars(n int) Option {
	return func(a *Auditor) {
		if n > 0 {
			a.previewChars = n
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Auditor) { a.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Auditor) { a.metrics = m }
}

// New creates an auditor.
func New(llm provider.Provider, opts ...Option) *Auditor {
	a := &Auditor{
		llm:               llm,
		globalThreshold:   DefaultGlobalThreshold,
		categoryThreshold: DefaultCategoryThreshold,
		previewChars:      DefaultPreviewChars,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = log.OrDefault(a.logger).Named("audit")
	return a
}

// Audit filters each qualifying category of d in place. Nothing is asked
// unless d holds more than the global threshold of items, and a category is
// audited only when it holds more than the category threshold. Failures
// leave the category untouched and are reported, never returned.
func (a *Auditor) Audit(ctx context.Context, task string, d *contextdata.ContextData) *Report {
	ctx, span := telemetry.StartStageSpan(ctx, "audit", attribute.Int("items", d.Total()))
	defer span.End()

	report := &Report{}
	if d.Total() <= a.globalThreshold {
		telemetry.RecordSuccess(span, attribute.Bool("engaged", false))
		return report
	}
	report.Engaged = true

	for _, c := range contextdata.Categories {
		cr := CategoryReport{Category: c, Before: d.Len(c)}
		if cr.Before <= a.categoryThreshold {
			cr.Outcome = OutcomeSkipped
		} else {
			keep, err := a.decide(ctx, task, c, candidates(d, c, a.previewChars))
			switch {
			case err != nil:
				cr.Outcome = OutcomeError
				cr.Error = err.Error()
				a.logger.WithError(err).Warn("audit failed, category left unchanged", "category", c)
			case len(keep) == 0:
				cr.Outcome = OutcomeUnchanged
			default:
				cr.Outcome = OutcomeOK
				retain(d, c, keep)
			}
		}
		cr.After = d.Len(c)
		a.metrics.RecordAudit(string(c), string(cr.Outcome))
		report.Categories = append(report.Categories, cr)
	}

	a.logger.Info("audit finished", "items", d.Total())
	telemetry.RecordSuccess(span, attribute.Bool("engaged", true), attribute.Int("items_after", d.Total()))
	return report
}

type decision struct {
	KeepIndices []int `json:"keep_indices"`
}

// decide returns the sorted, unique, in-range indices the model kept.
func (a *Auditor) decide(ctx context.Context, task string, c contextdata.Category, items []candidate) ([]int, error) {
	listing, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, err
	}

	resp, err := a.llm.GenerateWithContext(ctx, []provider.Message{
		{Role: provider.RoleSystem, Content: systemPrompt},
		{Role: provider.RoleUser, Content: fmt.Sprintf("User task:\n%s\n\nCategory: %s\n\nCandidate items:\n%s", task, c, listing)},
	})
	if err != nil {
		return nil, err
	}

	out := reply.Decode[decision]("audit decision", resp.Content)
	dec, ok := out.Decoded()
	if !ok {
		return nil, out.Err()
	}

	var keep []int
	for _, idx := range dec.KeepIndices {
		if idx >= 0 && idx < len(items) {
			keep = append(keep, idx)
		}
	}
	slices.Sort(keep)
	return slices.Compact(keep), nil
}

const systemPrompt = `You are a Context Auditor Agent for an autonomous code-understanding system.
Given a user task and a list of candidate code items, decide which items are essential.

Rules:
- Prefer items that are directly useful for implementing the task.
- Prefer framework-/architecture-specific entry points and core domain types.
- Avoid generic utilities that are not clearly relevant.

You MUST respond with JSON only, matching:
{ "keep_indices": [0, 2, 5] }
`

type candidate struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	FilePath string `json:"file_path"`
	Preview  string `json:"preview"`
}

func candidates(d *contextdata.ContextData, c contextdata.Category, previewChars int) []candidate {
	var out []candidate
	add := func(name, kind, path, content string) {
		out = append(out, candidate{
			Index:    len(out),
			Name:     name,
			Kind:     kind,
			FilePath: path,
			Preview:  Preview(content, previewChars),
		})
	}
	symbols := func(list []search.SymbolMatch) {
		for _, s := range list {
			add(s.Name, s.Kind, s.FilePath, s.Content)
		}
	}

	switch c {
	case contextdata.CategoryRelevant:
		symbols(d.RelevantSymbols)
	case contextdata.CategorySimilar:
		symbols(d.SimilarSymbols)
	case contextdata.CategoryTypes:
		for _, t := range d.Types {
			add(t.Name, t.Kind, t.FilePath, t.Definition)
		}
	case contextdata.CategoryConstants:
		for _, k := range d.Constants {
			add(k.Name, "constant", k.FilePath, k.Value)
		}
	case contextdata.CategoryDesignTokens:
		for _, t := range d.DesignTokens {
			add(t.Name, t.TokenType, t.FilePath, t.Value)
		}
	case contextdata.CategorySchemas:
		for _, s := range d.Schemas {
			add(s.Name, s.SchemaType, s.FilePath, s.Definition)
		}
	}
	return out
}

// Preview returns the first n characters of content, with an ellipsis
// appended when truncated.
func Preview(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "…"
}

func retain(d *contextdata.ContextData, c contextdata.Category, keep []int) {
	switch c {
	case contextdata.CategoryRelevant:
		d.RelevantSymbols = pick(d.RelevantSymbols, keep)
	case contextdata.CategorySimilar:
		d.SimilarSymbols = pick(d.SimilarSymbols, keep)
	case contextdata.CategoryTypes:
		d.Types = pick(d.Types, keep)
	case contextdata.CategoryConstants:
		d.Constants = pick(d.Constants, keep)
	case contextdata.CategoryDesignTokens:
		d.DesignTokens = pick(d.DesignTokens, keep)
	case contextdata.CategorySchemas:
		d.Schemas = pick(d.Schemas, keep)
	}
}

func pick[T any](items []T, keep []int) []T {
	out := make([]T, 0, len(keep))
	for _, idx := range keep {
		out = append(out, items[idx])
	}
	return out
}
