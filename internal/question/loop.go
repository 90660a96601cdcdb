// Package question answers specific factual lookups against the codebase
// with a bounded search, verify and reformulate loop.
package question

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
	"github.com/DhavalSuthar-24/miow-context-master/internal/metrics"
	"github.com/DhavalSuthar-24/miow-context-master/internal/provider"
	"github.com/DhavalSuthar-24/miow-context-master/internal/reply"
	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
	"github.com/DhavalSuthar-24/miow-context-master/internal/telemetry"
)

const (
	// DefaultMaxRetries is the number of attempts per question.
	DefaultMaxRetries = 3

	// DefaultSimilarK bounds similarity hits per search.
	DefaultSimilarK = 10

	// verifyTopN is how many results the verifier sees.
	verifyTopN = 5
)

// Loop runs questions against a graph backend and an optional similarity
// backend.
type Loop struct {
	llm        provider.Provider
	similar    search.Backend
	graph      search.Backend
	maxRetries int
	similarK   int
	logger     *log.Logger
	metrics    *metrics.Metrics
}

// Option configures a Loop.
type Option func(*Loop)

// WithSimilarity sets the similarity backend. Without one only the graph
// backend is searched.
func WithSimilarity(b search.Backend) Option {
	return func(l *Loop) { l.similar = b }
}

// WithMaxRetries sets the attempts per question. Values below 1 are ignored.
func WithMaxRetries(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxRetries = n
		}
	}
}

// WithSimilarK sets the similarity hit count. Values below 1 are ignored.
func WithSimilarK(k int) Option {
	return func(l *Loop) {
		if k > 0 {
			l.similarK = k
		}
	}
}

func WithLogger(lg *log.Logger) Option {
	return func(l *Loop) { l.logger = lg }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loop) { l.metrics = m }
}

// NewLoop creates a question loop.
func NewLoop(llm provider.Provider, graph search.Backend, opts ...Option) *Loop {
	l := &Loop{
		llm:        llm,
		graph:      graph,
		maxRetries: DefaultMaxRetries,
		similarK:   DefaultSimilarK,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = log.OrDefault(l.logger).Named("question")
	return l
}

// MaxRetries returns the attempts per question.
func (l *Loop) MaxRetries() int {
	return l.maxRetries
}

// ExecuteQuestions runs every question independently and returns the
// answers of those found or partially found. A critical question that is
// not found is logged and does not stop the batch. Only context
// cancellation is returned as an error.
func (l *Loop) ExecuteQuestions(ctx context.Context, questions []CriticalQuestion) ([]Answer, error) {
	results, err := l.RunBatch(ctx, questions)
	if err != nil {
		return nil, err
	}
	return Answers(results), nil
}

// RunBatch runs every question and returns one Result per question in input
// order.
func (l *Loop) RunBatch(ctx context.Context, questions []CriticalQuestion) ([]Result, error) {
	l.logger.Info("executing questions", "count", len(questions))

	results := make([]Result, 0, len(questions))
	for i, q := range questions {
		l.logger.Debug("question",
			"index", i+1,
			"of", len(questions),
			"question", q.Question,
			"search_query", q.SearchQuery,
			"expected_type", q.ExpectedType,
			"priority", q.Priority)

		r, err := l.Run(ctx, q)
		if err != nil {
			return nil, err
		}
		if r.Outcome == OutcomeNotFound {
			if q.Priority == PriorityCritical {
				l.logger.Warn("critical question not answered", "question", q.Question, "attempts", r.Attempts)
			} else {
				l.logger.Debug("optional question not answered", "question", q.Question)
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// Answers collects the answers of found and partially found results.
func Answers(results []Result) []Answer {
	var out []Answer
	for _, r := range results {
		if r.Answer != nil {
			out = append(out, *r.Answer)
		}
	}
	return out
}

// Run drives one question to a terminal outcome within MaxRetries attempts.
// An empty result set is reformulated without verification while attempts
// remain. Only context cancellation is returned as an error.
func (l *Loop) Run(ctx context.Context, q CriticalQuestion) (Result, error) {
	ctx, span := telemetry.StartStageSpan(ctx, "question",
		attribute.String("priority", string(q.Priority)),
		attribute.String("expected_type", q.ExpectedType))
	defer span.End()

	result := Result{Outcome: OutcomeNotFound}
	for attempt := 1; attempt <= l.maxRetries; attempt++ {
		result.Attempts = attempt
		last := attempt == l.maxRetries

		results, err := l.Search(ctx, q.SearchQuery)
		if err != nil {
			telemetry.RecordError(span, err)
			return Result{}, err
		}
		l.logger.Debug("search finished", "query", q.SearchQuery, "attempt", attempt, "results", len(results))

		if len(results) == 0 {
			if last {
				break
			}
			if q, err = l.reformulate(ctx, q); err != nil {
				telemetry.RecordError(span, err)
				return Result{}, err
			}
			continue
		}

		v, err := l.verify(ctx, q, results)
		if err != nil {
			telemetry.RecordError(span, err)
			return Result{}, err
		}
		l.logger.Debug("verification", "is_correct", v.IsCorrect, "reason", v.Reason, "attempt", attempt)

		if v.IsCorrect {
			result.Outcome = OutcomeFound
			result.Answer = &Answer{Question: q.Question, Symbols: results, Confidence: ConfidenceFound}
			break
		}
		if last {
			result.Outcome = OutcomePartiallyFound
			result.Answer = &Answer{Question: q.Question, Symbols: results, Confidence: ConfidencePartial}
			break
		}
		if q, err = l.reformulate(ctx, q); err != nil {
			telemetry.RecordError(span, err)
			return Result{}, err
		}
	}

	result.Final = q
	l.metrics.RecordQuestion(string(q.Priority), string(result.Outcome), result.Attempts)
	telemetry.RecordSuccess(span,
		attribute.String("outcome", string(result.Outcome)),
		attribute.Int("attempts", result.Attempts))
	return result, nil
}

// Search queries the similarity backend, expanding each hit to its full
// graph symbols, then the graph backend for substring matches. Results are
// deduplicated by name and file path and similarity results come first. A
// failing backend counts as zero results; only context cancellation is
// returned as an error.
func (l *Loop) Search(ctx context.Context, query string) ([]search.SymbolMatch, error) {
	var results []search.SymbolMatch
	seen := make(map[string]struct{})
	add := func(m search.SymbolMatch) {
		key := m.Name + "\x00" + m.FilePath
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		results = append(results, m)
	}

	if l.similar != nil {
		hits, err := l.similar.SearchSimilar(ctx, query, l.similarK)
		l.metrics.RecordSearch("similar", err == nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.logger.WithError(err).Warn("similarity search failed, using graph only", "query", query)
		}
		for _, hit := range hits {
			full, err := l.graph.FindSymbolsByName(ctx, hit.Name)
			l.metrics.RecordSearch("by_name", err == nil)
			if err != nil || len(full) == 0 {
				add(hit)
				continue
			}
			for _, m := range full {
				add(m)
			}
		}
	}

	matches, err := l.graph.SearchSymbols(ctx, query)
	l.metrics.RecordSearch("symbols", err == nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.logger.WithError(err).Warn("graph search failed", "query", query)
	}
	for _, m := range matches {
		add(m)
	}

	return results, nil
}

// verify asks the model whether results answer q. A failed call or an
// undecodable reply is treated as correct when results is non-empty.
func (l *Loop) verify(ctx context.Context, q CriticalQuestion, results []search.SymbolMatch) (Verification, error) {
	failOpen := func(reason string) Verification {
		return Verification{IsCorrect: len(results) > 0, Reason: reason}
	}

	resp, err := l.llm.Generate(ctx, fmt.Sprintf(verifyPrompt, q.Question, q.ExpectedType, q.SearchQuery, summarize(results, verifyTopN)))
	if err != nil {
		if ctx.Err() != nil {
			return Verification{}, ctx.Err()
		}
		l.logger.WithError(err).Warn("verification call failed, accepting results", "question", q.Question)
		return failOpen("Verification call failed"), nil
	}

	out := reply.Decode[verificationReply]("verification", resp.Content)
	v, ok := out.Decoded()
	if !ok || v.IsCorrect == nil || v.Reason == nil {
		l.logger.WithError(out.Err()).Warn("verification reply malformed, accepting results", "question", q.Question)
		return failOpen("Failed to parse verification response"), nil
	}
	return Verification{IsCorrect: *v.IsCorrect, Reason: *v.Reason, Suggestion: v.Suggestion}, nil
}

// verificationReply is the wire shape of a verdict; is_correct and reason
// are required.
type verificationReply struct {
	IsCorrect  *bool   `json:"is_correct"`
	Reason     *string `json:"reason"`
	Suggestion *string `json:"suggestion"`
}

type reformulation struct {
	NewQuery string `json:"new_query"`
}

// reformulate asks the model for a better search query and falls back to
// Reformulate when the call fails or the reply has no usable query.
func (l *Loop) reformulate(ctx context.Context, q CriticalQuestion) (CriticalQuestion, error) {
	next := q
	resp, err := l.llm.Generate(ctx, fmt.Sprintf(reformulatePrompt, q.SearchQuery, q.Question))
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return q, ctx.Err()
		}
		l.logger.WithError(err).Warn("reformulation call failed, using heuristic", "query", q.SearchQuery)
		next.SearchQuery = Reformulate(q)
	default:
		r, ok := reply.Decode[reformulation]("reformulation", resp.Content).Decoded()
		if ok && strings.TrimSpace(r.NewQuery) != "" {
			next.SearchQuery = strings.TrimSpace(r.NewQuery)
		} else {
			next.SearchQuery = Reformulate(q)
		}
	}
	l.logger.Debug("reformulated", "from", q.SearchQuery, "to", next.SearchQuery)
	return next, nil
}

// Reformulate is the deterministic query rewrite used without a model
// suggestion: "User" becomes "UserModel", otherwise the expected type is
// prefixed to the query.
func Reformulate(q CriticalQuestion) string {
	if strings.Contains(q.SearchQuery, "User") {
		return strings.ReplaceAll(q.SearchQuery, "User", "UserModel")
	}
	kind := strings.TrimSpace(q.ExpectedType)
	if kind == "" {
		kind = "symbol"
	}
	return kind + " " + q.SearchQuery
}

func summarize(results []search.SymbolMatch, n int) string {
	if len(results) > n {
		results = results[:n]
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s (%s) in %s", r.Name, r.Kind, r.FilePath))
	}
	return strings.Join(lines, "\n")
}
