// Package executor runs a single worker's prompt against the text-generation
// backend and normalizes the reply into chunks.
package executor

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/zeebo/blake3"
	"go.opentelemetry.io/otel/attribute"

	"github.com/DhavalSuthar-24/miow-context-master/internal/contextdata"
	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
	"github.com/DhavalSuthar-24/miow-context-master/internal/metrics"
	"github.com/DhavalSuthar-24/miow-context-master/internal/plan"
	"github.com/DhavalSuthar-24/miow-context-master/internal/provider"
	"github.com/DhavalSuthar-24/miow-context-master/internal/reply"
	"github.com/DhavalSuthar-24/miow-context-master/internal/telemetry"
	"github.com/DhavalSuthar-24/miow-context-master/internal/worker"
)

// DefaultConfidence is attached to every worker result. It is not derived
// from the reply.
const DefaultConfidence = 0.8

// Executor runs workers from a registry.
type Executor struct {
	llm      provider.Provider
	registry *worker.Registry
	logger   *log.Logger
	metrics  *metrics.Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// New creates an executor.
func New(llm provider.Provider, registry *worker.Registry, opts ...Option) *Executor {
	e := &Executor{llm: llm, registry: registry}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = log.OrDefault(e.logger).Named("executor")
	return e
}

// Execute runs worker key for task. It fails with CONFIG-001 when key is
// not registered and returns the backend error when the call fails. A reply
// that is not a JSON array becomes a single fallback chunk.
func (e *Executor) Execute(ctx context.Context, key, task, projectDescription string, queries []plan.SearchQuery) (*contextdata.WorkerResult, error) {
	start := time.Now()
	ctx, span := telemetry.StartStageSpan(ctx, "worker", attribute.String("worker", key))
	defer span.End()

	spec, ok := e.registry.Get(key)
	if !ok {
		err := errors.NewUnknownWorkerError(key)
		e.metrics.RecordWorker(key, "unknown", 0, false, time.Since(start))
		e.metrics.RecordError(string(err.Code), "executor")
		telemetry.RecordError(span, err)
		return nil, err
	}

	prompt := RenderPrompt(spec.Template, task, projectDescription, queries)
	resp, err := e.llm.GenerateWithContext(ctx, []provider.Message{
		{Role: provider.RoleSystem, Content: fmt.Sprintf("You are a specialist worker. %s.", spec.Description)},
		{Role: provider.RoleUser, Content: prompt},
	})
	if err != nil {
		e.metrics.RecordWorker(key, "backend_error", 0, false, time.Since(start))
		telemetry.RecordError(span, err)
		return nil, err
	}

	chunks, fallback := ParseChunks(key, resp.Content)
	if fallback {
		e.logger.Warn("worker reply was not a JSON array, kept as fallback chunk", "worker", key)
	}
	e.logger.Debug("worker executed", "worker", key, "chunks", len(chunks), "fallback", fallback)
	e.metrics.RecordWorker(key, "ok", len(chunks), fallback, time.Since(start))
	telemetry.RecordSuccess(span, attribute.Int("chunks", len(chunks)), attribute.Bool("fallback", fallback))

	return &contextdata.WorkerResult{
		WorkerID:   key,
		Chunks:     chunks,
		Summary:    fmt.Sprintf("Executed %s worker", key),
		Confidence: DefaultConfidence,
	}, nil
}

// RenderPrompt fills a worker template. Placeholders without an input yet
// ({file_path}, {error_message}, {file_list}, {package_managers},
// {config_files}) are replaced with the empty string.
func RenderPrompt(template, task, projectDescription string, queries []plan.SearchQuery) string {
	return strings.NewReplacer(
		"{user_prompt}", task,
		"{project_info}", projectDescription,
		"{project_stack}", projectDescription,
		"{queries}", formatQueries(queries),
		"{file_path}", "",
		"{error_message}", "",
		"{file_list}", "",
		"{package_managers}", "",
		"{config_files}", "",
	).Replace(template)
}

func formatQueries(queries []plan.SearchQuery) string {
	lines := make([]string, 0, len(queries))
	for _, q := range queries {
		lines = append(lines, fmt.Sprintf("- %s (%s)", q.Query, q.KindOrAny()))
	}
	return strings.Join(lines, "\n")
}

// ParseChunks maps a worker reply to chunks. It reports true when the reply
// was not a JSON array and was wrapped as one fallback chunk.
func ParseChunks(key, raw string) ([]contextdata.Chunk, bool) {
	out := reply.Decode[[]any](key+" worker", raw)
	items, ok := out.Decoded()
	// A JSON null decodes to a nil slice; only a real array counts.
	if !ok || items == nil {
		return []contextdata.Chunk{fallbackChunk(key, raw)}, true
	}

	chunks := make([]contextdata.Chunk, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		content := firstString(obj, "content", "definition")
		meta := map[string]any{
			"worker":      key,
			"description": firstString(obj, "description"),
			"fingerprint": Fingerprint(content),
		}
		if name := firstString(obj, "name"); name != "" {
			meta["name"] = name
		}
		chunks = append(chunks, contextdata.Chunk{
			ID:       fmt.Sprintf("%s-%d", key, len(chunks)),
			Content:  content,
			FilePath: firstString(obj, "file_path", "path"),
			Language: orDefault(firstString(obj, "language"), "unknown"),
			Kind:     orDefault(firstString(obj, "kind", "type"), "unknown"),
			Metadata: meta,
		})
	}
	return chunks, false
}

func fallbackChunk(key, raw string) contextdata.Chunk {
	return contextdata.Chunk{
		ID:       key + "-fallback",
		Content:  raw,
		FilePath: key + "_analysis.txt",
		Language: "text",
		Kind:     "analysis",
		Metadata: map[string]any{
			"worker":   key,
			"fallback": true,
		},
	}
}

// Fingerprint returns a short content hash used to correlate chunks across runs.
func Fingerprint(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:8])
}

// firstString returns the first key of obj holding a string value.
func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			return s
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
