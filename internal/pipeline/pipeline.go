// Package pipeline runs one context retrieval request end to end: plan,
// workers in dependency waves, direct symbol search, critical questions and
// the shrink stages.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/DhavalSuthar-24/miow-context-master/internal/audit"
	"github.com/DhavalSuthar-24/miow-context-master/internal/config"
	"github.com/DhavalSuthar-24/miow-context-master/internal/contextdata"
	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
	"github.com/DhavalSuthar-24/miow-context-master/internal/executor"
	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
	"github.com/DhavalSuthar-24/miow-context-master/internal/metrics"
	"github.com/DhavalSuthar-24/miow-context-master/internal/plan"
	"github.com/DhavalSuthar-24/miow-context-master/internal/project"
	"github.com/DhavalSuthar-24/miow-context-master/internal/provider"
	"github.com/DhavalSuthar-24/miow-context-master/internal/question"
	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
	"github.com/DhavalSuthar-24/miow-context-master/internal/shrink"
	"github.com/DhavalSuthar-24/miow-context-master/internal/telemetry"
	"github.com/DhavalSuthar-24/miow-context-master/internal/worker"
)

// Settings tunes a run.
type Settings struct {
	TokenBudget     int
	MaxConcurrency  int
	MaxQuestions    int
	QuestionRetries int
	SimilarK        int
	EnableQuestions bool
	EnableAudit     bool

	AuditGlobalThreshold   int
	AuditCategoryThreshold int
	AuditPreviewChars      int
	MaxItemsPerCategory    int
}

// DefaultSettings mirrors config.DefaultConfig.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.DefaultConfig())
}

// SettingsFromConfig extracts the run settings from cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		TokenBudget:            cfg.Pipeline.TokenBudget,
		MaxConcurrency:         cfg.Pipeline.MaxConcurrency,
		MaxQuestions:           cfg.Pipeline.MaxQuestions,
		QuestionRetries:        cfg.Pipeline.QuestionRetries,
		SimilarK:               cfg.Search.SimilarK,
		EnableQuestions:        cfg.Pipeline.EnableQuestions,
		EnableAudit:            cfg.Pipeline.EnableAudit,
		AuditGlobalThreshold:   cfg.Audit.GlobalThreshold,
		AuditCategoryThreshold: cfg.Audit.CategoryThreshold,
		AuditPreviewChars:      cfg.Audit.PreviewChars,
		MaxItemsPerCategory:    cfg.Pruner.MaxItemsPerCategory,
	}
}

// Pipeline holds the collaborators shared by every run.
type Pipeline struct {
	llm      provider.Provider
	registry *worker.Registry
	backend  search.Backend
	project  *project.Signature
	settings Settings
	logger   *log.Logger
	metrics  *metrics.Metrics
	newID    func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the base logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithRequestIDs replaces the request id generator.
func WithRequestIDs(fn func() string) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// New validates its inputs and returns a pipeline. backend may be nil, in
// which case direct search and the question stage are skipped.
func New(llm provider.Provider, registry *worker.Registry, backend search.Backend, sig *project.Signature, settings Settings, opts ...Option) (*Pipeline, error) {
	if llm == nil {
		return nil, errors.NewBackendConfigError("none", "no text-generation provider configured")
	}
	if registry == nil || registry.Len() == 0 {
		return nil, errors.NewConfigInvalidError("workers", fmt.Errorf("worker registry is empty"))
	}
	if settings.TokenBudget <= 0 {
		return nil, errors.NewConfigInvalidError("pipeline.token_budget", fmt.Errorf("must be positive, got %d", settings.TokenBudget))
	}
	if settings.MaxConcurrency < 1 {
		settings.MaxConcurrency = 1
	}
	if settings.SimilarK <= 0 {
		settings.SimilarK = question.DefaultSimilarK
	}

	p := &Pipeline{
		llm:      llm,
		registry: registry,
		backend:  backend,
		project:  sig,
		settings: settings,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = log.OrDefault(p.logger)
	return p, nil
}

// Settings returns the effective settings.
func (p *Pipeline) Settings() Settings {
	return p.settings
}

// Run assembles context for task. Stage failures are soft and end up in the
// report. Only cancellation of ctx is returned as an error.
func (p *Pipeline) Run(ctx context.Context, task string) (*Report, error) {
	start := time.Now()
	id := p.newID()
	base := p.logger.WithRequestID(id)
	logger := base.Named("pipeline")

	ctx, span := telemetry.StartStageSpan(ctx, "run", attribute.String("request_id", id))
	defer span.End()

	report := &Report{RequestID: id, Task: task, Project: p.project}
	desc := p.project.ToDescription()
	logger.Info("context run started", "task", task, "project", desc)

	planner := plan.NewPlanner(p.llm, p.registry, plan.WithLogger(base), plan.WithMetrics(p.metrics))
	planned, err := planner.PlanWithDetails(ctx, task, desc)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	report.TaskType = planned.TaskType
	report.PlanSource = planned.Source
	report.Plan = planned.Plan
	report.Waves = plan.Waves(planned.Plan.ExecutionSchedule, plan.RegistryLookup(p.registry))

	data := contextdata.New()

	exec := executor.New(p.llm, p.registry, executor.WithLogger(base), executor.WithMetrics(p.metrics))
	for i, wave := range report.Waves {
		logger.Debug("running wave", "wave", i+1, "workers", len(wave))
		if err := p.runWave(ctx, logger, exec, task, desc, planned.Plan, wave, data, report); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	report.recordStage("workers", data)

	if err := p.searchQueries(ctx, logger, planned.Plan.AllQueryStrings(), data); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	report.recordStage("search", data)

	if err := p.askQuestions(ctx, base, logger, task, data, report); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	report.recordStage("questions", data)
	report.TokensBefore = shrink.EstimateTokens(data)

	removed := shrink.Deduplicate(data)
	p.metrics.RecordRemoved("dedup", removed)
	report.recordStage("dedup", data)

	pruner := &shrink.Pruner{MaxItemsPerCategory: p.settings.MaxItemsPerCategory}
	report.Prune = pruner.Prune(data, p.settings.TokenBudget)
	p.metrics.RecordRemoved("prune", report.Prune.ItemsRemoved)
	for _, tier := range report.Prune.Tiers {
		p.metrics.RecordPruneTier(string(tier))
	}
	report.recordStage("prune", data)

	if p.settings.EnableAudit {
		auditor := audit.New(p.llm,
			audit.WithThresholds(p.settings.AuditGlobalThreshold, p.settings.AuditCategoryThreshold),
			audit.WithPreviewChars(p.settings.AuditPreviewChars),
			audit.WithLogger(base),
			audit.WithMetrics(p.metrics))
		before := data.Total()
		report.Audit = auditor.Audit(ctx, task, data)
		p.metrics.RecordRemoved("audit", before-data.Total())
		if err := ctx.Err(); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		report.recordStage("audit", data)
	}

	report.Context = data
	report.TokensAfter = shrink.EstimateTokens(data)
	report.Duration = time.Since(start)

	logger.Info("context run finished",
		"task_type", report.TaskType,
		"items", data.Total(),
		"tokens", report.TokensAfter,
		"worker_errors", len(report.WorkerErrors),
		"duration", report.Duration)
	telemetry.RecordSuccess(span,
		attribute.String("task_type", report.TaskType),
		attribute.Int("items", data.Total()),
		attribute.Int("tokens", report.TokensAfter))

	return report, nil
}

// runWave executes one wave with bounded concurrency and merges the
// results in schedule order once every worker has returned.
func (p *Pipeline) runWave(ctx context.Context, logger *log.Logger, exec *executor.Executor, task, desc string, sp *plan.SearchPlan, wave []string, data *contextdata.ContextData, report *Report) error {
	results := make([]*contextdata.WorkerResult, len(wave))
	errs := make([]error, len(wave))

	var g errgroup.Group
	g.SetLimit(p.settings.MaxConcurrency)
	for i, id := range wave {
		wp, _ := sp.Worker(id)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = exec.Execute(ctx, id, task, desc, wp.Queries)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, id := range wave {
		if err := errs[i]; err != nil {
			code := errors.CodeOf(err)
			if code == errors.ErrCodeUnknownWorker {
				logger.WithError(err).Warn("skipping unknown worker", "worker", id)
			} else {
				logger.WithError(err).Warn("worker failed", "worker", id)
			}
			p.metrics.RecordError(string(code), "pipeline")
			report.WorkerErrors = append(report.WorkerErrors, WorkerError{
				WorkerID: id,
				Code:     string(code),
				Error:    err.Error(),
			})
			continue
		}
		r := results[i]
		report.WorkerResults = append(report.WorkerResults, *r)
		for _, c := range r.Chunks {
			if c.IsFallback() {
				report.Fallbacks = append(report.Fallbacks, c)
			}
		}
		data.AddChunks(r.Chunks)
	}
	return nil
}

// searchQueries runs every plan query against the backend. Search failures
// are logged and skipped.
func (p *Pipeline) searchQueries(ctx context.Context, logger *log.Logger, queries []string, data *contextdata.ContextData) error {
	if p.backend == nil {
		logger.Debug("no search backend, skipping direct search")
		return nil
	}

	ctx, span := telemetry.StartStageSpan(ctx, "search", attribute.Int("queries", len(queries)))
	defer span.End()

	for _, q := range queries {
		symbols, err := p.backend.SearchSymbols(ctx, q)
		p.metrics.RecordSearch("symbols", err == nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.WithError(err).Warn("symbol search failed", "query", q)
		} else {
			data.AddRelevant(symbols...)
		}

		similar, err := p.backend.SearchSimilar(ctx, q, p.settings.SimilarK)
		p.metrics.RecordSearch("similar", err == nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.WithError(err).Warn("similarity search failed", "query", q)
			continue
		}
		data.AddSimilar(similar...)
	}
	telemetry.RecordSuccess(span)
	return nil
}

// askQuestions generates critical questions and appends answered symbols
// to the relevant bucket.
func (p *Pipeline) askQuestions(ctx context.Context, base, logger *log.Logger, task string, data *contextdata.ContextData, report *Report) error {
	if !p.settings.EnableQuestions || p.backend == nil {
		return nil
	}

	var language, framework string
	if p.project != nil {
		language, framework = p.project.Language, p.project.Framework
	}
	report.QuestionSource = QuestionSourceModel
	questions, err := question.Generate(ctx, p.llm, task, language, framework)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.metrics.RecordError(string(errors.CodeOf(err)), "questions")
		if p.project == nil {
			logger.WithError(err).Warn("question generation failed, continuing without questions")
			report.QuestionSource = ""
			return nil
		}
		questions = question.FromTemplates(p.project.QuestionTemplates())
		report.QuestionSource = QuestionSourceTemplates
		logger.WithError(err).Warn("question generation failed, using stack templates", "questions", len(questions))
	}
	if p.settings.MaxQuestions > 0 && len(questions) > p.settings.MaxQuestions {
		questions = questions[:p.settings.MaxQuestions]
	}

	loop := question.NewLoop(p.llm, p.backend,
		question.WithSimilarity(p.backend),
		question.WithMaxRetries(p.settings.QuestionRetries),
		question.WithSimilarK(p.settings.SimilarK),
		question.WithLogger(base),
		question.WithMetrics(p.metrics))
	results, err := loop.RunBatch(ctx, questions)
	if err != nil {
		return err
	}
	report.Questions = results

	for _, a := range question.Answers(results) {
		data.AddRelevant(a.Symbols...)
	}
	return nil
}
