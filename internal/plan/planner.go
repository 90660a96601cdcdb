package plan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
	"github.com/DhavalSuthar-24/miow-context-master/internal/metrics"
	"github.com/DhavalSuthar-24/miow-context-master/internal/provider"
	"github.com/DhavalSuthar-24/miow-context-master/internal/reply"
	"github.com/DhavalSuthar-24/miow-context-master/internal/telemetry"
	"github.com/DhavalSuthar-24/miow-context-master/internal/worker"
)

const (
	// DefaultTaskType is used when classification cannot be decoded.
	DefaultTaskType = "feature"

	// FallbackIntent labels plans synthesized without a usable model reply.
	FallbackIntent = "fallback_plan"

	// maxFallbackWorkers bounds the workers of a fallback plan.
	maxFallbackWorkers = 3
)

// Source tells where a plan came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is a plan with the classification that produced it.
type Result struct {
	Plan        *SearchPlan `json:"plan" yaml:"plan"`
	TaskType    string      `json:"task_type" yaml:"task_type"`
	Recommended []string    `json:"recommended" yaml:"recommended"`
	Source      Source      `json:"source" yaml:"source"`
}

// Planner turns a user task into a scheduled SearchPlan.
type Planner struct {
	llm      provider.Provider
	registry *worker.Registry
	logger   *log.Logger
	metrics  *metrics.Metrics
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Planner) { p.metrics = m }
}

// NewPlanner creates a planner over llm and registry.
func NewPlanner(llm provider.Provider, registry *worker.Registry, opts ...Option) *Planner {
	p := &Planner{llm: llm, registry: registry}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = log.OrDefault(p.logger).Named("planner")
	return p
}

// Plan returns the scheduled plan for task.
func (p *Planner) Plan(ctx context.Context, task, projectDescription string) (*SearchPlan, error) {
	r, err := p.PlanWithDetails(ctx, task, projectDescription)
	if err != nil {
		return nil, err
	}
	return r.Plan, nil
}

// PlanWithDetails classifies task, asks the model for a plan and attaches
// the execution schedule. An undecodable or empty model plan, or a failed
// planning call, yields the fallback plan. Only context cancellation is
// returned as an error.
func (p *Planner) PlanWithDetails(ctx context.Context, task, projectDescription string) (*Result, error) {
	start := time.Now()
	ctx, span := telemetry.StartStageSpan(ctx, "plan")
	defer span.End()

	taskType, err := p.Classify(ctx, task, projectDescription)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	recommended := p.registry.RecommendedFor(taskType)

	result := &Result{TaskType: taskType, Recommended: recommended, Source: SourceModel}

	plan, err := p.requestPlan(ctx, task, projectDescription, recommended)
	if err != nil {
		if ctx.Err() != nil {
			telemetry.RecordError(span, ctx.Err())
			return nil, ctx.Err()
		}
		p.logger.WithError(err).Warn("using fallback plan", "task_type", taskType)
		plan = FallbackPlan(task, p.registry, recommended)
		result.Source = SourceFallback
	}

	plan.ExecutionSchedule = BuildExecutionPlan(plan.WorkerIDs(), RegistryLookup(p.registry))
	result.Plan = plan

	p.logger.Info("plan ready",
		"task_type", taskType,
		"intent", plan.GlobalIntent,
		"source", result.Source,
		"workers", len(plan.Workers),
		"queries", len(plan.SearchQueries),
		"schedule", strings.Join(plan.ExecutionSchedule, ","))
	p.metrics.RecordPlan(taskType, string(result.Source), len(plan.Workers), time.Since(start))
	telemetry.RecordSuccess(span,
		attribute.String("task_type", taskType),
		attribute.String("source", string(result.Source)),
		attribute.Int("workers", len(plan.Workers)))

	return result, nil
}

// Classify returns the task type for task using the task_classifier
// worker. Any failure other than context cancellation yields
// DefaultTaskType.
func (p *Planner) Classify(ctx context.Context, task, projectDescription string) (string, error) {
	classifier, ok := p.registry.Get(worker.KeyTaskClassifier)
	if !ok {
		p.logger.Warn("task_classifier worker not registered, defaulting task type", "task_type", DefaultTaskType)
		return DefaultTaskType, nil
	}

	prompt := strings.NewReplacer(
		"{user_prompt}", task,
		"{project_info}", projectDescription,
		"{project_stack}", projectDescription,
	).Replace(classifier.Template)

	resp, err := p.llm.GenerateWithContext(ctx, []provider.Message{
		{Role: provider.RoleSystem, Content: classifierSystemPrompt},
		{Role: provider.RoleUser, Content: prompt},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.logger.WithError(err).Warn("classification call failed", "task_type", DefaultTaskType)
		return DefaultTaskType, nil
	}

	out := reply.Decode[classification]("classification", resp.Content)
	c, ok := out.Decoded()
	if !ok {
		p.logger.WithError(out.Err()).Warn("classification reply malformed", "task_type", DefaultTaskType)
		return DefaultTaskType, nil
	}

	taskType := strings.ToLower(strings.TrimSpace(c.TaskType))
	if taskType == "" {
		return DefaultTaskType, nil
	}
	return taskType, nil
}

type classification struct {
	TaskType   string   `json:"task_type"`
	Complexity string   `json:"complexity"`
	Domains    []string `json:"domains"`
}

func (p *Planner) requestPlan(ctx context.Context, task, projectDescription string, recommended []string) (*SearchPlan, error) {
	resp, err := p.llm.GenerateWithContext(ctx, []provider.Message{
		{Role: provider.RoleSystem, Content: fmt.Sprintf(plannerSystemPrompt, p.workerCatalog())},
		{Role: provider.RoleUser, Content: fmt.Sprintf(plannerUserPrompt, task, projectDescription, strings.Join(recommended, ", "))},
	})
	if err != nil {
		return nil, fmt.Errorf("router call failed: %w", err)
	}

	out := reply.Decode[SearchPlan]("search plan", resp.Content)
	plan, ok := out.Decoded()
	if !ok {
		return nil, out.Err()
	}
	plan.Normalize()
	if plan.IsEmpty() {
		return nil, fmt.Errorf("model returned an empty search plan")
	}
	return &plan, nil
}

// workerCatalog lists every registered worker as "- key: description".
func (p *Planner) workerCatalog() string {
	specs := p.registry.All()
	lines := make([]string, 0, len(specs))
	for _, s := range specs {
		lines = append(lines, fmt.Sprintf("- %s: %s", s.Key, s.Description))
	}
	return strings.Join(lines, "\n")
}

// FallbackPlan builds the plan used when the model gives none: the raw task
// as the single general query, and up to three of the first recommended
// workers that are registered, each carrying the same query.
func FallbackPlan(task string, registry *worker.Registry, recommended []string) *SearchPlan {
	query := SearchQuery{Query: task, Kind: "any"}

	candidates := recommended
	if len(candidates) > maxFallbackWorkers {
		candidates = candidates[:maxFallbackWorkers]
	}

	var workers []WorkerPlan
	for _, key := range candidates {
		s, ok := registry.Get(key)
		if !ok {
			continue
		}
		workers = append(workers, WorkerPlan{
			WorkerID:    key,
			Description: s.Description,
			Queries:     []SearchQuery{query},
		})
	}

	return &SearchPlan{
		GlobalIntent:  FallbackIntent,
		SearchQueries: []SearchQuery{query},
		Workers:       workers,
	}
}
