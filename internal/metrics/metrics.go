package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the retrieval pipeline.
// Recording methods are safe to call on a nil *Metrics.
type Metrics struct {
	// Text-generation backend metrics
	LLMCalls    *prometheus.CounterVec
	LLMRetries  *prometheus.CounterVec
	LLMLatency  *prometheus.HistogramVec
	LLMAttempts *prometheus.HistogramVec

	// Planning metrics
	Plans        *prometheus.CounterVec
	PlanWorkers  prometheus.Histogram
	PlanDuration prometheus.Histogram

	// Worker execution metrics
	WorkerExecutions *prometheus.CounterVec
	WorkerDuration   *prometheus.HistogramVec
	WorkerChunks     *prometheus.CounterVec

	// Question loop metrics
	QuestionOutcomes *prometheus.CounterVec
	QuestionAttempts prometheus.Histogram

	// Search backend metrics
	SearchCalls *prometheus.CounterVec

	// Shrink stage metrics
	ItemsRemoved  *prometheus.CounterVec
	PruneTiers    *prometheus.CounterVec
	AuditOutcomes *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		LLMCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miow_llm_calls_total",
				Help: "Total number of text-generation calls after retries",
			},
			[]string{"provider", "success"},
		),
		LLMRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miow_llm_retries_total",
				Help: "Total number of retried text-generation attempts",
			},
			[]string{"provider"},
		),
		LLMLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "miow_llm_latency_seconds",
				Help:    "Text-generation call latency in seconds, including retries",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0, 120.0},
			},
			[]string{"provider"},
		),
		LLMAttempts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "miow_llm_attempts",
				Help:    "Attempts used per text-generation call",
				Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
			},
			[]string{"provider"},
		),

		Plans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miow_plans_total",
				Help: "Total number of search plans by task type and source",
			},
			[]string{"task_type", "source"},
		),
		PlanWorkers: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "miow_plan_workers",
				Help:    "Number of workers per plan",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
			},
		),
		PlanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "miow_plan_duration_seconds",
				Help:    "Planning duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		WorkerExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miow_worker_executions_total",
				Help: "Total number of worker executions",
			},
			[]string{"worker", "outcome"},
		),
		WorkerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "miow_worker_duration_seconds",
				Help:    "Worker execution duration in seconds",
				Buckets: []float64{0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"worker"},
		),
		WorkerChunks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miow_worker_chunks_total",
				Help: "Total number of chunks produced by workers",
			},
			[]string{"worker", "fallback"},
		),

		QuestionOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miow_question_outcomes_total",
				Help: "Critical question outcomes",
			},
			[]string{"priority", "outcome"},
		),
		QuestionAttempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "miow_question_attempts",
				Help:    "Search attempts used per critical question",
				Buckets: []float64{1, 2, 3, 4, 5},
			},
		),

		SearchCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miow_search_calls_total",
				Help: "Total number of search backend calls",
			},
			[]string{"operation", "success"},
		),

		ItemsRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miow_shrink_items_removed_total",
				Help: "Items removed by each shrink stage",
			},
			[]string{"stage"},
		),
		PruneTiers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miow_prune_tiers_total",
				Help: "Number of times each prune tier ran",
			},
			[]string{"tier"},
		),
		AuditOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miow_audit_outcomes_total",
				Help: "Audit outcomes per category",
			},
			[]string{"category", "outcome"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miow_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordLLMCall records one text-generation call after its retry loop.
func (m *Metrics) RecordLLMCall(provider string, success bool, attempts int, d time.Duration) {
	if m == nil {
		return
	}
	m.LLMCalls.WithLabelValues(provider, strconv.FormatBool(success)).Inc()
	m.LLMAttempts.WithLabelValues(provider).Observe(float64(attempts))
	m.LLMLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordLLMRetry records one retried attempt.
func (m *Metrics) RecordLLMRetry(provider string) {
	if m == nil {
		return
	}
	m.LLMRetries.WithLabelValues(provider).Inc()
}

// RecordPlan records a produced plan. source is "model" or "fallback".
func (m *Metrics) RecordPlan(taskType, source string, workers int, d time.Duration) {
	if m == nil {
		return
	}
	m.Plans.WithLabelValues(taskType, source).Inc()
	m.PlanWorkers.Observe(float64(workers))
	m.PlanDuration.Observe(d.Seconds())
}

// RecordWorker records one worker execution.
func (m *Metrics) RecordWorker(worker, outcome string, chunks int, fallback bool, d time.Duration) {
	if m == nil {
		return
	}
	m.WorkerExecutions.WithLabelValues(worker, outcome).Inc()
	m.WorkerDuration.WithLabelValues(worker).Observe(d.Seconds())
	if chunks > 0 {
		m.WorkerChunks.WithLabelValues(worker, strconv.FormatBool(fallback)).Add(float64(chunks))
	}
}

// RecordQuestion records the terminal outcome of a critical question.
func (m *Metrics) RecordQuestion(priority, outcome string, attempts int) {
	if m == nil {
		return
	}
	m.QuestionOutcomes.WithLabelValues(priority, outcome).Inc()
	m.QuestionAttempts.Observe(float64(attempts))
}

// RecordSearch records one search backend call.
func (m *Metrics) RecordSearch(operation string, success bool) {
	if m == nil {
		return
	}
	m.SearchCalls.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
}

// RecordRemoved records items removed by a shrink stage.
func (m *Metrics) RecordRemoved(stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ItemsRemoved.WithLabelValues(stage).Add(float64(n))
}

// RecordPruneTier records that a prune tier ran.
func (m *Metrics) RecordPruneTier(tier string) {
	if m == nil {
		return
	}
	m.PruneTiers.WithLabelValues(tier).Inc()
}

// RecordAudit records the audit outcome for a category.
func (m *Metrics) RecordAudit(category, outcome string) {
	if m == nil {
		return
	}
	m.AuditOutcomes.WithLabelValues(category, outcome).Inc()
}

// RecordError records an error by its structured code.
func (m *Metrics) RecordError(code, component string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	m.Errors.WithLabelValues(code, component).Inc()
}
