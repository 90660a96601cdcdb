package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/DhavalSuthar-24/miow-context-master/internal/audit"
	"github.com/DhavalSuthar-24/miow-context-master/internal/contextdata"
	"github.com/DhavalSuthar-24/miow-context-master/internal/plan"
	"github.com/DhavalSuthar-24/miow-context-master/internal/project"
	"github.com/DhavalSuthar-24/miow-context-master/internal/question"
	"github.com/DhavalSuthar-24/miow-context-master/internal/shrink"
	"github.com/DhavalSuthar-24/miow-context-master/internal/ux"
)

// WorkerError records a worker that produced no result.
type WorkerError struct {
	WorkerID string `json:"worker_id" yaml:"worker_id"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Error    string `json:"error" yaml:"error"`
}

// StageCount is the item total after a stage.
type StageCount struct {
	Stage  string                       `json:"stage" yaml:"stage"`
	Items  int                          `json:"items" yaml:"items"`
	Counts map[contextdata.Category]int `json:"counts" yaml:"counts"`
}

// Where a run's critical questions came from.
const (
	QuestionSourceModel     = "model"
	QuestionSourceTemplates = "templates"
)

// Report describes one run.
type Report struct {
	RequestID      string                     `json:"request_id" yaml:"request_id"`
	Task           string                     `json:"task" yaml:"task"`
	Project        *project.Signature         `json:"project,omitempty" yaml:"project,omitempty"`
	TaskType       string                     `json:"task_type" yaml:"task_type"`
	PlanSource     plan.Source                `json:"plan_source" yaml:"plan_source"`
	Plan           *plan.SearchPlan           `json:"plan" yaml:"plan"`
	Waves          [][]string                 `json:"waves" yaml:"waves"`
	WorkerResults  []contextdata.WorkerResult `json:"worker_results" yaml:"worker_results"`
	WorkerErrors   []WorkerError              `json:"worker_errors,omitempty" yaml:"worker_errors,omitempty"`
	Fallbacks      []contextdata.Chunk        `json:"fallbacks,omitempty" yaml:"fallbacks,omitempty"`
	QuestionSource string                     `json:"question_source,omitempty" yaml:"question_source,omitempty"`
	Questions      []question.Result          `json:"questions,omitempty" yaml:"questions,omitempty"`
	Stages         []StageCount               `json:"stages" yaml:"stages"`
	TokensBefore   int                        `json:"tokens_before" yaml:"tokens_before"`
	TokensAfter    int                        `json:"tokens_after" yaml:"tokens_after"`
	Prune          shrink.PruneReport         `json:"prune" yaml:"prune"`
	Audit          *audit.Report              `json:"audit,omitempty" yaml:"audit,omitempty"`
	Context        *contextdata.ContextData   `json:"context" yaml:"context"`
	Duration       time.Duration              `json:"duration" yaml:"duration"`
}

func (r *Report) recordStage(stage string, d *contextdata.ContextData) {
	r.Stages = append(r.Stages, StageCount{Stage: stage, Items: d.Total(), Counts: d.Counts()})
}

// Stage returns the count recorded for stage.
func (r *Report) Stage(stage string) (StageCount, bool) {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s, true
		}
	}
	return StageCount{}, false
}

// Sections implements ux.Sectioned.
func (r *Report) Sections() []ux.Section {
	summary := ux.Section{Title: "Run", Rows: []ux.Row{
		{Key: "request", Value: r.RequestID},
		{Key: "task", Value: r.Task},
		{Key: "task type", Value: r.TaskType},
		{Key: "plan", Value: string(r.PlanSource)},
		{Key: "duration", Value: r.Duration.Round(time.Millisecond).String()},
	}}
	if desc := r.Project.ToDescription(); desc != "" {
		summary.Rows = append(summary.Rows, ux.Row{Key: "project", Value: desc})
	}

	workers := ux.Section{Title: "Workers"}
	for i, w := range r.Waves {
		workers.Rows = append(workers.Rows, ux.Row{Key: fmt.Sprintf("wave %d", i+1), Value: strings.Join(w, ", ")})
	}
	for _, res := range r.WorkerResults {
		workers.Rows = append(workers.Rows, ux.Row{Key: res.WorkerID, Value: fmt.Sprintf("%d chunks", len(res.Chunks)), Tone: ux.ToneOK})
	}
	for _, e := range r.WorkerErrors {
		workers.Rows = append(workers.Rows, ux.Row{Key: e.WorkerID, Value: firstLine(e.Error), Tone: ux.ToneError})
	}

	sections := []ux.Section{summary, workers}

	if len(r.Questions) > 0 {
		qs := ux.Section{Title: "Questions"}
		if r.QuestionSource == QuestionSourceTemplates {
			qs.Title = "Questions (stack templates)"
		}
		for _, q := range r.Questions {
			tone := ux.ToneOK
			switch q.Outcome {
			case question.OutcomePartiallyFound:
				tone = ux.ToneWarn
			case question.OutcomeNotFound:
				tone = ux.ToneError
			}
			qs.Rows = append(qs.Rows, ux.Row{
				Key:   q.Final.Question,
				Value: fmt.Sprintf("%s after %d attempts", q.Outcome, q.Attempts),
				Tone:  tone,
			})
		}
		sections = append(sections, qs)
	}

	stages := ux.Section{Title: "Stages"}
	for _, s := range r.Stages {
		stages.Rows = append(stages.Rows, ux.Row{Key: s.Stage, Value: fmt.Sprintf("%d items", s.Items)})
	}
	stages.Rows = append(stages.Rows, ux.Row{
		Key:   "tokens",
		Value: fmt.Sprintf("%d -> %d (budget %d)", r.TokensBefore, r.TokensAfter, r.Prune.Budget),
	})
	if len(r.Prune.Tiers) > 0 {
		tiers := make([]string, len(r.Prune.Tiers))
		for i, t := range r.Prune.Tiers {
			tiers[i] = string(t)
		}
		stages.Rows = append(stages.Rows, ux.Row{Key: "prune tiers", Value: strings.Join(tiers, ", "), Tone: ux.ToneWarn})
	}
	sections = append(sections, stages)

	if r.Audit != nil && r.Audit.Engaged {
		au := ux.Section{Title: "Audit"}
		for _, c := range r.Audit.Categories {
			tone := ux.ToneNone
			switch c.Outcome {
			case audit.OutcomeOK:
				tone = ux.ToneOK
			case audit.OutcomeError:
				tone = ux.ToneError
			}
			au.Rows = append(au.Rows, ux.Row{
				Key:   string(c.Category),
				Value: fmt.Sprintf("%s %d -> %d", c.Outcome, c.Before, c.After),
				Tone:  tone,
			})
		}
		sections = append(sections, au)
	}

	if r.Context != nil {
		ctx := ux.Section{Title: "Context"}
		for _, c := range contextdata.Categories {
			ctx.Rows = append(ctx.Rows, ux.Row{Key: string(c), Value: fmt.Sprintf("%d", r.Context.Len(c))})
		}
		sections = append(sections, ctx)
	}

	return sections
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
