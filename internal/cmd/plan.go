package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DhavalSuthar-24/miow-context-master/internal/plan"
	"github.com/DhavalSuthar-24/miow-context-master/internal/ux"
	"github.com/DhavalSuthar-24/miow-context-master/internal/worker"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create or inspect search plans",
	Long: `Create a search plan for a task without running any workers, or inspect a
saved plan.

Use 'miow plan create' to ask the model for a plan.
Use 'miow plan show' to schedule a saved plan against the worker catalog.`,
}

var planCreateCmd = &cobra.Command{
	Use:   "create <task>",
	Short: "Plan workers and queries for a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlanCreate,
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan.json>",
	Short: "Schedule a saved plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanShow,
}

var planOut string

func init() {
	planCreateCmd.Flags().StringVarP(&planOut, "out", "o", "", "save the plan as JSON to this file")

	planCmd.AddCommand(planCreateCmd)
	planCmd.AddCommand(planShowCmd)
	rootCmd.AddCommand(planCmd)
}

// planView is a plan with its schedule split into waves.
type planView struct {
	TaskType    string           `json:"task_type,omitempty" yaml:"task_type,omitempty"`
	Source      plan.Source      `json:"source,omitempty" yaml:"source,omitempty"`
	Recommended []string         `json:"recommended,omitempty" yaml:"recommended,omitempty"`
	Plan        *plan.SearchPlan `json:"plan" yaml:"plan"`
	Waves       [][]string       `json:"waves" yaml:"waves"`
}

func newPlanView(p *plan.SearchPlan, reg *worker.Registry) planView {
	return planView{Plan: p, Waves: plan.Waves(p.ExecutionSchedule, plan.RegistryLookup(reg))}
}

func (v planView) Sections() []ux.Section {
	summary := ux.Section{Title: "Plan", Rows: []ux.Row{
		{Key: "intent", Value: v.Plan.GlobalIntent},
	}}
	if v.TaskType != "" {
		summary.Rows = append(summary.Rows,
			ux.Row{Key: "task type", Value: v.TaskType},
			ux.Row{Key: "source", Value: string(v.Source)},
			ux.Row{Key: "recommended", Value: strings.Join(v.Recommended, ", ")})
	}
	summary.Rows = append(summary.Rows, ux.Row{Key: "schedule", Value: strings.Join(v.Plan.ExecutionSchedule, " -> ")})
	for i, w := range v.Waves {
		summary.Rows = append(summary.Rows, ux.Row{Key: fmt.Sprintf("wave %d", i+1), Value: strings.Join(w, ", ")})
	}

	queries := ux.Section{Title: "Queries"}
	for _, q := range v.Plan.SearchQueries {
		queries.Rows = append(queries.Rows, ux.Row{Key: q.KindOrAny(), Value: q.Query})
	}
	for _, w := range v.Plan.Workers {
		for _, q := range w.Queries {
			queries.Rows = append(queries.Rows, ux.Row{Key: w.WorkerID, Value: q.Query})
		}
	}
	return []ux.Section{summary, queries}
}

func runPlanCreate(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	llm, err := a.llm()
	if err != nil {
		return err
	}
	reg, err := a.registry()
	if err != nil {
		return err
	}
	sig, err := a.signature()
	if err != nil {
		return err
	}

	planner := plan.NewPlanner(llm, reg, plan.WithLogger(a.logger), plan.WithMetrics(a.metrics))
	result, err := planner.PlanWithDetails(cmd.Context(), strings.Join(args, " "), sig.ToDescription())
	if err != nil {
		return err
	}

	if planOut != "" {
		if err := plan.SavePlan(result.Plan, planOut); err != nil {
			return err
		}
		a.logger.Info("plan saved", "path", planOut)
	}

	view := newPlanView(result.Plan, reg)
	view.TaskType = result.TaskType
	view.Source = result.Source
	view.Recommended = result.Recommended
	return output(cmd, view)
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	reg, err := a.registry()
	if err != nil {
		return err
	}

	p, err := plan.LoadPlan(args[0])
	if err != nil {
		return ux.EnhanceError(err)
	}
	p.ExecutionSchedule = plan.BuildExecutionPlan(p.WorkerIDs(), plan.RegistryLookup(reg))
	return output(cmd, newPlanView(p, reg))
}
