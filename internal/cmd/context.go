package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DhavalSuthar-24/miow-context-master/internal/pipeline"
	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
)

var contextCmd = &cobra.Command{
	Use:   "context <task>",
	Short: "Assemble code context for a task",
	Long: `Run the full retrieval pipeline for a task: plan workers, run them in
dependency waves, search the symbol store, answer critical questions and
shrink the result to the token budget.

Examples:
  miow context "add a logout button to the navbar"
  miow context --budget 4000 --no-audit "fix the login redirect"
  miow context -f json "explain the payment flow" > context.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runContext,
}

var (
	contextBudget      int
	contextConcurrency int
	contextNoQuestions bool
	contextNoAudit     bool
	contextOut         string
)

func init() {
	contextCmd.Flags().IntVar(&contextBudget, "budget", 0, "token budget (overrides pipeline.token_budget)")
	contextCmd.Flags().IntVar(&contextConcurrency, "concurrency", 0, "workers run at once within a wave (overrides pipeline.max_concurrency)")
	contextCmd.Flags().BoolVar(&contextNoQuestions, "no-questions", false, "skip the critical question stage")
	contextCmd.Flags().BoolVar(&contextNoAudit, "no-audit", false, "skip the context audit")
	contextCmd.Flags().StringVarP(&contextOut, "out", "o", "", "also write the full report as JSON to this file")

	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	settings := pipeline.SettingsFromConfig(a.cfg)
	if contextBudget > 0 {
		settings.TokenBudget = contextBudget
	}
	if contextConcurrency > 0 {
		settings.MaxConcurrency = contextConcurrency
	}
	if contextNoQuestions {
		settings.EnableQuestions = false
	}
	if contextNoAudit {
		settings.EnableAudit = false
	}

	p, closeStore, err := a.newPipeline(settings)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := p.Run(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	if contextOut != "" {
		f, err := os.Create(contextOut)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		if err := writeJSON(f, report); err != nil {
			return fmt.Errorf("write report file: %w", err)
		}
	}

	return output(cmd, report)
}

// newPipeline wires a pipeline from the app environment. The returned
// function closes the symbol store.
func (a *app) newPipeline(settings pipeline.Settings) (*pipeline.Pipeline, func(), error) {
	llm, err := a.llm()
	if err != nil {
		return nil, nil, err
	}
	reg, err := a.registry()
	if err != nil {
		return nil, nil, err
	}
	sig, err := a.signature()
	if err != nil {
		return nil, nil, err
	}

	store, err := a.openStore(false)
	if err != nil {
		return nil, nil, err
	}
	var backend search.Backend
	closeStore := func() {}
	if store != nil {
		backend = store
		closeStore = func() { _ = store.Close() }
	} else {
		a.logger.Warn("no symbol store found, search and questions are skipped", "path", a.storePath())
	}

	p, err := pipeline.New(llm, reg, backend, sig, settings,
		pipeline.WithLogger(a.logger),
		pipeline.WithMetrics(a.metrics))
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return p, closeStore, nil
}
