package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
	"github.com/DhavalSuthar-24/miow-context-master/internal/question"
	"github.com/DhavalSuthar-24/miow-context-master/internal/ux"
)

var questionsCmd = &cobra.Command{
	Use:   "questions <task>",
	Short: "Generate and answer critical questions for a task",
	Long: `Ask the model which facts about the codebase a task depends on, then
search the symbol store for each one, verifying and reformulating the
query until the answer is found or the attempts run out.

Requires a symbol store built with 'miow index'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuestions,
}

var (
	questionsMax     int
	questionsRetries int
)

func init() {
	questionsCmd.Flags().IntVar(&questionsMax, "max", 0, "maximum questions to run (overrides pipeline.max_questions)")
	questionsCmd.Flags().IntVar(&questionsRetries, "retries", 0, "attempts per question (overrides pipeline.question_retries)")

	rootCmd.AddCommand(questionsCmd)
}

type questionsView struct {
	Results []question.Result `json:"results" yaml:"results"`
}

func (v questionsView) Sections() []ux.Section {
	var sections []ux.Section
	for i, r := range v.Results {
		tone := ux.ToneOK
		switch r.Outcome {
		case question.OutcomePartiallyFound:
			tone = ux.ToneWarn
		case question.OutcomeNotFound:
			tone = ux.ToneError
		}
		s := ux.Section{Title: fmt.Sprintf("%d. %s", i+1, r.Final.Question), Rows: []ux.Row{
			{Key: "priority", Value: string(r.Final.Priority)},
			{Key: "outcome", Value: string(r.Outcome), Tone: tone},
			{Key: "attempts", Value: fmt.Sprintf("%d", r.Attempts)},
			{Key: "query", Value: r.Final.SearchQuery},
		}}
		if r.Answer != nil {
			for _, sym := range r.Answer.Symbols {
				s.Rows = append(s.Rows, ux.Row{Key: sym.Kind, Value: fmt.Sprintf("%s (%s)", sym.Name, sym.FilePath)})
			}
		}
		sections = append(sections, s)
	}
	return sections
}

func runQuestions(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	llm, err := a.llm()
	if err != nil {
		return err
	}
	sig, err := a.signature()
	if err != nil {
		return err
	}
	store, err := a.openStore(false)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.NewSearchStoreError(a.storePath(), fmt.Errorf("symbol store does not exist"))
	}
	defer store.Close()

	ctx := cmd.Context()
	qs, err := question.Generate(ctx, llm, strings.Join(args, " "), sig.Language, sig.Framework)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.WithError(err).Warn("question generation failed, using stack templates")
		qs = question.FromTemplates(sig.QuestionTemplates())
	}

	limit := a.cfg.Pipeline.MaxQuestions
	if questionsMax > 0 {
		limit = questionsMax
	}
	if limit > 0 && len(qs) > limit {
		qs = qs[:limit]
	}
	retries := a.cfg.Pipeline.QuestionRetries
	if questionsRetries > 0 {
		retries = questionsRetries
	}

	loop := question.NewLoop(llm, store,
		question.WithSimilarity(store),
		question.WithMaxRetries(retries),
		question.WithSimilarK(a.cfg.Search.SimilarK),
		question.WithLogger(a.logger),
		question.WithMetrics(a.metrics))
	results, err := loop.RunBatch(ctx, qs)
	if err != nil {
		return err
	}
	return output(cmd, questionsView{Results: results})
}
