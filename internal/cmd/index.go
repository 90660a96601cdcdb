package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
	"github.com/DhavalSuthar-24/miow-context-master/internal/telemetry"
	"github.com/DhavalSuthar-24/miow-context-master/internal/ux"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Load symbols into the symbol store",
	Long: `Load symbols exported by an external parser into the SQLite symbol store
used by search and the question loop.

Each file is a JSON array of symbols:
  [{"name": "Button", "kind": "component", "file_path": "src/Button.tsx",
    "content": "...", "language": "typescript", "start_line": 1, "end_line": 20}]

Re-indexing a symbol with the same file, name and start line updates it.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var indexSymbols []string

func init() {
	indexCmd.Flags().StringSliceVar(&indexSymbols, "symbols", nil, "symbols JSON file (repeatable)")
	_ = indexCmd.MarkFlagRequired("symbols")

	rootCmd.AddCommand(indexCmd)
}

type indexView struct {
	Store   string `json:"store" yaml:"store"`
	Indexed int    `json:"indexed" yaml:"indexed"`
	Total   int    `json:"total" yaml:"total"`
}

func (v indexView) Sections() []ux.Section {
	return []ux.Section{{Title: "Index", Rows: []ux.Row{
		{Key: "store", Value: v.Store},
		{Key: "indexed", Value: fmt.Sprintf("%d", v.Indexed), Tone: ux.ToneOK},
		{Key: "total", Value: fmt.Sprintf("%d", v.Total)},
	}}}
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	store, err := a.openStore(true)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, span := telemetry.StartStageSpan(cmd.Context(), "index", attribute.Int("files", len(indexSymbols)))
	defer span.End()

	view := indexView{Store: store.Path()}
	for _, path := range indexSymbols {
		symbols, err := search.LoadSymbolsFile(path)
		if err != nil {
			return ux.EnhanceError(err)
		}
		n, err := store.Index(ctx, symbols)
		if err != nil {
			telemetry.RecordError(span, err)
			return err
		}
		a.logger.Info("symbols indexed", "file", path, "indexed", n, "skipped", len(symbols)-n)
		view.Indexed += n
	}

	if view.Total, err = store.Count(ctx); err != nil {
		return err
	}
	telemetry.RecordSuccess(span, attribute.Int("indexed", view.Indexed))
	return output(cmd, view)
}
