package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// Global flags shared by every command.
var (
	cfgFile   string
	outFormat string
	logLevel  string
	logFormat string
	noColor   bool

	traceStdout bool
)

var rootCmd = &cobra.Command{
	Use:   "miow",
	Short: "Context retrieval for coding agents",
	Long: `miow assembles the code context a coding agent needs for a task.

It plans which specialized workers to run, searches the indexed symbol
graph, asks and verifies critical questions about the codebase, and
shrinks the result to a token budget.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt.
func ExecuteContext(ctx context.Context) error {
	defer closeApp(context.WithoutCancel(ctx))
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .miow/config.yaml in the project)")
	rootCmd.PersistentFlags().StringVarP(&outFormat, "format", "f", "text", "output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&traceStdout, "trace-stdout", false, "write trace spans to stderr as JSON (overrides telemetry.stdout)")
}
