package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/DhavalSuthar-24/miow-context-master/internal/project"
	"github.com/DhavalSuthar-24/miow-context-master/internal/ux"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Show the project description sent to the model",
	Long: `Show the project signature used in prompts. It comes from the configured
descriptor, .miow/project.toml, or detection of marker files (package.json,
go.mod, Cargo.toml, pyproject.toml) at the project root.`,
	Args: cobra.NoArgs,
	RunE: runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)
}

type projectView struct {
	*project.Signature
}

func (v projectView) Sections() []ux.Section {
	s := v.Signature
	rows := []ux.Row{
		{Key: "language", Value: s.Language},
		{Key: "framework", Value: s.Framework},
		{Key: "package manager", Value: s.PackageManager},
		{Key: "ui library", Value: s.UILibrary},
		{Key: "validation", Value: s.ValidationLibrary},
		{Key: "auth", Value: s.AuthLibrary},
		{Key: "styling", Value: strings.Join(s.Styling, ", ")},
		{Key: "features", Value: strings.Join(s.Features, ", ")},
	}
	var kept []ux.Row
	for _, r := range rows {
		if r.Value != "" {
			kept = append(kept, r)
		}
	}
	return []ux.Section{
		{Title: "Project", Rows: kept},
		{Title: "Description", Rows: []ux.Row{{Key: "prompt", Value: s.ToDescription()}}},
	}
}

func runProject(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	sig, err := a.signature()
	if err != nil {
		return err
	}
	if outFormat == "text" || outFormat == "" {
		return output(cmd, projectView{sig})
	}
	return output(cmd, sig)
}
