package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
	"github.com/DhavalSuthar-24/miow-context-master/internal/plan"
	"github.com/DhavalSuthar-24/miow-context-master/internal/ux"
	"github.com/DhavalSuthar-24/miow-context-master/internal/worker"
)

// runCLI executes the root command in dir with fresh flag values.
func runCLI(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(dir)
	t.Setenv("MIOW_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfgFile, outFormat, logLevel, logFormat, noColor = "", "text", "error", "", true
	traceStdout = false
	indexSymbols = nil
	configInitForce = false
	versionVerbose = false
	workersCategory, workersPriority, workersTaskType = "", "", ""

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "miow dev\n", out)

	out, _, err = runCLI(t, t.TempDir(), "version", "--format", "json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestConfigInitValidatePath(t *testing.T) {
	dir := t.TempDir()

	out, _, err := runCLI(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(ux.DirName, "config.yaml"))

	out, stderr, err := runCLI(t, dir, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, stderr, "no API key")

	out, _, err = runCLI(t, dir, "config", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), filepath.Join(ux.DirName, "config.yaml")))

	_, _, err = runCLI(t, dir, "config", "init")
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid))
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ux.DirName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ux.DirName, "config.yaml"),
		[]byte("pipeline:\n  max_concurrency: 0\n"), 0o600))

	_, _, err := runCLI(t, dir, "config", "validate")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid))
	assert.Contains(t, err.Error(), "max_concurrency")
}

func TestIndexCommand(t *testing.T) {
	dir := t.TempDir()
	symbols := `[
		{"name": "Button", "kind": "component", "file_path": "src/Button.tsx", "content": "export function Button() {}"},
		{"name": "useAuth", "kind": "hook", "file_path": "src/auth.ts", "content": "export function useAuth() {}"},
		{"name": "", "file_path": "src/skip.ts"}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "symbols.json"), []byte(symbols), 0o600))

	out, _, err := runCLI(t, dir, "index", "--symbols", "symbols.json", "--format", "json")
	require.NoError(t, err)

	var view indexView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 2, view.Indexed)
	assert.Equal(t, 2, view.Total)
	assert.FileExists(t, filepath.Join(dir, ux.DirName, "graph.db"))
}

func TestIndexTraceStdout(t *testing.T) {
	dir := t.TempDir()
	symbols := `[{"name": "Button", "kind": "component", "file_path": "src/Button.tsx"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "symbols.json"), []byte(symbols), 0o600))

	_, stderr, err := runCLI(t, dir, "index", "--symbols", "symbols.json")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "pipeline.index")

	_, stderr, err = runCLI(t, dir, "index", "--symbols", "symbols.json", "--trace-stdout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "pipeline.index")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ux.DirName, "config.yaml"),
		[]byte("telemetry:\n  stdout: true\n"), 0o600))
	_, stderr, err = runCLI(t, dir, "index", "--symbols", "symbols.json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "pipeline.index")
}

func TestWorkersYAMLIsACatalog(t *testing.T) {
	out, _, err := runCLI(t, t.TempDir(), "workers", "--format", "yaml")
	require.NoError(t, err)

	var file worker.CatalogFile
	require.NoError(t, yaml.Unmarshal([]byte(out), &file))
	reg, err := worker.NewRegistry(file.Workers, file.Recommendations)
	require.NoError(t, err)

	builtin := worker.Default()
	assert.Equal(t, builtin.Keys(), reg.Keys())
	assert.Equal(t, builtin.RecommendedFor("security"), reg.RecommendedFor("security"))
	assert.Equal(t, builtin.RecommendedFor("unknown"), reg.RecommendedFor("unknown"))
}

func TestSelectWorkers(t *testing.T) {
	reg := worker.Default()

	view := selectWorkers(reg, "", "", "security")
	var keys []string
	for _, s := range view.Workers {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, reg.RecommendedFor("security"), keys)
	assert.Nil(t, view.Recommendations)

	view = selectWorkers(reg, string(worker.CategoryFrontend), "", "")
	require.NotEmpty(t, view.Workers)
	for _, s := range view.Workers {
		assert.Equal(t, worker.CategoryFrontend, s.Category)
	}

	view = selectWorkers(reg, "", string(worker.PriorityCritical), "")
	for _, s := range view.Workers {
		assert.Equal(t, worker.PriorityCritical, s.Priority)
	}

	view = selectWorkers(reg, "", "", "")
	assert.Len(t, view.Workers, reg.Len())
	assert.Contains(t, view.Recommendations, worker.DefaultRecommendationKey)
}

func TestProjectCommandDetects(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"),
		[]byte("module example.com/tool\n\ngo 1.24\n\nrequire github.com/spf13/cobra v1.10.1\n"), 0o600))

	out, _, err := runCLI(t, dir, "project", "--format", "json")
	require.NoError(t, err)

	var sig map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &sig))
	assert.Equal(t, "go", sig["language"])
	assert.Equal(t, "Cobra CLI", sig["framework"])

	out, _, err = runCLI(t, dir, "project")
	require.NoError(t, err)
	assert.Contains(t, out, "Language: go, Framework: Cobra CLI")
}

func TestContextRequiresAPIKey(t *testing.T) {
	_, _, err := runCLI(t, t.TempDir(), "context", "add a button")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeBackendConfig))
}

func TestPlanShowSchedulesSavedPlan(t *testing.T) {
	dir := t.TempDir()
	saved := &plan.SearchPlan{
		GlobalIntent: "add_login",
		Workers: []plan.WorkerPlan{
			{WorkerID: worker.KeyFrontendScanner, Queries: []plan.SearchQuery{{Query: "LoginForm"}}},
			{WorkerID: worker.KeyStackDetector},
		},
	}
	require.NoError(t, plan.SavePlan(saved, filepath.Join(dir, "plan.json")))

	out, _, err := runCLI(t, dir, "plan", "show", "plan.json", "--format", "json")
	require.NoError(t, err)

	var view planView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "add_login", view.Plan.GlobalIntent)
	assert.ElementsMatch(t, []string{worker.KeyFrontendScanner, worker.KeyStackDetector}, view.Plan.ExecutionSchedule)
	assert.NotEmpty(t, view.Waves)
}

func TestPlanViewSections(t *testing.T) {
	view := planView{
		TaskType: "feature",
		Source:   plan.SourceFallback,
		Plan: &plan.SearchPlan{
			GlobalIntent:      "fallback_general_search",
			SearchQueries:     []plan.SearchQuery{{Query: "login page"}},
			ExecutionSchedule: []string{"a", "b"},
		},
		Waves: [][]string{{"a"}, {"b"}},
	}

	out := ux.RenderSections(view.Sections(), true)
	assert.Contains(t, out, "fallback_general_search")
	assert.Contains(t, out, "a -> b")
	assert.Contains(t, out, "any:")
	assert.Contains(t, out, "login page")
}
