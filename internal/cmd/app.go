package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/DhavalSuthar-24/miow-context-master/internal/config"
	"github.com/DhavalSuthar-24/miow-context-master/internal/log"
	"github.com/DhavalSuthar-24/miow-context-master/internal/metrics"
	"github.com/DhavalSuthar-24/miow-context-master/internal/project"
	"github.com/DhavalSuthar-24/miow-context-master/internal/provider"
	"github.com/DhavalSuthar-24/miow-context-master/internal/search"
	"github.com/DhavalSuthar-24/miow-context-master/internal/telemetry"
	"github.com/DhavalSuthar-24/miow-context-master/internal/ux"
	"github.com/DhavalSuthar-24/miow-context-master/internal/version"
	"github.com/DhavalSuthar-24/miow-context-master/internal/worker"
)

// app is the per-invocation environment built from flags and config.
type app struct {
	paths      ux.Paths
	configPath string
	cfg        *config.Config
	logger     *log.Logger
	metrics    *metrics.Metrics

	closers []func(context.Context) error
}

var (
	current   *app
	currentMu sync.Mutex
)

// loadApp resolves paths, loads the config file, and starts logging,
// tracing and the metrics endpoint as configured.
func loadApp(cmd *cobra.Command) (*app, error) {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current != nil {
		return current, nil
	}

	paths, err := ux.DiscoverPaths()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	a := &app{paths: paths, configPath: cfgFile}
	if a.configPath == "" {
		a.configPath = paths.ConfigFile()
	}

	a.cfg, err = config.LoadConfig(a.configPath)
	if err != nil {
		return nil, err
	}

	level, format := a.cfg.Log.Level, a.cfg.Log.Format
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	a.logger = log.New(log.FromStrings(level, format, cmd.ErrOrStderr()))
	log.SetDefaultLogger(a.logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tcfg := telemetry.Config{
		ServiceName:    "miow",
		ServiceVersion: version.Version,
		Enabled:        a.cfg.Telemetry.Enabled,
		Endpoint:       a.cfg.Telemetry.Endpoint,
		SampleRate:     a.cfg.Telemetry.SampleRate,
	}
	if traceStdout || a.cfg.Telemetry.Stdout {
		tcfg.Enabled = true
		tcfg.Writer = cmd.ErrOrStderr()
	}
	shutdown, err := telemetry.InitProvider(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, shutdown)

	if a.cfg.Metrics.Enabled {
		reg, m := metrics.NewRegistry()
		errc, err := metrics.Serve(ctx, a.cfg.Metrics.Addr, reg)
		if err != nil {
			return nil, fmt.Errorf("start metrics endpoint on %s: %w", a.cfg.Metrics.Addr, err)
		}
		a.metrics = m
		a.logger.Info("metrics endpoint listening", "addr", a.cfg.Metrics.Addr)
		go func() {
			for err := range errc {
				a.logger.WithError(err).Warn("metrics endpoint stopped")
			}
		}()
	}

	current = a
	return a, nil
}

// closeApp flushes tracing and resets the environment.
func closeApp(ctx context.Context) {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current == nil {
		return
	}
	for _, c := range current.closers {
		if err := c(ctx); err != nil {
			current.logger.WithError(err).Warn("shutdown failed")
		}
	}
	current = nil
}

// llm builds the retrying text-generation client.
func (a *app) llm() (provider.Provider, error) {
	return provider.New(a.cfg.Provider, a.cfg.Retry,
		provider.WithLogger(a.logger),
		provider.WithMetrics(a.metrics))
}

// registry loads the configured worker catalog, then .miow/workers.yaml,
// then the built-in catalog.
func (a *app) registry() (*worker.Registry, error) {
	path := a.cfg.Workers.Catalog
	if path == "" && fileExists(a.paths.CatalogFile()) {
		path = a.paths.CatalogFile()
	}
	if path == "" {
		return worker.Default(), nil
	}
	a.logger.Debug("loading worker catalog", "path", path)
	return worker.LoadCatalog(path)
}

// signature loads the project descriptor, or detects one from the project
// root when none is configured.
func (a *app) signature() (*project.Signature, error) {
	path := a.cfg.Project.Descriptor
	if path == "" && fileExists(a.paths.ProjectFile()) {
		path = a.paths.ProjectFile()
	}
	if path != "" {
		return project.LoadSignature(path)
	}

	root := a.cfg.Project.Root
	if root == "" {
		root = a.paths.ProjectRoot()
	}
	sig, err := project.Detect(root)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("project detected", "root", root, "project", sig.ToDescription())
	return sig, nil
}

// storePath resolves the symbol store location. The default relative path
// is anchored at the discovered .miow directory.
func (a *app) storePath() string {
	p := a.cfg.Search.DBPath
	if p == "" || p == config.DefaultConfig().Search.DBPath {
		return a.paths.GraphDB()
	}
	return p
}

// openStore opens the symbol store. A missing store is not created unless
// create is set, and yields a nil store.
func (a *app) openStore(create bool) (*search.Store, error) {
	path := a.storePath()
	if !create && !fileExists(path) {
		return nil, nil
	}
	return search.Open(path)
}

// output writes v in the selected --format.
func output(cmd *cobra.Command, v any) error {
	return outputTo(cmd.OutOrStdout(), v)
}

func outputTo(w io.Writer, v any) error {
	f, err := ux.NewFormatter(outFormat, &ux.FormatterOptions{Writer: w, NoColor: noColor})
	if err != nil {
		return err
	}
	return f.Format(v)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func writeJSON(w io.Writer, v any) error {
	f, err := ux.NewFormatter("json", &ux.FormatterOptions{Writer: w})
	if err != nil {
		return err
	}
	return f.Format(v)
}
