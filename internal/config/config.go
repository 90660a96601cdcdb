// Package config loads the miow configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
	"github.com/DhavalSuthar-24/miow-context-master/internal/provider"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = ".miow/config.yaml"

// Config is the complete configuration.
type Config struct {
	Provider  provider.Config      `yaml:"provider"`
	Retry     provider.RetryPolicy `yaml:"retry"`
	Pipeline  PipelineConfig       `yaml:"pipeline"`
	Audit     AuditConfig          `yaml:"audit"`
	Pruner    PrunerConfig         `yaml:"pruner"`
	Search    SearchConfig         `yaml:"search"`
	Workers   WorkersConfig        `yaml:"workers,omitempty"`
	Project   ProjectConfig        `yaml:"project,omitempty"`
	Log       LogConfig            `yaml:"log"`
	Metrics   MetricsConfig        `yaml:"metrics"`
	Telemetry TelemetryConfig      `yaml:"telemetry"`
}

// PipelineConfig controls one context run.
type PipelineConfig struct {
	TokenBudget     int  `yaml:"token_budget"`
	MaxConcurrency  int  `yaml:"max_concurrency"`
	MaxQuestions    int  `yaml:"max_questions"`
	QuestionRetries int  `yaml:"question_retries"`
	EnableQuestions bool `yaml:"enable_questions"`
	EnableAudit     bool `yaml:"enable_audit"`
}

// AuditConfig holds the auditor gates.
type AuditConfig struct {
	GlobalThreshold   int `yaml:"global_threshold"`
	CategoryThreshold int `yaml:"category_threshold"`
	PreviewChars      int `yaml:"preview_chars"`
}

// PrunerConfig holds the budget pruner cap.
type PrunerConfig struct {
	MaxItemsPerCategory int `yaml:"max_items_per_category"`
}

// SearchConfig locates the symbol store.
type SearchConfig struct {
	DBPath   string `yaml:"db_path"`
	SimilarK int    `yaml:"similar_k"`
}

// WorkersConfig points at an optional worker catalog file.
type WorkersConfig struct {
	Catalog string `yaml:"catalog,omitempty"`
}

// ProjectConfig points at an optional project descriptor; without one the
// project root is inspected.
type ProjectConfig struct {
	Root       string `yaml:"root,omitempty"`
	Descriptor string `yaml:"descriptor,omitempty"`
}

// LogConfig selects level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TelemetryConfig enables trace export.
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint,omitempty"`
	SampleRate float64 `yaml:"sample_rate"`

	// Stdout writes finished spans to stderr as JSON; it implies Enabled.
	Stdout bool `yaml:"stdout,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: provider.Config{
			Name:        provider.NameGemini,
			Temperature: 0.2,
			Timeout:     120 * time.Second,
		},
		Retry: provider.DefaultRetryPolicy(),
		Pipeline: PipelineConfig{
			TokenBudget:     8000,
			MaxConcurrency:  1,
			MaxQuestions:    5,
			QuestionRetries: 3,
			EnableQuestions: true,
			EnableAudit:     true,
		},
		Audit: AuditConfig{
			GlobalThreshold:   12,
			CategoryThreshold: 8,
			PreviewChars:      320,
		},
		Pruner: PrunerConfig{MaxItemsPerCategory: 10},
		Search: SearchConfig{
			DBPath:   filepath.Join(".miow", "graph.db"),
			SimilarK: 10,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9464",
		},
		Telemetry: TelemetryConfig{SampleRate: 1.0},
	}
}

// LoadConfig reads path over the defaults. Environment variables in the
// file are expanded before decoding. A missing file yields the defaults.
// The API key falls back to MIOW_API_KEY and then the provider's own
// variable (GEMINI_API_KEY or OPENAI_API_KEY).
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, errors.NewConfigInvalidError(path, fmt.Errorf("unmarshal config: %w", err))
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, errors.NewConfigInvalidError(path, fmt.Errorf("read config file: %w", err))
	}

	cfg.applyEnv()
	if err := ValidateConfig(cfg); err != nil {
		return nil, errors.NewConfigInvalidError(path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Provider.APIKey != "" {
		return
	}
	keys := []string{"MIOW_API_KEY"}
	switch strings.ToLower(c.Provider.Name) {
	case provider.NameOpenAI:
		keys = append(keys, "OPENAI_API_KEY")
	default:
		keys = append(keys, "GEMINI_API_KEY")
	}
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			c.Provider.APIKey = v
			return
		}
	}
}

// ValidateConfig checks value ranges. It does not require an API key so
// offline commands keep working.
func ValidateConfig(c *Config) error {
	switch strings.ToLower(c.Provider.Name) {
	case "", provider.NameGemini, provider.NameOpenAI:
	default:
		return fmt.Errorf("provider.name must be gemini or openai, got %q", c.Provider.Name)
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return fmt.Errorf("provider.temperature must be between 0 and 2")
	}
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider.timeout must be non-negative")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be non-negative")
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxJitter < 0 {
		return fmt.Errorf("retry delays must be non-negative")
	}
	if c.Pipeline.TokenBudget < 0 {
		return fmt.Errorf("pipeline.token_budget must be non-negative")
	}
	if c.Pipeline.MaxConcurrency < 1 {
		return fmt.Errorf("pipeline.max_concurrency must be at least 1")
	}
	if c.Pipeline.MaxQuestions < 0 {
		return fmt.Errorf("pipeline.max_questions must be non-negative")
	}
	if c.Pipeline.QuestionRetries < 1 {
		return fmt.Errorf("pipeline.question_retries must be at least 1")
	}
	if c.Audit.GlobalThreshold < 0 || c.Audit.CategoryThreshold < 0 {
		return fmt.Errorf("audit thresholds must be non-negative")
	}
	if c.Audit.PreviewChars < 1 {
		return fmt.Errorf("audit.preview_chars must be positive")
	}
	if c.Pruner.MaxItemsPerCategory < 1 {
		return fmt.Errorf("pruner.max_items_per_category must be positive")
	}
	if c.Search.SimilarK < 1 {
		return fmt.Errorf("search.similar_k must be positive")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be between 0 and 1")
	}
	return nil
}

// SaveConfig writes c to path as YAML, creating parent directories.
func SaveConfig(c *Config, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Provider.APIKey != "" {
		out.Provider.APIKey = "***"
	}
	return &out
}
