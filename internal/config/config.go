// Package config loads docimp configuration from defaults, the project
// config file, environment variables, and CLI flags.
package config

import (
	"fmt"

	"github.com/docimp/docimp/internal/core"
)

// Config is the merged docimp configuration.
type Config struct {
	// ProjectID identifies this project in logs; minted by `docimp init`.
	ProjectID string `mapstructure:"project_id" yaml:"project_id"`

	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Analyze AnalyzeConfig `mapstructure:"analyze" yaml:"analyze"`
	Audit   AuditConfig   `mapstructure:"audit" yaml:"audit"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // auto, text, json
}

// HistoryConfig holds snapshot retention bounds. A snapshot is pruned when
// it violates either bound.
type HistoryConfig struct {
	MaxCount   int `mapstructure:"max_count" yaml:"max_count"`
	MaxAgeDays int `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// AnalyzeConfig controls which files the analyze stage fingerprints.
type AnalyzeConfig struct {
	Extensions  []string `mapstructure:"extensions" yaml:"extensions"`
	ExcludeDirs []string `mapstructure:"exclude_dirs" yaml:"exclude_dirs"`
	Concurrency int      `mapstructure:"concurrency" yaml:"concurrency"`
}

// AuditConfig controls documentation-coverage thresholds.
type AuditConfig struct {
	// MinDocRatio is the minimum comment-to-code line ratio before a file
	// is flagged as under-documented.
	MinDocRatio float64 `mapstructure:"min_doc_ratio" yaml:"min_doc_ratio"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		History: HistoryConfig{
			MaxCount:   50,
			MaxAgeDays: 30,
		},
		Analyze: AnalyzeConfig{
			Extensions:  []string{".go", ".ts", ".js", ".py", ".md"},
			ExcludeDirs: []string{".git", ".docimp", "node_modules", "vendor"},
		},
		Audit: AuditConfig{
			MinDocRatio: 0.1,
		},
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if c.History.MaxCount < 0 {
		return core.ErrValidation(core.CodeInvalidConfig,
			fmt.Sprintf("history.max_count must be non-negative, got %d", c.History.MaxCount))
	}
	if c.History.MaxAgeDays < 0 {
		return core.ErrValidation(core.CodeInvalidConfig,
			fmt.Sprintf("history.max_age_days must be non-negative, got %d", c.History.MaxAgeDays))
	}
	if c.Audit.MinDocRatio < 0 || c.Audit.MinDocRatio > 1 {
		return core.ErrValidation(core.CodeInvalidConfig,
			fmt.Sprintf("audit.min_doc_ratio must be in [0, 1], got %g", c.Audit.MinDocRatio))
	}
	switch c.Log.Format {
	case "", "auto", "text", "json":
	default:
		return core.ErrValidation(core.CodeInvalidConfig,
			fmt.Sprintf("log.format must be auto, text, or json, got %q", c.Log.Format))
	}
	return nil
}
