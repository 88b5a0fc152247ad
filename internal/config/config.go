// Package config provides hierarchical configuration loading for the triage
// evaluation harness. Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the harness.
type Config struct {
	Model      Model      `yaml:"model"`
	Runtime    Runtime    `yaml:"runtime"`
	Cache      Cache      `yaml:"cache"`
	Eval       Eval       `yaml:"eval"`
	Thresholds Thresholds `yaml:"thresholds"`
	Logging    Logging    `yaml:"logging"`
}

// Model holds generation parameters for the triage model. Temperature and
// TopP are pinned on every call so repeated runs against the same model
// version reproduce identical category/severity/confidence.
type Model struct {
	Name        string  `yaml:"name"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Runtime holds per-ticket execution limits.
type Runtime struct {
	Timeout           time.Duration `yaml:"timeout"`            // Wall-clock ceiling per ticket execution
	ToolBudget        int           `yaml:"tool_budget"`        // Max tool/model invocations per ticket
	IdempotencyPrefix string        `yaml:"idempotency_prefix"` // Prefix folded into cache keys
}

// Cache holds result cache configuration.
type Cache struct {
	Enabled   bool          `yaml:"enabled"`
	TTL       time.Duration `yaml:"ttl"`
	MaxSizeMB int64         `yaml:"max_size_mb"`
}

// Eval holds evaluation run configuration.
type Eval struct {
	Width      int    `yaml:"width"`      // Fan-out width; 1 = sequential
	Limit      int    `yaml:"limit"`      // Example cap; 0 = no cap
	Difficulty string `yaml:"difficulty"` // Filter; empty = all difficulties
	Matcher    string `yaml:"matcher"`    // next_step_match strategy: exact|normalized|tokens
	OutputDir  string `yaml:"output_dir"` // Base directory for run artifacts
}

// Thresholds holds the tolerance bands gating the run verdict.
// A zero value disables that band, except MinSchemaValid which always applies.
type Thresholds struct {
	MinSchemaValid   float64 `yaml:"min_schema_valid"`
	MinAccuracy      float64 `yaml:"min_accuracy"`
	MinNextStepMatch float64 `yaml:"min_next_step_match"`
	MaxAvgCostUSD    float64 `yaml:"max_avg_cost_usd"`
	MaxP95LatencyMS  float64 `yaml:"max_p95_latency_ms"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Model: Model{
			Name:        "openai/gpt-4o-mini",
			BaseURL:     "http://localhost:4000",
			Temperature: 0,
			TopP:        1,
			MaxTokens:   2048,
		},
		Runtime: Runtime{
			Timeout:           30 * time.Second,
			ToolBudget:        2,
			IdempotencyPrefix: "triage",
		},
		Cache: Cache{
			Enabled:   true,
			TTL:       24 * time.Hour,
			MaxSizeMB: 64,
		},
		Eval: Eval{
			Width:     1,
			Matcher:   "normalized",
			OutputDir: "reports/runs",
		},
		Thresholds: Thresholds{
			MinSchemaValid: 0.95,
		},
		Logging: Logging{
			Level:   "info",
			Service: "triage-eval",
		},
	}
}
