package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "triage.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Model.Name, "TRIAGE_MODEL")
	setString(&cfg.Model.BaseURL, "TRIAGE_MODEL_BASE_URL")
	setString(&cfg.Model.APIKey, "TRIAGE_MODEL_API_KEY")
	setFloat64(&cfg.Model.Temperature, "TRIAGE_MODEL_TEMPERATURE")
	setFloat64(&cfg.Model.TopP, "TRIAGE_MODEL_TOP_P")
	setInt(&cfg.Model.MaxTokens, "TRIAGE_MODEL_MAX_TOKENS")

	setDuration(&cfg.Runtime.Timeout, "TRIAGE_TIMEOUT")
	setInt(&cfg.Runtime.ToolBudget, "TRIAGE_TOOL_BUDGET")
	setString(&cfg.Runtime.IdempotencyPrefix, "TRIAGE_IDEMPOTENCY_PREFIX")

	setBool(&cfg.Cache.Enabled, "TRIAGE_CACHE_ENABLED")
	setDuration(&cfg.Cache.TTL, "TRIAGE_CACHE_TTL")
	setInt64(&cfg.Cache.MaxSizeMB, "TRIAGE_CACHE_MAX_SIZE_MB")

	setInt(&cfg.Eval.Width, "TRIAGE_EVAL_WIDTH")
	setInt(&cfg.Eval.Limit, "TRIAGE_EVAL_LIMIT")
	setString(&cfg.Eval.Difficulty, "TRIAGE_EVAL_DIFFICULTY")
	setString(&cfg.Eval.Matcher, "TRIAGE_EVAL_MATCHER")
	setString(&cfg.Eval.OutputDir, "TRIAGE_EVAL_OUTPUT_DIR")

	setFloat64(&cfg.Thresholds.MinSchemaValid, "TRIAGE_MIN_SCHEMA_VALID")
	setFloat64(&cfg.Thresholds.MinAccuracy, "TRIAGE_MIN_ACCURACY")
	setFloat64(&cfg.Thresholds.MinNextStepMatch, "TRIAGE_MIN_NEXT_STEP_MATCH")
	setFloat64(&cfg.Thresholds.MaxAvgCostUSD, "TRIAGE_MAX_AVG_COST_USD")
	setFloat64(&cfg.Thresholds.MaxP95LatencyMS, "TRIAGE_MAX_P95_LATENCY_MS")

	setString(&cfg.Logging.Level, "TRIAGE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "TRIAGE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "TRIAGE_LOG_ASYNC")
}

// Validate checks that the configuration is in contract. The evaluation core
// treats settings as pre-validated and fails fast here on bad values.
func Validate(cfg *Config) error {
	if cfg.Model.Name == "" {
		return errors.New("model.name is required")
	}
	if cfg.Model.Temperature < 0 || cfg.Model.Temperature > 1 {
		return errors.New("model.temperature must be within [0,1]")
	}
	if cfg.Model.TopP < 0 || cfg.Model.TopP > 1 {
		return errors.New("model.top_p must be within [0,1]")
	}
	if cfg.Model.MaxTokens < 1 {
		return errors.New("model.max_tokens must be >= 1")
	}
	if cfg.Runtime.Timeout <= 0 {
		return errors.New("runtime.timeout must be positive")
	}
	if cfg.Runtime.ToolBudget < 0 {
		return errors.New("runtime.tool_budget must be >= 0")
	}
	if cfg.Runtime.IdempotencyPrefix == "" {
		return errors.New("runtime.idempotency_prefix is required")
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be positive when cache is enabled")
	}
	if cfg.Eval.Width < 1 {
		return errors.New("eval.width must be >= 1")
	}
	if cfg.Eval.Limit < 0 {
		return errors.New("eval.limit must be >= 0")
	}
	switch cfg.Eval.Difficulty {
	case "", "easy", "medium", "hard":
	default:
		return fmt.Errorf("eval.difficulty must be easy, medium, or hard, got %q", cfg.Eval.Difficulty)
	}
	if cfg.Thresholds.MinSchemaValid < 0 || cfg.Thresholds.MinSchemaValid > 1 {
		return errors.New("thresholds.min_schema_valid must be within [0,1]")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
