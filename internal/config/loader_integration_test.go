package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Integration tests that exercise the full LoadFrom pipeline:
// defaults < YAML < environment variables.

func TestLoadFromFullHierarchy(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "triage.yaml")
	if err := os.WriteFile(yamlPath, []byte(`
model:
  name: openai/gpt-4o
runtime:
  timeout: 15s
eval:
  width: 4
logging:
  level: debug
`), 0o600); err != nil {
		t.Fatal(err)
	}

	// Env must win over YAML; untouched keys keep YAML, then defaults.
	t.Setenv("TRIAGE_EVAL_WIDTH", "2")
	t.Setenv("TRIAGE_LOG_LEVEL", "warn")

	cfg, err := LoadFrom(yamlPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Eval.Width != 2 {
		t.Errorf("env should override YAML: got width %d, want 2", cfg.Eval.Width)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env should override YAML: got level %q, want warn", cfg.Logging.Level)
	}
	if cfg.Runtime.Timeout != 15*time.Second {
		t.Errorf("YAML should override defaults: got timeout %v", cfg.Runtime.Timeout)
	}
	if cfg.Model.Name != "openai/gpt-4o" {
		t.Errorf("YAML should override defaults: got model %q", cfg.Model.Name)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("untouched keys keep defaults: got ttl %v", cfg.Cache.TTL)
	}
}

func TestLoadFromRejectsInvalidResult(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "triage.yaml")
	if err := os.WriteFile(yamlPath, []byte(`
runtime:
  timeout: -5s
`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(yamlPath); err == nil {
		t.Fatal("expected validation to reject a negative timeout")
	}
}
