package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/SahilAshar/ticket-triage-agent/internal/adapter/gold"
	_ "github.com/SahilAshar/ticket-triage-agent/internal/adapter/openai"
	"github.com/SahilAshar/ticket-triage-agent/internal/adapter/ristretto"
	_ "github.com/SahilAshar/ticket-triage-agent/internal/adapter/rules"
	"github.com/SahilAshar/ticket-triage-agent/internal/config"
	"github.com/SahilAshar/ticket-triage-agent/internal/dataset"
	"github.com/SahilAshar/ticket-triage-agent/internal/domain/eval"
	"github.com/SahilAshar/ticket-triage-agent/internal/evaluator"
	"github.com/SahilAshar/ticket-triage-agent/internal/executor"
	"github.com/SahilAshar/ticket-triage-agent/internal/metrics"
	"github.com/SahilAshar/ticket-triage-agent/internal/port/agent"
	"github.com/SahilAshar/ticket-triage-agent/internal/port/cache"
	"github.com/SahilAshar/ticket-triage-agent/internal/report"
)

// runEval executes one evaluation run end to end: dataset join, guarded
// agent execution, grading, aggregation, and artifact output. A non-nil
// error (and thus a non-zero exit) is returned unless the run completes and
// every configured threshold passes.
func runEval(args []string, cfg *config.Config, log *slog.Logger) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	tasksPath := fs.String("tasks", "", "Path to ticket tasks JSONL (required)")
	labelsPath := fs.String("labels", "", "Path to expected results JSONL (required)")
	mode := fs.String("mode", "gold", "Agent mode: gold, rules, or openai")
	width := fs.Int("width", cfg.Eval.Width, "Fan-out width; 1 = sequential")
	limit := fs.Int("limit", cfg.Eval.Limit, "Example cap; 0 = no cap")
	difficulty := fs.String("difficulty", cfg.Eval.Difficulty, "Difficulty filter: easy, medium, or hard")
	outDir := fs.String("out", cfg.Eval.OutputDir, "Base directory for run artifacts")
	emitMetrics := fs.Bool("emit-metrics", false, "Print the summary JSON to stdout")
	deadline := fs.Duration("deadline", 0, "Run-level deadline; 0 = none")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tasksPath == "" || *labelsPath == "" {
		return fmt.Errorf("eval: --tasks and --labels are required")
	}

	cfg.Eval.Width = *width
	cfg.Eval.Limit = *limit
	cfg.Eval.Difficulty = *difficulty
	if err := config.Validate(cfg); err != nil {
		return err
	}

	runID := uuid.New().String()
	runDir := filepath.Join(*outDir, time.Now().UTC().Format("20060102T150405Z"))
	if err := os.MkdirAll(runDir, 0o750); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	loaded, err := dataset.Load(*tasksPath, *labelsPath)
	if err != nil {
		return err
	}
	log.Info("dataset loaded",
		"run_id", runID,
		"examples", len(loaded.Examples),
		"issues", len(loaded.Issues),
	)

	triager, err := buildAgent(*mode, cfg, loaded.Examples)
	if err != nil {
		return err
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		rc, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer rc.Close()
		store = rc
	}

	ms, err := metrics.Defaults(cfg.Eval)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if *deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *deadline)
		defer cancel()
	}

	exec := executor.New(triager, store, cfg, log)
	ev := evaluator.New(exec, ms, cfg.Eval.Width, cfg.Eval.Limit, eval.Difficulty(cfg.Eval.Difficulty), log)
	results := ev.Run(ctx, loaded.Examples)

	summary, issues := report.Build(runID, results, loaded.Issues, cfg.Thresholds)
	if err := writeArtifacts(runDir, summary, results, issues); err != nil {
		return err
	}
	if *emitMetrics {
		if err := report.WriteJSON(os.Stdout, summary); err != nil {
			return err
		}
	}

	log.Info("run complete",
		"run_id", runID,
		"artifacts", runDir,
		"passed", summary.Passed,
	)
	if !summary.Passed {
		return fmt.Errorf("evaluation thresholds not met (see %s)", filepath.Join(runDir, "summary.json"))
	}
	return nil
}

// buildAgent resolves the agent mode. Gold depends on the joined dataset and
// is constructed directly; every other mode goes through the registry.
func buildAgent(mode string, cfg *config.Config, examples []eval.Example) (agent.Agent, error) {
	if mode == "gold" {
		return gold.New(examples), nil
	}
	return agent.New(mode, cfg.Model)
}

func writeArtifacts(dir string, summary report.Summary, results []eval.EvalResult, issues []eval.Issue) error {
	if err := writeFile(filepath.Join(dir, "results.jsonl"), func(f *os.File) error {
		return report.WriteResults(f, results)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "issues.jsonl"), func(f *os.File) error {
		return report.WriteIssues(f, issues)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "summary.json"), func(f *os.File) error {
		return report.WriteJSON(f, summary)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, "summary.txt"), func(f *os.File) error {
		return report.WriteText(f, summary)
	})
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path) //nolint:gosec // G304: path is under the run dir
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
