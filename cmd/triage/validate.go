package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/SahilAshar/ticket-triage-agent/internal/dataset"
	"github.com/SahilAshar/ticket-triage-agent/internal/report"
)

// runValidate checks a single JSONL dataset file against the record schemas
// and prints any issues, one per line. Exits non-zero if the file has
// schema violations.
func runValidate(args []string, log *slog.Logger) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	kind := fs.String("kind", "", "Record kind: tasks or labels (default: inferred from filename)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("validate: exactly one dataset file is required")
	}
	path := fs.Arg(0)

	k := *kind
	if k == "" {
		k = inferKind(path)
	}

	var result *dataset.FileResult
	var err error
	switch k {
	case "tasks":
		result, err = dataset.ValidateTasks(path)
	case "labels":
		result, err = dataset.ValidateLabels(path)
	default:
		return fmt.Errorf("validate: cannot infer record kind for %s, pass --kind tasks|labels", path)
	}
	if err != nil {
		return err
	}

	if err := report.WriteIssues(os.Stdout, result.Issues); err != nil {
		return err
	}

	log.Info("validation complete", "path", path, "records", result.Records, "issues", len(result.Issues))
	if len(result.Issues) > 0 {
		return fmt.Errorf("%s: %d invalid record(s)", path, len(result.Issues))
	}
	return nil
}

// inferKind guesses the record kind from the filename.
func inferKind(path string) string {
	name := filepath.Base(path)
	switch {
	case strings.Contains(name, "task"):
		return "tasks"
	case strings.Contains(name, "label"), strings.Contains(name, "expected"):
		return "labels"
	default:
		return ""
	}
}
