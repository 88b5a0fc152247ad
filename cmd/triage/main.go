// Command triage runs the ticket triage evaluation harness.
package main

import (
	"fmt"
	"os"

	"github.com/SahilAshar/ticket-triage-agent/internal/config"
	"github.com/SahilAshar/ticket-triage-agent/internal/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "triage: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printHelp()
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closer := logger.New(cfg.Logging)
	defer closer.Close()

	switch args[0] {
	case "eval":
		return runEval(args[1:], cfg, log)
	case "validate":
		return runValidate(args[1:], log)
	default:
		printHelp()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `Usage: triage <command> [options]

Commands:
  eval        Evaluate an agent mode against a gold-labeled dataset
  validate    Validate a JSONL dataset file against the record schemas
  help        Show this help message

Examples:
  triage eval --tasks data/tasks.jsonl --labels data/labels.jsonl --mode rules
  triage eval --tasks data/tasks.jsonl --labels data/labels.jsonl --mode openai --width 4 --limit 50
  triage validate data/tasks.jsonl --kind tasks
`)
}
