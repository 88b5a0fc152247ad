// Package eval defines the evaluation domain types: gold-labeled examples,
// per-example results, and the structured issues the harness reports.
package eval

import "github.com/SahilAshar/ticket-triage-agent/internal/domain/ticket"

// Difficulty labels how hard an example is expected to be. It is
// evaluation-only metadata and must never reach the agent's input.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Example bundles a task with its gold result for evaluation. One Example
// exists per ticket_id present exactly once on both sides of the join.
type Example struct {
	Task       ticket.Task   `json:"task"`
	Gold       ticket.Result `json:"gold"`
	Difficulty Difficulty    `json:"difficulty,omitempty"`
}

// EvalResult is the outcome of evaluating a single example. Metrics maps
// metric name to value; boolean metrics are recorded as 0 or 1.
type EvalResult struct {
	TicketID string             `json:"ticket_id"`
	Output   ticket.Result      `json:"output"`
	Metrics  map[string]float64 `json:"metrics"`
	Metadata ticket.RunMetadata `json:"metadata"`
}
