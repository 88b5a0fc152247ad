package eval

import "time"

// IssueKind classifies evaluation issues for CI reporting.
type IssueKind string

const (
	IssueSchemaFailure    IssueKind = "schema_failure"
	IssueJoinMismatch     IssueKind = "join_mismatch"
	IssueMetricRegression IssueKind = "metric_regression"
)

// Issue is a structured problem emitted by the dataset loader, evaluator, or
// reporting aggregator. Issues are append-only and never mutated.
type Issue struct {
	Kind      IssueKind          `json:"kind"`
	TicketID  string             `json:"ticket_id,omitempty"`
	Details   string             `json:"details"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Severity  string             `json:"severity"`
	Timestamp time.Time          `json:"timestamp"`
}

// SchemaFailure builds an issue for a record or output violating its
// structural contract.
func SchemaFailure(ticketID, details string) Issue {
	return newIssue(IssueSchemaFailure, ticketID, details, nil)
}

// JoinMismatch builds an issue for a ticket_id present on exactly one side
// of the task/label join, or duplicated on either side.
func JoinMismatch(ticketID, details string) Issue {
	return newIssue(IssueJoinMismatch, ticketID, details, nil)
}

// MetricRegression builds an issue for a run-level aggregate outside its
// configured tolerance band, with a snapshot of the offending aggregates.
func MetricRegression(details string, metrics map[string]float64) Issue {
	return newIssue(IssueMetricRegression, "", details, metrics)
}

func newIssue(kind IssueKind, ticketID, details string, metrics map[string]float64) Issue {
	return Issue{
		Kind:      kind,
		TicketID:  ticketID,
		Details:   details,
		Metrics:   metrics,
		Severity:  "error",
		Timestamp: time.Now().UTC(),
	}
}
