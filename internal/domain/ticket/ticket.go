// Package ticket defines the core triage types: the incoming support Task,
// the structured triage Result, and the per-run telemetry attached to it.
package ticket

import "fmt"

// Category is the canonical ticket type chosen from the triage taxonomy.
type Category string

const (
	CategoryBug      Category = "bug"
	CategoryIncident Category = "incident"
	CategoryRequest  Category = "request"
	CategoryQuestion Category = "question"
)

// Severity is the impact level aligned with the triage playbook.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Task is the incoming payload for the triage agent. Tasks are produced
// externally and treated as read-only.
type Task struct {
	TicketID    string            `json:"ticket_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Validate checks the structural contract of a Task.
func (t *Task) Validate() error {
	if t.TicketID == "" {
		return fmt.Errorf("ticket_id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	if t.Description == "" {
		return fmt.Errorf("description is required")
	}
	return nil
}

// Result is the structured triage output produced once per Task.
// A Result is always present, even on failure: faults yield the degraded
// form built by Degraded.
type Result struct {
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	NextStep   string   `json:"next_step"`
	Confidence float64  `json:"confidence"`
}

// Validate checks enum membership and the confidence bounds.
func (r *Result) Validate() error {
	switch r.Category {
	case CategoryBug, CategoryIncident, CategoryRequest, CategoryQuestion:
	default:
		return fmt.Errorf("invalid category %q", r.Category)
	}
	switch r.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
	default:
		return fmt.Errorf("invalid severity %q", r.Severity)
	}
	if r.NextStep == "" {
		return fmt.Errorf("next_step is required")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", r.Confidence)
	}
	return nil
}

// Degraded builds the well-formed failure Result: confidence zero and a
// next step routing the ticket to a human.
func Degraded(reason string) Result {
	return Result{
		Category:   CategoryQuestion,
		Severity:   SeverityLow,
		NextStep:   "Escalate to a human triager: automated triage failed (" + reason + ").",
		Confidence: 0,
	}
}

// RunMetadata is the telemetry co-produced with each Result.
type RunMetadata struct {
	LatencyMS     float64 `json:"latency_ms"`
	TokensIn      int64   `json:"tokens_in"`
	TokensOut     int64   `json:"tokens_out"`
	CostUSD       float64 `json:"usd_cost"`
	ToolCalls     int     `json:"tool_calls"`
	Retries       int     `json:"retries"`
	CacheHit      bool    `json:"cache_hit"`
	FailureReason string  `json:"failure_reason,omitempty"`
}
