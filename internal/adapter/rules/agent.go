// Package rules implements a deterministic keyword-based triage agent. It
// needs no network access and serves as the offline baseline mode.
package rules

import (
	"context"
	"strings"

	"github.com/SahilAshar/ticket-triage-agent/internal/config"
	"github.com/SahilAshar/ticket-triage-agent/internal/domain/ticket"
	"github.com/SahilAshar/ticket-triage-agent/internal/port/agent"
)

const agentName = "rules"

func init() {
	agent.Register(agentName, func(_ config.Model) (agent.Agent, error) {
		return New(), nil
	})
}

// Agent classifies tickets by scanning title and description for category
// and severity cues. Identical input always yields the identical result.
type Agent struct{}

// New creates a rules agent.
func New() *Agent { return &Agent{} }

// Name returns "rules".
func (a *Agent) Name() string { return agentName }

// Triage runs the keyword classifier. The classifier counts as one budgeted
// tool invocation.
func (a *Agent) Triage(_ context.Context, task ticket.Task, budget *agent.Budget) (ticket.Result, agent.Usage, error) {
	if err := budget.Use(); err != nil {
		return ticket.Result{}, agent.Usage{}, err
	}

	text := strings.ToLower(task.Title + " " + task.Description)

	category, categoryHit := classifyCategory(text)
	severity, severityHit := classifySeverity(text)

	confidence := 0.5
	if categoryHit {
		confidence += 0.2
	}
	if severityHit {
		confidence += 0.2
	}

	return ticket.Result{
		Category:   category,
		Severity:   severity,
		NextStep:   nextStep(category, severity),
		Confidence: confidence,
	}, agent.Usage{}, nil
}

func classifyCategory(text string) (ticket.Category, bool) {
	switch {
	case containsAny(text, "outage", "down", "deploy", "degraded", "cannot log in", "cannot login", "incident"):
		return ticket.CategoryIncident, true
	case containsAny(text, "error", "crash", "fails", "broken", "bug", "exception"):
		return ticket.CategoryBug, true
	case containsAny(text, "please add", "feature", "request", "would like", "enable", "access to"):
		return ticket.CategoryRequest, true
	case containsAny(text, "how do", "how to", "question", "clarify", "what is"):
		return ticket.CategoryQuestion, true
	default:
		return ticket.CategoryQuestion, false
	}
}

func classifySeverity(text string) (ticket.Severity, bool) {
	switch {
	case containsAny(text, "all users", "everyone", "data loss", "security", "critical", "production down"):
		return ticket.SeverityCritical, true
	case containsAny(text, "cannot", "blocked", "urgent", "many users", "after deploy"):
		return ticket.SeverityHigh, true
	case containsAny(text, "sometimes", "intermittent", "slow", "degraded"):
		return ticket.SeverityMedium, true
	case containsAny(text, "minor", "cosmetic", "typo", "low"):
		return ticket.SeverityLow, true
	default:
		return ticket.SeverityMedium, false
	}
}

func nextStep(category ticket.Category, severity ticket.Severity) string {
	if severity == ticket.SeverityCritical || severity == ticket.SeverityHigh {
		return "Page the on-call engineer and open an incident channel."
	}
	switch category {
	case ticket.CategoryBug:
		return "Route to the owning team's bug queue for reproduction."
	case ticket.CategoryRequest:
		return "Forward to product intake for prioritization."
	case ticket.CategoryQuestion:
		return "Reply with the relevant documentation link."
	default:
		return "Assign to the support triage queue."
	}
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
