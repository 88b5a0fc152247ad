// Package agent defines the triage agent port and its name-keyed registry.
// An agent turns one support ticket into a structured triage result; the
// executor owns all enforcement (budget, timeout, caching) around it.
package agent

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/SahilAshar/ticket-triage-agent/internal/domain/ticket"
)

// ErrBudgetExceeded is returned by Budget.Use when the per-invocation tool
// budget is exhausted. The check happens before a call is issued.
var ErrBudgetExceeded = errors.New("tool budget exceeded")

// Budget counts tool/model invocations for a single agent run. A fresh
// Budget is created per executor invocation and never shared across tickets,
// so one ticket's exhaustion cannot affect another's outcome. The counter is
// atomic: the executor's watchdog may read it while the call goroutine is
// still running.
type Budget struct {
	limit int64
	used  atomic.Int64
}

// NewBudget creates a Budget allowing at most limit invocations.
func NewBudget(limit int) *Budget {
	return &Budget{limit: int64(limit)}
}

// Use consumes one invocation. It fails fast with ErrBudgetExceeded when the
// budget is already spent; callers must not issue the call on error.
func (b *Budget) Use() error {
	if b.used.Add(1) > b.limit {
		b.used.Add(-1)
		return ErrBudgetExceeded
	}
	return nil
}

// Used returns how many invocations have been consumed.
func (b *Budget) Used() int { return int(b.used.Load()) }

// Usage is the token and cost accounting reported by an agent run.
type Usage struct {
	TokensIn  int64
	TokensOut int64
	CostUSD   float64
}

// Agent is the port interface for triage agent implementations.
type Agent interface {
	// Name returns the unique mode identifier for this agent (e.g. "gold", "openai").
	Name() string

	// Triage produces a structured result for one task. Each external
	// tool/model call must be preceded by budget.Use. A returned error is
	// absorbed by the executor into a degraded result; agents never need to
	// degrade their own output.
	Triage(ctx context.Context, task ticket.Task, budget *Budget) (ticket.Result, Usage, error)
}
