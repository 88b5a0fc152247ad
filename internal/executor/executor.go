// Package executor runs one ticket at a time through the triage agent with
// determinism, tool-budget, and wall-clock enforcement, consulting the
// result cache before issuing any external call.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/SahilAshar/ticket-triage-agent/internal/config"
	"github.com/SahilAshar/ticket-triage-agent/internal/domain/ticket"
	"github.com/SahilAshar/ticket-triage-agent/internal/logger"
	"github.com/SahilAshar/ticket-triage-agent/internal/port/agent"
	"github.com/SahilAshar/ticket-triage-agent/internal/port/cache"
)

// Failure reasons recorded on degraded results.
const (
	ReasonTimeout        = "timeout"
	ReasonBudgetExceeded = "budget_exceeded"
	ReasonSchemaFailure  = "schema_failure"
)

// cacheEntry is the serialized (Result, RunMetadata) pair stored per key.
type cacheEntry struct {
	Result   ticket.Result      `json:"result"`
	Metadata ticket.RunMetadata `json:"metadata"`
}

// Executor enforces the per-ticket execution contract. Run never returns an
// error: every fault becomes a degraded but well-formed Result.
type Executor struct {
	agent  agent.Agent
	cache  cache.Cache // nil when caching is disabled
	model  config.Model
	limits config.Runtime
	ttl    time.Duration
	log    *slog.Logger

	// Concurrent misses for the same key execute once; unrelated keys never
	// contend.
	flight singleflight.Group
}

// New creates an Executor. Pass a nil cache to disable caching.
func New(a agent.Agent, c cache.Cache, cfg *config.Config, log *slog.Logger) *Executor {
	return &Executor{
		agent:  a,
		cache:  c,
		model:  cfg.Model,
		limits: cfg.Runtime,
		ttl:    cfg.Cache.TTL,
		log:    log,
	}
}

type outcome struct {
	result ticket.Result
	md     ticket.RunMetadata
}

// Run executes one task: cache lookup, then a guarded agent call on a miss.
// Exactly one (Result, RunMetadata) pair is returned for every terminal
// state.
func (e *Executor) Run(ctx context.Context, task ticket.Task) (ticket.Result, ticket.RunMetadata) {
	key := Key(e.limits.IdempotencyPrefix, task.TicketID, e.model.Name)

	if e.cache != nil {
		start := time.Now()
		if entry, ok := e.lookup(ctx, key); ok {
			md := entry.Metadata
			md.CacheHit = true
			md.TokensIn = 0
			md.TokensOut = 0
			md.CostUSD = 0
			md.LatencyMS = float64(time.Since(start)) / float64(time.Millisecond)
			e.log.Debug("cache hit", "ticket_id", task.TicketID, "key", key)
			return entry.Result, md
		}
	}

	shared, _, _ := e.flight.Do(key, func() (any, error) {
		out := e.execute(ctx, task)
		if e.cache != nil && out.md.FailureReason == "" {
			e.store(ctx, key, out)
		}
		return out, nil
	})

	out := shared.(outcome)
	return out.result, out.md
}

// execute performs the guarded external call: fresh per-invocation budget,
// watchdog on the configured wall-clock ceiling.
func (e *Executor) execute(ctx context.Context, task ticket.Task) outcome {
	budget := agent.NewBudget(e.limits.ToolBudget)
	start := time.Now()

	cctx, cancel := context.WithTimeout(logger.WithTicketID(ctx, task.TicketID), e.limits.Timeout)
	defer cancel()

	type reply struct {
		result ticket.Result
		usage  agent.Usage
		err    error
	}
	done := make(chan reply, 1)
	go func() {
		result, usage, err := e.agent.Triage(cctx, task, budget)
		done <- reply{result: result, usage: usage, err: err}
	}()

	select {
	case <-cctx.Done():
		// Cancellation is cooperative: the call may still be running, but
		// accounting for it stops at the ceiling.
		e.log.Warn("execution timed out", "ticket_id", task.TicketID, "timeout", e.limits.Timeout)
		return e.degraded(ReasonTimeout, float64(e.limits.Timeout)/float64(time.Millisecond), budget)
	case r := <-done:
		elapsed := float64(time.Since(start)) / float64(time.Millisecond)
		if r.err != nil {
			reason := failureReason(r.err)
			e.log.Warn("execution failed", "ticket_id", task.TicketID, "reason", reason, "error", r.err)
			return e.degraded(reason, elapsed, budget)
		}
		if err := r.result.Validate(); err != nil {
			e.log.Warn("agent output violates schema", "ticket_id", task.TicketID, "error", err)
			return e.degraded(ReasonSchemaFailure, elapsed, budget)
		}
		return outcome{
			result: r.result,
			md: ticket.RunMetadata{
				LatencyMS: elapsed,
				TokensIn:  r.usage.TokensIn,
				TokensOut: r.usage.TokensOut,
				CostUSD:   r.usage.CostUSD,
				ToolCalls: budget.Used(),
			},
		}
	}
}

func (e *Executor) degraded(reason string, latencyMS float64, budget *agent.Budget) outcome {
	return outcome{
		result: ticket.Degraded(reason),
		md: ticket.RunMetadata{
			LatencyMS:     latencyMS,
			ToolCalls:     budget.Used(),
			FailureReason: reason,
		},
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, agent.ErrBudgetExceeded):
		return ReasonBudgetExceeded
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	default:
		return err.Error()
	}
}

func (e *Executor) lookup(ctx context.Context, key string) (cacheEntry, bool) {
	data, ok, err := e.cache.Get(ctx, key)
	if err != nil || !ok {
		if err != nil {
			e.log.Warn("cache get failed", "key", key, "error", err)
		}
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		e.log.Warn("corrupt cache entry", "key", key, "error", err)
		return cacheEntry{}, false
	}
	return entry, true
}

// store writes the successful outcome under key. Best-effort: a failed write
// only costs a recompute on the next run.
func (e *Executor) store(ctx context.Context, key string, out outcome) {
	data, err := json.Marshal(cacheEntry{Result: out.result, Metadata: out.md})
	if err != nil {
		e.log.Warn("marshal cache entry", "key", key, "error", err)
		return
	}
	if err := e.cache.Set(ctx, key, data, e.ttl); err != nil {
		e.log.Warn("cache set failed", "key", key, "error", err)
	}
}
