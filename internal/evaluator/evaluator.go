// Package evaluator fans gold-labeled examples out to the executor and
// scores every output through the configured metrics.
package evaluator

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/SahilAshar/ticket-triage-agent/internal/domain/eval"
	"github.com/SahilAshar/ticket-triage-agent/internal/domain/ticket"
	"github.com/SahilAshar/ticket-triage-agent/internal/logger"
	"github.com/SahilAshar/ticket-triage-agent/internal/metrics"
)

// Runner executes one ticket and never fails past its own boundary.
type Runner interface {
	Run(ctx context.Context, task ticket.Task) (ticket.Result, ticket.RunMetadata)
}

// Evaluator scores examples with a bounded worker pool. Examples are
// execution-independent; no ordering is guaranteed between concurrent
// executions and all outputs are keyed by ticket_id.
type Evaluator struct {
	runner  Runner
	metrics []metrics.Metric
	width   int
	limit   int
	filter  eval.Difficulty
	log     *slog.Logger
}

// New creates an Evaluator. width 1 runs sequentially; limit 0 means no
// example cap; an empty filter keeps all difficulties.
func New(runner Runner, ms []metrics.Metric, width, limit int, filter eval.Difficulty, log *slog.Logger) *Evaluator {
	if width < 1 {
		width = 1
	}
	return &Evaluator{
		runner:  runner,
		metrics: ms,
		width:   width,
		limit:   limit,
		filter:  filter,
		log:     log,
	}
}

// Run evaluates every surviving example. The difficulty filter and example
// cap apply before fan-out. Each started example yields exactly one
// EvalResult; a degraded executor output is still scored, never dropped.
// When ctx expires mid-run, unstarted examples are skipped and completed
// results are returned — partial results are always preserved.
func (e *Evaluator) Run(ctx context.Context, examples []eval.Example) []eval.EvalResult {
	selected := e.selectExamples(examples)
	e.log.Info("evaluation started",
		"examples", len(selected),
		"width", e.width,
		"metrics", len(e.metrics),
	)

	sem := semaphore.NewWeighted(int64(e.width))
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []eval.EvalResult
	)

	for _, ex := range selected {
		if err := sem.Acquire(ctx, 1); err != nil {
			e.log.Warn("run deadline reached, keeping completed results", "skipped_from", ex.Task.TicketID)
			break
		}
		ex := ex
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			res := e.evaluateOne(ctx, ex)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}()
	}

	wg.Wait()
	e.log.Info("evaluation finished", "results", len(results))
	return results
}

// evaluateOne runs a single example through the executor and all metrics.
// The difficulty label stays on the evaluation side; only the Task reaches
// the runner.
func (e *Evaluator) evaluateOne(ctx context.Context, ex eval.Example) eval.EvalResult {
	ctx = logger.WithTicketID(ctx, ex.Task.TicketID)
	output, md := e.runner.Run(ctx, ex.Task)

	scored := make(map[string]float64, len(e.metrics))
	for _, m := range e.metrics {
		scored[m.Name()] = m.Compute(ex, output, md)
	}

	return eval.EvalResult{
		TicketID: ex.Task.TicketID,
		Output:   output,
		Metrics:  scored,
		Metadata: md,
	}
}

func (e *Evaluator) selectExamples(examples []eval.Example) []eval.Example {
	selected := make([]eval.Example, 0, len(examples))
	for _, ex := range examples {
		if e.filter != "" && ex.Difficulty != e.filter {
			continue
		}
		if e.limit > 0 && len(selected) >= e.limit {
			break
		}
		selected = append(selected, ex)
	}
	return selected
}
