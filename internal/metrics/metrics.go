// Package metrics provides the pure grading functions applied to each
// evaluated example and the name-keyed registry that resolves them.
package metrics

import (
	"github.com/SahilAshar/ticket-triage-agent/internal/config"
	"github.com/SahilAshar/ticket-triage-agent/internal/domain/eval"
	"github.com/SahilAshar/ticket-triage-agent/internal/domain/ticket"
)

// Kind distinguishes how a metric's values are aggregated: boolean metrics
// roll up to a fraction-true, numeric metrics to mean and percentiles.
type Kind int

const (
	KindBoolean Kind = iota
	KindNumeric
)

// Metric is a pure grading function over one example and its produced
// output. Implementations are stateless across invocations and safe to
// compute in parallel. Boolean metrics return 0 or 1.
type Metric interface {
	Name() string
	Kind() Kind
	Compute(ex eval.Example, out ticket.Result, md ticket.RunMetadata) float64
}

// Built-in metric names.
const (
	NameSchemaValid         = "schema_valid"
	NameCategoricalAccuracy = "categorical_accuracy"
	NameNextStepMatch       = "next_step_match"
	NameCost                = "usd_cost"
	NameTokens              = "total_tokens"
	NameLatency             = "latency_ms"
)

func init() {
	Register(NameSchemaValid, func(_ config.Eval) (Metric, error) {
		return schemaValidity{}, nil
	})
	Register(NameCategoricalAccuracy, func(_ config.Eval) (Metric, error) {
		return categoricalAccuracy{}, nil
	})
	Register(NameNextStepMatch, func(cfg config.Eval) (Metric, error) {
		m, err := NewMatcher(cfg.Matcher)
		if err != nil {
			return nil, err
		}
		return &nextStepMatch{matcher: m}, nil
	})
	Register(NameCost, func(_ config.Eval) (Metric, error) {
		return costPassthrough{}, nil
	})
	Register(NameTokens, func(_ config.Eval) (Metric, error) {
		return tokensPassthrough{}, nil
	})
	Register(NameLatency, func(_ config.Eval) (Metric, error) {
		return latencyPassthrough{}, nil
	})
}

// schemaValidity checks the produced result against the structural contract:
// enum membership and confidence bounds.
type schemaValidity struct{}

func (schemaValidity) Name() string { return NameSchemaValid }
func (schemaValidity) Kind() Kind   { return KindBoolean }

func (schemaValidity) Compute(_ eval.Example, out ticket.Result, _ ticket.RunMetadata) float64 {
	if out.Validate() != nil {
		return 0
	}
	return 1
}

// categoricalAccuracy is true only when both category and severity match gold.
type categoricalAccuracy struct{}

func (categoricalAccuracy) Name() string { return NameCategoricalAccuracy }
func (categoricalAccuracy) Kind() Kind   { return KindBoolean }

func (categoricalAccuracy) Compute(ex eval.Example, out ticket.Result, _ ticket.RunMetadata) float64 {
	if ex.Gold.Category == out.Category && ex.Gold.Severity == out.Severity {
		return 1
	}
	return 0
}

// nextStepMatch compares the produced next step against gold through a
// pluggable matcher strategy. Free-text grading is inherently approximate;
// the strategy, not the metric, decides what counts as equal.
type nextStepMatch struct {
	matcher Matcher
}

func (m *nextStepMatch) Name() string { return NameNextStepMatch }
func (m *nextStepMatch) Kind() Kind   { return KindBoolean }

func (m *nextStepMatch) Compute(ex eval.Example, out ticket.Result, _ ticket.RunMetadata) float64 {
	if m.matcher.Match(ex.Gold.NextStep, out.NextStep) {
		return 1
	}
	return 0
}

// costPassthrough feeds the per-run cost into run-level aggregates. It is
// not a pass/fail signal on its own.
type costPassthrough struct{}

func (costPassthrough) Name() string { return NameCost }
func (costPassthrough) Kind() Kind   { return KindNumeric }

func (costPassthrough) Compute(_ eval.Example, _ ticket.Result, md ticket.RunMetadata) float64 {
	return md.CostUSD
}

// tokensPassthrough feeds the combined prompt and completion token count
// into run-level aggregates.
type tokensPassthrough struct{}

func (tokensPassthrough) Name() string { return NameTokens }
func (tokensPassthrough) Kind() Kind   { return KindNumeric }

func (tokensPassthrough) Compute(_ eval.Example, _ ticket.Result, md ticket.RunMetadata) float64 {
	return float64(md.TokensIn + md.TokensOut)
}

// latencyPassthrough feeds the per-run latency into run-level aggregates.
type latencyPassthrough struct{}

func (latencyPassthrough) Name() string { return NameLatency }
func (latencyPassthrough) Kind() Kind   { return KindNumeric }

func (latencyPassthrough) Compute(_ eval.Example, _ ticket.Result, md ticket.RunMetadata) float64 {
	return md.LatencyMS
}
