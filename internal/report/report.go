// Package report merges per-example results and issues into a run summary,
// applies the configured tolerance bands, and renders the verdict.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/SahilAshar/ticket-triage-agent/internal/config"
	"github.com/SahilAshar/ticket-triage-agent/internal/domain/eval"
	"github.com/SahilAshar/ticket-triage-agent/internal/metrics"
)

// Summary is the aggregate view of one evaluation run.
type Summary struct {
	RunID               string                 `json:"run_id"`
	GeneratedAt         time.Time              `json:"generated_at"`
	TotalExamples       int                    `json:"total_examples"`
	SchemaValidPct      float64                `json:"schema_valid_pct"`
	CategoricalAccuracy float64                `json:"categorical_accuracy"`
	NextStepMatchRate   float64                `json:"next_step_match_rate"`
	TotalCostUSD        float64                `json:"total_cost_usd"`
	AvgCostUSD          float64                `json:"avg_cost_usd"`
	TotalTokens         float64                `json:"total_tokens"`
	AvgTokens           float64                `json:"avg_tokens"`
	MeanLatencyMS       float64                `json:"mean_latency_ms"`
	P95LatencyMS        float64                `json:"p95_latency_ms"`
	CacheHits           int                    `json:"cache_hits"`
	IssueCounts         map[eval.IssueKind]int `json:"issue_counts"`
	Passed              bool                   `json:"passed"`
}

// Build aggregates results and issues, then gates the verdict on the
// configured thresholds. Any breach appends a MetricRegression issue to the
// returned slice; regressions are the only fault class that flips the
// verdict. The returned issues include the input issues unchanged.
func Build(runID string, results []eval.EvalResult, issues []eval.Issue, t config.Thresholds) (Summary, []eval.Issue) {
	s := Summary{
		RunID:         runID,
		GeneratedAt:   time.Now().UTC(),
		TotalExamples: len(results),
		IssueCounts:   make(map[eval.IssueKind]int),
		Passed:        true,
	}

	var latencies []float64
	for i := range results {
		r := &results[i]
		s.SchemaValidPct += r.Metrics[metrics.NameSchemaValid]
		s.CategoricalAccuracy += r.Metrics[metrics.NameCategoricalAccuracy]
		s.NextStepMatchRate += r.Metrics[metrics.NameNextStepMatch]
		s.TotalCostUSD += r.Metrics[metrics.NameCost]
		s.TotalTokens += r.Metrics[metrics.NameTokens]
		latencies = append(latencies, r.Metrics[metrics.NameLatency])
		if r.Metadata.CacheHit {
			s.CacheHits++
		}
	}
	if n := float64(len(results)); n > 0 {
		s.SchemaValidPct /= n
		s.CategoricalAccuracy /= n
		s.NextStepMatchRate /= n
		s.AvgCostUSD = s.TotalCostUSD / n
		s.AvgTokens = s.TotalTokens / n
		s.MeanLatencyMS = mean(latencies)
		s.P95LatencyMS = percentile(latencies, 0.95)
	}

	for _, issue := range issues {
		s.IssueCounts[issue.Kind]++
	}

	// Regression gating runs only after all examples are processed. With no
	// evaluated examples the fractions are undefined and the bands do not
	// apply.
	if len(results) > 0 {
		regressions := gate(&s, t)
		for _, issue := range regressions {
			s.IssueCounts[issue.Kind]++
			s.Passed = false
		}
		issues = append(issues, regressions...)
	}

	return s, issues
}

// gate checks each configured tolerance band. A zero band is disabled,
// except the schema-validity floor which always applies.
func gate(s *Summary, t config.Thresholds) []eval.Issue {
	snapshot := map[string]float64{
		"schema_valid_pct":     s.SchemaValidPct,
		"categorical_accuracy": s.CategoricalAccuracy,
		"next_step_match_rate": s.NextStepMatchRate,
		"avg_cost_usd":         s.AvgCostUSD,
		"p95_latency_ms":       s.P95LatencyMS,
	}

	type band struct {
		details string
		breach  bool
	}
	bands := []band{
		{"schema_valid_pct below minimum", s.SchemaValidPct < t.MinSchemaValid},
		{"categorical_accuracy below minimum", t.MinAccuracy > 0 && s.CategoricalAccuracy < t.MinAccuracy},
		{"next_step_match_rate below minimum", t.MinNextStepMatch > 0 && s.NextStepMatchRate < t.MinNextStepMatch},
		{"avg_cost_usd above maximum", t.MaxAvgCostUSD > 0 && s.AvgCostUSD > t.MaxAvgCostUSD},
		{"p95_latency_ms above maximum", t.MaxP95LatencyMS > 0 && s.P95LatencyMS > t.MaxP95LatencyMS},
	}

	var issues []eval.Issue
	for _, b := range bands {
		if b.breach {
			issues = append(issues, eval.MetricRegression(b.details, snapshot))
		}
	}
	return issues
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// percentile returns the value at rank ceil(p*n) of the sorted series.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
