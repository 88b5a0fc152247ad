package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/SahilAshar/ticket-triage-agent/internal/domain/eval"
)

// WriteJSON renders the machine-readable summary document.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteText renders the human-readable summary.
func WriteText(w io.Writer, s Summary) error {
	verdict := "PASS"
	if !s.Passed {
		verdict = "FAIL"
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Run\t%s\n", s.RunID)
	fmt.Fprintf(tw, "Examples\t%d\n", s.TotalExamples)
	fmt.Fprintf(tw, "Schema valid\t%.1f%%\n", s.SchemaValidPct*100)
	fmt.Fprintf(tw, "Categorical accuracy\t%.1f%%\n", s.CategoricalAccuracy*100)
	fmt.Fprintf(tw, "Next-step match\t%.1f%%\n", s.NextStepMatchRate*100)
	fmt.Fprintf(tw, "Total cost\t$%.4f\n", s.TotalCostUSD)
	fmt.Fprintf(tw, "Total tokens\t%.0f\n", s.TotalTokens)
	fmt.Fprintf(tw, "Mean latency\t%.1fms\n", s.MeanLatencyMS)
	fmt.Fprintf(tw, "p95 latency\t%.1fms\n", s.P95LatencyMS)
	fmt.Fprintf(tw, "Cache hits\t%d\n", s.CacheHits)
	for _, kind := range []eval.IssueKind{eval.IssueSchemaFailure, eval.IssueJoinMismatch, eval.IssueMetricRegression} {
		if count, ok := s.IssueCounts[kind]; ok {
			fmt.Fprintf(tw, "Issues (%s)\t%d\n", kind, count)
		}
	}
	fmt.Fprintf(tw, "Verdict\t%s\n", verdict)
	return tw.Flush()
}

// WriteResults emits one EvalResult per line.
func WriteResults(w io.Writer, results []eval.EvalResult) error {
	enc := json.NewEncoder(w)
	for i := range results {
		if err := enc.Encode(&results[i]); err != nil {
			return fmt.Errorf("encode result %s: %w", results[i].TicketID, err)
		}
	}
	return nil
}

// WriteIssues emits one Issue per line.
func WriteIssues(w io.Writer, issues []eval.Issue) error {
	enc := json.NewEncoder(w)
	for i := range issues {
		if err := enc.Encode(&issues[i]); err != nil {
			return fmt.Errorf("encode issue: %w", err)
		}
	}
	return nil
}
