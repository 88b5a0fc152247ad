// Package dataset loads line-delimited task and gold-label records and joins
// them by ticket_id into evaluation examples. Malformed records and join
// mismatches are reported as issues and excluded; the load never fails on a
// bad record.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/SahilAshar/ticket-triage-agent/internal/domain/eval"
	"github.com/SahilAshar/ticket-triage-agent/internal/domain/ticket"
)

// LoadResult holds the joined examples and every issue raised while loading.
type LoadResult struct {
	Examples []eval.Example
	Issues   []eval.Issue
}

// taskRecord is one line of the task file.
type taskRecord struct {
	Task *ticket.Task `json:"task"`
}

// labelRecord is one line of the gold-label file.
type labelRecord struct {
	TicketID       string          `json:"ticket_id"`
	Difficulty     eval.Difficulty `json:"difficulty"`
	ExpectedResult *ticket.Result  `json:"expected_result"`
}

// Load reads both files and performs the strict two-sided join. The
// evaluated set is exactly the ticket_ids present exactly once in both
// files; everything else produces an issue.
func Load(tasksPath, labelsPath string) (*LoadResult, error) {
	var issues []eval.Issue

	tasks, taskIssues, err := loadTasks(tasksPath)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	issues = append(issues, taskIssues...)

	labels, labelIssues, err := loadLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	issues = append(issues, labelIssues...)

	// One-sided ids, reported in sorted order for stable output.
	for _, id := range sortedKeys(tasks) {
		if _, ok := labels[id]; !ok {
			issues = append(issues, eval.JoinMismatch(id, "missing expected result for ticket_id"))
		}
	}
	for _, id := range sortedKeys(labels) {
		if _, ok := tasks[id]; !ok {
			issues = append(issues, eval.JoinMismatch(id, "orphan expected result without matching task"))
		}
	}

	var examples []eval.Example
	for _, id := range sortedKeys(tasks) {
		label, ok := labels[id]
		if !ok {
			continue
		}
		examples = append(examples, eval.Example{
			Task:       tasks[id],
			Gold:       *label.ExpectedResult,
			Difficulty: label.Difficulty,
		})
	}

	return &LoadResult{Examples: examples, Issues: issues}, nil
}

// loadTasks parses the task file into a ticket_id index. Duplicates are
// excluded with a JoinMismatch issue; malformed lines with a SchemaFailure.
func loadTasks(path string) (map[string]ticket.Task, []eval.Issue, error) {
	tasks := make(map[string]ticket.Task)
	dups := make(map[string]bool)
	var issues []eval.Issue

	err := scanLines(path, func(lineno int, line []byte) {
		var rec taskRecord
		if err := decodeStrict(line, &rec); err != nil {
			issues = append(issues, eval.SchemaFailure("", fmt.Sprintf("%s:%d invalid record: %v", path, lineno, err)))
			return
		}
		if rec.Task == nil {
			issues = append(issues, eval.SchemaFailure("", fmt.Sprintf("%s:%d missing 'task' field", path, lineno)))
			return
		}
		if err := rec.Task.Validate(); err != nil {
			issues = append(issues, eval.SchemaFailure(rec.Task.TicketID, fmt.Sprintf("%s:%d task schema violation: %v", path, lineno, err)))
			return
		}
		// A duplicated id is excluded from evaluation entirely, not
		// first-occurrence-wins.
		if _, dup := tasks[rec.Task.TicketID]; dup || dups[rec.Task.TicketID] {
			delete(tasks, rec.Task.TicketID)
			dups[rec.Task.TicketID] = true
			issues = append(issues, eval.JoinMismatch(rec.Task.TicketID, fmt.Sprintf("%s:%d duplicate ticket_id", path, lineno)))
			return
		}
		tasks[rec.Task.TicketID] = *rec.Task
	})
	if err != nil {
		return nil, nil, err
	}
	return tasks, issues, nil
}

// loadLabels parses the gold-label file into a ticket_id index.
func loadLabels(path string) (map[string]labelRecord, []eval.Issue, error) {
	labels := make(map[string]labelRecord)
	dups := make(map[string]bool)
	var issues []eval.Issue

	err := scanLines(path, func(lineno int, line []byte) {
		var rec labelRecord
		if err := decodeStrict(line, &rec); err != nil {
			issues = append(issues, eval.SchemaFailure("", fmt.Sprintf("%s:%d invalid record: %v", path, lineno, err)))
			return
		}
		if rec.TicketID == "" {
			issues = append(issues, eval.SchemaFailure("", fmt.Sprintf("%s:%d missing or invalid 'ticket_id'", path, lineno)))
			return
		}
		if rec.ExpectedResult == nil {
			issues = append(issues, eval.SchemaFailure(rec.TicketID, fmt.Sprintf("%s:%d missing 'expected_result' field", path, lineno)))
			return
		}
		if err := rec.ExpectedResult.Validate(); err != nil {
			issues = append(issues, eval.SchemaFailure(rec.TicketID, fmt.Sprintf("%s:%d result schema violation: %v", path, lineno, err)))
			return
		}
		if err := validDifficulty(rec.Difficulty); err != nil {
			issues = append(issues, eval.SchemaFailure(rec.TicketID, fmt.Sprintf("%s:%d %v", path, lineno, err)))
			return
		}
		if _, dup := labels[rec.TicketID]; dup || dups[rec.TicketID] {
			delete(labels, rec.TicketID)
			dups[rec.TicketID] = true
			issues = append(issues, eval.JoinMismatch(rec.TicketID, fmt.Sprintf("%s:%d duplicate ticket_id", path, lineno)))
			return
		}
		labels[rec.TicketID] = rec
	})
	if err != nil {
		return nil, nil, err
	}
	return labels, issues, nil
}

func validDifficulty(d eval.Difficulty) error {
	switch d {
	case eval.DifficultyEasy, eval.DifficultyMedium, eval.DifficultyHard, "":
		return nil
	default:
		return fmt.Errorf("invalid difficulty %q", d)
	}
}

// scanLines calls fn for every non-empty line with its 1-based line number.
func scanLines(path string, fn func(lineno int, line []byte)) error {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from CLI flags
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		fn(lineno, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	return nil
}

// decodeStrict unmarshals one record, rejecting unknown fields so shape
// drift surfaces as a SchemaFailure instead of passing silently.
func decodeStrict(line []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
