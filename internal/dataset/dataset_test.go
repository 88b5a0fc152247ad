package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SahilAshar/ticket-triage-agent/internal/domain/eval"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func taskLine(id string) string {
	return fmt.Sprintf(`{"task":{"ticket_id":%q,"title":"Login fails","description":"Users cannot log in after deploy"}}`, id)
}

func labelLine(id string) string {
	return fmt.Sprintf(`{"ticket_id":%q,"difficulty":"easy","expected_result":{"category":"incident","severity":"high","next_step":"Page the on-call engineer.","confidence":1}}`, id)
}

func TestLoadJoinsByTicketID(t *testing.T) {
	tasks := writeFile(t, "tasks.jsonl", strings.Join([]string{
		taskLine("TKT-0001"),
		taskLine("TKT-0002"),
		taskLine("TKT-0003"),
		taskLine("TKT-0004"),
		taskLine("TKT-0005"),
	}, "\n"))
	labels := writeFile(t, "labels.jsonl", strings.Join([]string{
		labelLine("TKT-0001"),
		labelLine("TKT-0002"),
		labelLine("TKT-0003"),
		labelLine("TKT-0004"),
	}, "\n"))

	res, err := Load(tasks, labels)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Examples) != 4 {
		t.Fatalf("expected 4 examples, got %d", len(res.Examples))
	}
	if len(res.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %+v", len(res.Issues), res.Issues)
	}
	issue := res.Issues[0]
	if issue.Kind != eval.IssueJoinMismatch {
		t.Errorf("expected join_mismatch, got %s", issue.Kind)
	}
	if issue.TicketID != "TKT-0005" {
		t.Errorf("expected the unlabeled ticket to be flagged, got %q", issue.TicketID)
	}
}

func TestLoadReportsOrphanLabels(t *testing.T) {
	tasks := writeFile(t, "tasks.jsonl", taskLine("TKT-0001"))
	labels := writeFile(t, "labels.jsonl", labelLine("TKT-0001")+"\n"+labelLine("TKT-0099"))

	res, err := Load(tasks, labels)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Examples) != 1 {
		t.Fatalf("expected 1 example, got %d", len(res.Examples))
	}
	if len(res.Issues) != 1 || res.Issues[0].TicketID != "TKT-0099" {
		t.Fatalf("expected one orphan issue for TKT-0099, got %+v", res.Issues)
	}
	if !strings.Contains(res.Issues[0].Details, "orphan expected result") {
		t.Errorf("unexpected details: %q", res.Issues[0].Details)
	}
}

func TestLoadExcludesDuplicatesEntirely(t *testing.T) {
	tasks := writeFile(t, "tasks.jsonl", strings.Join([]string{
		taskLine("TKT-0001"),
		taskLine("TKT-0001"),
		taskLine("TKT-0001"),
		taskLine("TKT-0002"),
	}, "\n"))
	labels := writeFile(t, "labels.jsonl", labelLine("TKT-0001")+"\n"+labelLine("TKT-0002"))

	res, err := Load(tasks, labels)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Examples) != 1 || res.Examples[0].Task.TicketID != "TKT-0002" {
		t.Fatalf("duplicated id must not be evaluated, got %+v", res.Examples)
	}

	var dupIssues, orphanIssues int
	for _, issue := range res.Issues {
		switch {
		case strings.Contains(issue.Details, "duplicate ticket_id"):
			dupIssues++
		case strings.Contains(issue.Details, "orphan expected result"):
			orphanIssues++
		}
	}
	// Both repeats are reported, and the now-taskless label becomes an orphan.
	if dupIssues != 2 {
		t.Errorf("expected 2 duplicate issues, got %d: %+v", dupIssues, res.Issues)
	}
	if orphanIssues != 1 {
		t.Errorf("expected 1 orphan issue, got %d: %+v", orphanIssues, res.Issues)
	}
}

func TestLoadFlagsMalformedRecords(t *testing.T) {
	tasks := writeFile(t, "tasks.jsonl", strings.Join([]string{
		taskLine("TKT-0001"),
		`{"task":{"ticket_id":"TKT-0002","title":"","description":"no title"}}`,
		`not json at all`,
		`{"task":{"ticket_id":"TKT-0003","title":"x","description":"y","extra":"field"}}`,
	}, "\n"))
	labels := writeFile(t, "labels.jsonl", labelLine("TKT-0001"))

	res, err := Load(tasks, labels)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Examples) != 1 {
		t.Fatalf("expected only the valid record to survive, got %d", len(res.Examples))
	}
	if len(res.Issues) != 3 {
		t.Fatalf("expected 3 schema issues, got %d: %+v", len(res.Issues), res.Issues)
	}
	for _, issue := range res.Issues {
		if issue.Kind != eval.IssueSchemaFailure {
			t.Errorf("expected schema_failure, got %s (%s)", issue.Kind, issue.Details)
		}
		if !strings.Contains(issue.Details, "tasks.jsonl:") {
			t.Errorf("issue should carry file and line, got %q", issue.Details)
		}
	}
}

func TestLoadRejectsInvalidGoldLabels(t *testing.T) {
	tasks := writeFile(t, "tasks.jsonl", taskLine("TKT-0001")+"\n"+taskLine("TKT-0002"))
	labels := writeFile(t, "labels.jsonl", strings.Join([]string{
		labelLine("TKT-0001"),
		`{"ticket_id":"TKT-0002","difficulty":"brutal","expected_result":{"category":"incident","severity":"high","next_step":"x","confidence":1}}`,
	}, "\n"))

	res, err := Load(tasks, labels)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Examples) != 1 {
		t.Fatalf("expected 1 example, got %d", len(res.Examples))
	}

	var sawDifficulty, sawMismatch bool
	for _, issue := range res.Issues {
		if strings.Contains(issue.Details, "invalid difficulty") {
			sawDifficulty = true
		}
		if issue.Kind == eval.IssueJoinMismatch && issue.TicketID == "TKT-0002" {
			sawMismatch = true
		}
	}
	if !sawDifficulty {
		t.Errorf("expected an invalid-difficulty issue, got %+v", res.Issues)
	}
	if !sawMismatch {
		t.Errorf("rejected label should leave its task unmatched, got %+v", res.Issues)
	}
}

func TestLoadSkipsBlankLines(t *testing.T) {
	tasks := writeFile(t, "tasks.jsonl", "\n"+taskLine("TKT-0001")+"\n\n")
	labels := writeFile(t, "labels.jsonl", labelLine("TKT-0001")+"\n")

	res, err := Load(tasks, labels)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Examples) != 1 || len(res.Issues) != 0 {
		t.Fatalf("blank lines must be ignored, got %d examples, %d issues", len(res.Examples), len(res.Issues))
	}
}

func TestLoadMissingFile(t *testing.T) {
	labels := writeFile(t, "labels.jsonl", labelLine("TKT-0001"))
	if _, err := Load(filepath.Join(t.TempDir(), "absent.jsonl"), labels); err == nil {
		t.Fatal("expected an error for a missing task file")
	}
}

func TestValidateTasks(t *testing.T) {
	path := writeFile(t, "tasks.jsonl", taskLine("TKT-0001")+"\n"+`broken`)

	res, err := ValidateTasks(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Records != 1 {
		t.Errorf("expected 1 valid record, got %d", res.Records)
	}
	if len(res.Issues) != 1 {
		t.Errorf("expected 1 issue, got %d", len(res.Issues))
	}
}

func TestValidateLabels(t *testing.T) {
	path := writeFile(t, "labels.jsonl", labelLine("TKT-0001")+"\n"+labelLine("TKT-0002"))

	res, err := ValidateLabels(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Records != 2 || len(res.Issues) != 0 {
		t.Errorf("expected 2 clean records, got %d records, %d issues", res.Records, len(res.Issues))
	}
}
