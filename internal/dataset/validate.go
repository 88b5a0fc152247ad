package dataset

import "github.com/SahilAshar/ticket-triage-agent/internal/domain/eval"

// FileResult reports single-file validation: how many records parsed clean
// and every issue found.
type FileResult struct {
	Records int
	Issues  []eval.Issue
}

// ValidateTasks checks every record in a task file against the task schema.
func ValidateTasks(path string) (*FileResult, error) {
	tasks, issues, err := loadTasks(path)
	if err != nil {
		return nil, err
	}
	return &FileResult{Records: len(tasks), Issues: issues}, nil
}

// ValidateLabels checks every record in a gold-label file against the label
// schema.
func ValidateLabels(path string) (*FileResult, error) {
	labels, issues, err := loadLabels(path)
	if err != nil {
		return nil, err
	}
	return &FileResult{Records: len(labels), Issues: issues}, nil
}
