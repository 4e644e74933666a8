package model

import (
	"time"

	"github.com/google/uuid"
)

// ReportRun is the complete result of one report generation run.
// It accumulates data as the pipeline executes: the loader fills Records
// and Skipped, the analyzer fills Overall and Departments, and the command
// layer records rendering results.
//
// Design decision: A single envelope travels through the pipeline instead
// of separate per-stage results. This keeps the pipeline steps uniform and
// makes the whole run serializable for the history database in one shot.
type ReportRun struct {
	// === Run Identity ===

	// RunID uniquely identifies this run in the history database.
	RunID string `json:"run_id"`

	// SourcePath is the input CSV file the records were loaded from.
	SourcePath string `json:"source_path"`

	// GeneratedAt is the timestamp when the run started.
	GeneratedAt time.Time `json:"generated_at"`

	// Title is the report title rendered at the top of the document.
	// When empty, writers fall back to their default title.
	Title string `json:"title,omitempty"`

	// === Loaded Data ===

	// Records are the valid employee rows in input order.
	Records []EmployeeRecord `json:"records"`

	// Skipped lists input rows rejected during loading.
	Skipped []SkippedRow `json:"skipped,omitempty"`

	// === Computed Statistics ===

	// Overall holds the aggregate statistics across all records.
	// Nil until the analyze stage has run.
	Overall *OverallSummary `json:"overall,omitempty"`

	// Departments holds per-department statistics in first-seen input order.
	Departments []DepartmentSummary `json:"departments,omitempty"`

	// === Execution Metadata ===

	// CompletedStages lists the pipeline stages that ran to completion.
	CompletedStages []string `json:"completed_stages,omitempty"`

	// Error is the error that aborted the run, if any.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewReportRun creates a ReportRun for the given input file.
// The run ID and timestamp are assigned immediately so that even failed
// runs are identifiable in logs and the history database.
func NewReportRun(sourcePath string) *ReportRun {
	return &ReportRun{
		RunID:       uuid.NewString(),
		SourcePath:  sourcePath,
		GeneratedAt: time.Now(),
	}
}

// RecordCount returns the number of valid records loaded.
func (r *ReportRun) RecordCount() int {
	return len(r.Records)
}

// SkippedCount returns the number of rejected input rows.
func (r *ReportRun) SkippedCount() int {
	return len(r.Skipped)
}

// HasStatistics reports whether the analyze stage has populated the run.
func (r *ReportRun) HasStatistics() bool {
	return r.Overall != nil
}

// DepartmentNames returns the department names in first-seen input order.
func (r *ReportRun) DepartmentNames() []string {
	names := make([]string, len(r.Departments))
	for i, d := range r.Departments {
		names[i] = d.Department
	}
	return names
}
