package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/empreport/internal/loader"
	"github.com/nao1215/empreport/internal/model"
	"github.com/nao1215/empreport/internal/stats"
)

// writeTestCSV writes CSV content to a temporary file and returns its path.
func writeTestCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "employees.csv")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

const sampleCSV = `name,department,score
Alice,Sales,80
Bob,Sales,90
Charlie,IT,70
`

const malformedCSV = `name,department,score
Alice,Sales,80
Bob,Sales,not-a-number
Charlie,IT,70
`

// TestLoadStep tests the CSV loading step.
func TestLoadStep(t *testing.T) {
	t.Parallel()

	t.Run("loads records into the run", func(t *testing.T) {
		t.Parallel()

		step := NewLoadStep()
		run := model.NewReportRun(writeTestCSV(t, sampleCSV))

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if run.RecordCount() != 3 {
			t.Errorf("expected 3 records, got %d", run.RecordCount())
		}
		if run.SkippedCount() != 0 {
			t.Errorf("expected 0 skipped rows, got %d", run.SkippedCount())
		}
		if run.Records[0].Name != "Alice" {
			t.Errorf("expected first record Alice, got %q", run.Records[0].Name)
		}
	})

	t.Run("records skipped rows", func(t *testing.T) {
		t.Parallel()

		step := NewLoadStep()
		run := model.NewReportRun(writeTestCSV(t, malformedCSV))

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if run.RecordCount() != 2 {
			t.Errorf("expected 2 records, got %d", run.RecordCount())
		}
		if run.SkippedCount() != 1 {
			t.Fatalf("expected 1 skipped row, got %d", run.SkippedCount())
		}
		if run.Skipped[0].Row != 3 {
			t.Errorf("expected skipped row 3, got %d", run.Skipped[0].Row)
		}
	})

	t.Run("strict mode fails on malformed row", func(t *testing.T) {
		t.Parallel()

		step := NewLoadStep(WithLoadStrict(true))
		run := model.NewReportRun(writeTestCSV(t, malformedCSV))

		err := step.Do(context.Background(), run)

		if !errors.Is(err, loader.ErrMalformedRow) {
			t.Errorf("expected ErrMalformedRow, got %v", err)
		}
	})

	t.Run("fails when input file is missing", func(t *testing.T) {
		t.Parallel()

		step := NewLoadStep()
		run := model.NewReportRun(filepath.Join(t.TempDir(), "missing.csv"))

		err := step.Do(context.Background(), run)

		if !errors.Is(err, loader.ErrInputNotFound) {
			t.Errorf("expected ErrInputNotFound, got %v", err)
		}
	})

	t.Run("returns step name", func(t *testing.T) {
		t.Parallel()

		step := NewLoadStep()
		if step.Name() != "load" {
			t.Errorf("expected name 'load', got %q", step.Name())
		}
	})
}

// TestAnalyzeStep tests the statistics computation step.
func TestAnalyzeStep(t *testing.T) {
	t.Parallel()

	t.Run("computes statistics from loaded records", func(t *testing.T) {
		t.Parallel()

		step := NewAnalyzeStep()
		run := model.NewReportRun("data.csv")
		run.Records = []model.EmployeeRecord{
			{Name: "Alice", Department: "Sales", Score: 80},
			{Name: "Bob", Department: "Sales", Score: 90},
			{Name: "Charlie", Department: "IT", Score: 70},
		}

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if run.Overall == nil {
			t.Fatal("expected overall summary to be set")
		}
		if run.Overall.Average != 80 {
			t.Errorf("expected average 80, got %v", run.Overall.Average)
		}
		if run.Overall.HighestEmployee != "Bob" {
			t.Errorf("expected highest employee Bob, got %q", run.Overall.HighestEmployee)
		}
		if len(run.Departments) != 2 {
			t.Fatalf("expected 2 departments, got %d", len(run.Departments))
		}
		if run.Departments[0].Department != "Sales" {
			t.Errorf("expected first department Sales, got %q", run.Departments[0].Department)
		}
	})

	t.Run("fails when no records are loaded", func(t *testing.T) {
		t.Parallel()

		step := NewAnalyzeStep()
		run := model.NewReportRun("data.csv")

		err := step.Do(context.Background(), run)

		if !errors.Is(err, stats.ErrNoRecords) {
			t.Errorf("expected ErrNoRecords, got %v", err)
		}
	})

	t.Run("returns step name", func(t *testing.T) {
		t.Parallel()

		step := NewAnalyzeStep()
		if step.Name() != "analyze" {
			t.Errorf("expected name 'analyze', got %q", step.Name())
		}
	})
}

// TestDefaultPipeline tests the standard load and analyze pipeline.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("configures load and analyze steps in order", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(nil)

		if p.StepCount() != 2 {
			t.Fatalf("expected 2 steps, got %d", p.StepCount())
		}

		names := p.StepNames()
		if names[0] != "load" || names[1] != "analyze" {
			t.Errorf("unexpected step order: %v", names)
		}
	})

	t.Run("produces statistics from a CSV file", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(nil)
		run := model.NewReportRun(writeTestCSV(t, sampleCSV))

		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !run.HasStatistics() {
			t.Fatal("expected statistics to be computed")
		}
		if run.Overall.TotalEmployees != 3 {
			t.Errorf("expected 3 employees, got %d", run.Overall.TotalEmployees)
		}
		if len(run.CompletedStages) != 2 {
			t.Errorf("expected 2 completed stages, got %v", run.CompletedStages)
		}
	})

	t.Run("strict mode aborts on malformed rows", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(nil, WithPipelineStrict(true))
		run := model.NewReportRun(writeTestCSV(t, malformedCSV))

		err := p.Execute(context.Background(), run)

		if !errors.Is(err, loader.ErrMalformedRow) {
			t.Errorf("expected ErrMalformedRow, got %v", err)
		}
		if run.ErrorMessage == "" {
			t.Error("expected error message recorded in run")
		}
	})

	t.Run("records error for missing input file", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(nil)
		run := model.NewReportRun(filepath.Join(t.TempDir(), "missing.csv"))

		err := p.Execute(context.Background(), run)

		if !errors.Is(err, loader.ErrInputNotFound) {
			t.Errorf("expected ErrInputNotFound, got %v", err)
		}
		if run.Error == nil {
			t.Error("expected error recorded in run")
		}
		if len(run.CompletedStages) != 0 {
			t.Errorf("expected no completed stages, got %v", run.CompletedStages)
		}
	})
}
