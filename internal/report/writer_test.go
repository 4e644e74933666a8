package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nao1215/empreport/internal/model"
)

// createTestRun creates a run with sample data for testing.
func createTestRun() *model.ReportRun {
	run := model.NewReportRun("data.csv")
	run.Records = []model.EmployeeRecord{
		{Name: "Alice", Department: "Sales", Score: 80},
		{Name: "Bob", Department: "Sales", Score: 90},
		{Name: "Charlie", Department: "IT", Score: 70},
	}
	run.Overall = &model.OverallSummary{
		TotalEmployees:  3,
		Average:         80,
		HighestScore:    90,
		HighestEmployee: "Bob",
		LowestScore:     70,
		LowestEmployee:  "Charlie",
	}
	run.Departments = []model.DepartmentSummary{
		{Department: "Sales", Average: 85, Count: 2},
		{Department: "IT", Average: 70, Count: 1},
	}
	run.CompletedStages = []string{"load", "analyze"}
	return run
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "EMPLOYEE PERFORMANCE ANALYSIS REPORT") {
			t.Error("expected output to contain the default title")
		}
		if !strings.Contains(output, "data.csv") {
			t.Error("expected output to contain the source file")
		}
		if !strings.Contains(output, "Status:       Complete") {
			t.Error("expected output to contain complete status")
		}
	})

	t.Run("uses custom title when set", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		run := createTestRun()
		run.Title = "Q3 Performance Review"

		_, err := w.Write(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Q3 PERFORMANCE REVIEW") {
			t.Error("expected output to contain the custom title")
		}
	})

	t.Run("writes summary statistics", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "1. SUMMARY STATISTICS") {
			t.Error("expected output to contain summary section header")
		}
		if !strings.Contains(output, "Total Employees: 3") {
			t.Error("expected output to contain total employees")
		}
		if !strings.Contains(output, "80.00") {
			t.Error("expected output to contain average score")
		}
		if !strings.Contains(output, "90.00 (Bob)") {
			t.Error("expected output to contain highest score with employee")
		}
		if !strings.Contains(output, "70.00 (Charlie)") {
			t.Error("expected output to contain lowest score with employee")
		}
	})

	t.Run("writes department performance", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "2. DEPARTMENT-WISE PERFORMANCE") {
			t.Error("expected output to contain department section header")
		}
		if !strings.Contains(output, "Sales: Average Score = 85.00 (2 employees)") {
			t.Error("expected output to contain Sales average")
		}
		if !strings.Contains(output, "IT: Average Score = 70.00 (1 employee)") {
			t.Error("expected output to contain IT average with singular noun")
		}
	})

	t.Run("writes employee score table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "3. EMPLOYEE-WISE DETAILED SCORES") {
			t.Error("expected output to contain detail section header")
		}
		for _, name := range []string{"Alice", "Bob", "Charlie"} {
			if !strings.Contains(output, name) {
				t.Errorf("expected output to contain employee %q", name)
			}
		}
	})

	t.Run("writes conclusion quoting the average", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "4. CONCLUSION") {
			t.Error("expected output to contain conclusion header")
		}
		if !strings.Contains(output, "overall average performance score of employees is 80.00") {
			t.Error("expected conclusion to quote the average")
		}
	})

	t.Run("hides skipped section when nothing was skipped", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "SKIPPED ROWS") {
			t.Error("should not show skipped section without skipped rows")
		}
	})

	t.Run("shows empty skipped section with showEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SKIPPED ROWS") {
			t.Error("expected skipped section with showEmpty")
		}
		if !strings.Contains(output, "No rows were skipped") {
			t.Error("expected 'No rows were skipped' message")
		}
	})

	t.Run("lists skipped rows with reasons", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		run := createTestRun()
		run.Skipped = []model.SkippedRow{
			{Row: 3, Reason: `invalid score "abc"`},
			{Row: 5, Reason: "empty name"},
		}

		_, err := w.Write(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, `row 3: invalid score "abc"`) {
			t.Error("expected skipped row 3 with reason")
		}
		if !strings.Contains(output, "row 5: empty name") {
			t.Error("expected skipped row 5 with reason")
		}
	})

	t.Run("verbose mode includes run ID and stages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))
		run := createTestRun()

		_, err := w.Write(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, run.RunID) {
			t.Error("expected verbose output to contain run ID")
		}
		if !strings.Contains(output, "load, analyze") {
			t.Error("expected verbose output to contain completed stages")
		}
	})

	t.Run("shows error in status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		run := createTestRun()
		run.ErrorMessage = "input file corrupted"

		_, err := w.Write(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "ERROR - input file corrupted") {
			t.Error("expected error message in status")
		}
	})

	t.Run("handles run without statistics", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		run := model.NewReportRun("empty.csv")

		_, err := w.Write(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No employee records were available for analysis") {
			t.Error("expected message about missing records")
		}
		if strings.Contains(output, "1. SUMMARY STATISTICS") {
			t.Error("should not render statistics sections without statistics")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.ReportRun
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.SourcePath != "data.csv" {
			t.Errorf("expected source path %q, got %q", "data.csv", parsed.SourcePath)
		}
		if parsed.Overall == nil || parsed.Overall.TotalEmployees != 3 {
			t.Error("expected overall summary with 3 employees")
		}
		if len(parsed.Departments) != 2 {
			t.Errorf("expected 2 departments, got %d", len(parsed.Departments))
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) > 1 {
			t.Errorf("expected compact output (1 line), got %d lines", len(lines))
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
	})
}

// TestWithIndent tests the WithIndent JSON option.
func TestWithIndent(t *testing.T) {
	t.Parallel()

	t.Run("uses custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent(">>", "\t"))

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
		if !strings.Contains(output, ">>") {
			t.Error("expected custom prefix '>>' in output")
		}
		if !strings.Contains(output, "\t") {
			t.Error("expected tab indentation in output")
		}
	})
}

// TestFullJSONWriter tests the full JSON writer with metadata.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes version in output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3", WithPrettyPrint())
		run := createTestRun()

		_, err := w.Write(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed JSONReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Version != "1.2.3" {
			t.Errorf("expected version %q, got %q", "1.2.3", parsed.Version)
		}
		if parsed.Report == nil || parsed.Report.RunID != run.RunID {
			t.Error("expected wrapped report to carry the run ID")
		}
	})
}

// TestMultiWriter tests writing to multiple outputs.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		w1 := NewSimpleWriter(&buf1)
		w2 := NewJSONWriter(&buf2)

		multi := NewMultiWriter(w1, w2)

		_, err := multi.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if buf1.Len() == 0 {
			t.Error("expected buf1 to have content")
		}
		if buf2.Len() == 0 {
			t.Error("expected buf2 to have content")
		}

		// Verify formats are different
		if strings.Contains(buf1.String(), "{") {
			t.Error("expected buf1 (simple) to not be JSON")
		}
		if !strings.Contains(buf2.String(), "{") {
			t.Error("expected buf2 (JSON) to contain JSON")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		multi := NewMultiWriter()

		n, err := multi.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes written for empty writers, got %d", n)
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Employee Performance Analysis Report") {
			t.Error("expected output to contain H1 header")
		}
		if !strings.Contains(output, "`data.csv`") {
			t.Error("expected output to contain the source file")
		}
	})

	t.Run("writes summary statistics", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Summary Statistics") {
			t.Error("expected output to contain summary header")
		}
		if !strings.Contains(output, "90.00 (Bob)") {
			t.Error("expected output to contain highest score with employee")
		}
	})

	t.Run("writes department table and pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Department-wise Performance") {
			t.Error("expected output to contain department header")
		}
		if !strings.Contains(output, "85.00") {
			t.Error("expected output to contain Sales average")
		}
		if !strings.Contains(output, "pie") {
			t.Error("expected output to contain mermaid pie chart")
		}
		if !strings.Contains(output, "Employees per Department") {
			t.Error("expected pie chart title")
		}
	})

	t.Run("writes employee scores table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Employee-wise Detailed Scores") {
			t.Error("expected output to contain detail header")
		}
		if !strings.Contains(output, "Alice") {
			t.Error("expected output to contain employee name")
		}
	})

	t.Run("writes conclusion", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Conclusion") {
			t.Error("expected output to contain conclusion header")
		}
		if !strings.Contains(output, "overall average performance score of employees is 80.00") {
			t.Error("expected conclusion to quote the average")
		}
	})

	t.Run("tip alert when all rows parsed", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!TIP]") {
			t.Error("expected TIP alert for clean run")
		}
	})

	t.Run("warning alert and section for skipped rows", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		run := createTestRun()
		run.Skipped = []model.SkippedRow{{Row: 3, Reason: `invalid score "abc"`}}

		_, err := w.Write(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!WARNING]") {
			t.Error("expected WARNING alert for skipped rows")
		}
		if !strings.Contains(output, "## Skipped Rows") {
			t.Error("expected skipped rows section")
		}
		if !strings.Contains(output, "row 3") {
			t.Error("expected skipped row number")
		}
	})

	t.Run("caution alert on error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		run := createTestRun()
		run.ErrorMessage = "analysis failed"

		_, err := w.Write(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!CAUTION]") {
			t.Error("expected CAUTION alert on error")
		}
		if !strings.Contains(output, "analysis failed") {
			t.Error("expected error message in output")
		}
	})

	t.Run("handles run without statistics", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		run := model.NewReportRun("empty.csv")

		_, err := w.Write(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No employee records were available for analysis") {
			t.Error("expected message about missing records")
		}
		if !strings.Contains(output, "[!IMPORTANT]") {
			t.Error("expected IMPORTANT alert for empty input")
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "https://github.com/nao1215/empreport") {
			t.Error("expected footer with repository link")
		}
	})
}

// TestTruncateString tests the string truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"ab", 5, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			result := truncateString(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

// TestCenterText tests the title centering helper.
func TestCenterText(t *testing.T) {
	t.Parallel()

	t.Run("centers short text", func(t *testing.T) {
		t.Parallel()

		result := centerText("TITLE", 11)
		if result != "   TITLE" {
			t.Errorf("expected %q, got %q", "   TITLE", result)
		}
	})

	t.Run("returns wide text unchanged", func(t *testing.T) {
		t.Parallel()

		wide := strings.Repeat("X", 80)
		if centerText(wide, 70) != wide {
			t.Error("expected text wider than width to be unchanged")
		}
	})
}
