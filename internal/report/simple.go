package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/empreport/internal/model"
)

// lineWidth is the width of rule lines in text output.
const lineWidth = 70

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display and mirrors the section
// layout of the PDF report.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no data are shown.
	showEmpty bool

	// verbose enables additional detail in the output, such as the
	// run ID and the stages that produced the report.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run in human-readable format.
func (w *SimpleWriter) Write(run *model.ReportRun) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)

	if run.HasStatistics() {
		w.writeSummary(&sb, run)
		w.writeDepartments(&sb, run)
		w.writeDetail(&sb, run)
		w.writeSkipped(&sb, run)
		w.writeConclusion(&sb, run)
	} else {
		sb.WriteString("  No employee records were available for analysis.\n\n")
		w.writeSkipped(&sb, run)
	}

	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.ReportRun) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")
	sb.WriteString(centerText(strings.ToUpper(titleOf(run)), lineWidth))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Source File:  %s\n", run.SourcePath))
	sb.WriteString(fmt.Sprintf("Generated On: %s\n", formatDate(run.GeneratedAt)))
	sb.WriteString(fmt.Sprintf("Employees:    %d\n", run.RecordCount()))

	if w.verbose {
		sb.WriteString(fmt.Sprintf("Run ID:       %s\n", run.RunID))
		if len(run.CompletedStages) > 0 {
			sb.WriteString(fmt.Sprintf("Stages:       %s\n", strings.Join(run.CompletedStages, ", ")))
		}
	}

	if run.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Status:       ERROR - %s\n", run.ErrorMessage))
	} else {
		sb.WriteString("Status:       Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the overall summary statistics section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, run *model.ReportRun) {
	w.writeSectionHeader(sb, "1. SUMMARY STATISTICS")

	overall := run.Overall
	sb.WriteString(fmt.Sprintf("  Total Employees: %d\n", overall.TotalEmployees))
	sb.WriteString(fmt.Sprintf("  Average Score:   %s\n", formatScore(overall.Average)))
	sb.WriteString(fmt.Sprintf("  Highest Score:   %s (%s)\n", formatScore(overall.HighestScore), overall.HighestEmployee))
	sb.WriteString(fmt.Sprintf("  Lowest Score:    %s (%s)\n", formatScore(overall.LowestScore), overall.LowestEmployee))
	sb.WriteString("\n")
}

// writeDepartments writes the department-wise performance section.
func (w *SimpleWriter) writeDepartments(sb *strings.Builder, run *model.ReportRun) {
	if len(run.Departments) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionHeader(sb, "2. DEPARTMENT-WISE PERFORMANCE")

	if len(run.Departments) == 0 {
		sb.WriteString("  No departments\n")
	} else {
		for _, dept := range run.Departments {
			sb.WriteString(fmt.Sprintf("  %s: Average Score = %s (%d %s)\n",
				dept.Department, formatScore(dept.Average), dept.Count, pluralEmployees(dept.Count)))
		}
	}
	sb.WriteString("\n")
}

// writeDetail writes the per-employee score table.
func (w *SimpleWriter) writeDetail(sb *strings.Builder, run *model.ReportRun) {
	w.writeSectionHeader(sb, "3. EMPLOYEE-WISE DETAILED SCORES")

	sb.WriteString(fmt.Sprintf("  %-28s %-24s %10s\n", "Name", "Department", "Score"))
	sb.WriteString("  ")
	sb.WriteString(strings.Repeat("-", lineWidth-4))
	sb.WriteString("\n")

	for _, r := range run.Records {
		sb.WriteString(fmt.Sprintf("  %-28s %-24s %10s\n", r.Name, r.Department, formatScore(r.Score)))
	}
	sb.WriteString("\n")
}

// writeSkipped writes the skipped-row section, listing rows that were
// excluded from the statistics.
func (w *SimpleWriter) writeSkipped(sb *strings.Builder, run *model.ReportRun) {
	if len(run.Skipped) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionHeader(sb, "SKIPPED ROWS")

	if len(run.Skipped) == 0 {
		sb.WriteString("  No rows were skipped\n")
	} else {
		for _, s := range run.Skipped {
			sb.WriteString(fmt.Sprintf("  row %d: %s\n", s.Row, s.Reason))
		}
	}
	sb.WriteString("\n")
}

// writeConclusion writes the closing remarks section.
func (w *SimpleWriter) writeConclusion(sb *strings.Builder, run *model.ReportRun) {
	w.writeSectionHeader(sb, "4. CONCLUSION")
	sb.WriteString("  ")
	sb.WriteString(conclusionText(run))
	sb.WriteString("\n\n")
}

// writeSectionHeader writes a section title between rule lines.
func (w *SimpleWriter) writeSectionHeader(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by empreport\n")
	sb.WriteString("https://github.com/nao1215/empreport\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")
}

// centerText centers s within width by left-padding with spaces.
// Strings wider than width are returned unchanged.
func centerText(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}

// pluralEmployees returns the correct noun for a department head count.
func pluralEmployees(count int) string {
	if count == 1 {
		return "employee"
	}
	return "employees"
}
