package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/empreport/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.ReportRun) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeAlert(md, run)

	if run.HasStatistics() {
		w.writeSummary(md, run)
		w.writeDepartments(md, run)
		w.writeDetail(md, run)
	} else {
		md.PlainText("No employee records were available for analysis.")
		md.PlainText("")
	}

	w.writeSkipped(md, run)

	if run.HasStatistics() {
		w.writeConclusion(md, run)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.ReportRun) {
	md.H1(titleOf(run))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source File", "`" + run.SourcePath + "`"},
			{"Generated On", formatDate(run.GeneratedAt)},
			{"Employees", strconv.Itoa(run.RecordCount())},
			{"Status", w.getStatusText(run)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on run state.
func (w *MarkdownWriter) getStatusText(run *model.ReportRun) string {
	if run.ErrorMessage != "" {
		return "❌ Error - " + run.ErrorMessage
	}
	return "✅ Complete"
}

// writeAlert writes an appropriate alert based on how the run went.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.ReportRun) {
	switch {
	case run.ErrorMessage != "":
		md.Cautionf("Report generation failed: %s", run.ErrorMessage)
	case run.SkippedCount() > 0:
		md.Warningf(
			"%d malformed row(s) were skipped. The statistics below exclude them; see the Skipped Rows section.",
			run.SkippedCount(),
		)
	case !run.HasStatistics():
		md.Important("The input file contained no data rows.")
	default:
		md.Tip("All rows were parsed successfully.")
	}
	md.PlainText("")
}

// writeSummary writes the overall summary statistics section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, run *model.ReportRun) {
	md.H2("Summary Statistics")
	md.PlainText("")

	overall := run.Overall
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Employees", strconv.Itoa(overall.TotalEmployees)},
			{"Average Score", formatScore(overall.Average)},
			{"Highest Score", formatScore(overall.HighestScore) + " (" + overall.HighestEmployee + ")"},
			{"Lowest Score", formatScore(overall.LowestScore) + " (" + overall.LowestEmployee + ")"},
		},
	})
	md.PlainText("")
}

// writeDepartments writes the department-wise performance section.
func (w *MarkdownWriter) writeDepartments(md *markdown.Markdown, run *model.ReportRun) {
	md.H2("Department-wise Performance")
	md.PlainText("")

	if len(run.Departments) == 0 {
		md.PlainText("No departments.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.Departments))
	for i, dept := range run.Departments {
		rows[i] = []string{
			dept.Department,
			formatScore(dept.Average),
			strconv.Itoa(dept.Count),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Department", "Average Score", "Employees"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, run)
}

// writePieChart writes a mermaid pie chart of employees per department.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, run *model.ReportRun) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Employees per Department"),
		piechart.WithShowData(true),
	)

	for _, dept := range run.Departments {
		chart.LabelAndIntValue(dept.Department, uint64(dept.Count)) //nolint:gosec // Count is a non-negative row count
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDetail writes the per-employee score table.
func (w *MarkdownWriter) writeDetail(md *markdown.Markdown, run *model.ReportRun) {
	md.H2("Employee-wise Detailed Scores")
	md.PlainText("")

	rows := make([][]string, len(run.Records))
	for i, r := range run.Records {
		rows[i] = []string{
			truncateString(r.Name, 50),
			truncateString(r.Department, 40),
			formatScore(r.Score),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Name", "Department", "Score"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSkipped writes the skipped-row section when rows were excluded.
func (w *MarkdownWriter) writeSkipped(md *markdown.Markdown, run *model.ReportRun) {
	if len(run.Skipped) == 0 {
		return
	}

	md.H2("Skipped Rows")
	md.PlainText("")

	items := make([]string, len(run.Skipped))
	for i, s := range run.Skipped {
		items[i] = "row " + strconv.Itoa(s.Row) + ": " + s.Reason
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeConclusion writes the closing remarks section.
func (w *MarkdownWriter) writeConclusion(md *markdown.Markdown, run *model.ReportRun) {
	md.H2("Conclusion")
	md.PlainText("")
	md.PlainText(conclusionText(run))
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [empreport](https://github.com/nao1215/empreport)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
