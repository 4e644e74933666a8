package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/nao1215/empreport/internal/model"
)

// PDFWriter outputs reports as PDF documents.
// This is the primary output format: an A4 portrait document with a
// repeated title header, numbered sections, a bordered score table, and
// page numbers in the footer.
//
// Design decision: We use github.com/go-pdf/fpdf because:
// 1. Pure Go, no external renderer or browser required
// 2. The cell drawing model maps directly onto the report's fixed section layout
// 3. Maintained fork of gofpdf with the same stable API
type PDFWriter struct {
	baseWriter

	// margin is the page margin in millimeters. It is applied to all
	// four sides and to the auto page break threshold.
	margin float64
}

// PDFWriterOption configures a PDFWriter.
type PDFWriterOption func(*PDFWriter)

// WithPageMargin sets the page margin in millimeters.
func WithPageMargin(margin float64) PDFWriterOption {
	return func(w *PDFWriter) {
		w.margin = margin
	}
}

// NewPDFWriter creates a PDFWriter that outputs to the given writer.
func NewPDFWriter(output io.Writer, opts ...PDFWriterOption) *PDFWriter {
	w := &PDFWriter{
		baseWriter: newBaseWriter(output),
		margin:     15,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the run as a PDF document.
func (w *PDFWriter) Write(run *model.ReportRun) (int, error) {
	pdf := fpdf.New("P", "mm", "A4", "")

	// Core fonts are cp1252; the translator maps UTF-8 input onto it so
	// accented names render instead of becoming garbage bytes.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(titleOf(run), true)
	pdf.SetMargins(w.margin, w.margin, w.margin)
	pdf.SetAutoPageBreak(true, w.margin)

	title := tr(titleOf(run))
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 0, "C", false, 0, "")
		pdf.Ln(15)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	w.writeMetadata(pdf, tr, run)

	if run.HasStatistics() {
		w.writeSummary(pdf, tr, run)
		w.writeDepartments(pdf, tr, run)
		w.writeDetail(pdf, tr, run)
		w.writeSkipped(pdf, tr, run)
		w.writeConclusion(pdf, run)
	} else {
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 8, "No employee records were available for analysis.", "", "", false)
	}

	counter := &countingWriter{w: w.output}
	if err := pdf.Output(counter); err != nil {
		return counter.n, fmt.Errorf("failed to render PDF: %w", err)
	}
	return counter.n, nil
}

// writeMetadata writes the generation date and source information.
func (w *PDFWriter) writeMetadata(pdf *fpdf.Fpdf, tr func(string) string, run *model.ReportRun) {
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, "Report Generated On: "+formatDate(run.GeneratedAt), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 8, tr("Source File: "+run.SourcePath), "", 1, "", false, 0, "")

	if run.ErrorMessage != "" {
		pdf.CellFormat(0, 8, tr("Status: ERROR - "+run.ErrorMessage), "", 1, "", false, 0, "")
	}

	pdf.Ln(5)
}

// writeSummary writes the overall summary statistics section.
func (w *PDFWriter) writeSummary(pdf *fpdf.Fpdf, tr func(string) string, run *model.ReportRun) {
	w.writeSectionTitle(pdf, "1. Summary Statistics")

	overall := run.Overall
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total Employees: %d", overall.TotalEmployees), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 8, "Average Score: "+formatScore(overall.Average), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 8,
		tr(fmt.Sprintf("Highest Score: %s (%s)", formatScore(overall.HighestScore), overall.HighestEmployee)),
		"", 1, "", false, 0, "")
	pdf.CellFormat(0, 8,
		tr(fmt.Sprintf("Lowest Score: %s (%s)", formatScore(overall.LowestScore), overall.LowestEmployee)),
		"", 1, "", false, 0, "")
	pdf.Ln(5)
}

// writeDepartments writes the department-wise performance section.
func (w *PDFWriter) writeDepartments(pdf *fpdf.Fpdf, tr func(string) string, run *model.ReportRun) {
	w.writeSectionTitle(pdf, "2. Department-wise Performance")

	pdf.SetFont("Arial", "", 11)
	for _, dept := range run.Departments {
		line := fmt.Sprintf("%s: Average Score = %s (%d %s)",
			dept.Department, formatScore(dept.Average), dept.Count, pluralEmployees(dept.Count))
		pdf.CellFormat(0, 8, tr(line), "", 1, "", false, 0, "")
	}
	pdf.Ln(5)
}

// writeDetail writes the bordered per-employee score table.
func (w *PDFWriter) writeDetail(pdf *fpdf.Fpdf, tr func(string) string, run *model.ReportRun) {
	w.writeSectionTitle(pdf, "3. Employee-wise Detailed Scores")

	colWidths := [3]float64{60, 60, 30}
	headers := [3]string{"Name", "Department", "Score"}

	pdf.SetFont("Arial", "B", 11)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 10, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	for _, r := range run.Records {
		pdf.CellFormat(colWidths[0], 10, tr(r.Name), "1", 0, "", false, 0, "")
		pdf.CellFormat(colWidths[1], 10, tr(r.Department), "1", 0, "", false, 0, "")
		pdf.CellFormat(colWidths[2], 10, formatScore(r.Score), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(5)
}

// writeSkipped writes an italic note listing rows excluded from the
// statistics. Nothing is written when no rows were skipped.
func (w *PDFWriter) writeSkipped(pdf *fpdf.Fpdf, tr func(string) string, run *model.ReportRun) {
	if len(run.Skipped) == 0 {
		return
	}

	reasons := make([]string, len(run.Skipped))
	for i, s := range run.Skipped {
		reasons[i] = fmt.Sprintf("row %d (%s)", s.Row, s.Reason)
	}
	note := fmt.Sprintf("Note: %d malformed %s skipped and excluded from the statistics: %s.",
		len(run.Skipped), pluralRows(len(run.Skipped)), strings.Join(reasons, "; "))

	pdf.SetFont("Arial", "I", 10)
	pdf.MultiCell(0, 6, tr(note), "", "", false)
	pdf.Ln(5)
}

// writeConclusion writes the closing remarks section.
func (w *PDFWriter) writeConclusion(pdf *fpdf.Fpdf, run *model.ReportRun) {
	w.writeSectionTitle(pdf, "4. Conclusion")

	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 8, conclusionText(run), "", "", false)
}

// writeSectionTitle writes a bold numbered section heading.
func (w *PDFWriter) writeSectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, title, "", 1, "", false, 0, "")
}

// pluralRows returns the correct noun for a skipped-row count.
func pluralRows(count int) string {
	if count == 1 {
		return "row was"
	}
	return "rows were"
}

// countingWriter counts bytes passed through to the underlying writer.
// fpdf reports rendering success but not size; the report API returns
// bytes written, so the count is taken here.
type countingWriter struct {
	w io.Writer
	n int
}

// Write passes p through and accumulates the byte count.
func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
