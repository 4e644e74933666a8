package report

import (
	"fmt"
	"io"
	"time"

	"github.com/nao1215/empreport/internal/model"
)

// defaultTitle is used when a run carries no explicit report title.
const defaultTitle = "Employee Performance Analysis Report"

// Writer defines the interface for report output.
// Implementations render a completed run in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or buffers
// with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.ReportRun) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(run *model.ReportRun) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// titleOf returns the run's report title, or the default title when the
// run does not carry one.
func titleOf(run *model.ReportRun) string {
	if run.Title != "" {
		return run.Title
	}
	return defaultTitle
}

// formatScore renders a score with two decimal places.
// Statistics are stored at full precision; rounding happens here, at the
// presentation boundary, so every format shows the same figures.
func formatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

// formatDate renders the report generation date, e.g. "August 22, 2026".
func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// conclusionText returns the closing remark quoting the overall average.
// Shared across formats so the PDF, text, and markdown reports all close
// with the same sentence.
func conclusionText(run *model.ReportRun) string {
	return fmt.Sprintf(
		"The overall average performance score of employees is %s. "+
			"Continuous monitoring and targeted improvements can help increase overall productivity.",
		formatScore(run.Overall.Average),
	)
}
