// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - PDFWriter: Paginated PDF document, the primary output format
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown output for documentation and sharing
//   - JSONWriter: Structured JSON output for tool integration
//
// All writers render the same document structure: title, generation
// metadata, summary statistics, department-wise performance, the
// per-employee score table, skipped-row notes, and a conclusion.
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
