// Package loader reads employee performance records from CSV files.
//
// # Architecture
//
// The loader package is designed around the CSVLoader type, which reads a
// CSV file from disk, resolves the required columns from the header row,
// and converts each data row into a model.EmployeeRecord.
//
// Design decision: We build on encoding/csv rather than a third-party CSV
// library because:
//  1. The input format is plain RFC 4180 CSV with a single header row
//  2. encoding/csv already handles quoting, embedded commas, and multiline fields
//  3. Column resolution by header name is a few lines on top of the raw records
//
// # Columns
//
// The loader requires three columns, matched case-insensitively by header
// name: "name", "department", and "score". Columns may appear in any order,
// and extra columns are ignored. A missing required column aborts the load.
//
// # Malformed Rows
//
// Rows with an empty name or department, a score that does not parse as a
// number, or too few fields are malformed. By default the loader skips them,
// records each skip with its row number and reason, and logs a warning. In
// strict mode the first malformed row aborts the load instead.
//
// # Usage
//
//	l := loader.NewCSVLoader(loader.WithStrict(true))
//	records, skipped, err := l.Load("data.csv")
package loader
