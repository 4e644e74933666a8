package loader

import "errors"

// Loading errors.
// These errors are returned by CSVLoader.Load() and identify what went
// wrong with the input file.
//
// Design decision: We use package-level sentinel errors wrapped with
// fmt.Errorf and %w so that callers can use errors.Is() to branch on the
// failure class while the message still carries the file path, row
// number, or column name that caused it.
var (
	// ErrInputNotFound is returned when the input CSV file does not exist.
	ErrInputNotFound = errors.New("input file not found")

	// ErrMissingColumn is returned when the header row lacks one of the
	// required columns: name, department, or score.
	ErrMissingColumn = errors.New("missing required column")

	// ErrMalformedRow is returned in strict mode when a data row cannot
	// be converted into an employee record. In the default mode malformed
	// rows are skipped and recorded instead.
	ErrMalformedRow = errors.New("malformed row")
)
