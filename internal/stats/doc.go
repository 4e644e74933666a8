// Package stats computes performance statistics from employee records.
//
// # Purpose
//
// This package turns loaded employee records into the figures the report
// presents: an overall summary (average, highest, and lowest score with
// the employees who earned them) and per-department averages.
//
// # Precision
//
// Statistics are computed and stored at full float64 precision. Rounding
// to two decimal places happens in the report writers, so chained
// computations and run-to-run comparisons never accumulate rounding error.
//
// # Tie Breaking
//
// When several employees share the highest or lowest score, the first one
// in input order is reported. Department summaries likewise appear in the
// order each department first occurs in the input, so reports are stable
// across runs for the same file.
//
// # Usage
//
//	overall, err := stats.Overall(records)
//	if errors.Is(err, stats.ErrNoRecords) {
//		// file had a header but no data rows
//	}
//	departments := stats.ByDepartment(records)
package stats
