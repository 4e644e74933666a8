package model

// OverallSummary holds aggregate statistics across all loaded records.
//
// Design decision: Average carries full float64 precision. Fixed-decimal
// formatting is a presentation concern and is applied by the report
// writers, not here. Keeping the raw mean lets consumers (history
// comparison, JSON output) work with exact values.
type OverallSummary struct {
	// TotalEmployees is the number of records that contributed to the
	// statistics.
	TotalEmployees int `json:"total_employees"`

	// Average is the arithmetic mean of all scores.
	Average float64 `json:"average"`

	// HighestScore is the maximum score across all records.
	HighestScore float64 `json:"highest_score"`

	// HighestEmployee is the name of the employee with the highest score.
	// Ties are broken by first occurrence in input order.
	HighestEmployee string `json:"highest_employee"`

	// LowestScore is the minimum score across all records.
	LowestScore float64 `json:"lowest_score"`

	// LowestEmployee is the name of the employee with the lowest score.
	// Ties are broken by first occurrence in input order.
	LowestEmployee string `json:"lowest_employee"`
}

// DepartmentSummary holds aggregate statistics for a single department.
// Summaries are recomputed on every run and never persisted independently
// of the run they belong to.
type DepartmentSummary struct {
	// Department is the department name exactly as it appears in the input.
	Department string `json:"department"`

	// Average is the arithmetic mean of the department's scores.
	Average float64 `json:"average"`

	// Count is the number of employees in the department.
	Count int `json:"count"`
}
