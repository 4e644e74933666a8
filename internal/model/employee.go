package model

// EmployeeRecord is a single employee performance row loaded from the input
// file. Records are immutable after loading; all statistics are derived
// from them without modification.
type EmployeeRecord struct {
	// Name is the employee's display name as it appears in the input.
	Name string `json:"name"`

	// Department is the organizational unit the employee belongs to.
	// Every record belongs to exactly one department.
	Department string `json:"department"`

	// Score is the performance score. Both integral ("80") and decimal
	// ("80.5") input values are accepted.
	Score float64 `json:"score"`
}

// SkippedRow records an input row that was rejected during loading.
type SkippedRow struct {
	// Row is the 1-based line number of the rejected row in the input file.
	// The header row counts as line 1, matching what a user sees in a
	// spreadsheet editor.
	Row int `json:"row"`

	// Reason describes why the row was rejected.
	Reason string `json:"reason"`
}
