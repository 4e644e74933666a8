// Package model defines the core data structures used throughout empreport.
//
// This package contains the following main types:
//   - EmployeeRecord: A single employee performance row loaded from CSV
//   - OverallSummary: Aggregate statistics across all employees
//   - DepartmentSummary: Aggregate statistics for one department
//   - ReportRun: The complete result of one report generation run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (loader, stats, report, database) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
