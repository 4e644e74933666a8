// Package main provides the entry point for the empreport CLI.
//
// empreport reads employee performance records from a CSV file, computes
// overall and per-department statistics, and renders a formatted report.
//
// Usage:
//
//	empreport generate
//	empreport generate team.csv -o team_report.pdf
//
// See --help for all available options.
package main

// main is the entry point for empreport.
func main() {
	Execute()
}
