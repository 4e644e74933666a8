package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/empreport/internal/config"
	"github.com/nao1215/empreport/internal/database"
	"github.com/nao1215/empreport/internal/model"
	"github.com/spf13/cobra"
)

// Constants for the overall score direction between two runs.
const (
	directionImproved  = "improved"
	directionDeclined  = "declined"
	directionUnchanged = "unchanged"
)

// scoreEpsilon is the smallest average delta treated as a real change.
// It is half of the displayed two-decimal precision, so a comparison
// never reports a direction the rendered figures would not show.
const scoreEpsilon = 0.005

// NewCompareCmd creates the compare command.
// This command compares two archived report runs from the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [run-id run-id]",
		Short: "Compare two archived report runs",
		Long: `Compare displays differences between two archived report runs.

This command retrieves archived runs from the database and shows how the
overall and per-department statistics changed: the average score delta,
employee count changes, and departments that appeared or disappeared
between the runs.

Without arguments, the two most recent runs of the same input file are
compared. Pass two run IDs (older first) to compare specific runs; use
'empreport history' to see the IDs of archived runs.

Examples:
  # Compare the two most recent runs
  empreport compare

  # Compare the two most recent runs of a specific input file
  empreport compare --input team.csv

  # Compare two specific runs by ID
  empreport compare 1f0c8f04-8c4e-4a7e-9a64-1d5a2f9e0b11 7c21e6f0-55d1-4b08-9d5b-0a9e6f3c2d44

  # Output the comparison in JSON format
  empreport compare --json`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCompareCmd,
	}

	// Comparison target flags
	cmd.Flags().StringP("input", "i", "",
		"Compare the two most recent runs of this input file")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// A single run ID is ambiguous: comparisons always need two sides
	if len(args) == 1 {
		return errors.New("provide either two run IDs or none (use 'empreport history' to see run IDs)")
	}

	inputPath, err := cmd.Flags().GetString("input")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Use XDG data directory for the database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	previous, current, err := resolveRuns(ctx, db, args, inputPath)
	if err != nil {
		return err
	}

	// Runs that failed before analysis carry no statistics to compare
	for _, run := range []*model.ReportRun{previous, current} {
		if run.Overall == nil {
			return fmt.Errorf("run %s has no statistics (the run did not complete); cannot compare", run.RunID)
		}
	}

	comparison := compareRuns(previous, current)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// resolveRuns determines which two runs to compare.
// With two run IDs the first is treated as the previous run. Without
// arguments the two most recent runs of one input file are used: the
// file named by --input, or the file of the most recently archived run.
func resolveRuns(ctx context.Context, db *database.ReportDB, args []string, inputPath string) (previous, current *model.ReportRun, err error) {
	if len(args) == 2 {
		previous, err = getRunByID(ctx, db, args[0])
		if err != nil {
			return nil, nil, err
		}
		current, err = getRunByID(ctx, db, args[1])
		if err != nil {
			return nil, nil, err
		}
		return previous, current, nil
	}

	sourcePath := inputPath
	if sourcePath == "" {
		runs, err := db.ListRuns(ctx, "")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			return nil, nil, errors.New("no archived runs found (use 'empreport generate' to generate a report first)")
		}
		sourcePath = runs[0].SourcePath
	}

	ids, err := db.LatestRunIDs(ctx, sourcePath, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run history: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("no archived runs found for %s", sourcePath)
	}
	if len(ids) < 2 {
		return nil, nil, fmt.Errorf("at least 2 runs are required for comparison (found %d for %s)", len(ids), sourcePath)
	}

	// IDs are ordered newest first
	current, err = getRunByID(ctx, db, ids[0])
	if err != nil {
		return nil, nil, err
	}
	previous, err = getRunByID(ctx, db, ids[1])
	if err != nil {
		return nil, nil, err
	}
	return previous, current, nil
}

// getRunByID loads one archived run, treating an unknown ID as an error.
func getRunByID(ctx context.Context, db *database.ReportDB, runID string) (*model.ReportRun, error) {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	if run == nil {
		return nil, fmt.Errorf("run %s not found (use 'empreport history' to see available runs)", runID)
	}
	return run, nil
}

// ComparisonResult holds the result of comparing two archived runs.
type ComparisonResult struct {
	// SourcePath is the input file of the current run.
	SourcePath string `json:"source_path"`

	// Previous contains metadata about the previous run.
	Previous RunSummary `json:"previous_run"`

	// Current contains metadata about the current run.
	Current RunSummary `json:"current_run"`

	// Direction is "improved", "declined", or "unchanged", classified
	// from the overall average delta.
	Direction string `json:"direction"`

	// AverageDelta is the change in the overall average score.
	AverageDelta float64 `json:"average_delta"`

	// RecordDelta is the change in the number of employees.
	RecordDelta int `json:"record_delta"`

	// Departments lists deltas for departments present in both runs,
	// in the current run's input order.
	Departments []DepartmentDelta `json:"departments,omitempty"`

	// AddedDepartments lists departments present only in the current run.
	AddedDepartments []model.DepartmentSummary `json:"added_departments,omitempty"`

	// RemovedDepartments lists departments present only in the previous run.
	RemovedDepartments []model.DepartmentSummary `json:"removed_departments,omitempty"`
}

// RunSummary contains metadata about one side of a comparison.
type RunSummary struct {
	// RunID is the run's unique identifier.
	RunID string `json:"run_id"`

	// SourcePath is the input CSV file the run was generated from.
	SourcePath string `json:"source_path"`

	// GeneratedAt is when the run was generated.
	GeneratedAt time.Time `json:"generated_at"`

	// RecordCount is the number of valid records loaded.
	RecordCount int `json:"record_count"`

	// SkippedCount is the number of rejected input rows.
	SkippedCount int `json:"skipped_count"`

	// Average is the overall average score.
	Average float64 `json:"average"`

	// HighestScore is the maximum score in the run.
	HighestScore float64 `json:"highest_score"`

	// LowestScore is the minimum score in the run.
	LowestScore float64 `json:"lowest_score"`
}

// DepartmentDelta describes how one department changed between two runs.
type DepartmentDelta struct {
	// Department is the department name.
	Department string `json:"department"`

	// PreviousAverage is the department average in the previous run.
	PreviousAverage float64 `json:"previous_average"`

	// CurrentAverage is the department average in the current run.
	CurrentAverage float64 `json:"current_average"`

	// AverageDelta is the change in this department's average score.
	AverageDelta float64 `json:"average_delta"`

	// PreviousCount is the employee count in the previous run.
	PreviousCount int `json:"previous_count"`

	// CurrentCount is the employee count in the current run.
	CurrentCount int `json:"current_count"`
}

// newRunSummary extracts comparison metadata from a run.
// The caller ensures the run has statistics.
func newRunSummary(run *model.ReportRun) RunSummary {
	return RunSummary{
		RunID:        run.RunID,
		SourcePath:   run.SourcePath,
		GeneratedAt:  run.GeneratedAt,
		RecordCount:  run.RecordCount(),
		SkippedCount: run.SkippedCount(),
		Average:      run.Overall.Average,
		HighestScore: run.Overall.HighestScore,
		LowestScore:  run.Overall.LowestScore,
	}
}

// compareRuns compares two runs and generates a comparison result.
func compareRuns(previous, current *model.ReportRun) *ComparisonResult {
	result := &ComparisonResult{
		SourcePath: current.SourcePath,
		Previous:   newRunSummary(previous),
		Current:    newRunSummary(current),
	}

	result.AverageDelta = current.Overall.Average - previous.Overall.Average
	result.RecordDelta = current.Overall.TotalEmployees - previous.Overall.TotalEmployees
	result.Direction = scoreDirection(result.AverageDelta)

	// Align departments by name across the two runs
	previousDepts := make(map[string]model.DepartmentSummary)
	for _, d := range previous.Departments {
		previousDepts[d.Department] = d
	}
	currentDepts := make(map[string]model.DepartmentSummary)
	for _, d := range current.Departments {
		currentDepts[d.Department] = d
	}

	// Departments in the current run: changed or newly added
	for _, d := range current.Departments {
		prev, exists := previousDepts[d.Department]
		if !exists {
			result.AddedDepartments = append(result.AddedDepartments, d)
			continue
		}
		result.Departments = append(result.Departments, DepartmentDelta{
			Department:      d.Department,
			PreviousAverage: prev.Average,
			CurrentAverage:  d.Average,
			AverageDelta:    d.Average - prev.Average,
			PreviousCount:   prev.Count,
			CurrentCount:    d.Count,
		})
	}

	// Departments only in the previous run were removed
	for _, d := range previous.Departments {
		if _, exists := currentDepts[d.Department]; !exists {
			result.RemovedDepartments = append(result.RemovedDepartments, d)
		}
	}

	return result
}

// scoreDirection classifies an average score delta.
func scoreDirection(delta float64) string {
	switch {
	case delta >= scoreEpsilon:
		return directionImproved
	case delta <= -scoreEpsilon:
		return directionDeclined
	default:
		return directionUnchanged
	}
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Run Comparison: %s\n\n", result.SourcePath)

	// Overall change summary
	fmt.Println("## Summary")
	fmt.Printf("\n**Overall Average:** %s\n\n", formatDirection(result.Direction))

	// Run metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.Previous.GeneratedAt.Format("2006-01-02 15:04"),
		result.Current.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Printf("| Employees | %d | %d | %s |\n",
		result.Previous.RecordCount,
		result.Current.RecordCount,
		formatCountDelta(result.RecordDelta))
	fmt.Printf("| Skipped rows | %d | %d | %s |\n",
		result.Previous.SkippedCount,
		result.Current.SkippedCount,
		formatCountDelta(result.Current.SkippedCount-result.Previous.SkippedCount))
	fmt.Printf("| Average | %.2f | %.2f | %s |\n",
		result.Previous.Average,
		result.Current.Average,
		formatScoreDelta(result.AverageDelta))
	fmt.Printf("| Highest | %.2f | %.2f | %s |\n",
		result.Previous.HighestScore,
		result.Current.HighestScore,
		formatScoreDelta(result.Current.HighestScore-result.Previous.HighestScore))
	fmt.Printf("| Lowest | %.2f | %.2f | %s |\n",
		result.Previous.LowestScore,
		result.Current.LowestScore,
		formatScoreDelta(result.Current.LowestScore-result.Previous.LowestScore))

	// Per-department deltas
	if len(result.Departments) > 0 {
		fmt.Printf("\n## Departments\n\n")
		fmt.Println("| Department | Previous | Current | Change |")
		fmt.Println("|------------|----------|---------|--------|")
		for _, d := range result.Departments {
			fmt.Printf("| %s | %.2f | %.2f | %s |\n",
				d.Department, d.PreviousAverage, d.CurrentAverage, formatScoreDelta(d.AverageDelta))
		}
	}

	// Added departments
	if len(result.AddedDepartments) > 0 {
		fmt.Printf("\n## New Departments (%d)\n\n", len(result.AddedDepartments))
		for _, d := range result.AddedDepartments {
			fmt.Printf("- **%s**: average %.2f (%d employees)\n", d.Department, d.Average, d.Count)
		}
	}

	// Removed departments
	if len(result.RemovedDepartments) > 0 {
		fmt.Printf("\n## Removed Departments (%d)\n\n", len(result.RemovedDepartments))
		for _, d := range result.RemovedDepartments {
			fmt.Printf("- ~~**%s**~~ (was average %.2f, %d employees)\n", d.Department, d.Average, d.Count)
		}
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Run Comparison: %s\n", result.SourcePath)
	fmt.Println(strings.Repeat("=", 60))

	// Overall change summary
	fmt.Printf("\nOverall Average: %s\n", formatDirection(result.Direction))

	// Run identities
	fmt.Printf("\nPrevious run: %s (%s)\n",
		result.Previous.RunID, result.Previous.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current run:  %s (%s)\n",
		result.Current.RunID, result.Current.GeneratedAt.Format("2006-01-02 15:04:05"))
	if result.Previous.SourcePath != result.Current.SourcePath {
		fmt.Printf("\nNote: the runs come from different input files (%s vs %s)\n",
			result.Previous.SourcePath, result.Current.SourcePath)
	}

	// Summary table
	fmt.Println("\nSummary:")
	fmt.Printf("  %-14s  %10s  %10s  %10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 50))
	fmt.Printf("  %-14s  %10d  %10d  %10s\n", "Employees",
		result.Previous.RecordCount, result.Current.RecordCount,
		formatCountDelta(result.RecordDelta))
	fmt.Printf("  %-14s  %10d  %10d  %10s\n", "Skipped rows",
		result.Previous.SkippedCount, result.Current.SkippedCount,
		formatCountDelta(result.Current.SkippedCount-result.Previous.SkippedCount))
	fmt.Printf("  %-14s  %10.2f  %10.2f  %10s\n", "Average",
		result.Previous.Average, result.Current.Average,
		formatScoreDelta(result.AverageDelta))
	fmt.Printf("  %-14s  %10.2f  %10.2f  %10s\n", "Highest",
		result.Previous.HighestScore, result.Current.HighestScore,
		formatScoreDelta(result.Current.HighestScore-result.Previous.HighestScore))
	fmt.Printf("  %-14s  %10.2f  %10.2f  %10s\n", "Lowest",
		result.Previous.LowestScore, result.Current.LowestScore,
		formatScoreDelta(result.Current.LowestScore-result.Previous.LowestScore))

	// Per-department deltas
	if len(result.Departments) > 0 {
		fmt.Println("\nDepartments:")
		fmt.Printf("  %-20s  %10s  %10s  %10s\n", "Department", "Previous", "Current", "Change")
		fmt.Println("  " + strings.Repeat("-", 56))
		for _, d := range result.Departments {
			fmt.Printf("  %-20s  %10.2f  %10.2f  %10s\n",
				d.Department, d.PreviousAverage, d.CurrentAverage,
				formatScoreDelta(d.AverageDelta))
		}
	}

	// Added departments
	if len(result.AddedDepartments) > 0 {
		fmt.Printf("\nNew departments (%d):\n", len(result.AddedDepartments))
		for _, d := range result.AddedDepartments {
			fmt.Printf("  [+] %s (average %.2f, %d employees)\n", d.Department, d.Average, d.Count)
		}
	}

	// Removed departments
	if len(result.RemovedDepartments) > 0 {
		fmt.Printf("\nRemoved departments (%d):\n", len(result.RemovedDepartments))
		for _, d := range result.RemovedDepartments {
			fmt.Printf("  [-] %s (was average %.2f, %d employees)\n", d.Department, d.Average, d.Count)
		}
	}

	return nil
}

// formatDirection formats the overall direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (average score increased)"
	case directionDeclined:
		return "DECLINED (average score decreased)"
	default:
		return "UNCHANGED"
	}
}

// formatCountDelta formats an integer delta with an explicit sign.
func formatCountDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}

// formatScoreDelta formats a score delta with an explicit sign.
// Deltas below the displayed precision render as zero.
func formatScoreDelta(delta float64) string {
	switch {
	case delta >= scoreEpsilon:
		return fmt.Sprintf("+%.2f", delta)
	case delta <= -scoreEpsilon:
		return fmt.Sprintf("%.2f", delta)
	default:
		return "0.00"
	}
}
