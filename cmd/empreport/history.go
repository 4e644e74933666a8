package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nao1215/empreport/internal/config"
	"github.com/nao1215/empreport/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command lists report runs archived in the local database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [csv-file]",
		Short: "List archived report runs",
		Long: `History lists report runs archived in the local database.

Every 'empreport generate' invocation stores its results, including runs
that failed, so past reports can be reviewed and compared. The listing
shows each run's ID, generation time, record counts, and average score.

Examples:
  # List recent runs for every input file
  empreport history

  # List runs for a specific input file
  empreport history data.csv

  # Show only the last five runs
  empreport history --limit 5

  # List input files that have archived runs
  empreport history --sources

  # Track one department's average across the runs of an input file
  empreport history data.csv --department Engineering

  # Output run metadata in JSON format
  empreport history --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolP("sources", "S", false,
		"List input files with archived runs instead of individual runs")
	cmd.Flags().StringP("department", "D", "",
		"Track one department's average across the runs of a csv-file")
	cmd.Flags().BoolP("json", "j", false,
		"Output run metadata in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listSources, err := cmd.Flags().GetBool("sources")
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	department, err := cmd.Flags().GetString("department")
	if err != nil {
		return err
	}

	if listSources && department != "" {
		return errors.New("the --sources and --department flags cannot be combined")
	}

	// A department trend is scoped to one input file's run history
	if department != "" && len(args) == 0 {
		return errors.New("the --department flag requires a csv-file argument")
	}

	// Use XDG data directory for the database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listSources {
		return listRunSources(ctx, db, jsonOutput)
	}

	var sourcePath string
	if len(args) > 0 {
		sourcePath = args[0]
	}

	if department != "" {
		return listDepartmentTrend(ctx, db, sourcePath, department, limit, jsonOutput)
	}

	return listRunHistory(ctx, db, sourcePath, limit, jsonOutput)
}

// listRunSources lists all input files that have archived runs.
func listRunSources(ctx context.Context, db *database.ReportDB, jsonOutput bool) error {
	sources, err := db.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if jsonOutput {
		if sources == nil {
			sources = []string{}
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(sources)
	}

	if len(sources) == 0 {
		fmt.Println("No archived runs found in the database.")
		fmt.Println("\nUse 'empreport generate' to generate and archive a report.")
		return nil
	}

	fmt.Printf("Input files with archived runs (%d):\n\n", len(sources))
	for _, source := range sources {
		fmt.Printf("  • %s\n", source)
	}
	fmt.Println("\nUse 'empreport history <csv-file>' to see the runs for an input file.")

	return nil
}

// listRunHistory lists archived runs, optionally filtered by input file.
func listRunHistory(ctx context.Context, db *database.ReportDB, sourcePath string, limit int, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	if jsonOutput {
		return outputHistoryJSON(runs)
	}

	if len(runs) == 0 {
		if sourcePath != "" {
			fmt.Printf("No archived runs found for %s\n", sourcePath)
		} else {
			fmt.Println("No archived runs found in the database.")
		}
		fmt.Println("\nUse 'empreport generate' to generate and archive a report.")
		return nil
	}

	if sourcePath != "" {
		fmt.Printf("Run history for %s (%d runs):\n\n", sourcePath, len(runs))
		fmt.Printf("  %-36s  %-19s  %7s  %7s  %8s\n", "Run ID", "Generated", "Records", "Skipped", "Average")
		fmt.Println("  " + strings.Repeat("-", 85))
		for _, meta := range runs {
			fmt.Printf("  %-36s  %-19s  %7d  %7d  %8s\n",
				meta.RunID,
				meta.GeneratedAt.Format("2006-01-02 15:04:05"),
				meta.RecordCount,
				meta.SkippedCount,
				formatAverage(meta),
			)
		}
	} else {
		fmt.Printf("Run history (%d runs):\n\n", len(runs))
		fmt.Printf("  %-36s  %-19s  %7s  %7s  %8s  %s\n", "Run ID", "Generated", "Records", "Skipped", "Average", "Source")
		fmt.Println("  " + strings.Repeat("-", 85))
		for _, meta := range runs {
			fmt.Printf("  %-36s  %-19s  %7d  %7d  %8s  %s\n",
				meta.RunID,
				meta.GeneratedAt.Format("2006-01-02 15:04:05"),
				meta.RecordCount,
				meta.SkippedCount,
				formatAverage(meta),
				meta.SourcePath,
			)
		}
	}

	fmt.Println("\nUse 'empreport compare <run-id> <run-id>' to compare two runs.")

	return nil
}

// listDepartmentTrend lists one department's statistics across the archived
// runs of an input file, newest first.
func listDepartmentTrend(ctx context.Context, db *database.ReportDB, sourcePath, department string, limit int, jsonOutput bool) error {
	trend, err := db.DepartmentTrend(ctx, sourcePath, department)
	if err != nil {
		return fmt.Errorf("failed to get department trend: %w", err)
	}
	if limit > 0 && len(trend) > limit {
		trend = trend[:limit]
	}

	if jsonOutput {
		return outputTrendJSON(sourcePath, department, trend)
	}

	if len(trend) == 0 {
		fmt.Printf("No archived runs found for department %q in %s\n", department, sourcePath)
		fmt.Println("\nDepartment names are case-sensitive. Use 'empreport history <csv-file>' to see archived runs.")
		return nil
	}

	fmt.Printf("Average score trend for %s in %s (%d runs):\n\n", department, sourcePath, len(trend))
	fmt.Printf("  %-36s  %-19s  %9s  %9s\n", "Run ID", "Generated", "Average", "Employees")
	fmt.Println("  " + strings.Repeat("-", 79))
	for _, h := range trend {
		fmt.Printf("  %-36s  %-19s  %9.2f  %9d\n",
			h.RunID,
			h.GeneratedAt.Format("2006-01-02 15:04:05"),
			h.Average,
			h.Count,
		)
	}

	fmt.Println("\nUse 'empreport compare <run-id> <run-id>' to compare two runs.")

	return nil
}

// formatAverage formats a run's average score for the history table.
// Runs that failed before analysis have no statistics to show.
func formatAverage(meta database.RunMetadata) string {
	if !meta.HasStatistics {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", meta.AverageScore)
}

// historyEntry is the JSON shape of one archived run in history output.
type historyEntry struct {
	// RunID is the run's unique identifier.
	RunID string `json:"run_id"`

	// SourcePath is the input CSV file the run was generated from.
	SourcePath string `json:"source_path"`

	// Title is the configured report title, if any.
	Title string `json:"title,omitempty"`

	// GeneratedAt is when the run was generated.
	GeneratedAt time.Time `json:"generated_at"`

	// RecordCount is the number of valid records loaded.
	RecordCount int `json:"record_count"`

	// SkippedCount is the number of rejected input rows.
	SkippedCount int `json:"skipped_count"`

	// AverageScore is the overall average score.
	// Absent for runs that failed before analysis.
	AverageScore *float64 `json:"average_score,omitempty"`
}

// outputHistoryJSON outputs run metadata in JSON format.
func outputHistoryJSON(runs []database.RunMetadata) error {
	entries := make([]historyEntry, 0, len(runs))
	for _, meta := range runs {
		entry := historyEntry{
			RunID:        meta.RunID,
			SourcePath:   meta.SourcePath,
			Title:        meta.Title,
			GeneratedAt:  meta.GeneratedAt,
			RecordCount:  meta.RecordCount,
			SkippedCount: meta.SkippedCount,
		}
		if meta.HasStatistics {
			avg := meta.AverageScore
			entry.AverageScore = &avg
		}
		entries = append(entries, entry)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// trendEntry is the JSON shape of one run in department trend output.
type trendEntry struct {
	// RunID is the run's unique identifier.
	RunID string `json:"run_id"`

	// SourcePath is the input CSV file the runs were generated from.
	SourcePath string `json:"source_path"`

	// Department is the department being tracked.
	Department string `json:"department"`

	// GeneratedAt is when the run was generated.
	GeneratedAt time.Time `json:"generated_at"`

	// AverageScore is the department's average score in the run.
	AverageScore float64 `json:"average_score"`

	// EmployeeCount is the department's head count in the run.
	EmployeeCount int `json:"employee_count"`
}

// outputTrendJSON outputs a department trend in JSON format.
func outputTrendJSON(sourcePath, department string, trend []database.DepartmentHistory) error {
	entries := make([]trendEntry, 0, len(trend))
	for _, h := range trend {
		entries = append(entries, trendEntry{
			RunID:         h.RunID,
			SourcePath:    sourcePath,
			Department:    department,
			GeneratedAt:   h.GeneratedAt,
			AverageScore:  h.Average,
			EmployeeCount: h.Count,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}
