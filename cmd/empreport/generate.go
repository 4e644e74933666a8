package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/empreport/internal/config"
	"github.com/nao1215/empreport/internal/database"
	"github.com/nao1215/empreport/internal/log"
	"github.com/nao1215/empreport/internal/model"
	"github.com/nao1215/empreport/internal/pipeline"
	"github.com/nao1215/empreport/internal/report"
	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [csv-file]",
		Short: "Generate a performance report from a CSV file",
		Long: `Generate reads employee performance records from a CSV file, computes
overall and per-department statistics, and renders a formatted report.

The input file must be comma-delimited with a header row and the columns
name, department, score. Malformed rows are skipped with a warning and
listed in the report; --strict aborts on the first malformed row instead.

Each run is archived in the history database. Use 'empreport history'
to list past runs and 'empreport compare' to see how results changed.

Examples:
  # Read data.csv and write employee_performance_report.pdf
  empreport generate

  # Read a specific file and choose the output path
  empreport generate team.csv -o reports/team.pdf

  # Print the report as Markdown instead of PDF
  empreport generate --markdown team.csv

  # Abort on the first malformed row
  empreport generate --strict team.csv

  # Use a custom configuration file
  empreport generate -c myconfig.yaml

Configuration file (.empreport) example:
  input: team.csv
  output: reports/team.pdf
  title: "Quarterly Performance Review"
  strict: true`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGenerateCmd,
	}

	// Report flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Write the report to the specified file path (creates directories if needed)")
	cmd.Flags().StringP("title", "T", config.DefaultReportTitle,
		"Title rendered at the top of the report")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown and --text)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json and --text)")
	cmd.Flags().BoolP("text", "t", false,
		"Output plain text report (mutually exclusive with --json and --markdown)")

	// Input handling flags
	cmd.Flags().BoolP("strict", "s", false,
		"Abort on the first malformed input row instead of skipping it")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .empreport in current, config, or home directory)")

	return cmd
}

// runGenerateCmd executes the generate command.
func runGenerateCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags and the optional config file
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with employee data masking
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runGenerate(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file. Precedence: explicitly set flag > config file > default.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load settings from the config file before flags so that explicitly
	// set flags can override them below.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.FileConfig, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.FileConfig.Apply(cfg)
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Flags override file settings only when the user set them explicitly;
	// otherwise the flag default would clobber the file value.
	if cmd.Flags().Changed("output") {
		cfg.OutputPath, err = cmd.Flags().GetString("output")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("title") {
		cfg.Title, err = cmd.Flags().GetString("title")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("strict") {
		cfg.Strict, err = cmd.Flags().GetBool("strict")
		if err != nil {
			return nil, err
		}
	}

	// Format switches are flag-only
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.TextReport, err = cmd.Flags().GetBool("text")
	if err != nil {
		return nil, err
	}

	// Terminal formats default to stdout. The PDF default output name only
	// applies when no alternate format was chosen and neither the flag nor
	// the config file named a destination.
	terminalFormat := cfg.JSONReport || cfg.MarkdownReport || cfg.TextReport
	fileNamedOutput := cfg.FileConfig != nil && cfg.FileConfig.Output != ""
	if terminalFormat && !cmd.Flags().Changed("output") && !fileNamedOutput {
		cfg.OutputPath = ""
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Always archive runs using the XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Positional argument overrides the configured input file
	if len(args) > 0 {
		cfg.InputPath = args[0]
	}

	return cfg, nil
}

// runGenerate executes the report generation run.
func runGenerate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting report generation",
		"input", cfg.InputPath,
		"output", cfg.OutputPath,
		"strict", cfg.Strict,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if archiving is enabled
	var db *database.ReportDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Progress goes to stderr when the report itself renders to stdout,
	// so piped output stays parseable.
	console := io.Writer(os.Stdout)
	if cfg.OutputPath == "" {
		console = os.Stderr
	}

	run := model.NewReportRun(cfg.InputPath)
	run.Title = cfg.Title

	p := pipeline.DefaultPipeline(
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.WithPipelineStrict(cfg.Strict),
		pipeline.WithPipelineStepLogger(logger),
	)

	fmt.Fprintf(console, "Generating report from %s...\n", cfg.InputPath)
	startTime := time.Now()

	execErr := p.Execute(ctx, run)

	// Archive success and failure alike so history reflects every run
	if err := archiveRun(ctx, db, run, logger); err != nil {
		logger.Error("failed to archive run", "input", cfg.InputPath, "error", err)
	}

	// A failed stage leaves nothing worth rendering; the target file is
	// left untouched
	if execErr != nil {
		logger.Error("report generation failed", "input", cfg.InputPath, "error", execErr)
		return execErr
	}

	if err := renderReport(cfg, run); err != nil {
		logger.Error("failed to render report", "input", cfg.InputPath, "error", err)
		return err
	}

	elapsed := time.Since(startTime)
	printSummary(console, cfg, run, elapsed)

	return nil
}

// printSummary prints a short completion summary to the console.
func printSummary(console io.Writer, cfg *config.Config, run *model.ReportRun, elapsed time.Duration) {
	if cfg.OutputPath != "" {
		fmt.Fprintf(console, "Report written to %s\n", cfg.OutputPath)
	}
	if run.Overall != nil {
		fmt.Fprintf(console, "  %d employees in %d departments, average score %.2f\n",
			run.Overall.TotalEmployees, len(run.Departments), run.Overall.Average)
	}
	if len(run.Skipped) > 0 {
		fmt.Fprintf(console, "  %d malformed rows skipped\n", len(run.Skipped))
	}
	fmt.Fprintf(console, "Completed in %s\n", elapsed.Round(time.Millisecond))
}

// newReportWriter selects the report writer for the configured format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	case cfg.TextReport:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	default:
		return report.NewPDFWriter(output, report.WithPageMargin(config.DefaultPageMargin))
	}
}

// renderReport renders the run in the requested format.
// File output is atomic: the report is rendered to a temporary file in the
// destination directory and renamed over the target, so a failed render
// never leaves a partial report behind.
func renderReport(cfg *config.Config, run *model.ReportRun) error {
	if cfg.OutputPath == "" {
		_, err := newReportWriter(cfg, os.Stdout).Write(run)
		return err
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.OutputPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// The temporary file keeps CreateTemp's owner-only permissions (0600).
	// Reports contain employee data that should only be readable by the owner.
	tmp, err := os.CreateTemp(dir, ".empreport-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary report file: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := newReportWriter(cfg, tmp).Write(run)
	if werr == nil {
		werr = tmp.Sync()
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmpName, cfg.OutputPath)
	}
	if werr != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return fmt.Errorf("failed to write report file: %w", werr)
	}

	return nil
}

// archiveRun saves the run to the history database.
// If db is nil, this function is a no-op.
func archiveRun(ctx context.Context, db *database.ReportDB, run *model.ReportRun, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run archived", "runID", run.RunID, "source", run.SourcePath)
	return nil
}
