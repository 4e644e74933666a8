package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The input and output file names follow the long-standing defaults of this
// tool so that a zero-flag invocation in a directory containing data.csv
// produces a report without any setup.
const (
	// DefaultInputFile is the CSV file read when no input path is given.
	DefaultInputFile = "data.csv"

	// DefaultOutputFile is the report file written when no output path is
	// given. The extension matches the default PDF format; alternate
	// formats should set their own output path.
	DefaultOutputFile = "employee_performance_report.pdf"

	// DefaultReportTitle is the title printed at the top of the report.
	DefaultReportTitle = "Employee Performance Analysis Report"

	// DefaultPageMargin is the page margin in millimeters for PDF output.
	// 15mm leaves room for the page header and footer on A4 paper.
	DefaultPageMargin = 15.0

	// DefaultHistoryLimit is the number of archived runs shown by the
	// history command when no limit is given.
	DefaultHistoryLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "empreport"
)

// Config holds all configuration options for empreport.
// This struct is designed to be populated from CLI flags and the optional
// configuration file, then passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., LoadConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// InputPath is the CSV file containing employee performance records.
	InputPath string

	// OutputPath is the file the rendered report is written to.
	// The file is replaced atomically; a failed run never leaves a
	// partial report behind.
	OutputPath string

	// Title is the report title rendered at the top of the document.
	Title string

	// Strict aborts the run on the first malformed input row.
	// When false (default), malformed rows are skipped with a warning
	// and recorded on the run.
	Strict bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport renders the report as JSON instead of PDF.
	// Mutually exclusive with MarkdownReport and TextReport.
	JSONReport bool

	// MarkdownReport renders the report as GitHub Flavored Markdown
	// instead of PDF. Mutually exclusive with JSONReport and TextReport.
	MarkdownReport bool

	// TextReport renders the report as fixed-width plain text instead
	// of PDF. Mutually exclusive with JSONReport and MarkdownReport.
	TextReport bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .empreport in the current
	// directory, the XDG config directory, and the home directory.
	ConfigFilePath string

	// FileConfig holds settings loaded from the configuration file.
	// This is populated by LoadConfigFile; flag values take precedence.
	FileConfig *File

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to the XDG data directory (~/.local/share/empreport on Linux).
	DBDir string

	// SaveToDB indicates whether to archive the run in the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (file names, title).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		InputPath:  DefaultInputFile,
		OutputPath: DefaultOutputFile,
		Title:      DefaultReportTitle,
	}
}

// XDGDataDir returns the XDG data directory for empreport.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/empreport
// On macOS: ~/Library/Application Support/empreport
// On Windows: %LOCALAPPDATA%\empreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for empreport.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/empreport
// On macOS: ~/Library/Application Support/empreport
// On Windows: %APPDATA%\empreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any loading begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// An input file is required; without it there is nothing to report on
	if c.InputPath == "" {
		return ErrNoInputPath
	}

	// At most one alternate report format may be selected
	formats := 0
	for _, enabled := range []bool{c.JSONReport, c.MarkdownReport, c.TextReport} {
		if enabled {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	// An output path is required for PDF. The terminal formats write to
	// stdout when no path is set.
	if c.OutputPath == "" && formats == 0 {
		return ErrNoOutputPath
	}

	return nil
}
