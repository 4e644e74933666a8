package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoInputPath is returned when no input CSV file is specified.
	// This occurs when the flag, config file, and default are all empty.
	ErrNoInputPath = errors.New("no input file specified: provide a CSV path as an argument")

	// ErrNoOutputPath is returned when no output file is specified.
	// An empty output path would leave the rendered report with nowhere to go.
	ErrNoOutputPath = errors.New("no output file specified: provide a path with --output")

	// ErrConflictingReportFormats is returned when more than one of
	// --json, --markdown, and --text is specified. Only one output
	// format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json, --markdown, and --text cannot be combined")
)
