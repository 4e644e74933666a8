// Package log provides secure logging functionality with automatic masking
// of personal information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic masking of employee-identifying values (names, emails)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Privacy Features
//
// empreport processes HR performance data. Log output may be shared in bug
// reports or stored in CI systems, so the SecureHandler masks anything that
// identifies an individual employee:
//   - Attribute keys naming a person (employee, employee_name, name)
//   - Email addresses detected by pattern matching, regardless of key
//   - Compensation-related keys (salary, compensation)
//
// Statistics without identity attached (scores, counts, department names)
// pass through unchanged; a score with no name next to it identifies nobody.
// Even in verbose mode, identifying values are masked.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("record loaded",
//	    "employee", "Alice Smith",  // Will be masked
//	    "department", "Sales",
//	    "score", 82.5,
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
