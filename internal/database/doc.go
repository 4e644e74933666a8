// Package database provides SQLite-based storage for report run history.
//
// This package implements the ReportDB, which stores:
//   - Complete report runs as JSON for later retrieval
//   - Summary columns for listing history without deserialization
//   - Per-department statistics for cross-run comparison
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
