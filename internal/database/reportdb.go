package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/empreport/internal/model"
)

// sqliteTimeFormat is the datetime format SQLite uses by default.
// Timestamps are stored in this format so that SQLite's datetime
// functions and lexicographic ordering both work on the column.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// ReportDB provides SQLite-based storage for report run history.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all input files rather
// than separate files per input. This makes cross-file queries (listing all
// known sources, comparing runs) trivial and simplifies backup/restore.
type ReportDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ReportDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ReportDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ReportDB, error) {
	dbPath := filepath.Join(dbDir, "empreport.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ReportDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ReportDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *ReportDB) createTables() error {
	schema := `
	-- Runs store complete report runs as JSON plus summary columns
	-- for listing without deserialization
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		source_path TEXT NOT NULL,
		title TEXT,
		generated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		record_count INTEGER NOT NULL DEFAULT 0,
		skipped_count INTEGER NOT NULL DEFAULT 0,
		average_score REAL,
		highest_score REAL,
		highest_employee TEXT,
		lowest_score REAL,
		lowest_employee TEXT,
		run_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source_path);
	CREATE INDEX IF NOT EXISTS idx_runs_generated ON runs(generated_at);

	-- Department averages track per-department statistics across runs,
	-- queryable without unpacking the run JSON
	CREATE TABLE IF NOT EXISTS department_averages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		department TEXT NOT NULL,
		average_score REAL NOT NULL,
		employee_count INTEGER NOT NULL,
		position INTEGER NOT NULL,
		UNIQUE(run_id, department)
	);

	CREATE INDEX IF NOT EXISTS idx_dept_run ON department_averages(run_id);
	CREATE INDEX IF NOT EXISTS idx_dept_name ON department_averages(department);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun saves a complete report run.
// The run is stored as JSON alongside summary columns, and its department
// statistics are written to the department_averages table. Both writes
// happen in one transaction so a run is never half-stored.
func (rdb *ReportDB) SaveRun(ctx context.Context, run *model.ReportRun) error {
	// Serialize run to JSON
	runJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	// Overall statistics columns stay NULL for runs that never reached
	// the analyze stage
	var average, highest, lowest sql.NullFloat64
	var highestName, lowestName sql.NullString
	if run.Overall != nil {
		average = sql.NullFloat64{Float64: run.Overall.Average, Valid: true}
		highest = sql.NullFloat64{Float64: run.Overall.HighestScore, Valid: true}
		lowest = sql.NullFloat64{Float64: run.Overall.LowestScore, Valid: true}
		highestName = sql.NullString{String: run.Overall.HighestEmployee, Valid: true}
		lowestName = sql.NullString{String: run.Overall.LowestEmployee, Valid: true}
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `
	INSERT INTO runs (run_id, source_path, title, generated_at, record_count, skipped_count,
		average_score, highest_score, highest_employee, lowest_score, lowest_employee, run_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		run.RunID,
		run.SourcePath,
		run.Title,
		run.GeneratedAt.UTC().Format(sqliteTimeFormat),
		run.RecordCount(),
		run.SkippedCount(),
		average,
		highest,
		highestName,
		lowest,
		lowestName,
		string(runJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	deptQuery := `
	INSERT INTO department_averages (run_id, department, average_score, employee_count, position)
	VALUES (?, ?, ?, ?, ?)
	`

	for i, dept := range run.Departments {
		if _, err := tx.ExecContext(ctx, deptQuery,
			run.RunID,
			dept.Department,
			dept.Average,
			dept.Count,
			i,
		); err != nil {
			return fmt.Errorf("failed to save department average: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by its run ID.
// Returns nil without error when no run with that ID exists.
func (rdb *ReportDB) GetRun(ctx context.Context, runID string) (*model.ReportRun, error) {
	query := `
	SELECT run_json FROM runs
	WHERE run_id = ?
	`

	var runJSON string
	err := rdb.db.QueryRowContext(ctx, query, runID).Scan(&runJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run model.ReportRun
	if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}

	return &run, nil
}

// LatestRun retrieves the most recent run for an input file.
// Returns nil without error when the file has no stored runs.
func (rdb *ReportDB) LatestRun(ctx context.Context, sourcePath string) (*model.ReportRun, error) {
	query := `
	SELECT run_json FROM runs
	WHERE source_path = ?
	ORDER BY generated_at DESC, id DESC
	LIMIT 1
	`

	var runJSON string
	err := rdb.db.QueryRowContext(ctx, query, sourcePath).Scan(&runJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	var run model.ReportRun
	if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}

	return &run, nil
}

// LatestRunIDs returns the IDs of the most recent runs for an input file,
// newest first.
func (rdb *ReportDB) LatestRunIDs(ctx context.Context, sourcePath string, limit int) ([]string, error) {
	query := `
	SELECT run_id FROM runs
	WHERE source_path = ?
	ORDER BY generated_at DESC, id DESC
	LIMIT ?
	`

	rows, err := rdb.db.QueryContext(ctx, query, sourcePath, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list run IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ListSources returns all input files that have stored runs.
func (rdb *ReportDB) ListSources(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT source_path FROM runs
	ORDER BY source_path
	`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// RunMetadata contains summary information about a stored run.
// This is used for displaying run history without loading the full run.
type RunMetadata struct {
	// ID is the unique identifier of the run row in the database.
	ID int64

	// RunID is the run's UUID assigned at generation time.
	RunID string

	// SourcePath is the input CSV file the run was generated from.
	SourcePath string

	// Title is the report title, if one was configured.
	Title string

	// GeneratedAt is when the run was generated.
	GeneratedAt time.Time

	// RecordCount is the number of valid records loaded.
	RecordCount int

	// SkippedCount is the number of rejected input rows.
	SkippedCount int

	// AverageScore is the overall average score.
	// Only meaningful when HasStatistics is true.
	AverageScore float64

	// HasStatistics reports whether the run completed its analysis stage.
	HasStatistics bool
}

// ListRuns retrieves run metadata with an optional source filter, newest
// first. An empty sourcePath lists runs for every input file.
// This is more efficient than loading full runs when only metadata is needed.
func (rdb *ReportDB) ListRuns(ctx context.Context, sourcePath string) ([]RunMetadata, error) {
	query := `
	SELECT id, run_id, source_path, title, generated_at, record_count, skipped_count, average_score
	FROM runs
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if sourcePath != "" {
		query += " AND source_path = ?"
		args = append(args, sourcePath)
	}

	query += " ORDER BY generated_at DESC, id DESC"

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var title sql.NullString
		var timestamp string
		var average sql.NullFloat64

		err := rows.Scan(
			&meta.ID,
			&meta.RunID,
			&meta.SourcePath,
			&title,
			&timestamp,
			&meta.RecordCount,
			&meta.SkippedCount,
			&average,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.Title = title.String
		meta.GeneratedAt = parseTimestamp(timestamp)
		meta.AverageScore = average.Float64
		meta.HasStatistics = average.Valid

		results = append(results, meta)
	}

	return results, rows.Err()
}

// DepartmentAverages retrieves the per-department statistics stored for a
// run, in the order the departments appeared in the input.
func (rdb *ReportDB) DepartmentAverages(ctx context.Context, runID string) ([]model.DepartmentSummary, error) {
	query := `
	SELECT department, average_score, employee_count
	FROM department_averages
	WHERE run_id = ?
	ORDER BY position
	`

	rows, err := rdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query department averages: %w", err)
	}
	defer rows.Close()

	var results []model.DepartmentSummary
	for rows.Next() {
		var dept model.DepartmentSummary

		if err := rows.Scan(&dept.Department, &dept.Average, &dept.Count); err != nil {
			return nil, fmt.Errorf("failed to scan department average: %w", err)
		}

		results = append(results, dept)
	}

	return results, rows.Err()
}

// DepartmentHistory represents one department's statistics in one run.
// It is used for tracking a department's average over time.
type DepartmentHistory struct {
	// RunID identifies the run the statistics belong to.
	RunID string

	// GeneratedAt is when that run was generated.
	GeneratedAt time.Time

	// Average is the department's average score in that run.
	Average float64

	// Count is the department's head count in that run.
	Count int
}

// DepartmentTrend retrieves a department's statistics across all stored
// runs of an input file, newest first.
func (rdb *ReportDB) DepartmentTrend(ctx context.Context, sourcePath, department string) ([]DepartmentHistory, error) {
	query := `
	SELECT d.run_id, r.generated_at, d.average_score, d.employee_count
	FROM department_averages d
	JOIN runs r ON r.run_id = d.run_id
	WHERE r.source_path = ? AND d.department = ?
	ORDER BY r.generated_at DESC, r.id DESC
	`

	rows, err := rdb.db.QueryContext(ctx, query, sourcePath, department)
	if err != nil {
		return nil, fmt.Errorf("failed to query department trend: %w", err)
	}
	defer rows.Close()

	var results []DepartmentHistory
	for rows.Next() {
		var h DepartmentHistory
		var timestamp string

		if err := rows.Scan(&h.RunID, &timestamp, &h.Average, &h.Count); err != nil {
			return nil, fmt.Errorf("failed to scan department trend: %w", err)
		}

		h.GeneratedAt = parseTimestamp(timestamp)
		results = append(results, h)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	sqliteTimeFormat,          // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
