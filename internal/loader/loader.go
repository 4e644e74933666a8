package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nao1215/empreport/internal/model"
)

// Required column names, matched case-insensitively against the header row.
const (
	columnName       = "name"
	columnDepartment = "department"
	columnScore      = "score"
)

// CSVLoader reads employee records from a CSV file.
// It resolves columns by header name and converts each data row into a
// model.EmployeeRecord, collecting or rejecting malformed rows depending
// on the strict setting.
//
// Design decision: We call it "CSVLoader" rather than "Loader" because:
//  1. The name carries the input format the type understands
//  2. Distinguishes the component from the package name
//  3. Clearer in code: loader.NewCSVLoader() vs loader.NewLoader()
type CSVLoader struct {
	// strict aborts the load on the first malformed row.
	// When false, malformed rows are skipped and recorded.
	strict bool

	// logger receives a warning for every skipped row.
	logger *slog.Logger
}

// Option configures a CSVLoader.
type Option func(*CSVLoader)

// WithStrict makes the loader abort on the first malformed row
// instead of skipping it.
func WithStrict(strict bool) Option {
	return func(l *CSVLoader) {
		l.strict = strict
	}
}

// WithLogger sets the logger used to report skipped rows.
func WithLogger(logger *slog.Logger) Option {
	return func(l *CSVLoader) {
		l.logger = logger
	}
}

// NewCSVLoader creates a new CSVLoader.
func NewCSVLoader(opts ...Option) *CSVLoader {
	l := &CSVLoader{
		strict: false,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads the CSV file at path and returns the employee records it
// contains, along with any rows that were skipped as malformed.
//
// The first row must be a header containing the name, department, and
// score columns in any order. Row numbers in the returned skip list are
// 1-based and count the header, matching what a user sees in a spreadsheet.
//
// Design decision: We return the skipped rows rather than only logging
// them because:
//  1. The report itself lists skipped rows so the reader knows the
//     statistics exclude them
//  2. Callers can fail, warn, or ignore without re-parsing the file
//  3. Tests can assert on skip reasons directly
func (l *CSVLoader) Load(path string) ([]model.EmployeeRecord, []model.SkippedRow, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%s: %w", path, ErrInputNotFound)
		}
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file, close error is not actionable

	return l.load(f)
}

// load reads records from r. Split from Load so tests can feed readers
// without touching the filesystem.
func (l *CSVLoader) load(r io.Reader) ([]model.EmployeeRecord, []model.SkippedRow, error) {
	// Excel exports UTF-8 CSVs with a byte order mark. The decoder strips
	// it so the first header cell doesn't become "﻿name".
	reader := csv.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	reader.TrimLeadingSpace = true

	// Field counts are validated per row so that a short row becomes a
	// skippable malformed row instead of aborting the whole read.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("file contains no header row: %w", ErrMissingColumn)
		}
		return nil, nil, fmt.Errorf("failed to read header row: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, nil, err
	}

	records := make([]model.EmployeeRecord, 0)
	skipped := make([]model.SkippedRow, 0)

	// Row 1 is the header. Data rows start at 2.
	rowNum := 1

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++

		if err != nil {
			if skipErr := l.skip(&skipped, rowNum, err.Error()); skipErr != nil {
				return nil, nil, skipErr
			}
			continue
		}

		record, reason := cols.toRecord(row)
		if reason != "" {
			if skipErr := l.skip(&skipped, rowNum, reason); skipErr != nil {
				return nil, nil, skipErr
			}
			continue
		}

		records = append(records, record)
	}

	return records, skipped, nil
}

// skip handles one malformed row. In strict mode it returns the error
// that aborts the load; otherwise it records the skip and logs a warning.
func (l *CSVLoader) skip(skipped *[]model.SkippedRow, rowNum int, reason string) error {
	if l.strict {
		return fmt.Errorf("row %d (%s): %w", rowNum, reason, ErrMalformedRow)
	}

	*skipped = append(*skipped, model.SkippedRow{Row: rowNum, Reason: reason})
	l.logger.Warn("skipping malformed row",
		"row", rowNum,
		"reason", reason)
	return nil
}

// columnIndex holds the resolved positions of the required columns
// within a data row.
type columnIndex struct {
	name       int
	department int
	score      int
}

// resolveColumns maps the required column names to their positions in the
// header row. Matching is case-insensitive and ignores surrounding
// whitespace, so "Name", " SCORE " and "score" all resolve. Extra columns
// are ignored; if the same column appears twice, the first occurrence wins.
func resolveColumns(header []string) (*columnIndex, error) {
	cols := &columnIndex{name: -1, department: -1, score: -1}

	for i, field := range header {
		switch strings.ToLower(strings.TrimSpace(field)) {
		case columnName:
			if cols.name < 0 {
				cols.name = i
			}
		case columnDepartment:
			if cols.department < 0 {
				cols.department = i
			}
		case columnScore:
			if cols.score < 0 {
				cols.score = i
			}
		}
	}

	missing := make([]string, 0, 3)
	if cols.name < 0 {
		missing = append(missing, columnName)
	}
	if cols.department < 0 {
		missing = append(missing, columnDepartment)
	}
	if cols.score < 0 {
		missing = append(missing, columnScore)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(missing, ", "), ErrMissingColumn)
	}

	return cols, nil
}

// width returns the minimum number of fields a row needs to cover all
// resolved columns.
func (c *columnIndex) width() int {
	w := c.name
	if c.department > w {
		w = c.department
	}
	if c.score > w {
		w = c.score
	}
	return w + 1
}

// toRecord converts one data row into an employee record.
// It returns a non-empty reason string if the row is malformed.
func (c *columnIndex) toRecord(row []string) (model.EmployeeRecord, string) {
	if len(row) < c.width() {
		return model.EmployeeRecord{}, fmt.Sprintf("has %d fields, need %d", len(row), c.width())
	}

	name := strings.TrimSpace(row[c.name])
	if name == "" {
		return model.EmployeeRecord{}, "empty name"
	}

	department := strings.TrimSpace(row[c.department])
	if department == "" {
		return model.EmployeeRecord{}, "empty department"
	}

	scoreField := strings.TrimSpace(row[c.score])
	score, err := strconv.ParseFloat(scoreField, 64)
	if err != nil {
		return model.EmployeeRecord{}, fmt.Sprintf("invalid score %q", scoreField)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return model.EmployeeRecord{}, fmt.Sprintf("non-finite score %q", scoreField)
	}

	return model.EmployeeRecord{
		Name:       name,
		Department: department,
		Score:      score,
	}, ""
}
