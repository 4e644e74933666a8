package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/empreport/internal/loader"
	"github.com/nao1215/empreport/internal/model"
	"github.com/nao1215/empreport/internal/stats"
)

// LoadStep reads employee records from the input CSV file.
// This step fills the run with the valid records and with the rows that
// were rejected during parsing.
//
// Design decision: Loading is a separate step because:
// 1. It is the only stage that touches the filesystem
// 2. Its failure modes (missing file, missing columns) abort the run early
// 3. Strict-mode handling stays isolated from the statistics code
type LoadStep struct {
	// strict aborts the run on the first malformed row.
	strict bool

	// logger for structured logging.
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadStrict makes the step fail on the first malformed row instead
// of skipping it.
func WithLoadStrict(strict bool) LoadStepOption {
	return func(s *LoadStep) {
		s.strict = strict
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a new load step.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(_ context.Context, run *model.ReportRun) error {
	ld := loader.NewCSVLoader(
		loader.WithStrict(s.strict),
		loader.WithLogger(s.logger),
	)

	records, skipped, err := ld.Load(run.SourcePath)
	if err != nil {
		return err
	}

	run.Records = records
	run.Skipped = skipped

	s.logger.Info("input loaded",
		"source", run.SourcePath,
		"records", len(records),
		"skipped", len(skipped),
	)

	return nil
}

// AnalyzeStep computes overall and per-department statistics from the
// loaded records.
//
// Design decision: Analysis is a separate step because:
// 1. It operates purely on data accumulated by the load step
// 2. Its failure mode (no records) is distinct from parse failures
// 3. Report writers stay free of aggregation logic
type AnalyzeStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeLogger sets a custom logger for the analyze step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates a new analysis step.
func NewAnalyzeStep(opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analysis step.
func (s *AnalyzeStep) Do(_ context.Context, run *model.ReportRun) error {
	overall, err := stats.Overall(run.Records)
	if err != nil {
		return err
	}

	run.Overall = overall
	run.Departments = stats.ByDepartment(run.Records)

	s.logger.Info("analysis completed",
		"employees", overall.TotalEmployees,
		"departments", len(run.Departments),
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Strict aborts the run on the first malformed input row.
	Strict bool

	// Logger is passed to every step for structured logging.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineStrict makes the load step fail on the first malformed row.
func WithPipelineStrict(strict bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Strict = strict
	}
}

// WithPipelineStepLogger sets the logger passed to every step.
func WithPipelineStepLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates a pipeline with the standard load and analyze
// steps configured.
//
// Design decision: We provide a default pipeline because:
// 1. Every report needs the same stages in the same order
// 2. Reduces boilerplate in the CLI
// 3. Keeps stage wiring in one place
//
// The first parameter accepts pipeline options (WithLogger, etc).
// The second accepts step config options (WithPipelineStrict, etc).
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}

	loadOpts := []LoadStepOption{
		WithLoadStrict(cfg.Strict),
	}
	var analyzeOpts []AnalyzeStepOption
	if cfg.Logger != nil {
		loadOpts = append(loadOpts, WithLoadLogger(cfg.Logger))
		analyzeOpts = append(analyzeOpts, WithAnalyzeLogger(cfg.Logger))
	}

	p.AddSteps(
		NewLoadStep(loadOpts...),
		NewAnalyzeStep(analyzeOpts...),
	)

	return p
}
