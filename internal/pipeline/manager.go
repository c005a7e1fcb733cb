package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"psacli/internal/config"
	"psacli/internal/exporter"
	"psacli/internal/files"
	"psacli/internal/infrastructure"
)

// Manager drives the pipeline stages in order and collects their results.
type Manager struct {
	env    *Env
	stages []Stage
}

// NewManager creates a manager wired with the standard stage sequence.
func NewManager(cfg *config.Config, logger *slog.Logger, tracer trace.Tracer) *Manager {
	paths := config.NewPaths(cfg.Pipeline.RawDir, cfg.Pipeline.OutputDir)
	env := &Env{
		Config:    cfg,
		Paths:     paths,
		Discovery: files.NewDiscovery(paths),
		CSV:       exporter.NewCSVWriter(),
		Workbook:  exporter.NewWorkbookWriter(),
		Tracer:    tracer,
		Logger:    logger,
	}
	return &Manager{
		env: env,
		stages: []Stage{
			&ConvertStage{},
			&CleanStage{},
			&PreprocessStage{},
			&ChunkStage{},
			&ReduceStage{},
			&NormalizeStage{},
			&CompileStage{},
		},
	}
}

// RunSummary is the outcome of one pipeline run.
type RunSummary struct {
	Results  []*StageResult
	Duration time.Duration
}

// OK reports whether every stage made acceptable progress. A false result
// maps to a non-zero process exit: some stage failed units and succeeded at
// none.
func (s *RunSummary) OK() bool {
	for _, result := range s.Results {
		if !result.OK() {
			return false
		}
	}
	return true
}

// Run executes all stages in order. Per-unit failures are absorbed into the
// stage results; Run itself fails only on infrastructure errors that make
// continuing pointless. Stages after a failed one still run, since their
// units skip whatever upstream never produced.
func (m *Manager) Run(ctx context.Context) (*RunSummary, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	logger := m.env.Logger.With(slog.String("trace_id", infrastructure.GetTraceID(ctx)))
	m.env.Logger = logger

	if err := m.env.Paths.EnsureBaseDirectories(); err != nil {
		return nil, fmt.Errorf("prepare output directories: %w", err)
	}

	logger.Info("Starting pipeline run",
		slog.String("raw_dir", m.env.Config.Pipeline.RawDir),
		slog.String("output_dir", m.env.Config.Pipeline.OutputDir),
		slog.String("chunk_mode", m.env.Config.Pipeline.ChunkMode),
		slog.Int("chunk_size", m.env.Config.Pipeline.ChunkSize))

	summary := &RunSummary{}
	start := time.Now()

	for _, stage := range m.stages {
		sctx, span := m.env.Tracer.Start(ctx, "pipeline."+stage.ID(),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String("stage.id", stage.ID()),
				attribute.String("stage.name", stage.Name()),
			))

		result, err := stage.Run(sctx, m.env)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return summary, fmt.Errorf("stage %s: %w", stage.ID(), err)
		}

		succeeded, failed, skipped := result.Counts()
		span.SetAttributes(
			attribute.Int("stage.succeeded", succeeded),
			attribute.Int("stage.failed", failed),
			attribute.Int("stage.skipped", skipped),
		)
		if !result.OK() {
			span.SetStatus(codes.Error, "zero units succeeded")
		}
		span.End()

		logger.Info("Stage complete", result.LogAttrs()...)
		summary.Results = append(summary.Results, result)
	}

	summary.Duration = time.Since(start)
	logger.Info("Pipeline run finished",
		slog.Duration("duration", summary.Duration),
		slog.Bool("ok", summary.OK()))

	return summary, nil
}
