package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"psacli/internal/compile"
	"psacli/internal/errors"
	"psacli/internal/exporter"
	"psacli/internal/files"
	"psacli/internal/ingest"
	"psacli/internal/normalize"
	"psacli/internal/reduce"
	"psacli/internal/spectral"
	"psacli/internal/window"
)

// Stage identifiers, in run order.
const (
	StageIDConvert    = "convert"
	StageIDClean      = "clean"
	StageIDPreprocess = "preprocess"
	StageIDChunk      = "chunk"
	StageIDReduce     = "reduce"
	StageIDNormalize  = "normalize"
	StageIDCompile    = "compile"
)

// dedupeTraces keeps one raw trace per (animal, session), preferring a CSV
// export over a workbook when both exist.
func dedupeTraces(traces []files.RawTrace) []files.RawTrace {
	type key struct{ animal, session string }
	best := make(map[key]int)
	var out []files.RawTrace
	for _, tr := range traces {
		k := key{tr.Animal, tr.Session}
		if i, ok := best[k]; ok {
			if out[i].Workbook && !tr.Workbook {
				out[i] = tr
			}
			continue
		}
		best[k] = len(out)
		out = append(out, tr)
	}
	return out
}

func traceUnit(tr files.RawTrace) string {
	return tr.Animal + "/" + tr.Session
}

// ConvertStage renders Excel trace exports as CSV so the cleaning stage
// handles one input format.
type ConvertStage struct{}

func (s *ConvertStage) ID() string   { return StageIDConvert }
func (s *ConvertStage) Name() string { return "Workbook Conversion" }

func (s *ConvertStage) Run(ctx context.Context, env *Env) (*StageResult, error) {
	result := NewStageResult(s.ID())
	start := time.Now()

	traces, err := env.Discovery.FindRawTraces()
	if err != nil {
		return nil, err
	}

	for _, tr := range dedupeTraces(traces) {
		if !tr.Workbook {
			continue
		}
		out := env.Paths.ConvertedPath(tr.Animal, tr.Session)
		if env.Config.Pipeline.FullRework {
			os.Remove(out)
		}
		skipped, err := ingest.ConvertTraceWorkbook(tr.Path, out)
		switch {
		case err != nil:
			result.Failure(env.Logger, traceUnit(tr), err)
		case skipped:
			result.Skip()
		default:
			result.Success()
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// CleanStage strips the metadata preamble from every discovered trace export.
type CleanStage struct{}

func (s *CleanStage) ID() string   { return StageIDClean }
func (s *CleanStage) Name() string { return "Metadata Cleaning" }

func (s *CleanStage) Run(ctx context.Context, env *Env) (*StageResult, error) {
	result := NewStageResult(s.ID())
	start := time.Now()

	traces, err := env.Discovery.FindRawTraces()
	if err != nil {
		return nil, err
	}

	for _, tr := range dedupeTraces(traces) {
		source := tr.Path
		if tr.Workbook {
			source = env.Paths.ConvertedPath(tr.Animal, tr.Session)
		}
		out := env.Paths.CleanedPath(tr.Animal, tr.Session)
		if env.Config.Pipeline.FullRework {
			os.Remove(out)
		}
		skipped, err := ingest.CleanTraceFile(source, out, env.Config.Pipeline.MetadataRows)
		switch {
		case err != nil:
			result.Failure(env.Logger, traceUnit(tr), err)
		case skipped:
			result.Skip()
		default:
			result.Success()
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// PreprocessStage transposes each cleaned recording and splits it into one
// time-ordered table per sleep state, dropping Wake epochs.
type PreprocessStage struct{}

func (s *PreprocessStage) ID() string   { return StageIDPreprocess }
func (s *PreprocessStage) Name() string { return "Stage Splitting" }

func (s *PreprocessStage) Run(ctx context.Context, env *Env) (*StageResult, error) {
	result := NewStageResult(s.ID())
	start := time.Now()

	traces, err := env.Discovery.FindRawTraces()
	if err != nil {
		return nil, err
	}

	exclusive := !env.Config.Pipeline.FullRework
	for _, tr := range dedupeTraces(traces) {
		cleaned := env.Paths.CleanedPath(tr.Animal, tr.Session)
		if !files.FileExists(cleaned) {
			// The cleaning stage already reported this session.
			result.Skip()
			continue
		}

		table, err := spectral.ReadCSV(cleaned)
		if err != nil {
			result.Failure(env.Logger, traceUnit(tr), err)
			continue
		}

		split, err := ingest.PreprocessAndSplit(table)
		if err != nil {
			result.Failure(env.Logger, traceUnit(tr), err)
			continue
		}

		var written, existing int
		var writeErr error
		for state, stateTable := range split {
			path := env.Paths.SplitPath(tr.Animal, string(state), tr.Session)
			err := env.CSV.WriteTable(path, stateTable, exclusive)
			switch {
			case stderrors.Is(err, exporter.ErrExists):
				existing++
			case err != nil:
				writeErr = err
			default:
				written++
			}
		}
		switch {
		case writeErr != nil:
			result.Failure(env.Logger, traceUnit(tr), writeErr)
		case written == 0 && existing > 0:
			result.Skip()
		default:
			result.Success()
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// ChunkStage partitions each split recording into fixed-size windows and
// persists one artifact per window.
type ChunkStage struct{}

func (s *ChunkStage) ID() string   { return StageIDChunk }
func (s *ChunkStage) Name() string { return "Windowing" }

func (s *ChunkStage) Run(ctx context.Context, env *Env) (*StageResult, error) {
	result := NewStageResult(s.ID())
	start := time.Now()

	traces, err := env.Discovery.FindRawTraces()
	if err != nil {
		return nil, err
	}

	cfg := env.Config.Pipeline
	exclusive := !cfg.FullRework
	for _, tr := range dedupeTraces(traces) {
		for _, state := range spectral.SleepStates {
			unit := fmt.Sprintf("%s/%s/%s", tr.Animal, state, tr.Session)
			splitPath := env.Paths.SplitPath(tr.Animal, string(state), tr.Session)
			if !files.FileExists(splitPath) {
				// The recording has no epochs in this state.
				continue
			}

			table, err := spectral.ReadCSV(splitPath)
			if err != nil {
				result.Failure(env.Logger, unit, err)
				continue
			}

			spans, err := window.Partition(table, window.Mode(cfg.ChunkMode), cfg.ChunkSize)
			if err != nil {
				result.Failure(env.Logger, unit, err)
				continue
			}

			var written, existing int
			var writeErr error
			for _, span := range spans {
				path := env.Paths.WindowPath(tr.Animal, string(state), tr.Session, span.Index)
				err := env.CSV.WriteTable(path, span.Table, exclusive)
				switch {
				case stderrors.Is(err, exporter.ErrExists):
					existing++
				case err != nil:
					writeErr = err
				default:
					written++
				}
			}
			switch {
			case writeErr != nil:
				result.Failure(env.Logger, unit, writeErr)
			case written == 0 && existing > 0:
				result.Skip()
			default:
				result.Success()
			}
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// enumerateUnits lists every (animal, state, chunk) key with windowed
// artifacts on disk.
func enumerateUnits(env *Env) ([]spectral.UnitKey, error) {
	traces, err := env.Discovery.FindRawTraces()
	if err != nil {
		return nil, err
	}

	var units []spectral.UnitKey
	for _, animal := range files.Animals(traces) {
		for _, state := range spectral.SleepStates {
			maxChunk, err := env.Discovery.MaxChunkIndex(animal, state)
			if err != nil {
				return nil, err
			}
			for chunk := 0; chunk <= maxChunk; chunk++ {
				units = append(units, spectral.UnitKey{Animal: animal, State: state, Chunk: chunk})
			}
		}
	}
	return units, nil
}

// forEachUnit fans runUnit out over the units with a bounded worker pool.
// runUnit does its own failure accounting, so the only error that stops the
// fan-out is context cancellation.
func forEachUnit(ctx context.Context, env *Env, units []spectral.UnitKey, runUnit func(spectral.UnitKey)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(env.Config.Pipeline.Workers)
	for _, unit := range units {
		unit := unit
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runUnit(unit)
			return nil
		})
	}
	return g.Wait()
}

// ReduceStage reduces each unit's session windows to per-band means and
// persists the aggregate and frequency-indexed combined artifacts. Units are
// independent and run on a bounded parallel fan-out.
type ReduceStage struct{}

func (s *ReduceStage) ID() string   { return StageIDReduce }
func (s *ReduceStage) Name() string { return "Window Reduction" }

func (s *ReduceStage) Run(ctx context.Context, env *Env) (*StageResult, error) {
	result := NewStageResult(s.ID())
	start := time.Now()

	units, err := enumerateUnits(env)
	if err != nil {
		return nil, err
	}

	if err := forEachUnit(ctx, env, units, func(key spectral.UnitKey) {
		s.runUnit(env, key, result)
	}); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (s *ReduceStage) runUnit(env *Env, key spectral.UnitKey, result *StageResult) {
	artifacts, err := env.Discovery.FindWindowArtifacts(key.Animal, key.State, key.Chunk)
	if err != nil {
		result.Failure(env.Logger, key.String(), err)
		return
	}
	if len(artifacts) == 0 {
		result.Skip()
		return
	}

	var rows []*reduce.ReducedRow
	for _, art := range artifacts {
		table, err := spectral.ReadCSV(art.Path)
		if err != nil {
			env.Logger.Warn("skipping unreadable window artifact",
				slog.String("path", art.Path),
				slog.String("error", err.Error()))
			continue
		}
		row, err := reduce.Reduce(table, reduce.IdentifyingColumns, art.Identity)
		if err != nil {
			env.Logger.Warn("window contributed nothing",
				slog.String("unit", art.Identity.String()),
				slog.String("error", err.Error()))
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		result.Failure(env.Logger, key.String(),
			errors.EmptyInput("reduce", "no session window reduced successfully"))
		return
	}

	agg, err := reduce.AggregateTable(rows)
	if err != nil {
		result.Failure(env.Logger, key.String(), err)
		return
	}
	combined, err := reduce.Combine(rows)
	if err != nil {
		result.Failure(env.Logger, key.String(), err)
		return
	}

	exclusive := !env.Config.Pipeline.FullRework
	rawErr := env.CSV.WriteTable(env.Paths.RawChunkPath(key.Animal, string(key.State), key.Chunk), agg, exclusive)
	freqErr := env.CSV.WriteTable(env.Paths.FreqChunkPath(key.Animal, string(key.State), key.Chunk), combined.ToTable(), exclusive)
	switch {
	case rawErr != nil && !stderrors.Is(rawErr, exporter.ErrExists):
		result.Failure(env.Logger, key.String(), rawErr)
	case freqErr != nil && !stderrors.Is(freqErr, exporter.ErrExists):
		result.Failure(env.Logger, key.String(), freqErr)
	case stderrors.Is(rawErr, exporter.ErrExists) && stderrors.Is(freqErr, exporter.ErrExists):
		result.Skip()
	default:
		result.Success()
	}
}

// NormalizeStage applies baseline z-rescaling to each unit's aggregate
// artifact.
type NormalizeStage struct{}

func (s *NormalizeStage) ID() string   { return StageIDNormalize }
func (s *NormalizeStage) Name() string { return "Baseline Normalization" }

func (s *NormalizeStage) Run(ctx context.Context, env *Env) (*StageResult, error) {
	result := NewStageResult(s.ID())
	start := time.Now()

	units, err := enumerateUnits(env)
	if err != nil {
		return nil, err
	}

	if err := forEachUnit(ctx, env, units, func(key spectral.UnitKey) {
		s.runUnit(env, key, result)
	}); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (s *NormalizeStage) runUnit(env *Env, key spectral.UnitKey, result *StageResult) {
	rawPath := env.Paths.RawChunkPath(key.Animal, string(key.State), key.Chunk)
	if !files.FileExists(rawPath) {
		// The reduction stage produced nothing for this unit.
		result.Skip()
		return
	}

	table, err := spectral.ReadCSV(rawPath)
	if err != nil {
		result.Failure(env.Logger, key.String(), err)
		return
	}

	rescaled, err := normalize.Rescale(table, reduce.AggregateColumns, env.Config.Pipeline.BaselineLabel)
	if err != nil {
		result.Failure(env.Logger, key.String(), err)
		return
	}

	normPath := env.Paths.NormChunkPath(key.Animal, string(key.State), key.Chunk)
	err = env.CSV.WriteTable(normPath, rescaled.Table, !env.Config.Pipeline.FullRework)
	switch {
	case stderrors.Is(err, exporter.ErrExists):
		result.Skip()
	case err != nil:
		result.Failure(env.Logger, key.String(), err)
	default:
		result.Success()
	}
}

// CompileStage outer-joins the per-animal combined artifacts of each
// (state, chunk), applies proportion rescaling, and renders the compiled
// tables into the summary workbook. It is the only stage that needs all
// animals' outputs, so it runs after the per-unit fan-outs complete.
type CompileStage struct{}

func (s *CompileStage) ID() string   { return StageIDCompile }
func (s *CompileStage) Name() string { return "Cross-Animal Compilation" }

func (s *CompileStage) Run(ctx context.Context, env *Env) (*StageResult, error) {
	result := NewStageResult(s.ID())
	start := time.Now()

	traces, err := env.Discovery.FindRawTraces()
	if err != nil {
		return nil, err
	}
	animals := files.Animals(traces)

	summaries := make(map[exporter.SheetKey]*spectral.CombinedTable)
	for _, state := range spectral.SleepStates {
		maxChunk := -1
		for _, animal := range animals {
			m, err := env.Discovery.MaxChunkIndex(animal, state)
			if err != nil {
				return nil, err
			}
			if m > maxChunk {
				maxChunk = m
			}
		}

		for chunk := 0; chunk <= maxChunk; chunk++ {
			unit := fmt.Sprintf("%s/chunk_%02d", state, chunk)

			var tables []*spectral.CombinedTable
			for _, animal := range animals {
				path := env.Paths.FreqChunkPath(animal, string(state), chunk)
				if !files.FileExists(path) {
					continue
				}
				table, err := spectral.ReadCSV(path)
				if err != nil {
					env.Logger.Warn("skipping unreadable combined artifact",
						slog.String("path", path),
						slog.String("error", err.Error()))
					continue
				}
				combined, ok := spectral.CombinedFromTable(table)
				if !ok {
					env.Logger.Warn("combined artifact lacks a frequency column",
						slog.String("path", path))
					continue
				}
				tables = append(tables, combined)
			}
			if len(tables) == 0 {
				continue
			}

			compiled, err := compile.Compile(tables)
			if err != nil {
				result.Failure(env.Logger, unit, err)
				continue
			}

			exclusive := !env.Config.Pipeline.FullRework
			err = env.CSV.WriteTable(env.Paths.CompiledChunkPath(string(state), chunk), compiled.ToTable(), exclusive)
			switch {
			case stderrors.Is(err, exporter.ErrExists):
				result.Skip()
			case err != nil:
				result.Failure(env.Logger, unit, err)
				continue
			default:
				result.Success()
			}

			if norm, err := normalize.Proportion(compiled); err != nil {
				env.Logger.Warn("skipping proportion rescale",
					slog.String("unit", unit),
					slog.String("error", err.Error()))
			} else {
				err := env.CSV.WriteTable(env.Paths.CompiledNormPath(string(state), chunk), norm, exclusive)
				if err != nil && !stderrors.Is(err, exporter.ErrExists) {
					result.Failure(env.Logger, unit, err)
				}
			}

			summaries[exporter.SheetKey{State: state, Chunk: chunk}] = compiled
		}
	}

	if len(summaries) > 0 {
		workbookPath := env.Paths.SummaryWorkbookPath()
		if !files.FileExists(workbookPath) || env.Config.Pipeline.FullRework {
			if err := env.Workbook.WriteSummary(workbookPath, summaries); err != nil {
				result.Failure(env.Logger, "summary", err)
			}
		} else {
			slog.Debug("skipping existing summary workbook", slog.String("path", workbookPath))
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}
