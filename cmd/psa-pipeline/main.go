// Command psa-pipeline runs the spectral-power batch pipeline: it discovers
// raw trace exports, cleans and splits them per sleep state, windows each
// recording, reduces windows to per-band means, normalizes against baseline
// sessions and compiles the results across animals.
//
// The process exits non-zero only when a stage failed units and succeeded at
// none; individual unit failures are logged and skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"psacli/internal/config"
	"psacli/internal/infrastructure"
	"psacli/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	inDir := flag.String("in", "", "raw data directory holding <animal>/<session>/Traces_cFFT.csv exports")
	outDir := flag.String("out", "", "output directory for derived artifacts")
	chunkSize := flag.Int("chunk-size", 0, "window size in epochs (rows mode) or seconds (time mode)")
	chunkMode := flag.String("chunk-mode", "", "windowing mode: rows or time")
	baseline := flag.String("baseline", "", "session-type label of baseline sessions")
	workers := flag.Int("workers", 0, "parallel workers for the per-unit stages")
	fullRework := flag.Bool("full", false, "rebuild all artifacts instead of skipping existing ones")
	configFile := flag.String("config", "psa.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return 1
	}

	// Flags win over both the environment and the config file.
	if *inDir != "" {
		cfg.Pipeline.RawDir = *inDir
	}
	if *outDir != "" {
		cfg.Pipeline.OutputDir = *outDir
	}
	if *chunkSize > 0 {
		cfg.Pipeline.ChunkSize = *chunkSize
	}
	if *chunkMode != "" {
		cfg.Pipeline.ChunkMode = *chunkMode
	}
	if *baseline != "" {
		cfg.Pipeline.BaselineLabel = *baseline
	}
	if *workers > 0 {
		cfg.Pipeline.Workers = *workers
	}
	if *fullRework {
		cfg.Pipeline.FullRework = true
	}

	if cfg.Pipeline.RawDir == "" || cfg.Pipeline.OutputDir == "" {
		fmt.Fprintln(os.Stderr, "both -in and -out are required (or set them in the config file)")
		flag.Usage()
		return 2
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		return 2
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Tracing, logger)
	if err != nil {
		logger.Error("Failed to initialize tracing", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("Tracing shutdown failed", slog.String("error", err.Error()))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := pipeline.NewManager(cfg, logger, providers.Tracer)
	summary, err := manager.Run(ctx)
	if err != nil {
		logger.Error("Pipeline run aborted", slog.String("error", err.Error()))
		return 1
	}
	if !summary.OK() {
		logger.Error("Pipeline run failed: a stage succeeded at zero units")
		return 1
	}

	return 0
}
