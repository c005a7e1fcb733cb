package ingest

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"psacli/internal/errors"
)

// CleanTraceFile strips the metadata preamble from a raw trace CSV and writes
// the remainder to outputPath. The operation is idempotent: an existing
// cleaned file is left in place and reported as skipped.
func CleanTraceFile(inputPath, outputPath string, metadataRows int) (skipped bool, err error) {
	if _, err := os.Stat(outputPath); err == nil {
		slog.Debug("skipping existing cleaned file", slog.String("path", outputPath))
		return true, nil
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return false, fmt.Errorf("open raw trace file: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return false, fmt.Errorf("create cleaned directory: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return false, fmt.Errorf("create cleaned file: %w", err)
	}
	defer out.Close()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	writer := bufio.NewWriter(out)
	var written int
	for i := 0; scanner.Scan(); i++ {
		if i < metadataRows {
			continue
		}
		if _, err := writer.WriteString(scanner.Text()); err != nil {
			return false, fmt.Errorf("write cleaned line: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return false, fmt.Errorf("write cleaned line: %w", err)
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read raw trace file: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return false, fmt.Errorf("flush cleaned file: %w", err)
	}

	if written == 0 {
		// Leave no empty artifact behind for downstream stages to trip on.
		os.Remove(outputPath)
		return false, errors.EmptyInput("clean", "no data remains in %s after skipping %d metadata rows", filepath.Base(inputPath), metadataRows)
	}

	slog.Info("Cleaned raw trace file",
		slog.String("input", inputPath),
		slog.String("output", outputPath),
		slog.Int("data_rows", written))

	return false, nil
}
