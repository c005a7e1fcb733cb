package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"psacli/internal/spectral"
)

// ErrExists is returned by exclusive writes when the output artifact is
// already present. Callers treat it as "skip", not as a failure.
var ErrExists = errors.New("output artifact already exists")

// CSVWriter provides CSV artifact writing for pipeline stages.
type CSVWriter struct{}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Exclusive bool // fail with ErrExists instead of overwriting
	BOMPrefix bool // add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options, creating the
// parent directory first. With Exclusive set, creation is atomic
// (O_CREATE|O_EXCL): when two workers race on the same path, the first
// writer wins and the loser receives ErrExists.
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if options.Exclusive {
		flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if options.Exclusive && os.IsExist(err) {
			slog.Debug("skipping existing artifact", slog.String("path", path))
			return ErrExists
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteTable persists a table to a CSV artifact.
func (w *CSVWriter) WriteTable(path string, table *spectral.Table, exclusive bool) error {
	return w.WriteCSV(path, WriteOptions{
		Headers:   table.Columns,
		Records:   table.Rows,
		Exclusive: exclusive,
	})
}
