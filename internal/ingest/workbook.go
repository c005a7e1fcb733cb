package ingest

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"psacli/internal/errors"
)

// ConvertTraceWorkbook extracts the trace matrix from an Excel workbook
// export and writes it as CSV, so the rest of ingestion handles one format.
// The sheet with the most rows is taken as the data sheet. Idempotent: an
// existing output is left in place and reported as skipped.
func ConvertTraceWorkbook(xlsxPath, csvPath string) (skipped bool, err error) {
	if _, err := os.Stat(csvPath); err == nil {
		slog.Debug("skipping existing converted workbook", slog.String("path", csvPath))
		return true, nil
	}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return false, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var rows [][]string
	var sheetName string
	for _, name := range f.GetSheetList() {
		sheetRows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if len(sheetRows) > len(rows) {
			rows = sheetRows
			sheetName = name
		}
	}

	if len(rows) == 0 {
		return false, errors.EmptyInput("convert", "workbook %s contains no data sheet", filepath.Base(xlsxPath))
	}

	slog.Info("Converting trace workbook",
		slog.String("workbook", xlsxPath),
		slog.String("sheet", sheetName),
		slog.Int("rows", len(rows)))

	if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
		return false, fmt.Errorf("create output directory: %w", err)
	}

	out, err := os.Create(csvPath)
	if err != nil {
		return false, fmt.Errorf("create CSV file: %w", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	defer writer.Flush()

	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return false, fmt.Errorf("write CSV row %d: %w", i, err)
		}
	}

	return false, writer.Error()
}
