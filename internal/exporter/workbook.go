package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"psacli/internal/spectral"
)

// WorkbookWriter renders compiled per-state tables into one Excel summary
// workbook, one sheet per (sleep state, chunk).
type WorkbookWriter struct{}

// NewWorkbookWriter creates a new workbook writer instance.
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{}
}

// SheetKey identifies one sheet of the summary workbook.
type SheetKey struct {
	State spectral.SleepState
	Chunk int
}

// SheetName renders the sheet name for one key.
func (k SheetKey) SheetName() string {
	return fmt.Sprintf("%s_chunk_%02d", k.State, k.Chunk)
}

// WriteSummary writes all compiled tables into a single workbook. Sheets are
// ordered by state then chunk so re-runs over unchanged input produce an
// identical workbook layout.
func (w *WorkbookWriter) WriteSummary(path string, tables map[SheetKey]*spectral.CombinedTable) error {
	if len(tables) == 0 {
		return fmt.Errorf("no compiled tables to summarize")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	keys := make([]SheetKey, 0, len(tables))
	for key := range tables {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].State != keys[j].State {
			return keys[i].State < keys[j].State
		}
		return keys[i].Chunk < keys[j].Chunk
	})

	f := excelize.NewFile()
	defer f.Close()

	for i, key := range keys {
		sheet := key.SheetName()
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		if err := writeSheet(f, sheet, tables[key]); err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	slog.Info("Wrote summary workbook",
		slog.String("path", path),
		slog.Int("sheet_count", len(keys)))

	return nil
}

// writeSheet fills one sheet with a frequency-indexed table. Missing values
// leave their cell empty.
func writeSheet(f *excelize.File, sheet string, table *spectral.CombinedTable) error {
	header := []interface{}{spectral.FrequencyColumn}
	for _, session := range table.Sessions {
		header = append(header, session)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, band := range table.Bands {
		row := make([]interface{}, 0, len(table.Sessions)+1)
		row = append(row, band)
		for _, session := range table.Sessions {
			v := table.Get(band, session)
			if math.IsNaN(v) {
				row = append(row, nil)
			} else {
				row = append(row, v)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}
