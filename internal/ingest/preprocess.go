package ingest

import (
	"strings"

	"psacli/internal/errors"
	"psacli/internal/spectral"
)

// StageColumn is the sleep-stage label column of an observation table.
const StageColumn = "Stage"

// Stage labels used by the acquisition software.
const (
	stageWake = "W"
	stageREM  = "R"
	stageNREM = "NR"
)

// Transpose flips a cleaned trace matrix so each row is one epoch. The
// cleaned file carries one labeled series per row (Stage, Time, one row per
// frequency band) with epochs as columns; the labels become the column
// header of the result.
func Transpose(t *spectral.Table) *spectral.Table {
	width := len(t.Columns)

	// The header participates in the transpose as row zero, so the series
	// labels in the first column become the new header.
	header := make([]string, 0, t.Len()+1)
	header = append(header, t.Columns[0])
	for _, row := range t.Rows {
		header = append(header, row[0])
	}

	out := spectral.NewTable(header)
	for col := 1; col < width; col++ {
		row := make([]string, 0, len(header))
		row = append(row, t.Columns[col])
		for _, src := range t.Rows {
			row = append(row, src[col])
		}
		out.AppendRow(row)
	}
	return out
}

// PreprocessAndSplit transposes a cleaned trace table, drops Wake epochs and
// splits the remainder into one time-ordered table per sleep state. Epochs
// keep their recording order within each state. States with no epochs are
// absent from the result.
func PreprocessAndSplit(cleaned *spectral.Table) (map[spectral.SleepState]*spectral.Table, error) {
	t := Transpose(cleaned)

	stageIdx := t.ColumnIndex(StageColumn)
	if stageIdx < 0 {
		// Some exports leave the stage series unlabeled; it is the second
		// column of the transposed table when present at all.
		if len(t.Columns) < 2 {
			return nil, errors.MalformedInput("preprocess", "column %q not found and table too narrow to infer it", StageColumn)
		}
		stageIdx = 1
		t.Columns[stageIdx] = StageColumn
	}

	split := map[spectral.SleepState]*spectral.Table{
		spectral.StateREM:  spectral.NewTable(t.Columns),
		spectral.StateNREM: spectral.NewTable(t.Columns),
	}

	for _, row := range t.Rows {
		stage := strings.TrimSpace(row[stageIdx])
		row[stageIdx] = stage
		switch stage {
		case stageREM:
			split[spectral.StateREM].AppendRow(row)
		case stageNREM:
			split[spectral.StateNREM].AppendRow(row)
		case stageWake:
			// Wake epochs are excluded upstream of the analysis core.
		}
	}

	for state, table := range split {
		if table.Len() == 0 {
			delete(split, state)
		}
	}

	if len(split) == 0 {
		return nil, errors.EmptyInput("preprocess", "no REM or NREM epochs remain after dropping Wake")
	}

	return split, nil
}
