package reduce

import (
	"log/slog"
	"math"
	"strconv"

	"psacli/internal/errors"
	"psacli/internal/spectral"
)

// IdentifyingColumns are the non-frequency columns of a windowed observation
// table, excluded from reduction by default.
var IdentifyingColumns = []string{"EpochNo", "Stage", "Time"}

// ReducedRow is the reduction of one window of one session: the mean power
// per frequency band over the window's epochs, tagged with the identity the
// window was created under.
type ReducedRow struct {
	Identity spectral.Identity
	Bands    []string
	Means    map[string]float64
}

// Reduce collapses a windowed table into per-band means. Band columns are
// the columns outside the excluded identifying set, coerced to numeric;
// columns left entirely missing by coercion are dropped. Means ignore
// missing values per column, so a band with some unreadable epochs still
// contributes a mean over its present epochs.
//
// Reduce is a pure function of the window rows and the excluded set; the
// identity is attached verbatim, never inferred from the data.
func Reduce(windowTable *spectral.Table, excluded []string, id spectral.Identity) (*ReducedRow, error) {
	excludedSet := make(map[string]bool, len(excluded))
	for _, col := range excluded {
		excludedSet[col] = true
	}

	row := &ReducedRow{
		Identity: id,
		Means:    make(map[string]float64),
	}

	for _, col := range windowTable.Columns {
		if excludedSet[col] {
			continue
		}
		values, _ := windowTable.NumericColumn(col)
		mean, ok := spectral.Mean(values)
		if !ok {
			slog.Debug("dropping all-missing band column",
				slog.String("unit", id.String()),
				slog.String("column", col))
			continue
		}
		row.Bands = append(row.Bands, col)
		row.Means[col] = mean
	}

	if len(row.Bands) == 0 {
		return nil, errors.EmptyInput("reduce", "no numeric frequency columns remain after coercion").WithUnit(id.String())
	}

	return row, nil
}

// Combine outer-joins the reduced rows of one (animal, state, chunk) unit
// into a frequency-indexed wide table with one column per session. Bands
// present in only a subset of sessions keep missing values for the absent
// sessions; nothing is zero-filled. Band rows are ordered by numeric
// frequency.
func Combine(rows []*ReducedRow) (*spectral.CombinedTable, error) {
	if len(rows) == 0 {
		return nil, errors.EmptyInput("combine", "no reduced rows to combine")
	}

	combined := spectral.NewCombinedTable()
	for _, row := range rows {
		combined.AddSession(row.Identity.Session)
		for _, band := range row.Bands {
			combined.Set(band, row.Identity.Session, row.Means[band])
		}
	}
	combined.SortBands()

	return combined, nil
}

// AggregateColumns are the metadata columns of an aggregate table, in output
// order.
var AggregateColumns = []string{"Animal", "SleepState", "Session", "SessionType", "ChunkNum"}

// AggregateTable renders reduced rows as a metadata-tagged aggregate: one
// row per session, metadata columns first, then the union of band columns in
// numeric frequency order.
func AggregateTable(rows []*ReducedRow) (*spectral.Table, error) {
	if len(rows) == 0 {
		return nil, errors.EmptyInput("combine", "no reduced rows to aggregate")
	}

	seen := make(map[string]bool)
	var bands []string
	for _, row := range rows {
		for _, band := range row.Bands {
			if !seen[band] {
				seen[band] = true
				bands = append(bands, band)
			}
		}
	}
	spectral.SortBands(bands)

	t := spectral.NewTable(append(append([]string{}, AggregateColumns...), bands...))
	for _, row := range rows {
		record := []string{
			row.Identity.Animal,
			string(row.Identity.State),
			row.Identity.Session,
			string(row.Identity.Type),
			strconv.Itoa(row.Identity.Chunk),
		}
		for _, band := range bands {
			mean, ok := row.Means[band]
			if !ok {
				mean = math.NaN()
			}
			record = append(record, spectral.FormatCell(mean))
		}
		t.AppendRow(record)
	}

	return t, nil
}
