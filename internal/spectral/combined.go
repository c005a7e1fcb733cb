package spectral

import (
	"math"
)

// FrequencyColumn is the key column of frequency-indexed wide tables.
const FrequencyColumn = "Frequency"

// CombinedTable is a frequency-indexed wide table: one row per frequency
// band, one column per session. Missing (band, session) combinations are
// NaN and are never substituted with zero.
type CombinedTable struct {
	Bands    []string
	Sessions []string
	// values[band][session]; absent entries mean missing.
	values map[string]map[string]float64
}

// NewCombinedTable creates an empty combined table.
func NewCombinedTable() *CombinedTable {
	return &CombinedTable{values: make(map[string]map[string]float64)}
}

// AddSession appends a session column if it is not already present.
func (c *CombinedTable) AddSession(session string) {
	for _, s := range c.Sessions {
		if s == session {
			return
		}
	}
	c.Sessions = append(c.Sessions, session)
}

// AddBand appends a band row if it is not already present.
func (c *CombinedTable) AddBand(band string) {
	if _, ok := c.values[band]; ok {
		return
	}
	c.values[band] = make(map[string]float64)
	c.Bands = append(c.Bands, band)
}

// Set stores one value, registering the band row and session column on first
// use. NaN values are stored as missing.
func (c *CombinedTable) Set(band, session string, value float64) {
	c.AddSession(session)
	c.AddBand(band)
	row := c.values[band]
	if math.IsNaN(value) {
		delete(row, session)
		return
	}
	row[session] = value
}

// Get returns the value at (band, session), NaN when missing.
func (c *CombinedTable) Get(band, session string) float64 {
	if row, ok := c.values[band]; ok {
		if v, ok := row[session]; ok {
			return v
		}
	}
	return math.NaN()
}

// Has reports whether (band, session) holds a present value.
func (c *CombinedTable) Has(band, session string) bool {
	row, ok := c.values[band]
	if !ok {
		return false
	}
	_, ok = row[session]
	return ok
}

// SortBands orders the band rows by numeric frequency value.
func (c *CombinedTable) SortBands() {
	SortBands(c.Bands)
}

// SessionColumn returns the column of one session in band-row order.
func (c *CombinedTable) SessionColumn(session string) []float64 {
	column := make([]float64, len(c.Bands))
	for i, band := range c.Bands {
		column[i] = c.Get(band, session)
	}
	return column
}

// BandRow returns the row of one band in session-column order.
func (c *CombinedTable) BandRow(band string) []float64 {
	row := make([]float64, len(c.Sessions))
	for i, session := range c.Sessions {
		row[i] = c.Get(band, session)
	}
	return row
}

// ToTable renders the combined table as a string table with the frequency
// label re-attached as the first column. Missing values render as empty
// cells.
func (c *CombinedTable) ToTable() *Table {
	columns := append([]string{FrequencyColumn}, c.Sessions...)
	t := NewTable(columns)
	for _, band := range c.Bands {
		row := make([]string, 0, len(columns))
		row = append(row, band)
		for _, session := range c.Sessions {
			row = append(row, FormatCell(c.Get(band, session)))
		}
		t.AppendRow(row)
	}
	return t
}

// CombinedFromTable parses a frequency-indexed wide table back into a
// CombinedTable. The Frequency column is required.
func CombinedFromTable(t *Table) (*CombinedTable, bool) {
	freqIdx := t.ColumnIndex(FrequencyColumn)
	if freqIdx < 0 {
		return nil, false
	}

	c := NewCombinedTable()
	for _, col := range t.Columns {
		if col != FrequencyColumn {
			c.AddSession(col)
		}
	}
	for _, row := range t.Rows {
		band := row[freqIdx]
		for i, col := range t.Columns {
			if col == FrequencyColumn {
				continue
			}
			c.Set(band, col, ParseCell(row[i]))
		}
	}
	return c, true
}
