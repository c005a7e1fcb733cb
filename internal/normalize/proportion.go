package normalize

import (
	"math"

	"psacli/internal/errors"
	"psacli/internal/spectral"
)

// BaselineColumn is the derived baseline reference column Proportion appends.
const BaselineColumn = "BL"

// Proportion applies proportion rescaling to a frequency-indexed wide table.
//
// Each session column is first divided by its own mean across all bands, then
// each band row is divided by its sum across sessions, turning every row into
// a relative-proportion distribution. A BL column is appended as the
// elementwise mean of the first two session columns in column order; by
// caller contract those are the two baseline replicates, whatever their
// names. The frequency label is re-attached as the first output column.
//
// A zero column mean or zero row sum leaves the affected values unchanged.
func Proportion(c *spectral.CombinedTable) (*spectral.Table, error) {
	if len(c.Bands) == 0 {
		return nil, errors.Normalization("normalize", "no frequency rows to rescale")
	}
	if len(c.Sessions) < 2 {
		return nil, errors.Normalization("normalize", "need at least two session columns for the baseline pair, got %d", len(c.Sessions))
	}

	scaled := spectral.NewCombinedTable()
	for _, session := range c.Sessions {
		scaled.AddSession(session)
		column := c.SessionColumn(session)
		colMean, ok := spectral.Mean(column)
		for i, band := range c.Bands {
			v := column[i]
			if ok && colMean != 0 {
				v /= colMean
			}
			scaled.Set(band, session, v)
		}
	}

	for _, band := range c.Bands {
		row := scaled.BandRow(band)
		var sum float64
		var present int
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			present++
		}
		if present == 0 || sum == 0 {
			continue
		}
		for i, session := range scaled.Sessions {
			scaled.Set(band, session, row[i]/sum)
		}
	}

	out := scaled.ToTable()
	out.Columns = append(out.Columns, BaselineColumn)
	first, second := scaled.Sessions[0], scaled.Sessions[1]
	for i, band := range scaled.Bands {
		bl, _ := spectral.Mean([]float64{
			scaled.Get(band, first),
			scaled.Get(band, second),
		})
		out.Rows[i] = append(out.Rows[i], spectral.FormatCell(bl))
	}

	return out, nil
}
