package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psacli/internal/errors"
	"psacli/internal/spectral"
)

func combinedFixture() *spectral.CombinedTable {
	c := spectral.NewCombinedTable()
	c.Set("1Hz", "s1", 2)
	c.Set("1Hz", "s2", 1)
	c.Set("2Hz", "s1", 4)
	c.Set("2Hz", "s2", 3)
	return c
}

func TestProportion(t *testing.T) {
	out, err := Proportion(combinedFixture())
	require.NoError(t, err)

	assert.Equal(t, []string{spectral.FrequencyColumn, "s1", "s2", "BL"}, out.Columns)
	require.Equal(t, 2, out.Len())

	// s1 mean is 3, s2 mean is 2; after column scaling band 1Hz holds
	// 2/3 and 1/2, and the row-proportion step divides by their sum.
	s1 := spectral.ParseCell(out.Rows[0][1])
	s2 := spectral.ParseCell(out.Rows[0][2])
	assert.InDelta(t, 4.0/7.0, s1, 1e-12)
	assert.InDelta(t, 3.0/7.0, s2, 1e-12)

	// BL is the elementwise mean of the first two session columns.
	bl := spectral.ParseCell(out.Rows[0][3])
	assert.InDelta(t, (s1+s2)/2, bl, 1e-12)
}

func TestProportion_RowsSumToOne(t *testing.T) {
	out, err := Proportion(combinedFixture())
	require.NoError(t, err)

	for _, row := range out.Rows {
		var sum float64
		// Session columns only; the frequency label and BL are excluded.
		for _, cell := range row[1 : len(row)-1] {
			sum += spectral.ParseCell(cell)
		}
		assert.InDelta(t, 1, sum, 1e-9)
	}
}

func TestProportion_MissingStaysMissing(t *testing.T) {
	c := spectral.NewCombinedTable()
	c.AddSession("s1")
	c.AddSession("s2")
	c.Set("1Hz", "s1", 2)
	c.Set("2Hz", "s1", 4)
	c.Set("2Hz", "s2", 3)

	out, err := Proportion(c)
	require.NoError(t, err)

	// Band 1Hz has no s2 value; the cell stays empty and the lone present
	// value normalizes to the whole row.
	assert.Equal(t, "", out.Rows[0][2])
	assert.InDelta(t, 1, spectral.ParseCell(out.Rows[0][1]), 1e-12)
	assert.True(t, math.IsNaN(spectral.ParseCell(out.Rows[0][2])))
}

func TestProportion_FrequencyFirst(t *testing.T) {
	out, err := Proportion(combinedFixture())
	require.NoError(t, err)
	assert.Equal(t, spectral.FrequencyColumn, out.Columns[0])
	assert.Equal(t, "1Hz", out.Rows[0][0])
	assert.Equal(t, "2Hz", out.Rows[1][0])
}

func TestProportion_TooFewSessions(t *testing.T) {
	c := spectral.NewCombinedTable()
	c.Set("1Hz", "s1", 2)

	_, err := Proportion(c)
	require.Error(t, err)
	assert.True(t, errors.IsNormalization(err))
}
