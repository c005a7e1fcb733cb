package compile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psacli/internal/errors"
	"psacli/internal/spectral"
)

func TestCompile_AveragesDuplicateSessionColumns(t *testing.T) {
	rat1 := spectral.NewCombinedTable()
	rat1.Set("1Hz", "baseline1", 10)
	rat1.Set("2Hz", "baseline1", 20)

	rat2 := spectral.NewCombinedTable()
	rat2.Set("1Hz", "baseline1", 30)
	rat2.Set("2Hz", "baseline1", 40)

	out, err := Compile([]*spectral.CombinedTable{rat1, rat2})
	require.NoError(t, err)

	assert.Equal(t, []string{"baseline1"}, out.Sessions)
	assert.Equal(t, 20.0, out.Get("1Hz", "baseline1"))
	assert.Equal(t, 30.0, out.Get("2Hz", "baseline1"))
}

func TestCompile_ExactNameGrouping(t *testing.T) {
	rat1 := spectral.NewCombinedTable()
	rat1.Set("1Hz", "test1", 1)

	rat2 := spectral.NewCombinedTable()
	rat2.Set("1Hz", "test10", 3)

	out, err := Compile([]*spectral.CombinedTable{rat1, rat2})
	require.NoError(t, err)

	// "test1" and "test10" are distinct columns; only exact name matches
	// are averaged.
	assert.Equal(t, []string{"test1", "test10"}, out.Sessions)
	assert.Equal(t, 1.0, out.Get("1Hz", "test1"))
	assert.Equal(t, 3.0, out.Get("1Hz", "test10"))
}

func TestCompile_MissingAwareMean(t *testing.T) {
	rat1 := spectral.NewCombinedTable()
	rat1.AddSession("baseline1")
	rat1.Set("1Hz", "baseline1", 10)
	rat1.AddBand("2Hz")

	rat2 := spectral.NewCombinedTable()
	rat2.Set("1Hz", "baseline1", math.NaN())
	rat2.Set("2Hz", "baseline1", 6)

	out, err := Compile([]*spectral.CombinedTable{rat1, rat2})
	require.NoError(t, err)

	// The mean skips absent contributions instead of treating them as zero.
	assert.Equal(t, 10.0, out.Get("1Hz", "baseline1"))
	assert.Equal(t, 6.0, out.Get("2Hz", "baseline1"))
}

func TestCompile_OuterJoin(t *testing.T) {
	rat1 := spectral.NewCombinedTable()
	rat1.Set("9Hz", "baseline1", 1)

	rat2 := spectral.NewCombinedTable()
	rat2.Set("100Hz", "test1", 2)
	rat2.Set("20Hz", "test1", 3)

	out, err := Compile([]*spectral.CombinedTable{rat1, rat2})
	require.NoError(t, err)

	// Bands come out in numeric order, not lexicographic.
	assert.Equal(t, []string{"9Hz", "20Hz", "100Hz"}, out.Bands)
	assert.True(t, math.IsNaN(out.Get("9Hz", "test1")))
	assert.True(t, math.IsNaN(out.Get("100Hz", "baseline1")))
}

func TestCompile_Empty(t *testing.T) {
	_, err := Compile(nil)
	require.Error(t, err)
	assert.True(t, errors.IsEmptyInput(err))
}
