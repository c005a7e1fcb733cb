package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psacli/internal/errors"
	"psacli/internal/spectral"
)

var metadata = []string{"Animal", "SleepState", "Session", "SessionType", "ChunkNum"}

func aggregateTable(rows ...[]string) *spectral.Table {
	t := spectral.NewTable([]string{"Animal", "SleepState", "Session", "SessionType", "ChunkNum", "A", "B"})
	for _, row := range rows {
		t.AppendRow(row)
	}
	return t
}

func numericColumn(t *testing.T, table *spectral.Table, name string) []float64 {
	t.Helper()
	values, ok := table.NumericColumn(name)
	require.True(t, ok)
	return values
}

func TestRescale(t *testing.T) {
	table := aggregateTable(
		[]string{"RAT1", "rem", "baseline1", "baseline", "0", "10", "20"},
		[]string{"RAT1", "rem", "baseline2", "baseline", "0", "30", "0"},
	)

	result, err := Rescale(table, metadata, "baseline")
	require.NoError(t, err)
	assert.True(t, result.Rebaselined)

	// Column A: mean 20, sample std sqrt(200); z-scores are +/-0.7071. Both
	// rows are baseline, so the rescaling step reproduces the same scores.
	a := numericColumn(t, result.Table, "A")
	assert.InDelta(t, -0.7071, a[0], 1e-4)
	assert.InDelta(t, 0.7071, a[1], 1e-4)

	b := numericColumn(t, result.Table, "B")
	assert.InDelta(t, 0.7071, b[0], 1e-4)
	assert.InDelta(t, -0.7071, b[1], 1e-4)

	// Metadata cells pass through untouched.
	session, _ := result.Table.Cell(0, "Session")
	assert.Equal(t, "baseline1", session)
}

func TestRescale_ZeroStd(t *testing.T) {
	table := aggregateTable(
		[]string{"RAT1", "rem", "baseline1", "baseline", "0", "5", "1"},
		[]string{"RAT1", "rem", "baseline2", "baseline", "0", "5", "2"},
		[]string{"RAT1", "rem", "test1", "test", "0", "5", "3"},
	)

	result, err := Rescale(table, metadata, "baseline")
	require.NoError(t, err)

	// A constant column is mean-subtracted only, yielding exact zeros.
	a := numericColumn(t, result.Table, "A")
	assert.Equal(t, []float64{0, 0, 0}, a)
}

func TestRescale_EmptyBaseline(t *testing.T) {
	table := aggregateTable(
		[]string{"RAT1", "rem", "test1", "test", "0", "10", "20"},
		[]string{"RAT1", "rem", "test2", "test", "0", "30", "0"},
	)

	result, err := Rescale(table, metadata, "baseline")
	require.NoError(t, err, "an empty baseline subset is a partial success, not a failure")
	assert.False(t, result.Rebaselined)

	// The output is the plain z-scored table, unrescaled.
	a := numericColumn(t, result.Table, "A")
	assert.InDelta(t, -0.7071, a[0], 1e-4)
	assert.InDelta(t, 0.7071, a[1], 1e-4)
}

func TestRescale_InputDegeneraciesNeverError(t *testing.T) {
	// A band whose baseline rows are all missing keeps its plain z-scores.
	table := spectral.NewTable([]string{"SessionType", "A"})
	table.AppendRow([]string{"baseline", ""})
	table.AppendRow([]string{"test", "10"})
	table.AppendRow([]string{"test", "30"})

	result, err := Rescale(table, []string{"SessionType"}, "baseline")
	require.NoError(t, err)
	assert.True(t, result.Rebaselined)

	a := numericColumn(t, result.Table, "A")
	assert.InDelta(t, -0.7071, a[1], 1e-4)
	assert.InDelta(t, 0.7071, a[2], 1e-4)
}

func TestRescale_MissingTagColumn(t *testing.T) {
	table := spectral.NewTable([]string{"Session", "A"})
	table.AppendRow([]string{"baseline1", "10"})

	_, err := Rescale(table, []string{"Session"}, "baseline")
	require.Error(t, err)
	assert.True(t, errors.IsNormalization(err))
}

func TestRescale_NoBandColumns(t *testing.T) {
	table := aggregateTable()
	_, err := Rescale(table, append(metadata, "A", "B"), "baseline")
	require.Error(t, err)
	assert.True(t, errors.IsNormalization(err))
}
