package window

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psacli/internal/errors"
	"psacli/internal/spectral"
)

func makeTable(times ...float64) *spectral.Table {
	t := spectral.NewTable([]string{"EpochNo", "Stage", "Time", "1Hz"})
	for i, elapsed := range times {
		t.AppendRow([]string{
			fmt.Sprintf("%d", i+1),
			"NR",
			spectral.FormatCell(elapsed),
			"0.5",
		})
	}
	return t
}

func TestPartitionByRows(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		chunkSize int
		wantLens  []int
	}{
		{"even split", 6, 3, []int{3, 3}},
		{"short final window", 7, 3, []int{3, 3, 1}},
		{"single window", 2, 10, []int{2}},
		{"empty input", 0, 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times := make([]float64, tt.rows)
			for i := range times {
				times[i] = float64(i * 4)
			}
			table := makeTable(times...)

			spans, err := Partition(table, ModeRows, tt.chunkSize)
			require.NoError(t, err)
			require.Len(t, spans, len(tt.wantLens))

			total := 0
			for i, span := range spans {
				assert.Equal(t, i, span.Index, "row-count mode indices are contiguous")
				assert.Equal(t, tt.wantLens[i], span.Table.Len())
				assert.LessOrEqual(t, span.Table.Len(), tt.chunkSize)
				total += span.Table.Len()
			}
			assert.Equal(t, tt.rows, total, "every row lands in exactly one window")
		})
	}
}

func TestPartitionByTime(t *testing.T) {
	// Rows at t=0,1,9: window 0 gets two rows, window 1 is empty and
	// dropped, window 2 gets one row keeping index 2.
	table := makeTable(0, 1, 9)

	spans, err := Partition(table, ModeTime, 4)
	require.NoError(t, err)
	require.Len(t, spans, 2)

	assert.Equal(t, 0, spans[0].Index)
	assert.Equal(t, 2, spans[0].Table.Len())
	assert.Equal(t, 2, spans[1].Index, "time mode preserves gapped indices")
	assert.Equal(t, 1, spans[1].Table.Len())
}

func TestPartitionByTime_Bounds(t *testing.T) {
	table := makeTable(0, 3.9, 4, 7.5, 8)

	spans, err := Partition(table, ModeTime, 4)
	require.NoError(t, err)

	total := 0
	for _, span := range spans {
		lo := float64(span.Index * 4)
		hi := float64((span.Index + 1) * 4)
		times, ok := span.Table.NumericColumn(TimeColumn)
		require.True(t, ok)
		for _, elapsed := range times {
			assert.GreaterOrEqual(t, elapsed, lo)
			assert.Less(t, elapsed, hi)
		}
		total += span.Table.Len()
	}
	assert.Equal(t, table.Len(), total)
}

func TestPartitionByTime_MissingColumn(t *testing.T) {
	table := spectral.NewTable([]string{"EpochNo", "1Hz"})
	table.AppendRow([]string{"1", "0.5"})

	_, err := Partition(table, ModeTime, 4)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
}

func TestPartitionByTime_UnparseableTime(t *testing.T) {
	table := spectral.NewTable([]string{"Time", "1Hz"})
	table.AppendRow([]string{"abc", "0.5"})

	_, err := Partition(table, ModeTime, 4)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
}

func TestPartition_InvalidArguments(t *testing.T) {
	table := makeTable(0)

	_, err := Partition(table, ModeRows, 0)
	assert.True(t, errors.IsMalformedInput(err))

	_, err = Partition(table, Mode("epochs"), 4)
	assert.True(t, errors.IsMalformedInput(err))
}
