package window

import (
	"math"

	"psacli/internal/errors"
	"psacli/internal/spectral"
)

// TimeColumn is the elapsed-time column time-mode partitioning requires.
const TimeColumn = "Time"

// Mode selects how a recording is partitioned into windows.
type Mode string

const (
	// ModeRows partitions by row count: window i covers rows
	// [i*chunkSize, (i+1)*chunkSize). Indices are contiguous from 0 and the
	// final window may be short.
	ModeRows Mode = "rows"
	// ModeTime partitions by elapsed time: window i covers the half-open
	// interval [i*chunkSize, (i+1)*chunkSize). Empty windows are dropped and
	// their indices are NOT reassigned, so the emitted index sequence may
	// have gaps. This differs deliberately from ModeRows; the two policies
	// are kept per-mode rather than unified.
	ModeTime Mode = "time"
)

// Span is one emitted window: its index and the sub-table of rows it covers.
type Span struct {
	Index int
	Table *spectral.Table
}

// Partition splits a time-ordered observation table into fixed-size windows.
// Windows are emitted in increasing index order and never overlap; no emitted
// window is empty.
func Partition(t *spectral.Table, mode Mode, chunkSize int) ([]Span, error) {
	if chunkSize < 1 {
		return nil, errors.MalformedInput("chunk", "chunk size must be positive, got %d", chunkSize)
	}

	switch mode {
	case ModeRows:
		return partitionByRows(t, chunkSize), nil
	case ModeTime:
		return partitionByTime(t, chunkSize)
	default:
		return nil, errors.MalformedInput("chunk", "unknown chunk mode %q", mode)
	}
}

func partitionByRows(t *spectral.Table, chunkSize int) []Span {
	n := t.Len()
	numChunks := (n + chunkSize - 1) / chunkSize

	spans := make([]Span, 0, numChunks)
	for i := 0; i < numChunks; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		spans = append(spans, Span{Index: i, Table: t.Slice(start, end)})
	}
	return spans
}

func partitionByTime(t *spectral.Table, chunkSize int) ([]Span, error) {
	times, ok := t.NumericColumn(TimeColumn)
	if !ok {
		return nil, errors.MalformedInput("chunk", "column %q not found", TimeColumn)
	}

	buckets := make(map[int]*spectral.Table)
	maxIndex := -1
	for row, elapsed := range times {
		if math.IsNaN(elapsed) {
			return nil, errors.MalformedInput("chunk", "row %d has no parseable %s value", row, TimeColumn)
		}
		idx := int(elapsed) / chunkSize
		if elapsed < 0 {
			return nil, errors.MalformedInput("chunk", "row %d has negative %s value", row, TimeColumn)
		}
		bucket, ok := buckets[idx]
		if !ok {
			bucket = spectral.NewTable(t.Columns)
			buckets[idx] = bucket
		}
		bucket.AppendRow(t.Rows[row])
		if idx > maxIndex {
			maxIndex = idx
		}
	}

	var spans []Span
	for i := 0; i <= maxIndex; i++ {
		if bucket, ok := buckets[i]; ok {
			spans = append(spans, Span{Index: i, Table: bucket})
		}
	}
	return spans, nil
}
