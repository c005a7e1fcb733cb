package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psacli/internal/spectral"
)

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.csv")

	w := NewCSVWriter()
	err := w.WriteCSV(path, WriteOptions{
		Headers: []string{"Frequency", "BL1"},
		Records: [][]string{{"1Hz", "10"}, {"2Hz", ""}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Frequency,BL1\n1Hz,10\n2Hz,\n", string(data))
}

func TestWriteCSV_Exclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	w := NewCSVWriter()

	opts := WriteOptions{
		Headers:   []string{"A"},
		Records:   [][]string{{"first"}},
		Exclusive: true,
	}
	require.NoError(t, w.WriteCSV(path, opts))

	// Second exclusive write must lose to the first writer and leave the
	// original content untouched.
	opts.Records = [][]string{{"second"}}
	err := w.WriteCSV(path, opts)
	assert.ErrorIs(t, err, ErrExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\nfirst\n", string(data))
}

func TestWriteCSV_BOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.csv")

	w := NewCSVWriter()
	require.NoError(t, w.WriteCSV(path, WriteOptions{
		Headers:   []string{"A"},
		BOMPrefix: true,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
}

func TestWriteTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.csv")

	table := spectral.NewTable([]string{"Frequency", "BL1"})
	table.AppendRow([]string{"1Hz", "1.5"})

	w := NewCSVWriter()
	require.NoError(t, w.WriteTable(path, table, false))

	loaded, err := spectral.ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, loaded.Columns)
	assert.Equal(t, table.Rows, loaded.Rows)
}
