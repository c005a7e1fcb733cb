package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psacli/internal/config"
	"psacli/internal/spectral"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
}

func TestFindRawTraces(t *testing.T) {
	rawDir := t.TempDir()
	writeFile(t, filepath.Join(rawDir, "RAT1", "rat1_BL1", "Traces_cFFT.csv"))
	writeFile(t, filepath.Join(rawDir, "RAT1", "rat1_test1", "Traces_cFFT.xlsx"))
	writeFile(t, filepath.Join(rawDir, "RAT2", "rat2_BL1", "Traces_cFFT.csv"))
	writeFile(t, filepath.Join(rawDir, "RAT2", "rat2_BL1", "notes.txt"))

	d := NewDiscovery(config.NewPaths(rawDir, t.TempDir()))
	traces, err := d.FindRawTraces()
	require.NoError(t, err)
	require.Len(t, traces, 3)

	assert.Equal(t, "RAT1", traces[0].Animal)
	assert.Equal(t, "rat1_BL1", traces[0].Session)
	assert.False(t, traces[0].Workbook)

	assert.Equal(t, "rat1_test1", traces[1].Session)
	assert.True(t, traces[1].Workbook)

	assert.Equal(t, []string{"RAT1", "RAT2"}, Animals(traces))
}

func TestFindWindowArtifacts(t *testing.T) {
	outDir := t.TempDir()
	paths := config.NewPaths(t.TempDir(), outDir)

	writeFile(t, paths.WindowPath("RAT1", "rem", "rat1_BL1", 0))
	writeFile(t, paths.WindowPath("RAT1", "rem", "rat1_test1", 0))
	writeFile(t, paths.WindowPath("RAT1", "rem", "rat1_BL1", 1))
	// Aggregate outputs in the same directory must not be picked up.
	writeFile(t, paths.RawChunkPath("RAT1", "rem", 0))

	d := NewDiscovery(paths)
	artifacts, err := d.FindWindowArtifacts("RAT1", spectral.StateREM, 0)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, "rat1_BL1", artifacts[0].Identity.Session)
	assert.Equal(t, spectral.SessionBaseline, artifacts[0].Identity.Type)
	assert.Equal(t, "rat1_test1", artifacts[1].Identity.Session)
	assert.Equal(t, spectral.SessionTest, artifacts[1].Identity.Type)
	assert.Equal(t, 0, artifacts[0].Identity.Chunk)
}

func TestMaxChunkIndex(t *testing.T) {
	outDir := t.TempDir()
	paths := config.NewPaths(t.TempDir(), outDir)
	d := NewDiscovery(paths)

	// Missing directory means no chunks yet, not an error.
	idx, err := d.MaxChunkIndex("RAT1", spectral.StateREM)
	require.NoError(t, err)
	assert.Equal(t, -1, idx)

	writeFile(t, paths.WindowPath("RAT1", "rem", "rat1_BL1", 0))
	writeFile(t, paths.WindowPath("RAT1", "rem", "rat1_BL1", 7))
	writeFile(t, paths.RawChunkPath("RAT1", "rem", 9))

	idx, err = d.MaxChunkIndex("RAT1", spectral.StateREM)
	require.NoError(t, err)
	assert.Equal(t, 7, idx, "aggregate outputs must not contribute chunk indices")
}
