package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for the artifact directory contract
// between pipeline stages. Stages address sibling artifacts through these
// methods by (animal, sleep state, chunk) key and never re-derive identity
// from a path string.
//
// Layout under the output directory:
//
//	input/<animal>/<session>_cleaned.csv
//	<animal>/<state>/original/<session>/<stem>_<state>.csv
//	<animal>/<state>/chunked/<session>_<NN>.csv
//	<animal>/<state>/chunked/chunk_<NN>_raw.csv
//	<animal>/<state>/chunked/chunk_<NN>_freq.csv
//	<animal>/<state>/chunked/chunk_<NN>_norm.csv
//	compiled/<state>/chunk_<NN>.csv
//	compiled/summary.xlsx
type Paths struct {
	RawDir    string
	OutputDir string
}

// NewPaths creates a Paths rooted at the given raw input and output
// directories.
func NewPaths(rawDir, outputDir string) *Paths {
	return &Paths{RawDir: rawDir, OutputDir: outputDir}
}

// InputDir is where cleaned per-session CSVs live.
func (p *Paths) InputDir() string {
	return filepath.Join(p.OutputDir, "input")
}

// CleanedPath locates the cleaned CSV for one (animal, session).
func (p *Paths) CleanedPath(animal, session string) string {
	return filepath.Join(p.InputDir(), animal, session+"_cleaned.csv")
}

// ConvertedPath locates the CSV rendering of an Excel trace export for one
// (animal, session).
func (p *Paths) ConvertedPath(animal, session string) string {
	return filepath.Join(p.InputDir(), animal, session+"_converted.csv")
}

// OriginalDir is where the split per-state recordings of one session live.
func (p *Paths) OriginalDir(animal, state, session string) string {
	return filepath.Join(p.OutputDir, animal, state, "original", session)
}

// SplitPath locates the split recording of one (animal, state, session).
func (p *Paths) SplitPath(animal, state, session string) string {
	return filepath.Join(p.OriginalDir(animal, state, session), fmt.Sprintf("Traces_cFFT_%s.csv", state))
}

// ChunkedDir is where all windowed and aggregated artifacts of one
// (animal, state) live.
func (p *Paths) ChunkedDir(animal, state string) string {
	return filepath.Join(p.OutputDir, animal, state, "chunked")
}

// WindowPath locates the windowed artifact of one
// (animal, state, session, chunk).
func (p *Paths) WindowPath(animal, state, session string, chunk int) string {
	return filepath.Join(p.ChunkedDir(animal, state), fmt.Sprintf("%s_%02d.csv", session, chunk))
}

// WindowPattern is the glob matching every session's windowed artifact for
// one chunk index.
func (p *Paths) WindowPattern(animal, state string, chunk int) string {
	return filepath.Join(p.ChunkedDir(animal, state), fmt.Sprintf("*_%02d.csv", chunk))
}

// RawChunkPath locates the combined raw aggregate for one
// (animal, state, chunk).
func (p *Paths) RawChunkPath(animal, state string, chunk int) string {
	return filepath.Join(p.ChunkedDir(animal, state), fmt.Sprintf("chunk_%02d_raw.csv", chunk))
}

// FreqChunkPath locates the frequency-indexed combined table for one
// (animal, state, chunk).
func (p *Paths) FreqChunkPath(animal, state string, chunk int) string {
	return filepath.Join(p.ChunkedDir(animal, state), fmt.Sprintf("chunk_%02d_freq.csv", chunk))
}

// NormChunkPath locates the normalized aggregate for one
// (animal, state, chunk).
func (p *Paths) NormChunkPath(animal, state string, chunk int) string {
	return filepath.Join(p.ChunkedDir(animal, state), fmt.Sprintf("chunk_%02d_norm.csv", chunk))
}

// CompiledDir is where cross-animal compiled tables for one state live.
func (p *Paths) CompiledDir(state string) string {
	return filepath.Join(p.OutputDir, "compiled", state)
}

// CompiledChunkPath locates the cross-animal compiled table for one
// (state, chunk).
func (p *Paths) CompiledChunkPath(state string, chunk int) string {
	return filepath.Join(p.CompiledDir(state), fmt.Sprintf("chunk_%02d.csv", chunk))
}

// CompiledNormPath locates the proportion-rescaled compiled table for one
// (state, chunk).
func (p *Paths) CompiledNormPath(state string, chunk int) string {
	return filepath.Join(p.CompiledDir(state), fmt.Sprintf("chunk_%02d_norm.csv", chunk))
}

// SummaryWorkbookPath locates the compiled summary Excel workbook.
func (p *Paths) SummaryWorkbookPath() string {
	return filepath.Join(p.OutputDir, "compiled", "summary.xlsx")
}

// LogsDir is where run logs are written.
func (p *Paths) LogsDir() string {
	return filepath.Join(p.OutputDir, "logs")
}

// EnsureBaseDirectories creates the base output directories. Stage-specific
// subdirectories are created by the stages that write into them.
func (p *Paths) EnsureBaseDirectories() error {
	for _, dir := range []string{p.OutputDir, p.InputDir(), p.LogsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
