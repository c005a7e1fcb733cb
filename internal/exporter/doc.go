// Package exporter provides artifact writing for the spectral power analysis
// pipeline.
//
// CSVWriter is the single path through which stages persist tabular
// artifacts. Writes can be exclusive (create-only), which is how the pipeline
// implements first-writer-wins idempotence: a unit whose output already
// exists is skipped instead of re-derived, and concurrent workers racing on
// the same output path resolve to one writer and silent skips.
//
// WorkbookWriter renders the final cross-animal compiled tables into a
// multi-sheet Excel summary workbook.
package exporter
