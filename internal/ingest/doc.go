// Package ingest turns raw acquisition exports into the cleaned,
// stage-labeled, time-ordered observation tables the pipeline core consumes.
//
// Raw trace exports arrive as CSV (or Excel workbooks, which are converted
// first) with a fixed metadata preamble and a frequency-by-epoch matrix:
// one labeled series per row, one epoch per column. Ingestion strips the
// preamble, transposes the matrix so each row is one epoch, removes Wake
// epochs, and splits the recording into per-sleep-state tables.
package ingest
