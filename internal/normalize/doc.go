// Package normalize rescales aggregated spectral-power tables into
// baseline-relative scores.
//
// Two strategies exist, selected by the shape of the upstream table. Rescale
// applies baseline z-rescaling to metadata-tagged aggregate tables, one row
// per observation unit. Proportion applies column-mean and row-proportion
// rescaling to frequency-indexed wide tables, one row per band.
//
// Statistical degeneracies (zero variance, empty baseline subset, zero sums)
// are resolved by explicit fallbacks; only structurally malformed input is an
// error.
package normalize
