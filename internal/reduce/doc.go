// Package reduce collapses windowed observation tables into per-frequency
// summaries and merges them across sessions.
//
// Reduce turns one window of one session into a single row of per-band mean
// power. Combine outer-joins the reduced rows of all sessions sharing an
// (animal, sleep state, chunk) key into a frequency-indexed wide table, and
// AggregateTable renders the same rows as a metadata-tagged aggregate, the
// shape the baseline z-rescaling normalizer consumes.
package reduce
