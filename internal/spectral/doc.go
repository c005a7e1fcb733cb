// Package spectral provides the tabular data model shared by all pipeline
// stages of the spectral power analysis tool.
//
// This package contains three main components:
//
// Table: An ordered-column, row-major table backed by string cells, read from
// and written to CSV artifacts. Numeric access coerces cells to float64 with
// NaN representing missing values, matching the per-column missing-aware
// statistics the aggregation stages rely on.
//
// Identity: The explicit (animal, sleep state, session, chunk) tuple attached
// to every derived artifact, plus the enumerated session type classification
// (baseline, test, unknown) derived once at ingestion.
//
// Frequency helpers: Band column names carry a unit suffix such as "20Hz";
// SortBands orders them by numeric value, not lexicographically.
package spectral
