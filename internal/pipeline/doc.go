// Package pipeline orchestrates the batch run: workbook conversion, metadata
// cleaning, stage splitting, windowing, reduction, normalization and
// cross-animal compilation, in that order.
//
// Each stage iterates independent units of work and applies a catch, log and
// continue policy: one unit's failure never aborts the run. A stage only
// counts as failed when it failed units and succeeded at none. Output
// artifacts are created exclusively, so a re-run over unchanged input skips
// completed units and redoes incomplete ones in full.
package pipeline
