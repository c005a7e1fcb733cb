// Package compile merges per-animal combined tables into one table per sleep
// state and window index.
package compile

import (
	"math"

	"psacli/internal/errors"
	"psacli/internal/spectral"
)

// Compile outer-joins per-animal combined tables on frequency band. Session
// columns carrying exactly the same name across animals are averaged
// elementwise, ignoring missing entries, into a single output column of that
// name. Exact name equality is the only grouping criterion, so "test1" never
// folds into "test10". Band rows come out in numeric frequency order.
func Compile(tables []*spectral.CombinedTable) (*spectral.CombinedTable, error) {
	if len(tables) == 0 {
		return nil, errors.EmptyInput("compile", "no combined tables to compile")
	}

	sums := make(map[string]map[string]float64)
	counts := make(map[string]map[string]int)

	out := spectral.NewCombinedTable()
	for _, table := range tables {
		for _, session := range table.Sessions {
			out.AddSession(session)
		}
		// Registering every input band keeps bands with only missing values
		// in the join output.
		for _, band := range table.Bands {
			out.AddBand(band)
			if sums[band] == nil {
				sums[band] = make(map[string]float64)
				counts[band] = make(map[string]int)
			}
			for _, session := range table.Sessions {
				v := table.Get(band, session)
				if math.IsNaN(v) {
					continue
				}
				sums[band][session] += v
				counts[band][session]++
			}
		}
	}

	for band, bySession := range sums {
		for session, sum := range bySession {
			out.Set(band, session, sum/float64(counts[band][session]))
		}
	}
	out.SortBands()

	return out, nil
}
