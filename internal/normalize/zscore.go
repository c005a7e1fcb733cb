package normalize

import (
	"log/slog"
	"math"

	"psacli/internal/errors"
	"psacli/internal/spectral"
)

// SessionTypeColumn is the tag column baseline selection keys on.
const SessionTypeColumn = "SessionType"

// ZScoreResult is the output of Rescale. Rebaselined is false when no row
// matched the baseline label and the table holds the plain z-scores; the run
// is still a (partial) success and consumers must tolerate un-rebaselined
// values.
type ZScoreResult struct {
	Table       *spectral.Table
	Rebaselined bool
}

// Rescale applies baseline z-rescaling to a metadata-tagged aggregate table.
//
// Every column outside the metadata set is treated as a frequency band. Each
// band is first z-scored across all rows; a band with zero standard deviation
// is mean-subtracted only, so constant columns come out exactly zero instead
// of dividing by zero. Rows whose session-type tag equals baselineLabel then
// define a second mean and standard deviation per band, and every row is
// rescaled against those. An empty baseline subset skips the second step.
func Rescale(t *spectral.Table, metadata []string, baselineLabel string) (*ZScoreResult, error) {
	if !t.HasColumn(SessionTypeColumn) {
		return nil, errors.Normalization("normalize", "column %q not found", SessionTypeColumn)
	}

	metadataSet := make(map[string]bool, len(metadata))
	for _, col := range metadata {
		metadataSet[col] = true
	}

	var bands []string
	for _, col := range t.Columns {
		if !metadataSet[col] {
			bands = append(bands, col)
		}
	}
	if len(bands) == 0 {
		return nil, errors.Normalization("normalize", "no frequency columns outside the metadata set")
	}

	out := t.Slice(0, t.Len())

	var baselineRows []int
	for i := 0; i < t.Len(); i++ {
		if tag, _ := t.Cell(i, SessionTypeColumn); tag == baselineLabel {
			baselineRows = append(baselineRows, i)
		}
	}
	rebaselined := len(baselineRows) > 0
	if !rebaselined {
		slog.Warn("no rows match baseline label, emitting plain z-scores",
			slog.String("baseline_label", baselineLabel))
	}

	for _, band := range bands {
		values, _ := t.NumericColumn(band)
		scores := zscore(values)

		if rebaselined {
			subset := make([]float64, 0, len(baselineRows))
			for _, row := range baselineRows {
				subset = append(subset, scores[row])
			}
			blMean, blStd, ok := spectral.MeanStd(subset)
			// A baseline subset with no present values for this band
			// leaves the plain z-scores in place.
			if ok {
				for i := range scores {
					scores[i] = rescaleValue(scores[i], blMean, blStd)
				}
			}
		}

		for i, score := range scores {
			out.SetCell(i, band, spectral.FormatCell(score))
		}
	}

	return &ZScoreResult{Table: out, Rebaselined: rebaselined}, nil
}

// zscore centers and scales a column, keeping missing values missing.
func zscore(values []float64) []float64 {
	mean, std, ok := spectral.MeanStd(values)
	scores := make([]float64, len(values))
	for i, v := range values {
		if !ok || math.IsNaN(v) {
			scores[i] = math.NaN()
			continue
		}
		scores[i] = rescaleValue(v, mean, std)
	}
	return scores
}

func rescaleValue(v, mean, std float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	if std == 0 {
		return v - mean
	}
	return (v - mean) / std
}
