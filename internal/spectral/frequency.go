package spectral

import (
	"sort"
	"strconv"
	"strings"
)

// BandValue extracts the numeric frequency from a band column name, stripping
// a trailing unit suffix such as "Hz". The second return value is false when
// no leading number is present.
func BandValue(band string) (float64, bool) {
	trimmed := strings.TrimSpace(band)
	end := 0
	for end < len(trimmed) {
		c := trimmed[end]
		if (c >= '0' && c <= '9') || c == '.' || (c == '-' && end == 0) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed[:end], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// SortBands orders band names by their numeric frequency value, so "9Hz"
// sorts before "20Hz" and "100Hz". Names without a numeric prefix sort after
// all numeric bands, alphabetically among themselves.
func SortBands(bands []string) {
	sort.SliceStable(bands, func(i, j int) bool {
		vi, oki := BandValue(bands[i])
		vj, okj := BandValue(bands[j])
		switch {
		case oki && okj:
			if vi != vj {
				return vi < vj
			}
			return bands[i] < bands[j]
		case oki:
			return true
		case okj:
			return false
		default:
			return bands[i] < bands[j]
		}
	})
}
