package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySession(t *testing.T) {
	tests := []struct {
		name string
		want SessionType
	}{
		{"Traces_cFFT_baseline_00", SessionBaseline},
		{"rat1_BL1", SessionBaseline},
		{"Traces_cFFT_test_03", SessionTest},
		{"rat2_test2", SessionTest},
		{"Traces_cFFT_recovery_00", SessionUnknown},
		{"", SessionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySession(tt.name))
		})
	}
}

func TestSortBands(t *testing.T) {
	bands := []string{"100Hz", "20Hz", "9Hz", "Total", "0.5Hz"}
	SortBands(bands)
	assert.Equal(t, []string{"0.5Hz", "9Hz", "20Hz", "100Hz", "Total"}, bands)
}

func TestBandValue(t *testing.T) {
	tests := []struct {
		band string
		want float64
		ok   bool
	}{
		{"20Hz", 20, true},
		{"0.5Hz", 0.5, true},
		{"9", 9, true},
		{"Total", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.band, func(t *testing.T) {
			got, ok := BandValue(tt.band)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
