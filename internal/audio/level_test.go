package audio

import (
	"math"
	"testing"
)

func TestPeak(t *testing.T) {
	if got := Peak([]float32{0.1, -0.5, 0.25}); got != 0.5 {
		t.Errorf("Peak = %v; want 0.5", got)
	}
}

func TestPeakDBFS(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want float64
	}{
		{"full scale", []float32{1, -0.2}, 0},
		{"half scale", []float32{0.5}, 20 * math.Log10(0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeakDBFS(tt.in); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("PeakDBFS = %v; want %v", got, tt.want)
			}
		})
	}

	if got := PeakDBFS([]float32{0, 0}); !math.IsInf(got, -1) {
		t.Errorf("PeakDBFS(silence) = %v; want -Inf", got)
	}
}
