package audio

import "math"

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float32 {
	var peak float32
	for _, v := range samples {
		if a := float32(math.Abs(float64(v))); a > peak {
			peak = a
		}
	}

	return peak
}

// PeakDBFS returns the peak level relative to full scale. Silence reports
// negative infinity.
func PeakDBFS(samples []float32) float64 {
	peak := Peak(samples)
	if peak == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(float64(peak))
}
