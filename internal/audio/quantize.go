package audio

import "math"

// Quantize converts mixed samples to 16-bit PCM. Values are truncated toward
// zero like a plain float to int cast; anything outside the int16 range
// saturates instead of wrapping.
func Quantize(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = quantizeSample(s)
	}

	return out
}

func quantizeSample(s float64) int16 {
	switch {
	case math.IsNaN(s):
		return 0
	case s >= math.MaxInt16:
		return math.MaxInt16
	case s <= math.MinInt16:
		return math.MinInt16
	default:
		return int16(s)
	}
}
