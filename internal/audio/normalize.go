package audio

import "math"

// Normalize scales a sample buffer to zero mean and unit variance.
// The standard deviation uses divisor N (population form). A constant
// or empty buffer normalizes to all zeros rather than dividing by zero.
// The input is not modified; a new buffer is returned.
func Normalize(samples []float32) []float32 {
	out := make([]float32, len(samples))
	if len(samples) == 0 {
		return out
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := sum / float64(len(samples))

	var sqDiff float64
	for _, s := range samples {
		d := float64(s) - mean
		sqDiff += d * d
	}
	std := math.Sqrt(sqDiff / float64(len(samples)))
	if std == 0 {
		std = 1
	}

	for i, s := range samples {
		out[i] = float32((float64(s) - mean) / std)
	}
	return out
}
