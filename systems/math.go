package systems

import "math"

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// decay returns the factor a quantity damped at rate per second keeps after dt.
func decay(rate, dt float32) float32 {
	return float32(math.Exp(float64(-rate * dt)))
}
