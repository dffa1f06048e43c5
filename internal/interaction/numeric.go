package interaction

import "math"

// Rescale maps values linearly onto [lo, hi] in place. A constant input
// becomes all lo.
func Rescale(values []float32, lo, hi float32) {
	if len(values) == 0 {
		return
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if min == max {
		for i := range values {
			values[i] = lo
		}
		return
	}

	scale := (hi - lo) / (max - min)
	for i, v := range values {
		values[i] = clamp(lo+(v-min)*scale, lo, hi)
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
