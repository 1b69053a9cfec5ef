package common

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt bounds v to [lo, hi]
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Min returns the minimum of two floats
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two floats
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Lerp interpolates linearly from a to b; t outside [0, 1] extrapolates
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
