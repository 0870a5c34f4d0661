package common

// Lerp interpolates between a and b; t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Wrap folds v into [0, size).
func Wrap(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	for v < 0 {
		v += size
	}
	for v >= size {
		v -= size
	}
	return v
}
