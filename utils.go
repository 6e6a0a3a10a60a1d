package tpms

import "math"

const (
	pi  = math.Pi
	tau = 2 * pi
)

// Clamp x between a and b, assume a <= b
func Clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
