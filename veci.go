/*

Integer 3D vector, used for per-axis cell repeat counts.

*/

package tpms

import "gonum.org/v1/gonum/spatial/r3"

// V3i is a 3D integer vector.
type V3i [3]int

// ToV3 converts V3i (integer) to r3.Vec (float).
func (a V3i) ToV3() r3.Vec {
	return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])}
}

// MinElem returns the smallest component of the vector.
func (a V3i) MinElem() int {
	m := a[0]
	if a[1] < m {
		m = a[1]
	}
	if a[2] < m {
		m = a[2]
	}
	return m
}
