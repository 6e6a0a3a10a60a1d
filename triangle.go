package tpms

import "gonum.org/v1/gonum/spatial/r3"

// Triangle3 is a 3D triangle.
type Triangle3 [3]r3.Vec

// Normal returns the unit normal of the triangle following the
// right-hand rule on its vertex winding.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Area returns the triangle's area.
func (t Triangle3) Area() float64 {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	return 0.5 * r3.Norm(r3.Cross(e1, e2))
}

// Degenerate returns true if the triangle's vertices are collinear
// within tol.
func (t Triangle3) Degenerate(tol float64) bool {
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	return r3.Norm(r3.Cross(e1, e2)) <= tol
}

// Sheet is the solid region clipped between the lower and upper offset
// surfaces, as produced by an Engine. The core never mutates a Sheet.
type Sheet struct {
	// Triangles is the boundary of the clipped solid.
	Triangles []Triangle3
	// Volume is the volume of the solid.
	Volume float64
}

// Engine converts a lattice annotated with the two offset scalar fields
// into sheet geometry. Implementations clip the volumetric grid at
// lower = 0 keeping the >= 0 side, then at upper = 0 keeping the <= 0
// side, and must be deterministic for identical input fields.
type Engine interface {
	Sheet(g *Grid, lower, upper *Field) (*Sheet, error)
}
