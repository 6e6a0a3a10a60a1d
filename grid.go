package tpms

import (
	"github.com/kmarchais/tpms/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// GridSpec defines the rectilinear sample lattice the fields are
// evaluated on. The lattice spans [-dim/2, dim/2] per axis where
// dim = CellSize*CellRepeat elementwise, with Resolution evenly spaced
// points per axis, endpoints included.
type GridSpec struct {
	CellSize   r3.Vec
	CellRepeat V3i
	Resolution int
}

func (s GridSpec) validate() error {
	if s.Resolution < 2 {
		return ErrResolution
	}
	if d3.LTEZero(s.CellSize) {
		return ErrCellSize
	}
	if s.CellRepeat.MinElem() < 1 {
		return ErrCellRepeat
	}
	return nil
}

// Dim returns the physical extent of the lattice per axis.
func (s GridSpec) Dim() r3.Vec {
	return d3.MulElem(s.CellSize, s.CellRepeat.ToV3())
}

// Grid is a structured lattice of materialized sample points.
type Grid struct {
	spec GridSpec
	pts  []r3.Vec
}

// buildGrid materializes the full Resolution^3 lattice described by spec.
// Points are laid out with x outermost and z innermost, see Index.
func buildGrid(spec GridSpec) (*Grid, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	res := spec.Resolution
	dim := spec.Dim()
	min := r3.Scale(-0.5, dim)
	step := r3.Scale(1/float64(res-1), dim)

	pts := make([]r3.Vec, 0, res*res*res)
	for i := 0; i < res; i++ {
		x := min.X + float64(i)*step.X
		for j := 0; j < res; j++ {
			y := min.Y + float64(j)*step.Y
			for k := 0; k < res; k++ {
				pts = append(pts, r3.Vec{X: x, Y: y, Z: min.Z + float64(k)*step.Z})
			}
		}
	}
	return &Grid{spec: spec, pts: pts}, nil
}

// Spec returns the spec the grid was built from.
func (g *Grid) Spec() GridSpec { return g.spec }

// Resolution returns the number of sample points per axis.
func (g *Grid) Resolution() int { return g.spec.Resolution }

// Len returns the total number of lattice points, Resolution^3.
func (g *Grid) Len() int { return len(g.pts) }

// Index returns the flat index of lattice point (i,j,k) on the x, y and
// z axes respectively.
func (g *Grid) Index(i, j, k int) int {
	res := g.spec.Resolution
	return (i*res+j)*res + k
}

// At returns the lattice point at (i,j,k).
func (g *Grid) At(i, j, k int) r3.Vec {
	return g.pts[g.Index(i, j, k)]
}

// Points returns the materialized lattice points. The slice is owned by
// the grid and must not be modified.
func (g *Grid) Points() []r3.Vec { return g.pts }

// Bounds returns the axis aligned box spanned by the lattice.
func (g *Grid) Bounds() d3.Box {
	return d3.NewBox(r3.Vec{}, g.spec.Dim())
}
