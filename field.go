package tpms

import (
	"github.com/kmarchais/tpms/internal/d3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Field is a scalar field sampled over a grid, one value per lattice
// point in grid ordering, with cached extrema. Non-finite samples are
// kept as-is rather than masked: discarding them would corrupt the
// offset range derived from the extrema.
type Field struct {
	Data []float64
	Min  float64
	Max  float64
}

// evalField samples fn over the grid. Physical coordinates are rescaled
// by the per-axis wave number k_i = 2*pi/cellSize_i so one period of fn
// spans exactly one cell size unit, after shifting by phase in the same
// physical units. Changing cellSize therefore changes spatial frequency,
// not sample density.
func evalField(g *Grid, fn SurfaceFunc, cellSize, phase r3.Vec) *Field {
	k := d3.DivElem(d3.Elem(tau), cellSize)
	data := make([]float64, g.Len())
	for i, p := range g.Points() {
		data[i] = fn(d3.MulElem(k, r3.Add(p, phase)))
	}
	return &Field{
		Data: data,
		Min:  floats.Min(data),
		Max:  floats.Max(data),
	}
}
