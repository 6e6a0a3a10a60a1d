// Package render turns the scalar fields sampled by a tpms model into
// sheet geometry: it clips the volumetric lattice to the band between
// the lower and upper offset surfaces and extracts the boundary mesh,
// its volume, and STL output.
package render

import (
	"github.com/kmarchais/tpms"
)

type Renderer interface {
	ReadTriangles(t []tpms.Triangle3) (int, error)
}
