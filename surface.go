package tpms

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// SurfaceFunc is a triply periodic implicit surface evaluated pointwise.
// All catalog functions are periodic with period 2*pi along each axis in
// their natural argument space. Non-finite inputs propagate to the output.
type SurfaceFunc func(p r3.Vec) float64

// surfaceCatalog holds the surfaces selectable by name.
var surfaceCatalog = map[string]SurfaceFunc{
	"gyroid":     Gyroid,
	"schwarz_p":  SchwarzP,
	"schwarz_d":  SchwarzD,
	"neovius":    Neovius,
	"tri_gyroid": TriGyroid,
}

// Surfaces returns the catalog surface names in sorted order.
func Surfaces() []string {
	names := make([]string, 0, len(surfaceCatalog))
	for name := range surfaceCatalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SurfaceByName looks up a catalog surface. Returns ErrUnknownSurface
// for names outside the catalog.
func SurfaceByName(name string) (SurfaceFunc, error) {
	fn, ok := surfaceCatalog[name]
	if !ok {
		return nil, errUnknownSurface(name)
	}
	return fn, nil
}

// Gyroid is the gyroid surface sin(x)cos(y) + sin(y)cos(z) + sin(z)cos(x).
func Gyroid(p r3.Vec) float64 {
	return math.Sin(p.X)*math.Cos(p.Y) +
		math.Sin(p.Y)*math.Cos(p.Z) +
		math.Sin(p.Z)*math.Cos(p.X)
}

// SchwarzP is the Schwarz primitive surface cos(x)+cos(y)+cos(z).
func SchwarzP(p r3.Vec) float64 {
	return math.Cos(p.X) + math.Cos(p.Y) + math.Cos(p.Z)
}

// SchwarzD is the Schwarz diamond surface.
func SchwarzD(p r3.Vec) float64 {
	sx, cx := math.Sincos(p.X)
	sy, cy := math.Sincos(p.Y)
	sz, cz := math.Sincos(p.Z)
	return sx*sy*sz + sx*cy*cz + cx*sy*cz + cx*cy*sz
}

// Neovius is the Neovius surface 3cos(x)+cos(y)+cos(z)+4cos(x)cos(y)cos(z).
func Neovius(p r3.Vec) float64 {
	cx := math.Cos(p.X)
	cy := math.Cos(p.Y)
	cz := math.Cos(p.Z)
	return 3*cx + cy + cz + 4*cx*cy*cz
}

// TriGyroid is a piecewise linear surrogate of Gyroid built from the
// period-1 triangular waves TriSin and TriCos. Cheaper to evaluate and
// with sharper feature lines than the trigonometric gyroid.
func TriGyroid(p r3.Vec) float64 {
	x := p.X / tau
	y := p.Y / tau
	z := p.Z / tau
	return TriSin(x)*TriCos(y) +
		TriSin(y)*TriCos(z) +
		TriSin(z)*TriCos(x)
}

// TriCos is a triangular wave approximation of cosine with period 1.
// TriCos(0) = 1 and TriCos(0.5) = -1; the result is always in [-1, 1].
func TriCos(u float64) float64 {
	u = math.Mod(u+0.5, 1)
	if u < 0 {
		// math.Mod keeps the sign of the dividend; fold negatives
		// back into [0, 1) for a floored modulus.
		u++
	}
	return 1 - 4*math.Abs(u-0.5)
}

// TriSin is TriCos shifted a quarter period.
func TriSin(u float64) float64 {
	return TriCos(u - 0.25)
}
