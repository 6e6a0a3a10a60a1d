package tpms

import (
	"errors"
	"math"
	"testing"

	"github.com/kmarchais/tpms/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestBuildGridDefault(t *testing.T) {
	spec := DefaultParameters().gridSpec()
	g, err := buildGrid(spec)
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 20*20*20 {
		t.Errorf("default grid has %d points, want 8000", g.Len())
	}
	// Unit cell, repeat 1: lattice spans [-0.5, 0.5] per axis.
	want := d3.NewBox(r3.Vec{}, d3.Elem(1))
	if !g.Bounds().Equals(want, 1e-12) {
		t.Errorf("default bounds %+v, want %+v", g.Bounds(), want)
	}
	if p := g.At(0, 0, 0); !d3.EqualWithin(p, d3.Elem(-0.5), 1e-12) {
		t.Errorf("first point %v, want (-0.5,-0.5,-0.5)", p)
	}
	if p := g.At(19, 19, 19); !d3.EqualWithin(p, d3.Elem(0.5), 1e-12) {
		t.Errorf("last point %v, want (0.5,0.5,0.5)", p)
	}
	if c := g.Bounds().Center(); !d3.EqualWithin(c, r3.Vec{}, 1e-12) {
		t.Errorf("lattice not centered on origin: %v", c)
	}
	// Endpoint arithmetic may overshoot by an ulp, pad the box.
	pad := g.Bounds()
	pad.Min = r3.Sub(pad.Min, d3.Elem(1e-12))
	pad.Max = r3.Add(pad.Max, d3.Elem(1e-12))
	for i, p := range g.Points() {
		if !pad.Contains(p) {
			t.Fatalf("point %d at %v outside bounds", i, p)
		}
	}
}

func TestBuildGridDeterministic(t *testing.T) {
	spec := GridSpec{CellSize: r3.Vec{X: 1, Y: 2, Z: 3}, CellRepeat: V3i{2, 1, 1}, Resolution: 7}
	a, err := buildGrid(spec)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := buildGrid(spec)
	for i := range a.Points() {
		if a.Points()[i] != b.Points()[i] {
			t.Fatalf("grid not bit identical at point %d", i)
		}
	}
}

func TestBuildGridRepeatExtendsSpan(t *testing.T) {
	spec := DefaultParameters().gridSpec()
	spec.CellRepeat = V3i{2, 1, 1}
	g, err := buildGrid(spec)
	if err != nil {
		t.Fatal(err)
	}
	// Doubled x span, unchanged sample count per axis.
	bb := g.Bounds()
	if math.Abs(bb.Min.X+1) > 1e-12 || math.Abs(bb.Max.X-1) > 1e-12 {
		t.Errorf("x span [%g, %g], want [-1, 1]", bb.Min.X, bb.Max.X)
	}
	if math.Abs(bb.Min.Y+0.5) > 1e-12 || math.Abs(bb.Max.Z-0.5) > 1e-12 {
		t.Errorf("y/z spans must stay [-0.5, 0.5], got %+v", bb)
	}
	if g.Len() != 8000 {
		t.Errorf("sample count changed to %d on repeat change", g.Len())
	}
}

func TestBuildGridRejects(t *testing.T) {
	base := DefaultParameters().gridSpec()
	for _, test := range []struct {
		name   string
		mutate func(*GridSpec)
		want   error
	}{
		{"resolution below 2", func(s *GridSpec) { s.Resolution = 1 }, ErrResolution},
		{"zero cell size", func(s *GridSpec) { s.CellSize.Y = 0 }, ErrCellSize},
		{"negative cell size", func(s *GridSpec) { s.CellSize.Z = -1 }, ErrCellSize},
		{"zero repeat", func(s *GridSpec) { s.CellRepeat[0] = 0 }, ErrCellRepeat},
	} {
		spec := base
		test.mutate(&spec)
		if _, err := buildGrid(spec); !errors.Is(err, test.want) {
			t.Errorf("%s: got %v, want %v", test.name, err, test.want)
		}
	}
}

func TestGridIndexOrdering(t *testing.T) {
	spec := DefaultParameters().gridSpec()
	spec.Resolution = 3
	g, err := buildGrid(spec)
	if err != nil {
		t.Fatal(err)
	}
	// z innermost: consecutive points differ in z only.
	p0, p1 := g.Points()[0], g.Points()[1]
	if p0.X != p1.X || p0.Y != p1.Y || p0.Z >= p1.Z {
		t.Errorf("expected z-fastest ordering, got %v then %v", p0, p1)
	}
	if g.Index(2, 2, 2) != g.Len()-1 {
		t.Errorf("Index(2,2,2) = %d, want %d", g.Index(2, 2, 2), g.Len()-1)
	}
}
