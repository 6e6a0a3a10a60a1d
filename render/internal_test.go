package render

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/kmarchais/tpms"
	"github.com/kmarchais/tpms/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// unitTet is a reference tetrahedron of volume 1/6.
var unitTet = tet{
	vert{p: r3.Vec{}},
	vert{p: r3.Vec{X: 1}},
	vert{p: r3.Vec{Y: 1}},
	vert{p: r3.Vec{Z: 1}},
}

func tetsVolume(ts []tet) float64 {
	var v float64
	for _, t := range ts {
		v += math.Abs(signedTetVolume(t[0].p, t[1].p, t[2].p, t[3].p))
	}
	return v
}

func TestClipTetComplement(t *testing.T) {
	const tol = 1e-12
	rng := rand.New(rand.NewSource(1))
	whole := math.Abs(signedTetVolume(unitTet[0].p, unitTet[1].p, unitTet[2].p, unitTet[3].p))
	for n := 0; n < 1000; n++ {
		tt := unitTet
		for i := range tt {
			tt[i].lo = rng.Float64()*2 - 1
		}
		kept := tetsVolume(clipTet(tt, loValue, nil))
		dropped := tetsVolume(clipTet(tt, func(v vert) float64 { return -v.lo }, nil))
		if math.Abs(kept+dropped-whole) > tol {
			t.Fatalf("clip halves do not partition the tet: %g + %g != %g", kept, dropped, whole)
		}
	}
}

func TestClipTetCases(t *testing.T) {
	for _, test := range []struct {
		name   string
		d      [4]float64
		ntets  int
		volume float64
	}{
		{name: "all inside", d: [4]float64{1, 1, 1, 1}, ntets: 1, volume: 1.0 / 6},
		{name: "all outside", d: [4]float64{-1, -1, -1, -1}, ntets: 0, volume: 0},
		{name: "one inside", d: [4]float64{1, -1, -1, -1}, ntets: 1, volume: 1.0 / 6 / 8},
		{name: "three inside", d: [4]float64{1, 1, 1, -1}, ntets: 3, volume: 1.0 / 6 * 7 / 8},
		{name: "two inside", d: [4]float64{1, 1, -1, -1}, ntets: 3, volume: 1.0 / 6 / 2},
		{name: "on-plane vertex kept", d: [4]float64{0, 1, 1, 1}, ntets: 1, volume: 1.0 / 6},
	} {
		tt := unitTet
		for i := range tt {
			tt[i].lo = test.d[i]
		}
		out := clipTet(tt, loValue, nil)
		if len(out) != test.ntets {
			t.Errorf("%s: got %d tets, want %d", test.name, len(out), test.ntets)
			continue
		}
		if got := tetsVolume(out); math.Abs(got-test.volume) > 1e-12 {
			t.Errorf("%s: kept volume %g, want %g", test.name, got, test.volume)
		}
	}
}

func TestCutCarriesBothFields(t *testing.T) {
	a := vert{p: r3.Vec{}, lo: 1, up: -3}
	b := vert{p: r3.Vec{X: 2}, lo: -1, up: 5}
	c := cut(a, b, a.lo, b.lo)
	if !d3.EqualWithin(c.p, r3.Vec{X: 1}, 1e-15) {
		t.Errorf("cut position %v, want midpoint", c.p)
	}
	if c.lo != 0 {
		t.Errorf("cut lo = %g, want 0", c.lo)
	}
	if c.up != 1 {
		t.Errorf("cut up = %g, want interpolated 1", c.up)
	}
}

func TestFaceKeyWindingIndependent(t *testing.T) {
	a, b, c := r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Z: 1}
	want := newFaceKey(a, b, c)
	for _, perm := range [][3]r3.Vec{
		{a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	} {
		if got := newFaceKey(perm[0], perm[1], perm[2]); got != want {
			t.Fatalf("face key depends on vertex order: %v != %v", got, want)
		}
	}
	if other := newFaceKey(a, b, r3.Vec{Z: 2}); other == want {
		t.Error("distinct faces hash equal")
	}
}

// Two tetrahedra sharing a face list its vertices in different array
// orders. The clip must triangulate the shared quad identically from
// both sides so the halves cancel instead of leaking interior walls.
func TestSharedFaceCancellation(t *testing.T) {
	a := vert{p: r3.Vec{}, lo: 1}
	b := vert{p: r3.Vec{X: 1}, lo: 1}
	c := vert{p: r3.Vec{Y: 1}, lo: -1}
	above := vert{p: r3.Vec{Z: 1}, lo: -1}
	below := vert{p: r3.Vec{Z: -1}, lo: -1}
	sr := &SheetRenderer{}
	tally := faceTally{index: make(map[faceKey]int)}
	for _, tt := range []tet{
		{a, b, c, above},
		{c, b, a, below},
	} {
		for _, piece := range clipTet(tt, loValue, nil) {
			sr.keep(piece, &tally)
		}
	}
	for i, tri := range tally.tris {
		if tally.counts[i] != 1 {
			continue
		}
		if tri[0].Z == 0 && tri[1].Z == 0 && tri[2].Z == 0 {
			t.Errorf("uncancelled face on shared plane: %v", tri)
		}
	}
}

// Every emitted boundary face of a clipped sheet must lie on the lower
// level set, the upper level set, or the lattice box. The production
// tally drops the scalar data, so the clip is replayed here with faces
// carrying their vertices.
func TestSheetFacesOnSurfacesOrBox(t *testing.T) {
	m, err := tpms.NewModel(nil)
	if err != nil {
		t.Fatal(err)
	}
	g := m.Grid()
	lower, upper := m.LowerField().Data, m.UpperField().Data

	type vface [3]vert
	index := make(map[faceKey]int)
	var faces []vface
	var counts []int
	add := func(a, b, c vert) {
		k := newFaceKey(a.p, b.p, c.p)
		if i, ok := index[k]; ok {
			counts[i]++
			return
		}
		index[k] = len(faces)
		faces = append(faces, vface{a, b, c})
		counts = append(counts, 1)
	}
	keep := func(tt tet) {
		if signedTetVolume(tt[0].p, tt[1].p, tt[2].p, tt[3].p) == 0 {
			return
		}
		add(tt[0], tt[2], tt[1])
		add(tt[0], tt[1], tt[3])
		add(tt[0], tt[3], tt[2])
		add(tt[1], tt[2], tt[3])
	}
	res := g.Resolution()
	var corners [8]vert
	var pass1, pass2 []tet
	for i := 0; i < res-1; i++ {
		for j := 0; j < res-1; j++ {
			for k := 0; k < res-1; k++ {
				for c := 0; c < 8; c++ {
					idx := g.Index(i+c>>2&1, j+c>>1&1, k+c&1)
					corners[c] = vert{p: g.Points()[idx], lo: lower[idx], up: upper[idx]}
				}
				for _, kt := range kuhnTets {
					tt := tet{corners[kt[0]], corners[kt[1]], corners[kt[2]], corners[kt[3]]}
					pass1 = clipTet(tt, loValue, pass1[:0])
					pass2 = pass2[:0]
					for _, t1 := range pass1 {
						pass2 = clipTet(t1, negUpValue, pass2)
					}
					for _, t2 := range pass2 {
						keep(t2)
					}
				}
			}
		}
	}

	const tol = 1e-9
	bounds := g.Bounds()
	coord := func(p r3.Vec, ax int) float64 {
		switch ax {
		case 0:
			return p.X
		case 1:
			return p.Y
		}
		return p.Z
	}
	onPlane := func(f vface, ax int, v float64) bool {
		return math.Abs(coord(f[0].p, ax)-v) <= tol &&
			math.Abs(coord(f[1].p, ax)-v) <= tol &&
			math.Abs(coord(f[2].p, ax)-v) <= tol
	}
	onBox := func(f vface) bool {
		for ax := 0; ax < 3; ax++ {
			if onPlane(f, ax, coord(bounds.Min, ax)) || onPlane(f, ax, coord(bounds.Max, ax)) {
				return true
			}
		}
		return false
	}
	onLevel := func(f vface, val func(vert) float64) bool {
		return math.Abs(val(f[0])) <= tol &&
			math.Abs(val(f[1])) <= tol &&
			math.Abs(val(f[2])) <= tol
	}
	interior := 0
	for i, f := range faces {
		if counts[i] != 1 {
			continue
		}
		if onLevel(f, loValue) || onLevel(f, func(v vert) float64 { return v.up }) || onBox(f) {
			continue
		}
		interior++
		if interior <= 5 {
			t.Errorf("interior face emitted: lo (%g, %g, %g) up (%g, %g, %g)",
				f[0].lo, f[1].lo, f[2].lo, f[0].up, f[1].up, f[2].up)
		}
	}
	if interior > 0 {
		t.Fatalf("%d interior faces emitted", interior)
	}
}

func TestSTLWriteReadback(t *testing.T) {
	const tol = 1e-5
	m, err := tpms.NewModel(Engine{})
	if err != nil {
		t.Fatal(err)
	}
	sheet, err := m.Sheet()
	if err != nil {
		t.Fatal(err)
	}
	size := r3.Norm(m.Grid().Bounds().Size())
	rtol := tol * size
	var b bytes.Buffer
	if err := WriteSTL(&b, sheet.Triangles); err != nil {
		t.Fatal(err)
	}
	output, err := readBinarySTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(output) != len(sheet.Triangles) {
		t.Fatal("length of triangles written/read not equal")
	}
	mismatches := 0
	for iface, expect := range sheet.Triangles {
		got := output[iface]
		for i := range expect {
			if !d3.EqualWithin(got[i], expect[i], rtol) {
				mismatches++
				t.Errorf("%dth triangle equality out of tolerance. got vertex %0.5g, want %0.5g", iface, got[i], expect[i])
			}
		}
		if mismatches > 10 {
			t.Fatal("too many mismatches")
		}
	}
}
