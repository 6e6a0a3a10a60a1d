package render

import (
	"errors"
	"io"
	"math"

	"github.com/kmarchais/tpms"
	"gonum.org/v1/gonum/spatial/r3"
)

// Engine clips a sampled lattice to the sheet between the two offset
// surfaces. It implements tpms.Engine. The clip keeps the region where
// lower >= 0 and upper <= 0.
type Engine struct{}

var _ tpms.Engine = Engine{}

// Sheet clips the lattice and returns the boundary mesh and volume of
// the retained band. Output is deterministic for identical inputs.
func (Engine) Sheet(g *tpms.Grid, lower, upper *tpms.Field) (*tpms.Sheet, error) {
	r, err := NewSheetRenderer(g, lower, upper)
	if err != nil {
		return nil, err
	}
	tris, err := RenderAll(r)
	if err != nil {
		return nil, err
	}
	return &tpms.Sheet{Triangles: tris, Volume: r.Volume()}, nil
}

// vert is a lattice or cut point carrying both scalar fields, so the
// second clip can interpolate values created by the first.
type vert struct {
	p      r3.Vec
	lo, up float64
}

type tet [4]vert

// kuhnTets decomposes a lattice cell into six tetrahedra around the
// main diagonal. Corner codes are bits x<<2|y<<1|z. The decomposition
// is translation consistent: neighboring cells split shared faces along
// the same diagonal, so interior faces cancel exactly.
var kuhnTets = [6][4]int{
	{0b000, 0b100, 0b110, 0b111},
	{0b000, 0b100, 0b101, 0b111},
	{0b000, 0b010, 0b110, 0b111},
	{0b000, 0b010, 0b011, 0b111},
	{0b000, 0b001, 0b101, 0b111},
	{0b000, 0b001, 0b011, 0b111},
}

// SheetRenderer streams the boundary triangles of the clipped sheet.
// The clip itself runs eagerly on construction; work is bounded by the
// lattice resolution cubed.
type SheetRenderer struct {
	tris   []tpms.Triangle3
	volume float64
	pos    int
}

var errFieldMismatch = errors.New("render: field length does not match grid")

// NewSheetRenderer clips the lattice cells to lower >= 0 AND upper <= 0
// and extracts the boundary of the result.
func NewSheetRenderer(g *tpms.Grid, lower, upper *tpms.Field) (*SheetRenderer, error) {
	if g == nil || lower == nil || upper == nil {
		return nil, errors.New("render: nil grid or field")
	}
	if len(lower.Data) != g.Len() || len(upper.Data) != g.Len() {
		return nil, errFieldMismatch
	}
	sr := &SheetRenderer{}
	sr.clip(g, lower.Data, upper.Data)
	return sr, nil
}

// ReadTriangles writes boundary triangles into the argument buffer and
// returns the number written, io.EOF once drained.
func (sr *SheetRenderer) ReadTriangles(dst []tpms.Triangle3) (int, error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	if sr.pos >= len(sr.tris) {
		return 0, io.EOF
	}
	n := copy(dst, sr.tris[sr.pos:])
	sr.pos += n
	return n, nil
}

// Volume returns the volume of the clipped solid, exact for the per-cell
// linear interpolants of the fields.
func (sr *SheetRenderer) Volume() float64 { return sr.volume }

// faceTally counts face occurrences across all kept tetrahedra while
// preserving first-seen order and winding. Faces seen once are boundary.
type faceTally struct {
	index  map[faceKey]int
	tris   []tpms.Triangle3
	counts []int
}

func (ft *faceTally) add(a, b, c vert) {
	k := newFaceKey(a.p, b.p, c.p)
	if i, ok := ft.index[k]; ok {
		ft.counts[i]++
		return
	}
	ft.index[k] = len(ft.tris)
	ft.tris = append(ft.tris, tpms.Triangle3{a.p, b.p, c.p})
	ft.counts = append(ft.counts, 1)
}

func (sr *SheetRenderer) clip(g *tpms.Grid, lower, upper []float64) {
	res := g.Resolution()
	tally := faceTally{index: make(map[faceKey]int)}
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
					t := tet{corners[kt[0]], corners[kt[1]], corners[kt[2]], corners[kt[3]]}
					// Keep lower >= 0, then upper <= 0.
					pass1 = clipTet(t, loValue, pass1[:0])
					pass2 = pass2[:0]
					for _, t1 := range pass1 {
						pass2 = clipTet(t1, negUpValue, pass2)
					}
					for _, t2 := range pass2 {
						sr.keep(t2, &tally)
					}
				}
			}
		}
	}
	for i, tri := range tally.tris {
		if tally.counts[i] == 1 {
			sr.tris = append(sr.tris, tri)
		}
	}
}

// keep accumulates a clipped tetrahedron: orients it positively, adds
// its volume and registers its four outward faces.
func (sr *SheetRenderer) keep(t tet, tally *faceTally) {
	v := signedTetVolume(t[0].p, t[1].p, t[2].p, t[3].p)
	if v == 0 {
		return
	}
	if v < 0 {
		t[1], t[2] = t[2], t[1]
		v = -v
	}
	sr.volume += v
	tally.add(t[0], t[2], t[1])
	tally.add(t[0], t[1], t[3])
	tally.add(t[0], t[3], t[2])
	tally.add(t[1], t[2], t[3])
}

func signedTetVolume(a, b, c, d r3.Vec) float64 {
	return r3.Dot(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)), r3.Sub(d, a)) / 6
}

func loValue(v vert) float64    { return v.lo }
func negUpValue(v vert) float64 { return -v.up }

// clipTet clips a tetrahedron against val >= 0 with val linear over the
// tet, appending the kept region as tetrahedra to out. A vertex exactly
// on the cut plane counts as kept. The kept region is a tetrahedron,
// a wedge split into three tetrahedra, or empty.
func clipTet(t tet, val func(vert) float64, out []tet) []tet {
	var in, ex [4]int
	ni, ne := 0, 0
	var d [4]float64
	for i := range t {
		d[i] = val(t[i])
		if d[i] >= 0 {
			in[ni] = i
			ni++
		} else {
			ex[ne] = i
			ne++
		}
	}
	switch ni {
	case 4:
		out = append(out, t)
	case 0:
		// fully outside
	case 1:
		a := in[0]
		out = append(out, tet{
			t[a],
			cut(t[a], t[ex[0]], d[a], d[ex[0]]),
			cut(t[a], t[ex[1]], d[a], d[ex[1]]),
			cut(t[a], t[ex[2]], d[a], d[ex[2]]),
		})
	case 3:
		e := ex[0]
		out = appendWedge(out,
			t[in[0]], t[in[1]], t[in[2]],
			cut(t[in[0]], t[e], d[in[0]], d[e]),
			cut(t[in[1]], t[e], d[in[1]], d[e]),
			cut(t[in[2]], t[e], d[in[2]], d[e]),
		)
	case 2:
		a, b := in[0], in[1]
		c, e := ex[0], ex[1]
		out = appendWedge(out,
			t[a],
			cut(t[a], t[c], d[a], d[c]),
			cut(t[a], t[e], d[a], d[e]),
			t[b],
			cut(t[b], t[c], d[b], d[c]),
			cut(t[b], t[e], d[b], d[e]),
		)
	}
	return out
}

// appendWedge splits the wedge with triangle faces (v0,v1,v2) and
// (v3,v4,v5), v0 joined to v3 and so on, into three tetrahedra. Each
// quad face is split along the diagonal through its smallest vertex
// key: neighboring wedges see the same four vertices on a shared quad,
// so both triangulate it identically and the halves cancel. The
// diagonal rule is induced by a total order on the vertices, which
// rules out the cyclic diagonal patterns a three-tet split cannot
// realize.
func appendWedge(out []tet, v0, v1, v2, v3, v4, v5 vert) []tet {
	w := [6]vert{v0, v1, v2, v3, v4, v5}
	lo := 0
	for i := 1; i < 6; i++ {
		if vkeyLess(keyOf(w[i].p), keyOf(w[lo].p)) {
			lo = i
		}
	}
	top := [3]vert{w[0], w[1], w[2]}
	bot := [3]vert{w[3], w[4], w[5]}
	// Bring the smallest vertex to top[0]; flipping top and bottom
	// keeps the vi-v(i+3) pairing.
	if lo >= 3 {
		top, bot = bot, top
		lo -= 3
	}
	top = [3]vert{top[lo], top[(lo+1)%3], top[(lo+2)%3]}
	bot = [3]vert{bot[lo], bot[(lo+1)%3], bot[(lo+2)%3]}
	// The two quads meeting top[0] take their diagonal from it. The far
	// quad (top[1], top[2], bot[2], bot[1]) follows its own minimum.
	q := [4]vert{top[1], top[2], bot[2], bot[1]}
	qlo := 0
	for i := 1; i < 4; i++ {
		if vkeyLess(keyOf(q[i].p), keyOf(q[qlo].p)) {
			qlo = i
		}
	}
	if qlo == 0 || qlo == 2 {
		// diagonal top[1]-bot[2]
		return append(out,
			tet{top[0], top[1], top[2], bot[2]},
			tet{top[0], top[1], bot[1], bot[2]},
			tet{top[0], bot[0], bot[1], bot[2]},
		)
	}
	// diagonal top[2]-bot[1]
	return append(out,
		tet{top[0], top[1], top[2], bot[1]},
		tet{top[0], top[2], bot[2], bot[1]},
		tet{top[0], bot[0], bot[2], bot[1]},
	)
}

// cut interpolates the zero crossing of the clip value on edge a-b,
// carrying both scalar fields to the new vertex. da >= 0 > db.
func cut(a, b vert, da, db float64) vert {
	t := tpms.Clamp(da/(da-db), 0, 1)
	return vert{
		p:  r3.Add(a.p, r3.Scale(t, r3.Sub(b.p, a.p))),
		lo: a.lo + t*(b.lo-a.lo),
		up: a.up + t*(b.up-a.up),
	}
}

// vkey identifies a vertex by the exact bit pattern of its coordinates.
// Cut vertices on shared faces are computed from identical inputs in
// neighboring tetrahedra and therefore hash equal.
type vkey [3]uint64

func keyOf(p r3.Vec) vkey {
	return vkey{math.Float64bits(p.X), math.Float64bits(p.Y), math.Float64bits(p.Z)}
}

// faceKey is the winding-independent identity of a triangular face.
type faceKey [3]vkey

func newFaceKey(a, b, c r3.Vec) faceKey {
	ka, kb, kc := keyOf(a), keyOf(b), keyOf(c)
	if vkeyLess(kb, ka) {
		ka, kb = kb, ka
	}
	if vkeyLess(kc, kb) {
		kb, kc = kc, kb
		if vkeyLess(kb, ka) {
			ka, kb = kb, ka
		}
	}
	return faceKey{ka, kb, kc}
}

func vkeyLess(a, b vkey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
