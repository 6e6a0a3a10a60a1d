package tpms

import "gonum.org/v1/gonum/floats"

// offsetSurfaces derives the two companion fields bounding the sheet:
// lower = base + offset/2 and upper = base - offset/2, pointwise. The
// sign convention decides which side of each level set becomes solid
// once the engine clips: the retained band is lower >= 0 AND upper <= 0.
func offsetSurfaces(base *Field, offset float64) (lower, upper *Field) {
	n := len(base.Data)
	lo := make([]float64, n)
	up := make([]float64, n)
	copy(lo, base.Data)
	copy(up, base.Data)
	floats.AddConst(0.5*offset, lo)
	floats.AddConst(-0.5*offset, up)
	lower = &Field{Data: lo, Min: base.Min + 0.5*offset, Max: base.Max + 0.5*offset}
	upper = &Field{Data: up, Min: base.Min - 0.5*offset, Max: base.Max - 0.5*offset}
	return lower, upper
}

// offsetBounds returns the valid offset range for a base field. The
// upper bound is twice the field's peak deviation so the sheet can fully
// open or close without leaving the sampled range.
func offsetBounds(base *Field) (lo, hi float64) {
	return 0, 2 * max(-base.Min, base.Max)
}
