// Package tpms generates triply periodic minimal surface (TPMS) sheet
// geometry: a thin solid bounded by two parallel offset level sets of a
// periodic implicit field sampled on a structured lattice. The package
// holds the parametric field model and its recompute pipeline; turning
// the sampled fields into a boundary mesh is delegated to an Engine.
package tpms

import (
	"fmt"

	"github.com/kmarchais/tpms/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Parameters is the full settable parameter set of a model.
type Parameters struct {
	// Surface is the catalog name of the implicit surface.
	Surface string
	// Resolution is the number of lattice samples per axis.
	Resolution int
	// Offset is the distance between the two offset level sets, in
	// field value units. Valid range is published by OffsetBounds.
	Offset float64
	// PhaseShift translates the periodic pattern, in physical units.
	PhaseShift r3.Vec
	// CellSize is the spatial period length per axis.
	CellSize r3.Vec
	// CellRepeat is the number of periods tiled per axis.
	CellRepeat V3i
}

// DefaultParameters returns the parameter set a new model starts from.
func DefaultParameters() Parameters {
	return Parameters{
		Surface:    "gyroid",
		Resolution: 20,
		Offset:     0.3,
		CellSize:   d3.Elem(1),
		CellRepeat: V3i{1, 1, 1},
	}
}

// Pipeline stages in dependency order. Invalidating a stage invalidates
// every stage after it; earlier stages are reused.
type stage uint8

const (
	stageGrid stage = iota
	stageField
	stageSurfaces
	stageMesh
)

// Param identifies a settable model parameter.
type Param uint8

const (
	ParamSurface Param = iota
	ParamResolution
	ParamOffset
	ParamPhaseShift
	ParamCellSize
	ParamCellRepeat
)

// stageOf is the dependency table consulted on every parameter change:
// it maps each parameter to the first stage its mutation invalidates.
var stageOf = map[Param]stage{
	ParamResolution: stageGrid,
	ParamCellSize:   stageGrid,
	ParamCellRepeat: stageGrid,
	ParamSurface:    stageField,
	ParamPhaseShift: stageField,
	ParamOffset:     stageSurfaces,
}

// Model owns the lattice and scalar fields of one TPMS session and
// recomputes the minimal set of pipeline stages on each parameter
// change. A model is single threaded: every setter runs its recompute
// to completion before returning, and each logical session must own an
// independent model.
type Model struct {
	params Parameters
	fn     SurfaceFunc
	engine Engine

	grid                 *Grid
	surface              *Field
	lower, upper         *Field
	minOffset, maxOffset float64
	sheet                *Sheet
}

// NewModel returns a model with default parameters, fully computed.
// engine may be nil, in which case no sheet geometry is generated and
// only the scalar stages run.
func NewModel(engine Engine) (*Model, error) {
	return NewModelParams(DefaultParameters(), engine)
}

// NewModelParams returns a fully computed model with the given
// parameters. The offset is validated against the bounds derived from
// the evaluated field.
func NewModelParams(params Parameters, engine Engine) (*Model, error) {
	fn, err := SurfaceByName(params.Surface)
	if err != nil {
		return nil, err
	}
	spec := params.gridSpec()
	if err := spec.validate(); err != nil {
		return nil, err
	}
	m := &Model{params: params, fn: fn, engine: engine}
	if err := m.recomputeFrom(stageGrid); err != nil {
		return nil, err
	}
	if params.Offset < m.minOffset || params.Offset > m.maxOffset {
		return nil, fmt.Errorf("%w: %g not in [%g, %g]",
			ErrOffsetRange, params.Offset, m.minOffset, m.maxOffset)
	}
	return m, nil
}

func (p Parameters) gridSpec() GridSpec {
	return GridSpec{
		CellSize:   p.CellSize,
		CellRepeat: p.CellRepeat,
		Resolution: p.Resolution,
	}
}

// recomputeFrom reruns the pipeline starting at stage s. Stages before
// s keep their cached results. Offset bounds refresh only when the
// field stage reruns.
func (m *Model) recomputeFrom(s stage) error {
	if s <= stageGrid {
		g, err := buildGrid(m.params.gridSpec())
		if err != nil {
			return err
		}
		m.grid = g
	}
	if s <= stageField {
		m.surface = evalField(m.grid, m.fn, m.params.CellSize, m.params.PhaseShift)
		m.minOffset, m.maxOffset = offsetBounds(m.surface)
	}
	if s <= stageSurfaces {
		m.lower, m.upper = offsetSurfaces(m.surface, m.params.Offset)
	}
	if m.engine == nil {
		return nil
	}
	sheet, err := m.engine.Sheet(m.grid, m.lower, m.upper)
	if err != nil {
		m.sheet = nil
		return fmt.Errorf("tpms: sheet generation: %w", err)
	}
	m.sheet = sheet
	return nil
}

// SetSurface selects a catalog surface by name and recomputes the field
// and surface stages. The grid is reused.
func (m *Model) SetSurface(name string) error {
	fn, err := SurfaceByName(name)
	if err != nil {
		return err
	}
	m.params.Surface = name
	m.fn = fn
	return m.recomputeFrom(stageOf[ParamSurface])
}

// SetResolution sets the number of samples per axis and recomputes all
// stages. Resolutions below 2 are rejected and leave the model intact.
func (m *Model) SetResolution(res int) error {
	if res < 2 {
		return fmt.Errorf("%w: got %d", ErrResolution, res)
	}
	m.params.Resolution = res
	return m.recomputeFrom(stageOf[ParamResolution])
}

// SetCellSize sets the spatial period length per axis and recomputes
// all stages.
func (m *Model) SetCellSize(size r3.Vec) error {
	if d3.LTEZero(size) {
		return fmt.Errorf("%w: got %v", ErrCellSize, size)
	}
	m.params.CellSize = size
	return m.recomputeFrom(stageOf[ParamCellSize])
}

// SetCellRepeat sets the number of periods tiled per axis and
// recomputes all stages.
func (m *Model) SetCellRepeat(n V3i) error {
	if n.MinElem() < 1 {
		return fmt.Errorf("%w: got %v", ErrCellRepeat, n)
	}
	m.params.CellRepeat = n
	return m.recomputeFrom(stageOf[ParamCellRepeat])
}

// SetPhaseShift translates the pattern and recomputes the field and
// surface stages. The grid is reused.
func (m *Model) SetPhaseShift(phase r3.Vec) error {
	m.params.PhaseShift = phase
	return m.recomputeFrom(stageOf[ParamPhaseShift])
}

// SetOffset sets the sheet thickness parameter and recomputes the
// surface stage only. Offsets outside the current bounds are rejected;
// the bounds themselves are left untouched since the field stage does
// not rerun.
func (m *Model) SetOffset(offset float64) error {
	if offset < m.minOffset || offset > m.maxOffset {
		return fmt.Errorf("%w: %g not in [%g, %g]",
			ErrOffsetRange, offset, m.minOffset, m.maxOffset)
	}
	m.params.Offset = offset
	return m.recomputeFrom(stageOf[ParamOffset])
}

// SetPercentOffset sets the offset as a fraction t in [0, 1] of the
// current valid range: offset = MinOffset + t*(MaxOffset-MinOffset).
func (m *Model) SetPercentOffset(t float64) error {
	if t < 0 || t > 1 {
		return fmt.Errorf("%w: percent offset %g not in [0, 1]", ErrOffsetRange, t)
	}
	return m.SetOffset(m.minOffset + t*(m.maxOffset-m.minOffset))
}

// Parameters returns the current parameter set.
func (m *Model) Parameters() Parameters { return m.params }

// Grid returns the current lattice.
func (m *Model) Grid() *Grid { return m.grid }

// SurfaceField returns the base scalar field.
func (m *Model) SurfaceField() *Field { return m.surface }

// LowerField returns the lower offset field, surface + offset/2.
func (m *Model) LowerField() *Field { return m.lower }

// UpperField returns the upper offset field, surface - offset/2.
func (m *Model) UpperField() *Field { return m.upper }

// OffsetBounds returns the currently valid offset range. The bounds
// refresh whenever the field stage recomputes; a previously set offset
// is never clamped to shrunken bounds, callers decide what to do with
// it.
func (m *Model) OffsetBounds() (min, max float64) {
	return m.minOffset, m.maxOffset
}

// Sheet returns the last generated sheet geometry, or ErrNoSheet when
// the model has no engine or the last clip failed.
func (m *Model) Sheet() (*Sheet, error) {
	if m.sheet == nil {
		return nil, ErrNoSheet
	}
	return m.sheet, nil
}

// Density returns the solid volume fraction of the sheet within the
// sampled domain. Informational only.
func (m *Model) Density() (float64, error) {
	sheet, err := m.Sheet()
	if err != nil {
		return 0, err
	}
	dim := m.grid.Spec().Dim()
	return sheet.Volume / (dim.X * dim.Y * dim.Z), nil
}
