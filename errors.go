package tpms

import (
	"errors"
	"fmt"
)

// Domain errors for parameter validation and sheet generation.
var (
	// ErrResolution indicates a lattice resolution below the two samples
	// per axis needed for a non-degenerate grid.
	ErrResolution = errors.New("tpms: resolution must be at least 2")

	// ErrCellSize indicates a non-positive cell size component.
	ErrCellSize = errors.New("tpms: cell size components must be positive")

	// ErrCellRepeat indicates a cell repeat count below 1.
	ErrCellRepeat = errors.New("tpms: cell repeat components must be at least 1")

	// ErrUnknownSurface indicates a surface name outside the catalog.
	ErrUnknownSurface = errors.New("tpms: unknown surface")

	// ErrOffsetRange indicates an offset outside the current
	// [MinOffset, MaxOffset] bounds published by the model.
	ErrOffsetRange = errors.New("tpms: offset outside valid bounds")

	// ErrNoSheet indicates sheet geometry has not been generated, either
	// because the model has no engine or the last clip failed.
	ErrNoSheet = errors.New("tpms: no sheet geometry available")
)

func errUnknownSurface(name string) error {
	return fmt.Errorf("%w %q, have %v", ErrUnknownSurface, name, Surfaces())
}
