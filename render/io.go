package render

import (
	"io"

	"github.com/kmarchais/tpms"
)

// RenderAll reads the full contents of a Renderer and returns the slice read.
// It does not return error on io.EOF.
func RenderAll(r Renderer) ([]tpms.Triangle3, error) {
	var err error
	var nt int
	result := make([]tpms.Triangle3, 0, 1<<12)
	buf := make([]tpms.Triangle3, 1024)
	for {
		nt, err = r.ReadTriangles(buf)
		if err != nil {
			break
		}
		result = append(result, buf[:nt]...)
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}
