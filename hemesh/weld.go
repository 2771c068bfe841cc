package hemesh

import (
	"errors"
	"fmt"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// NewMeshFromTriangles welds a triangle soup into a connected mesh by
// snapping vertices to an integer grid of cell size tol and joining
// coincident cells, then builds half-edge topology from the result. A
// zero tol selects a grid much finer than the shortest input edge.
// Triangles that collapse under welding are dropped. The welded soup must
// still be manifold to build.
func NewMeshFromTriangles(triangles []ms3.Triangle, tol float32) (*Mesh, error) {
	if len(triangles) == 0 {
		return nil, ErrEmptyMesh
	}
	minEdge2 := float32(1e20)
	maxEdge2 := float32(0)
	maxMag := float32(0)
	for _, tri := range triangles {
		for j, vert := range tri {
			d := ms3.Sub(tri[(j+1)%3], vert)
			d2 := ms3.Dot(d, d)
			if d2 > 0 && d2 < minEdge2 {
				minEdge2 = d2
			}
			if d2 > maxEdge2 {
				maxEdge2 = d2
			}
			a := ms3.AbsElem(vert)
			if m := math.Max(a.X, math.Max(a.Y, a.Z)); m > maxMag {
				maxMag = m
			}
		}
	}
	if maxEdge2 == 0 {
		return nil, fmt.Errorf("%w: all triangles degenerate", ErrBadIndices)
	}
	suggested := math.Sqrt(minEdge2) / 256
	if tol == 0 {
		tol = suggested
	}
	if tol < 0 || tol != tol {
		return nil, errors.New("invalid weld tolerance")
	}
	if tol > math.Sqrt(maxEdge2)/2 {
		return nil, fmt.Errorf("weld tolerance too large, suggested tolerance: %g", suggested)
	}
	ri := 1 / tol
	if maxMag*ri > 1e18 {
		return nil, errors.New("weld tolerance too small for model size")
	}

	cache := make(map[[3]int64]int32, 3*len(triangles)/2)
	positions := make([]ms3.Vec, 0, 3*len(triangles)/2)
	indices := make([]int32, 0, 3*len(triangles))
	for _, tri := range triangles {
		var welded [3]int32
		for j, vert := range tri {
			// Snap vertex to integer resolution-space.
			v := ms3.Scale(ri, vert)
			key := [3]int64{int64(v.X), int64(v.Y), int64(v.Z)}
			idx, ok := cache[key]
			if !ok {
				idx = int32(len(positions))
				cache[key] = idx
				positions = append(positions, vert)
			}
			welded[j] = idx
		}
		if welded[0] == welded[1] || welded[1] == welded[2] || welded[2] == welded[0] {
			continue
		}
		indices = append(indices, welded[0], welded[1], welded[2])
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: welding collapsed all triangles", ErrBadIndices)
	}
	return NewMesh(positions, nil, indices, nil)
}
