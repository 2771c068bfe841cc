// Package ringfield generates volumetric signed distance fields from a
// ring's proxy geometry. It is the CPU reference of the field-generation
// contract the GPU compute backend fulfils in production: the engine only
// ever consumes the field's bounds and transform, the voxel data exists for
// reference evaluation and debugging.
package ringfield

import (
	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	"github.com/soypat/glgl/math/ms3"
)

// Field is a voxel sampling of signed distance to a surface, negative
// inside, over a local-space box. Cell (i,j,k) spans bounds.Min plus the
// cell size times the index on each axis; At samples at cell centers.
type Field struct {
	data      []float32
	nx        int
	ny        int
	nz        int
	cell      float32
	bounds    ms3.Box
	transform fleshring.Transform
}

// Bounds returns the field's local-space bounding box.
func (f *Field) Bounds() ms3.Box { return f.bounds }

// Transform maps field local space to component space.
func (f *Field) Transform() fleshring.Transform { return f.transform }

// Resolution returns the voxel counts per axis.
func (f *Field) Resolution() (nx, ny, nz int) { return f.nx, f.ny, f.nz }

// CellSize returns the voxel edge length. Cells are cubic.
func (f *Field) CellSize() float32 { return f.cell }

// At returns the signed distance sampled at the center of cell (i,j,k).
func (f *Field) At(i, j, k int) float32 {
	return f.data[(k*f.ny+j)*f.nx+i]
}

// Inside reports whether cell (i,j,k) is inside the surface.
func (f *Field) Inside(i, j, k int) bool { return f.At(i, j, k) < 0 }

func (f *Field) center(i, j, k int) ms3.Vec {
	return ms3.Add(f.bounds.Min, ms3.Vec{
		X: (float32(i) + 0.5) * f.cell,
		Y: (float32(j) + 0.5) * f.cell,
		Z: (float32(k) + 0.5) * f.cell,
	})
}

// TightBounds returns the smallest local-space box covering every inside
// voxel, each grown by half a cell, or the zero box when nothing is inside.
// These are the bounds the field-bounds vertex selector consumes.
func (f *Field) TightBounds() ms3.Box {
	var bb ms3.Box
	found := false
	for k := 0; k < f.nz; k++ {
		for j := 0; j < f.ny; j++ {
			for i := 0; i < f.nx; i++ {
				if !f.Inside(i, j, k) {
					continue
				}
				c := f.center(i, j, k)
				if !found {
					bb = ms3.Box{Min: c, Max: c}
					found = true
					continue
				}
				bb.Min = minElem(bb.Min, c)
				bb.Max = ms3.MaxElem(bb.Max, c)
			}
		}
	}
	if !found {
		return ms3.Box{}
	}
	half := ms3.Vec{X: 0.5 * f.cell, Y: 0.5 * f.cell, Z: 0.5 * f.cell}
	bb.Min = ms3.Sub(bb.Min, half)
	bb.Max = ms3.Add(bb.Max, half)
	return bb
}

func minElem(a, b ms3.Vec) ms3.Vec {
	return ms3.Vec{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)}
}
