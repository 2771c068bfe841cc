package ringfield

import (
	"errors"
	"fmt"
	"sort"

	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	"github.com/soypat/glgl/math/ms3"
)

// Generator is the field-generation contract of the compute backend: turn
// closed proxy geometry into a signed distance field with res cells along
// its longest axis.
type Generator interface {
	Generate(tris []ms3.Triangle, res int) (*Field, error)
}

// CPUGenerator generates fields on the calling goroutine:
//
//  1. a cubic voxel grid is laid over the padded triangle bounds and every
//     voxel gets its unsigned distance to the nearest triangle,
//  2. a parity ray cast along +X per (y,z) column marks inside voxels,
//  3. a flood fill per X slice, blocked by the voxels hugging the surface,
//     reclassifies voxels the rays leaked past: whatever the fill cannot
//     reach from the slice border is inside,
//  4. distances of inside voxels are negated.
//
// The proxy geometry should be watertight; the flood-fill pass corrects
// leaks through holes aligned with the cast direction and exactly-grazing
// rays, at voxel accuracy.
type CPUGenerator struct {
	// Padding grows the grid bounds beyond the geometry on every side.
	// Zero pads by one cell so the border of every slice is outside.
	Padding float32
	// Transform stamps the generated field's local-to-component map.
	// The zero value stamps identity.
	Transform fleshring.Transform
}

// maxFieldResolution bounds the voxel count per axis; reference fields are
// for selection bounds and debugging, not rendering.
const maxFieldResolution = 256

// Generate implements the Generator contract.
func (g CPUGenerator) Generate(tris []ms3.Triangle, res int) (*Field, error) {
	if len(tris) == 0 {
		return nil, errors.New("ringfield: no proxy geometry")
	}
	if res < 2 || res > maxFieldResolution {
		return nil, fmt.Errorf("ringfield: resolution %d outside [2,%d]", res, maxFieldResolution)
	}
	bb := ms3.Box{Min: tris[0][0], Max: tris[0][0]}
	for _, tri := range tris {
		for _, v := range tri {
			bb.Min = minElem(bb.Min, v)
			bb.Max = ms3.MaxElem(bb.Max, v)
		}
	}
	sz := bb.Size()
	longest := max(sz.X, max(sz.Y, sz.Z))
	if longest <= 0 {
		return nil, errors.New("ringfield: degenerate proxy geometry")
	}
	cell := longest / float32(res)
	pad := g.Padding
	if pad <= 0 {
		pad = cell
	}
	bb.Min = ms3.AddScalar(-pad, bb.Min)
	bb.Max = ms3.AddScalar(pad, bb.Max)
	sz = bb.Size()
	f := &Field{
		nx:        int(sz.X/cell) + 1,
		ny:        int(sz.Y/cell) + 1,
		nz:        int(sz.Z/cell) + 1,
		cell:      cell,
		bounds:    bb,
		transform: g.Transform,
	}
	if f.transform.Linear == (ms3.Mat3{}) {
		f.transform = fleshring.IdentityTransform()
	}
	f.data = make([]float32, f.nx*f.ny*f.nz)
	for k := 0; k < f.nz; k++ {
		for j := 0; j < f.ny; j++ {
			for i := 0; i < f.nx; i++ {
				p := f.center(i, j, k)
				d := float32(1e20)
				for _, tri := range tris {
					if td := pointTriangleDistance(p, tri); td < d {
						d = td
					}
				}
				f.data[(k*f.ny+j)*f.nx+i] = d
			}
		}
	}

	inside := g.castColumns(f, tris)
	g.fillSlices(f, inside)

	for at, d := range f.data {
		if inside[at] {
			f.data[at] = -d
		}
	}
	return f, nil
}

// castColumns marks voxels by ray-cast parity: a column of voxels along +X
// flips between outside and inside at every triangle crossing.
func (g CPUGenerator) castColumns(f *Field, tris []ms3.Triangle) []bool {
	inside := make([]bool, f.nx*f.ny*f.nz)
	origin := f.bounds.Min.X - f.cell
	var crossings []float32
	for k := 0; k < f.nz; k++ {
		for j := 0; j < f.ny; j++ {
			from := f.center(0, j, k)
			from.X = origin
			crossings = crossings[:0]
			for _, tri := range tris {
				if t, hit := rayTriangleX(from, tri); hit {
					crossings = append(crossings, t)
				}
			}
			if len(crossings) == 0 {
				continue
			}
			sort.Slice(crossings, func(a, b int) bool { return crossings[a] < crossings[b] })
			for i := 0; i < f.nx; i++ {
				x := f.center(i, j, k).X - origin
				n := sort.Search(len(crossings), func(c int) bool { return crossings[c] > x })
				if n%2 == 1 {
					inside[(k*f.ny+j)*f.nx+i] = true
				}
			}
		}
	}
	return inside
}

// fillSlices runs a flood fill over every X slice, seeded from every border
// voxel, walking voxels neither inside nor hugging the surface. Whatever
// the fill cannot reach is enclosed by the surface within that slice and is
// reclassified as inside, correcting parity leaks through holes at voxel
// accuracy.
func (g CPUGenerator) fillSlices(f *Field, inside []bool) {
	// Any voxel center within a cell diagonal of the surface can sit on
	// the wall; the fill must not pass through those.
	blockDist := 0.87 * f.cell
	reached := make([]bool, f.ny*f.nz)
	queue := make([][2]int, 0, f.ny*f.nz)
	for i := 0; i < f.nx; i++ {
		clear(reached)
		queue = queue[:0]
		seed := func(j, k int) {
			at := (k*f.ny+j)*f.nx + i
			if !reached[k*f.ny+j] && !inside[at] && f.data[at] > blockDist {
				reached[k*f.ny+j] = true
				queue = append(queue, [2]int{j, k})
			}
		}
		for j := 0; j < f.ny; j++ {
			seed(j, 0)
			seed(j, f.nz-1)
		}
		for k := 0; k < f.nz; k++ {
			seed(0, k)
			seed(f.ny-1, k)
		}
		for len(queue) > 0 {
			jk := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			j, k := jk[0], jk[1]
			if j > 0 {
				seed(j-1, k)
			}
			if j < f.ny-1 {
				seed(j+1, k)
			}
			if k > 0 {
				seed(j, k-1)
			}
			if k < f.nz-1 {
				seed(j, k+1)
			}
		}
		for k := 0; k < f.nz; k++ {
			for j := 0; j < f.ny; j++ {
				at := (k*f.ny+j)*f.nx + i
				// Surface-hugging voxels keep their parity sign.
				if !reached[k*f.ny+j] && f.data[at] > blockDist {
					inside[at] = true
				}
			}
		}
	}
}
