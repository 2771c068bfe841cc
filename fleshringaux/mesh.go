package fleshringaux

import (
	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

// Mesh is a procedural demo mesh in the flat-array form the engine consumes.
type Mesh struct {
	Positions []ms3.Vec
	UVs       []ms2.Vec
	Indices   []int32
}

// PlaneMesh builds an nx by nz cell plane on y=0 centered at the origin
// with unit-square UVs.
func PlaneMesh(nx, nz int, cell float32) Mesh {
	var m Mesh
	ox := -0.5 * float32(nx) * cell
	oz := -0.5 * float32(nz) * cell
	for z := 0; z <= nz; z++ {
		for x := 0; x <= nx; x++ {
			m.Positions = append(m.Positions, ms3.Vec{
				X: ox + float32(x)*cell,
				Z: oz + float32(z)*cell,
			})
			m.UVs = append(m.UVs, ms2.Vec{
				X: float32(x) / float32(nx),
				Y: float32(z) / float32(nz),
			})
		}
	}
	at := func(x, z int) int32 { return int32(z*(nx+1) + x) }
	for z := 0; z < nz; z++ {
		for x := 0; x < nx; x++ {
			a, b, c, d := at(x, z), at(x+1, z), at(x+1, z+1), at(x, z+1)
			m.Indices = append(m.Indices, a, c, b, a, d, c)
		}
	}
	return m
}

// TubeMesh builds a closed cylinder shell along +Y centered at the origin,
// the stand-in for a limb in demos and tests. radial and axial are the
// segment counts around and along the tube; the loop is welded shut so the
// seam UV wraps.
func TubeMesh(radial, axial int, radius, height float32) Mesh {
	var m Mesh
	for j := 0; j <= axial; j++ {
		y := height * (float32(j)/float32(axial) - 0.5)
		for i := 0; i < radial; i++ {
			s, c := math.Sincos(2 * math.Pi * float32(i) / float32(radial))
			m.Positions = append(m.Positions, ms3.Vec{X: radius * c, Y: y, Z: radius * s})
			m.UVs = append(m.UVs, ms2.Vec{
				X: float32(i) / float32(radial),
				Y: float32(j) / float32(axial),
			})
		}
	}
	at := func(i, j int) int32 { return int32(j*radial + i%radial) }
	for j := 0; j < axial; j++ {
		for i := 0; i < radial; i++ {
			a := at(i, j)
			b := at(i+1, j)
			c := at(i+1, j+1)
			d := at(i, j+1)
			m.Indices = append(m.Indices, a, b, c, a, c, d)
		}
	}
	return m
}
