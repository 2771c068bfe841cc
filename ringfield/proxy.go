package ringfield

import (
	"fmt"

	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// AppendRingProxy appends a watertight torus tessellation of the ring in
// ring-local space: the circle of Radius lies in the XZ plane about the
// origin and the tube of solid radius Width is swept around it. major and
// minor are the segment counts around the big circle and around the tube.
func AppendRingProxy(dst []ms3.Triangle, radius, width float32, major, minor int) []ms3.Triangle {
	at := func(i, j int) ms3.Vec {
		u := 2 * math.Pi * float32(i%major) / float32(major)
		v := 2 * math.Pi * float32(j%minor) / float32(minor)
		su, cu := math.Sincos(u)
		sv, cv := math.Sincos(v)
		arm := radius + width*cv
		return ms3.Vec{X: arm * cu, Y: width * sv, Z: arm * su}
	}
	for i := 0; i < major; i++ {
		for j := 0; j < minor; j++ {
			a := at(i, j)
			b := at(i+1, j)
			c := at(i+1, j+1)
			d := at(i, j+1)
			dst = append(dst, ms3.Triangle{a, b, c}, ms3.Triangle{a, c, d})
		}
	}
	return dst
}

// GenerateRing generates the signed distance field of a ring's proxy torus
// in the ring's local frame (+Y along the axis) and stamps the field with
// the ring frame as its local-to-component transform, so the field plugs
// directly into the field-bounds vertex selector.
func GenerateRing(ring fleshring.Ring, res int) (*Field, error) {
	if ring.Radius <= 0 || ring.Width <= 0 {
		return nil, fmt.Errorf("ringfield: invalid ring radius %g width %g", ring.Radius, ring.Width)
	}
	// Tessellation density scales with the grid so proxy facets stay
	// below voxel size.
	major := 4 * res
	if major < 16 {
		major = 16
	}
	minor := max(8, major/4)
	tris := AppendRingProxy(nil, ring.Radius, ring.Width, major, minor)
	gen := CPUGenerator{Transform: ring.Frame()}
	return gen.Generate(tris, res)
}
