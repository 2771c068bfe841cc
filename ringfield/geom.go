package ringfield

import (
	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
)

// rayTriangleX intersects the ray from origin along +X with a triangle and
// returns the hit parameter. Degenerate triangles never hit.
func rayTriangleX(origin ms3.Vec, tri ms3.Triangle) (t float32, hit bool) {
	const eps = 1e-9
	e1 := ms3.Sub(tri[1], tri[0])
	e2 := ms3.Sub(tri[2], tri[0])
	// Möller-Trumbore with dir = (1,0,0): h = dir x e2 = (0, -e2.Z, e2.Y).
	h := ms3.Vec{Y: -e2.Z, Z: e2.Y}
	a := ms3.Dot(e1, h)
	if math.Abs(a) < eps {
		return 0, false
	}
	inv := 1 / a
	s := ms3.Sub(origin, tri[0])
	u := inv * ms3.Dot(s, h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := ms3.Cross(s, e1)
	v := inv * q.X
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t = inv * ms3.Dot(e2, q)
	return t, t > eps
}

// pointTriangleDistance returns the distance from p to the closest point of
// the triangle, interior included.
func pointTriangleDistance(p ms3.Vec, tri ms3.Triangle) float32 {
	ab := ms3.Sub(tri[1], tri[0])
	ac := ms3.Sub(tri[2], tri[0])
	ap := ms3.Sub(p, tri[0])

	d1 := ms3.Dot(ab, ap)
	d2 := ms3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return ms3.Norm(ap) // Corner A.
	}
	bp := ms3.Sub(p, tri[1])
	d3 := ms3.Dot(ab, bp)
	d4 := ms3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return ms3.Norm(bp) // Corner B.
	}
	cp := ms3.Sub(p, tri[2])
	d5 := ms3.Dot(ab, cp)
	d6 := ms3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return ms3.Norm(cp) // Corner C.
	}
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := safeRatio(d1, d1-d3) // Edge AB.
		return ms3.Norm(ms3.Sub(ap, ms3.Scale(v, ab)))
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := safeRatio(d2, d2-d6) // Edge AC.
		return ms3.Norm(ms3.Sub(ap, ms3.Scale(w, ac)))
	}
	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := safeRatio(d4-d3, (d4-d3)+(d5-d6)) // Edge BC.
		bc := ms3.Sub(tri[2], tri[1])
		return ms3.Norm(ms3.Sub(bp, ms3.Scale(w, bc)))
	}
	// Interior: distance along the normal.
	n := ms3.Cross(ab, ac)
	nn := ms3.Norm(n)
	if nn == 0 {
		// Degenerate triangle, fall back to nearest corner.
		return min(ms3.Norm(ap), min(ms3.Norm(bp), ms3.Norm(cp)))
	}
	return math.Abs(ms3.Dot(ap, n)) / nn
}

func safeRatio(num, denom float32) float32 {
	if denom == 0 {
		return 0
	}
	return ms1.Clamp(num/denom, 0, 1)
}
