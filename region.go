package fleshring

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

// RegionKind discriminates the closed set of influence region shapes.
type RegionKind uint8

const (
	// RegionBox is an oriented box grown by an expansion ratio.
	RegionBox RegionKind = iota + 1
	// RegionTube is a solid torus around a ring axis grown by a margin.
	RegionTube
)

// OrientedBox is a box of HalfExtents about Center with local axes given by
// the columns of Rotation. Expansion grows the half extents by a ratio, so
// an Expansion of 0.5 tests against a box 50% larger than authored.
type OrientedBox struct {
	Center      ms3.Vec
	Rotation    ms3.Mat3
	HalfExtents ms3.Vec
	Expansion   float32
}

// TorusTube is the solid torus swept by a sphere of MinorRadius+Margin whose
// center travels the circle of MajorRadius about Axis at Center.
type TorusTube struct {
	Center      ms3.Vec
	Axis        ms3.Vec
	MajorRadius float32
	MinorRadius float32
	Margin      float32
}

// Region is the zone of effect of a ring. It is a stateless value type over
// a closed set of shapes, recomputed from the current ring transform
// whenever needed and never persisted. The zero Region is invalid.
type Region struct {
	kind RegionKind
	box  OrientedBox
	tube TorusTube
}

// BoxRegion wraps an oriented box as a region.
func BoxRegion(b OrientedBox) Region {
	return Region{kind: RegionBox, box: b}
}

// TubeRegion wraps a torus tube as a region.
func TubeRegion(t TorusTube) Region {
	return Region{kind: RegionTube, tube: t}
}

func (r Region) Kind() RegionKind { return r.kind }

// Box returns the oriented box payload. Valid for RegionBox regions only.
func (r Region) Box() OrientedBox { return r.box }

// Tube returns the torus tube payload. Valid for RegionTube regions only.
func (r Region) Tube() TorusTube { return r.tube }

// Distance returns the signed distance from p to the region surface,
// negative inside.
func (r Region) Distance(p ms3.Vec) float32 {
	switch r.kind {
	case RegionBox:
		b := r.box
		inv := b.Rotation.Inverse()
		local := ms3.MulMatVec(inv, ms3.Sub(p, b.Center))
		e := ms3.Scale(1+b.Expansion, b.HalfExtents)
		q := ms3.Sub(ms3.AbsElem(local), e)
		return ms3.Norm(ms3.MaxElem(q, ms3.Vec{})) + minf(maxf(q.X, maxf(q.Y, q.Z)), 0)
	case RegionTube:
		t := r.tube
		rel := ms3.Sub(p, t.Center)
		axial := ms3.Dot(rel, t.Axis)
		radial := ms3.Sub(rel, ms3.Scale(axial, t.Axis))
		q := ms2.Vec{X: ms3.Norm(radial) - t.MajorRadius, Y: axial}
		return ms2.Norm(q) - (t.MinorRadius + t.Margin)
	}
	return largenum
}

// ContainsPoint reports whether p lies inside the region.
func (r Region) ContainsPoint(p ms3.Vec) bool {
	return r.Distance(p) <= 0
}

// IntersectsTriangle reports whether any part of tri lies inside the region.
// The test is sample based (corners, edge midpoints, centroid) after a
// bounding box reject, so a sliver of a very large triangle grazing a thin
// region can be missed; subdivision passes re-test children so the refined
// mesh converges onto the region regardless.
func (r Region) IntersectsTriangle(tri ms3.Triangle) bool {
	tb := ms3.Box{Min: tri[0], Max: tri[0]}
	tb.Min = minElem(minElem(tb.Min, tri[1]), tri[2])
	tb.Max = ms3.MaxElem(ms3.MaxElem(tb.Max, tri[1]), tri[2])
	if !boxesOverlap(r.Bounds(), tb) {
		return false
	}
	if r.ContainsPoint(tri[0]) || r.ContainsPoint(tri[1]) || r.ContainsPoint(tri[2]) {
		return true
	}
	centroid := ms3.Scale(1./3., ms3.Add(ms3.Add(tri[0], tri[1]), tri[2]))
	if r.ContainsPoint(centroid) {
		return true
	}
	m01 := ms3.Scale(0.5, ms3.Add(tri[0], tri[1]))
	m12 := ms3.Scale(0.5, ms3.Add(tri[1], tri[2]))
	m20 := ms3.Scale(0.5, ms3.Add(tri[2], tri[0]))
	return r.ContainsPoint(m01) || r.ContainsPoint(m12) || r.ContainsPoint(m20)
}

// Bounds returns the world axis-aligned bounding box of the region.
func (r Region) Bounds() ms3.Box {
	switch r.kind {
	case RegionBox:
		b := r.box
		e := ms3.Scale(1+b.Expansion, b.HalfExtents)
		bb := ms3.Box{
			Min: ms3.Vec{X: largenum, Y: largenum, Z: largenum},
			Max: ms3.Vec{X: -largenum, Y: -largenum, Z: -largenum},
		}
		for i := 0; i < 8; i++ {
			corner := e
			if i&1 != 0 {
				corner.X = -corner.X
			}
			if i&2 != 0 {
				corner.Y = -corner.Y
			}
			if i&4 != 0 {
				corner.Z = -corner.Z
			}
			w := ms3.Add(b.Center, ms3.MulMatVec(b.Rotation, corner))
			bb.Min = minElem(bb.Min, w)
			bb.Max = ms3.MaxElem(bb.Max, w)
		}
		return bb
	case RegionTube:
		t := r.tube
		rr := t.MinorRadius + t.Margin
		// Extent of the major circle along a world axis is scaled by the
		// sine of the angle between that axis and the tube axis.
		a2 := ms3.MulElem(t.Axis, t.Axis)
		half := ms3.Vec{
			X: t.MajorRadius*math32.Sqrt(maxf(0, 1-a2.X)) + rr,
			Y: t.MajorRadius*math32.Sqrt(maxf(0, 1-a2.Y)) + rr,
			Z: t.MajorRadius*math32.Sqrt(maxf(0, 1-a2.Z)) + rr,
		}
		return ms3.Box{Min: ms3.Sub(t.Center, half), Max: ms3.Add(t.Center, half)}
	}
	return ms3.Box{}
}

// AlmostEqual reports whether o describes effectively the same region:
// centers within centerTol and radii/extents within relative relTol. It is
// the change test deciding whether a cached subdivision remains valid.
func (r Region) AlmostEqual(o Region, centerTol, relTol float32) bool {
	if r.kind != o.kind {
		return false
	}
	switch r.kind {
	case RegionBox:
		a, b := r.box, o.box
		if ms3.Norm(ms3.Sub(a.Center, b.Center)) >= centerTol {
			return false
		}
		if !relClose(a.Expansion, b.Expansion, relTol) {
			return false
		}
		if !relClose(a.HalfExtents.X, b.HalfExtents.X, relTol) ||
			!relClose(a.HalfExtents.Y, b.HalfExtents.Y, relTol) ||
			!relClose(a.HalfExtents.Z, b.HalfExtents.Z, relTol) {
			return false
		}
		// Compare orientations by their action on the basis.
		for _, v := range [3]ms3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
			d := ms3.Sub(ms3.MulMatVec(a.Rotation, v), ms3.MulMatVec(b.Rotation, v))
			if ms3.Norm(d) >= relTol {
				return false
			}
		}
		return true
	case RegionTube:
		a, b := r.tube, o.tube
		return ms3.Norm(ms3.Sub(a.Center, b.Center)) < centerTol &&
			ms3.Norm(ms3.Sub(a.Axis, b.Axis)) < relTol &&
			relClose(a.MajorRadius, b.MajorRadius, relTol) &&
			relClose(a.MinorRadius, b.MinorRadius, relTol) &&
			relClose(a.Margin, b.Margin, relTol)
	}
	return false
}

// relClose compares scalars by relative difference with an absolute floor
// for values near zero.
func relClose(a, b, relTol float32) bool {
	d := absf(a - b)
	m := maxf(absf(a), absf(b))
	if m < 1 {
		return d < relTol
	}
	return d < relTol*m
}

func (r Region) hashArgs() []float32 {
	switch r.kind {
	case RegionBox:
		b := r.box
		rot := b.Rotation.Array()
		args := append(rot[:],
			b.Center.X, b.Center.Y, b.Center.Z,
			b.HalfExtents.X, b.HalfExtents.Y, b.HalfExtents.Z,
			b.Expansion,
		)
		return args
	case RegionTube:
		t := r.tube
		return []float32{
			t.Center.X, t.Center.Y, t.Center.Z,
			t.Axis.X, t.Axis.Y, t.Axis.Z,
			t.MajorRadius, t.MinorRadius, t.Margin,
		}
	}
	return nil
}

// BasisMat3 assembles the rotation matrix whose columns are the frame
// vectors x, y, z. glsl-style column action: MulMatVec maps local (1,0,0)
// to x.
func BasisMat3(x, y, z ms3.Vec) ms3.Mat3 {
	m := ms3.Prod(x, ms3.Vec{X: 1})
	m = ms3.AddMat3(m, ms3.Prod(y, ms3.Vec{Y: 1}))
	m = ms3.AddMat3(m, ms3.Prod(z, ms3.Vec{Z: 1}))
	return m
}

func boxesOverlap(a, b ms3.Box) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

func minElem(a, b ms3.Vec) ms3.Vec {
	return ms3.Vec{X: minf(a.X, b.X), Y: minf(a.Y, b.Y), Z: minf(a.Z, b.Z)}
}
