// Package deform computes which vertices a ring deformation acts on and how
// strongly, and provides the CPU reference of the interpolation and
// displacement passes a GPU backend would otherwise execute over the same
// buffers.
package deform

import (
	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	"github.com/JeongBeomLee/FleshRing-sub000/spatial"
	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Affected is the selection result as parallel flat arrays ready for direct
// upload to a GPU buffer: vertex index, radial distance from the ring axis
// and influence weight in [0,1]. It lives for one ring configuration and is
// recomputed whenever ring geometry, bone transform or topology changes.
type Affected struct {
	Indices   []int32
	Distances []float32
	Weights   []float32
}

// Len returns the number of affected vertices.
func (a *Affected) Len() int { return len(a.Indices) }

// Reset empties the result, keeping capacity for reuse.
func (a *Affected) Reset() {
	a.Indices = a.Indices[:0]
	a.Distances = a.Distances[:0]
	a.Weights = a.Weights[:0]
}

func (a *Affected) push(idx int32, dist, weight float32) {
	a.Indices = append(a.Indices, idx)
	a.Distances = append(a.Distances, dist)
	a.Weights = append(a.Weights, weight)
}

// SelectorKind discriminates the closed set of selection strategies.
type SelectorKind uint8

const (
	// SelectorDistance selects by cylindrical distance to the ring.
	SelectorDistance SelectorKind = iota + 1
	// SelectorFieldBounds selects inside the bounds of a precomputed
	// volumetric field.
	SelectorFieldBounds
)

// Selector is the affected-vertex strategy as a closed sum over the two
// concrete selectors, mirroring how influence regions are modeled. The zero
// Selector is invalid.
type Selector struct {
	kind  SelectorKind
	dist  DistanceSelector
	field FieldBoundsSelector
}

// SelectByDistance wraps a distance strategy as a Selector.
func SelectByDistance(s DistanceSelector) Selector {
	return Selector{kind: SelectorDistance, dist: s}
}

// SelectByFieldBounds wraps a field-bounds strategy as a Selector.
func SelectByFieldBounds(s FieldBoundsSelector) Selector {
	return Selector{kind: SelectorFieldBounds, field: s}
}

func (s Selector) Kind() SelectorKind { return s.kind }

// Select runs the wrapped strategy. See the concrete selectors for the
// hash and scratch contracts.
func (s Selector) Select(res *Affected, positions []ms3.Vec, h *spatial.Hash, scratch *VecPool) {
	switch s.kind {
	case SelectorDistance:
		s.dist.Select(res, positions, h, scratch)
	case SelectorFieldBounds:
		s.field.Select(res, positions, h, scratch)
	}
}

// DistanceSelector selects vertices by their cylindrical distance to a ring
// given in bone-local space: a vertex is affected when its radial distance
// to the ring axis is at most Radius+Width and its axial offset at most
// Width/2. The weight is the product of the axial and radial falloffs
// scaled by Multiplier.
type DistanceSelector struct {
	Ring fleshring.Ring
	// Bone maps the ring from bone-local space into the space of the
	// vertex positions.
	Bone       fleshring.Transform
	Multiplier float32
	Curve      fleshring.Curve
}

// Select appends the affected vertices among positions to res. When h is
// non-nil it must have been built over positions and narrows the scan to an
// axis-aligned box around the ring; a nil h falls back to testing every
// vertex. scratch may be nil.
func (s DistanceSelector) Select(res *Affected, positions []ms3.Vec, h *spatial.Hash, scratch *VecPool) {
	center := s.Bone.Apply(s.Ring.Center)
	axis := s.Bone.ApplyDir(s.Ring.Axis)
	n := ms3.Norm(axis)
	if n == 0 {
		return
	}
	axis = ms3.Scale(1/n, axis)
	// The bone transform may scale the ring alongside the mesh.
	radius := s.Ring.Radius * n
	width := s.Ring.Width * n
	maxRadial := radius + width
	halfBand := 0.5 * width

	test := func(idx int32) {
		rel := ms3.Sub(positions[idx], center)
		axial := ms3.Dot(rel, axis)
		if math.Abs(axial) > halfBand {
			return
		}
		radial := ms3.Norm(ms3.Sub(rel, ms3.Scale(axial, axis)))
		if radial > maxRadial {
			return
		}
		wA := fleshring.Falloff(s.Curve, math.Abs(axial)/halfBand)
		wR := fleshring.Falloff(s.Curve, radial/maxRadial)
		w := clamp01(s.Multiplier * wA * wR)
		res.push(idx, radial, w)
	}
	if h == nil {
		for i := range positions {
			test(int32(i))
		}
		return
	}
	// Conservative reach: an affected vertex sits within the cylinder's
	// bounding sphere of radius hypot(maxRadial, halfBand).
	r := math.Hypot(maxRadial, halfBand)
	reach := ms3.Vec{X: r, Y: r, Z: r}
	candidates := acquireIdx(scratch, len(positions))
	candidates = h.AppendAABB(candidates[:0], ms3.Sub(center, reach), ms3.Add(center, reach))
	for _, idx := range candidates {
		test(idx)
	}
	releaseIdx(scratch, candidates)
}

// FieldBoundsSelector selects vertices inside the bounds of a volumetric
// field, typically reported back by the GPU after SDF generation. Field
// local space has the ring plane at y=0 with +Y running up the limb; a
// vertex is affected when it lies past the axial start margin, inside the
// expanded axial bound and inside the radial limit, which widens with axial
// position to follow the anatomy away from the ring.
type FieldBoundsSelector struct {
	BoundsMin ms3.Vec
	BoundsMax ms3.Vec
	// LocalToComponent maps field local space to the space of the vertex
	// positions. Selection uses its true affine inverse so rotation
	// composed with non-uniform scale inverts correctly.
	LocalToComponent fleshring.Transform
	// StartMargin is the axial offset below which vertices belong to the
	// ring band itself and are left to the distance selector.
	StartMargin float32
	// Expansion grows the axial bound by a ratio.
	Expansion  float32
	Multiplier float32
	Curve      fleshring.Curve
}

// Select appends the affected vertices among positions to res. A non-nil h
// must have been built over positions and narrows the scan with an
// oriented-box query; scratch may be nil.
func (s FieldBoundsSelector) Select(res *Affected, positions []ms3.Vec, h *spatial.Hash, scratch *VecPool) {
	axialLimit := s.BoundsMax.Y * (1 + s.Expansion)
	if axialLimit <= s.StartMargin {
		return
	}
	radialLimit := math.Max(
		math.Max(math.Abs(s.BoundsMin.X), math.Abs(s.BoundsMax.X)),
		math.Max(math.Abs(s.BoundsMin.Z), math.Abs(s.BoundsMax.Z)),
	)
	inv := s.LocalToComponent.Inverse()
	test := func(idx int32) {
		local := inv.Apply(positions[idx])
		axial := local.Y
		if axial <= s.StartMargin || axial > axialLimit {
			return
		}
		ratio := (axial - s.StartMargin) / (axialLimit - s.StartMargin)
		// Radial allowance widens up the limb to follow the anatomy.
		limit := radialLimit * (1 + ratio*0.5)
		radial := math.Hypot(local.X, local.Z)
		if radial > limit {
			return
		}
		w := clamp01(s.Multiplier * fleshring.Falloff(s.Curve, ratio))
		res.push(idx, radial, w)
	}
	if h == nil {
		for i := range positions {
			test(int32(i))
		}
		return
	}
	grow := ms3.Vec{X: radialLimit * 0.5, Y: s.BoundsMax.Y * s.Expansion, Z: radialLimit * 0.5}
	localMin := ms3.Sub(s.BoundsMin, grow)
	localMax := ms3.Add(s.BoundsMax, grow)
	candidates := acquireIdx(scratch, len(positions))
	candidates = h.AppendOBB(candidates[:0], s.LocalToComponent.Translation, s.LocalToComponent.Linear, localMin, localMax)
	for _, idx := range candidates {
		test(idx)
	}
	releaseIdx(scratch, candidates)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	} else if v > 1 {
		return 1
	}
	return v
}
