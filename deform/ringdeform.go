package deform

import (
	"fmt"

	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// RingDeform is the CPU reference of the GPU displacement pass: a radial
// pull of the affected vertices toward the ring axis scaled by Tightness
// and a push outward scaled by Bulge, strongest toward the edges of the
// band where the pinched flesh piles up. Tightness and Bulge are world
// units of displacement at influence weight 1. Curve shapes how the bulge
// ramps from the band center to its edges.
type RingDeform struct {
	Ring      fleshring.Ring
	Bone      fleshring.Transform
	Tightness float32
	Bulge     float32
	Curve     fleshring.Curve
}

// Apply writes the displaced positions to dst, copying unaffected vertices
// through untouched. dst must be positions itself or a slice of the same
// length; aff must have been selected over positions. Vertices on the ring
// axis have no radial direction and only copy through.
func (rd RingDeform) Apply(dst, positions []ms3.Vec, aff *Affected) error {
	if len(dst) != len(positions) {
		return fmt.Errorf("deform: dst length %d does not match %d positions", len(dst), len(positions))
	}
	if len(positions) == 0 {
		return nil
	}
	if &dst[0] != &positions[0] {
		copy(dst, positions)
	}
	if rd.Ring.Width <= 0 {
		return fmt.Errorf("deform: ring width %g must be positive", rd.Ring.Width)
	}
	center := rd.Bone.Apply(rd.Ring.Center)
	axis := rd.Bone.ApplyDir(rd.Ring.Axis)
	n := ms3.Norm(axis)
	if n == 0 {
		return fmt.Errorf("deform: bone transform collapses ring axis")
	}
	axis = ms3.Scale(1/n, axis)
	halfBand := 0.5 * rd.Ring.Width * n
	for k, idx := range aff.Indices {
		if idx < 0 || int(idx) >= len(positions) {
			return fmt.Errorf("deform: affected vertex %d outside %d positions", idx, len(positions))
		}
		w := aff.Weights[k]
		p := positions[idx]
		rel := ms3.Sub(p, center)
		axial := ms3.Dot(rel, axis)
		radialVec := ms3.Sub(rel, ms3.Scale(axial, axis))
		radial := ms3.Norm(radialVec)
		if radial == 0 {
			continue
		}
		dir := ms3.Scale(1/radial, radialVec)
		// Pull is strongest under the band center, bulge at its edges.
		edge := 1 - fleshring.Falloff(rd.Curve, math.Abs(axial)/halfBand)
		offset := rd.Bulge*w*edge - rd.Tightness*w
		if offset < -radial {
			offset = -radial
		}
		dst[idx] = ms3.Add(p, ms3.Scale(offset, dir))
	}
	return nil
}
