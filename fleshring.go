package fleshring

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

const (
	largenum = 1e20
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization or transformation matrix determinants.
	epstol = 6e-7
)

// Ring is the geometric description of a tight band around a limb:
// a circle of Radius about Axis centered at Center, swept by a band
// of axial extent Width. Axis is stored normalized.
type Ring struct {
	Center ms3.Vec
	Axis   ms3.Vec
	Radius float32
	Width  float32
}

// Tube returns the torus-tube influence region of the ring. The tube's
// solid radius is the ring width so that the region covers both the
// radial spread and the axial band the ring acts on; margin grows it
// further outward.
func (r Ring) Tube(margin float32) Region {
	return TubeRegion(TorusTube{
		Center:      r.Center,
		Axis:        r.Axis,
		MajorRadius: r.Radius,
		MinorRadius: r.Width,
		Margin:      margin,
	})
}

// RingParam is one subdivision/deformation target: an influence region,
// an influence multiplier applied on top of the falloff and the falloff
// curve shaping the weight. It is the unit consumed by the topology
// processor and the vertex selectors.
type RingParam struct {
	Region     Region
	Multiplier float32
	Curve      Curve
}

// Builder wraps ring, region and parameter construction logic.
// Provides error handling strategies with panics or error accumulation during parameter validation.
type Builder struct {
	NoParamPanic bool
	accumErrs    []error
}

func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors discards accumulated validation errors.
func (bld *Builder) ClearErrors() {
	bld.accumErrs = bld.accumErrs[:0]
}

func (bld *Builder) paramErrorf(msg string, args ...any) {
	if !bld.NoParamPanic {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

// NewRing creates a ring of given radius and band width centered at center
// with the circle plane perpendicular to axis.
func (bld *Builder) NewRing(center, axis ms3.Vec, radius, width float32) Ring {
	n := ms3.Norm(axis)
	if n < epstol {
		bld.paramErrorf("null ring axis")
	}
	if radius <= 0 || width <= 0 {
		bld.paramErrorf("invalid ring dimension")
	}
	if radius < width {
		bld.paramErrorf("ring width exceeds radius")
	}
	if n >= epstol {
		axis = ms3.Scale(1/n, axis)
	}
	return Ring{Center: center, Axis: axis, Radius: radius, Width: width}
}

// NewTubeRegion creates the torus-tube influence region of ring grown by margin.
func (bld *Builder) NewTubeRegion(ring Ring, margin float32) Region {
	if margin < 0 {
		bld.paramErrorf("negative tube margin")
	}
	if ring.Radius <= 0 || ring.Width <= 0 {
		bld.paramErrorf("invalid ring dimension")
	}
	return ring.Tube(margin)
}

// NewBoxRegion creates an oriented-box influence region. rotation takes local
// box coordinates to world, halfExtents are the box half sizes before the
// expansion ratio is applied.
func (bld *Builder) NewBoxRegion(center ms3.Vec, rotation ms3.Mat3, halfExtents ms3.Vec, expansion float32) Region {
	if halfExtents.X <= 0 || halfExtents.Y <= 0 || halfExtents.Z <= 0 {
		bld.paramErrorf("invalid box half extents")
	}
	if expansion < 0 {
		bld.paramErrorf("negative box expansion")
	}
	if math32.Abs(rotation.Determinant()) < epstol {
		bld.paramErrorf("singular box rotation")
	}
	return BoxRegion(OrientedBox{
		Center:      center,
		Rotation:    rotation,
		HalfExtents: halfExtents,
		Expansion:   expansion,
	})
}

// NewRingParam pairs a region with its influence multiplier and falloff curve.
func (bld *Builder) NewRingParam(region Region, multiplier float32, curve Curve) RingParam {
	if region.kind == 0 {
		bld.paramErrorf("zero-value region")
	}
	if multiplier <= 0 {
		bld.paramErrorf("invalid influence multiplier")
	}
	if curve > CurveSmootherstep {
		bld.paramErrorf("unknown falloff curve")
	}
	return RingParam{Region: region, Multiplier: multiplier, Curve: curve}
}

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func clampf(v, Min, Max float32) float32 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func absf(a float32) float32 {
	return math32.Abs(a)
}

// ParamHash folds a ring parameter list into a single float fingerprint.
// It is stable across calls for identical parameters and is used by the
// topology processor to stamp cached results.
func ParamHash(params []RingParam) float32 {
	var hashA float32 = 0.0
	var hashB float32 = 1.0
	for i := range params {
		p := &params[i]
		hashA, hashB = hashAdd(hashA, hashB, float32(p.Region.kind))
		hashA, hashB = hashAdd(hashA, hashB, float32(p.Curve))
		hashA, hashB = hashAdd(hashA, hashB, p.Multiplier)
		hashA, hashB = hashAdd(hashA, hashB, hashf(p.Region.hashArgs()))
	}
	return hashfint(hashA + hashB)
}

// hashf folds a flat argument list into one accumulator entry.
func hashf(values []float32) float32 {
	var hashA float32 = 0.0
	var hashB float32 = 1.0
	for _, num := range values {
		hashA, hashB = hashAdd(hashA, hashB, num)
	}
	return hashfint(hashA + hashB)
}

func hashAdd(a, b, num float32) (aNew, bNew float32) {
	const prime = 31.0
	a += num
	b *= (prime + num)
	a = hashfint(a)
	b = hashfint(b)
	return a, b
}

func hashfint(f float32) float32 {
	return float32(int(f*1000000)%1000000) / 1000000 // Keep within [0.0, 1.0)
}
