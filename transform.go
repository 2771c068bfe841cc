package fleshring

import "github.com/soypat/glgl/math/ms3"

// Transform is an affine map from one space to another: a linear part
// followed by a translation. It is the transform currency between the
// selectors, the field generator and the spatial hash, which all need the
// linear part and translation separately.
type Transform struct {
	Linear      ms3.Mat3
	Translation ms3.Vec
}

// IdentityTransform returns the do-nothing transform.
func IdentityTransform() Transform {
	return Transform{Linear: ms3.IdentityMat3()}
}

// Apply maps the point p through the transform.
func (t Transform) Apply(p ms3.Vec) ms3.Vec {
	return ms3.Add(ms3.MulMatVec(t.Linear, p), t.Translation)
}

// ApplyDir maps the direction d through the linear part only.
func (t Transform) ApplyDir(d ms3.Vec) ms3.Vec {
	return ms3.MulMatVec(t.Linear, d)
}

// Inverse returns the true affine inverse. Inverting the linear part as a
// whole keeps the result correct under composed rotation and non-uniform
// scale, where inverting rotation and scale separately would not be. The
// linear part must be non-singular.
func (t Transform) Inverse() Transform {
	inv := t.Linear.Inverse()
	return Transform{
		Linear:      inv,
		Translation: ms3.Scale(-1, ms3.MulMatVec(inv, t.Translation)),
	}
}

// OrthoBasis completes a unit axis into a right-handed orthonormal frame
// (u, v, axis), choosing the seed cardinal least aligned with the axis.
func OrthoBasis(axis ms3.Vec) (u, v ms3.Vec) {
	seed := ms3.Vec{X: 1}
	if absf(axis.X) > absf(axis.Y) {
		seed = ms3.Vec{Y: 1}
	}
	u = ms3.Unit(ms3.Cross(axis, seed))
	v = ms3.Cross(axis, u)
	return u, v
}

// Frame returns the local-to-world transform of the ring: the local origin
// at the ring center with +Y along the ring axis and X/Z spanning the ring
// plane.
func (r Ring) Frame() Transform {
	u, v := OrthoBasis(r.Axis)
	return Transform{
		Linear:      BasisMat3(u, r.Axis, v),
		Translation: r.Center,
	}
}
