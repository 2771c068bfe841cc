package fleshring

import "fmt"

// Curve selects the falloff profile mapping normalized distance to influence.
type Curve uint8

const (
	CurveLinear Curve = iota
	CurveQuadratic
	CurveHermite
	CurveWendlandC2
	CurveSmootherstep
)

// Falloff evaluates curve c at a normalized distance. It is the single
// implementation of the falloff formulas; selection, deformation and any
// visualization must all call it. Distances outside [0,1] are clamped so
// Falloff(c, 0) == 1 and Falloff(c, 1) == 0 for every curve.
func Falloff(c Curve, normalizedDistance float32) float32 {
	q := clampf(normalizedDistance, 0, 1)
	t := 1 - q
	switch c {
	case CurveLinear:
		return t
	case CurveQuadratic:
		return t * t
	case CurveHermite:
		return t * t * (3 - 2*t)
	case CurveWendlandC2:
		t2 := t * t
		return t2 * t2 * (4*q + 1)
	case CurveSmootherstep:
		return t * t * t * (t*(6*t-15) + 10)
	}
	return 0
}

func (c Curve) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveQuadratic:
		return "quadratic"
	case CurveHermite:
		return "hermite"
	case CurveWendlandC2:
		return "wendland"
	case CurveSmootherstep:
		return "smootherstep"
	}
	return "unknown"
}

// ParseCurve maps a configuration name to its curve.
func ParseCurve(name string) (Curve, error) {
	for c := CurveLinear; c <= CurveSmootherstep; c++ {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown falloff curve %q", name)
}
