package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the length below which a vector is treated as degenerate.
const Epsilon = 1e-9

func Vec(x, y float64) r2.Vec { return r2.Vec{X: x, Y: y} }

func Distance(a, b r2.Vec) float64 { return r2.Norm(r2.Sub(b, a)) }

// SafeUnit returns the unit vector of v, or false when v is too short to
// normalise.
func SafeUnit(v r2.Vec) (r2.Vec, bool) {
	n := r2.Norm(v)
	if n < Epsilon || math.IsNaN(n) || math.IsInf(n, 0) {
		return r2.Vec{}, false
	}
	return r2.Scale(1/n, v), true
}

func RotateDegrees(v r2.Vec, deg float64) r2.Vec {
	return r2.Rotate(v, deg*math.Pi/180, r2.Vec{})
}

// AngleBetweenDegrees returns the unsigned included angle in [0, 180].
// Degenerate inputs yield 0.
func AngleBetweenDegrees(a, b r2.Vec) float64 {
	ua, ok := SafeUnit(a)
	if !ok {
		return 0
	}
	ub, ok := SafeUnit(b)
	if !ok {
		return 0
	}
	c := r2.Dot(ua, ub)
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c) * 180 / math.Pi
}

func IsFinite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
