// Package vmath holds the scalar and vector helpers shared by the shading
// models. Semantics follow the usual shading-language builtins so that
// formulas read the same here as they would in a fragment program.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Saturate clamps x to [0, 1].
func Saturate(x float64) float64 {
	return Clamp(x, 0, 1)
}

// Mix linearly interpolates between a and b. t is not clamped.
func Mix(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep is the cubic Hermite ramp 3t²−2t³ between edge0 and edge1.
// Reversed edges (edge0 > edge1) produce a falling ramp.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Fract returns the fractional part x − floor(x), always in [0, 1).
func Fract(x float64) float64 {
	return x - math.Floor(x)
}

// Quintic is the smootherstep ease x³(x(6x−15)+10). Zero first and second
// derivative at both ends.
func Quintic(x float64) float64 {
	return x * x * x * (x*(x*6-15) + 10)
}

// FloorV applies math.Floor per component.
func FloorV(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Floor(v[0]), math.Floor(v[1]), math.Floor(v[2])}
}

// FractV applies Fract per component.
func FractV(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{Fract(v[0]), Fract(v[1]), Fract(v[2])}
}

// MulV multiplies two vectors component-wise.
func MulV(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// DivV divides a by b component-wise.
func DivV(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] / b[0], a[1] / b[1], a[2] / b[2]}
}

// MixV linearly interpolates two vectors.
func MixV(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{Mix(a[0], b[0], t), Mix(a[1], b[1], t), Mix(a[2], b[2], t)}
}

// MinV and MaxV are the per-component minimum and maximum.
func MinV(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

func MaxV(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}

// Splat returns a vector with all three components set to s.
func Splat(s float64) mgl64.Vec3 {
	return mgl64.Vec3{s, s, s}
}

// RotateY rotates v about the Y axis by angle radians.
func RotateY(v mgl64.Vec3, angle float64) mgl64.Vec3 {
	s, c := math.Sincos(angle)
	return mgl64.Vec3{c*v[0] + s*v[2], v[1], -s*v[0] + c*v[2]}
}

// RotateX rotates v about the X axis by angle radians.
func RotateX(v mgl64.Vec3, angle float64) mgl64.Vec3 {
	s, c := math.Sincos(angle)
	return mgl64.Vec3{v[0], c*v[1] - s*v[2], s*v[1] + c*v[2]}
}

// Finite reports whether every component of v is a finite number.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
