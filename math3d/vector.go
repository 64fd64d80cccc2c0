// Package math3d provides the pure vector/quaternion/matrix operations the
// solver relies on, built on mgl64 value types. All functions return new
// values and never mutate their operands. Operation order is fixed so two
// runs over the same inputs produce the same floats.
package math3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the default tolerance for approximate comparisons.
const Epsilon = 1e-9

// SafeNormalize returns the unit vector of v, or the zero vector when v is
// too short to normalize meaningfully.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < Epsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1.0 / l)
}

// Reflect mirrors v across the plane with unit normal n.
func Reflect(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(2.0 * v.Dot(n)))
}

// Project returns the projection of v onto the direction of onto.
// A near-zero onto yields the zero vector.
func Project(v, onto mgl64.Vec3) mgl64.Vec3 {
	d := onto.Dot(onto)
	if d < Epsilon {
		return mgl64.Vec3{}
	}
	return onto.Mul(v.Dot(onto) / d)
}

// Angle returns the angle between a and b in radians, in [0, π].
// Degenerate inputs yield 0.
func Angle(a, b mgl64.Vec3) float64 {
	la := a.Len()
	lb := b.Len()
	if la < Epsilon || lb < Epsilon {
		return 0
	}
	cos := a.Dot(b) / (la * lb)
	cos = math.Max(-1.0, math.Min(1.0, cos))
	return math.Acos(cos)
}

// ClampLength limits v to at most maxLen while keeping its direction.
func ClampLength(v mgl64.Vec3, maxLen float64) mgl64.Vec3 {
	l := v.Len()
	if l <= maxLen || l < Epsilon {
		return v
	}
	return v.Mul(maxLen / l)
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// SlerpVec spherically interpolates between a and b by t, preserving the
// interpolated magnitude. Nearly parallel or degenerate inputs fall back to
// linear interpolation.
func SlerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	la := a.Len()
	lb := b.Len()
	if la < Epsilon || lb < Epsilon {
		return Lerp(a, b, t)
	}

	cos := a.Dot(b) / (la * lb)
	cos = math.Max(-1.0, math.Min(1.0, cos))
	theta := math.Acos(cos)
	if theta < 1e-6 || math.Pi-theta < 1e-6 {
		return Lerp(a, b, t)
	}

	sinTheta := math.Sin(theta)
	wa := math.Sin((1.0-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta

	dir := a.Normalize().Mul(wa).Add(b.Normalize().Mul(wb))
	length := la + (lb-la)*t
	return dir.Mul(length)
}

// MinElem returns the componentwise minimum of a and b.
func MinElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Min(a.X(), b.X()),
		math.Min(a.Y(), b.Y()),
		math.Min(a.Z(), b.Z()),
	}
}

// MaxElem returns the componentwise maximum of a and b.
func MaxElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Max(a.X(), b.X()),
		math.Max(a.Y(), b.Y()),
		math.Max(a.Z(), b.Z()),
	}
}

// Equal reports whether a and b match within eps on every component.
func Equal(a, b mgl64.Vec3, eps float64) bool {
	return math.Abs(a.X()-b.X()) <= eps &&
		math.Abs(a.Y()-b.Y()) <= eps &&
		math.Abs(a.Z()-b.Z()) <= eps
}

// TangentBasis returns two unit vectors orthogonal to normal and to each
// other. The normal is assumed to be unit length.
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	tangent1 := mgl64.Vec3{1, 0, 0}
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}
