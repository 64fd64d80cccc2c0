package math3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// singularThreshold is the determinant magnitude below which a matrix is
// treated as non-invertible.
const singularThreshold = 1e-10

// InvertChecked computes the inverse of m via the adjugate. When |det| falls
// below the singular threshold it reports false and returns the identity, so
// callers can substitute it without branching.
func InvertChecked(m mgl64.Mat3) (mgl64.Mat3, bool) {
	det := m.Det()
	if math.Abs(det) < singularThreshold {
		return mgl64.Ident3(), false
	}

	invDet := 1.0 / det

	// Adjugate (transpose of the cofactor matrix), scaled by 1/det.
	adj := mgl64.Mat3FromRows(
		mgl64.Vec3{
			m.At(1, 1)*m.At(2, 2) - m.At(1, 2)*m.At(2, 1),
			m.At(0, 2)*m.At(2, 1) - m.At(0, 1)*m.At(2, 2),
			m.At(0, 1)*m.At(1, 2) - m.At(0, 2)*m.At(1, 1),
		},
		mgl64.Vec3{
			m.At(1, 2)*m.At(2, 0) - m.At(1, 0)*m.At(2, 2),
			m.At(0, 0)*m.At(2, 2) - m.At(0, 2)*m.At(2, 0),
			m.At(0, 2)*m.At(1, 0) - m.At(0, 0)*m.At(1, 2),
		},
		mgl64.Vec3{
			m.At(1, 0)*m.At(2, 1) - m.At(1, 1)*m.At(2, 0),
			m.At(0, 1)*m.At(2, 0) - m.At(0, 0)*m.At(2, 1),
			m.At(0, 0)*m.At(1, 1) - m.At(0, 1)*m.At(1, 0),
		},
	)

	return adj.Mul(invDet), true
}

// Skew builds the skew-symmetric cross-product matrix of v, so that
// Skew(v).Mul3x1(x) == v × x.
func Skew(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{0, -v.Z(), v.Y()},
		mgl64.Vec3{v.Z(), 0, -v.X()},
		mgl64.Vec3{-v.Y(), v.X(), 0},
	)
}

// AxisAngleMat3 builds the rotation matrix for angle radians around axis via
// Rodrigues' formula: R = I + sin(θ)K + (1-cos(θ))K².
// A degenerate axis yields the identity.
func AxisAngleMat3(axis mgl64.Vec3, angle float64) mgl64.Mat3 {
	l := axis.Len()
	if l < Epsilon {
		return mgl64.Ident3()
	}

	k := Skew(axis.Mul(1.0 / l))
	k2 := k.Mul3(k)

	sin := math.Sin(angle)
	cos := math.Cos(angle)

	return mgl64.Ident3().Add(k.Mul(sin)).Add(k2.Mul(1.0 - cos))
}

// Diag builds a diagonal matrix from the given entries.
func Diag(x, y, z float64) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{x, 0, 0},
		mgl64.Vec3{0, y, 0},
		mgl64.Vec3{0, 0, z},
	)
}
