package math3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// QuatFromAxisAngle builds a rotation of angle radians around axis.
// A degenerate axis yields the identity quaternion.
func QuatFromAxisAngle(axis mgl64.Vec3, angle float64) mgl64.Quat {
	l := axis.Len()
	if l < Epsilon {
		return mgl64.QuatIdent()
	}
	half := angle * 0.5
	s := math.Sin(half)
	return mgl64.Quat{
		W: math.Cos(half),
		V: axis.Mul(s / l),
	}
}

// QuatAxisAngle extracts the rotation axis and angle from q.
// The identity rotation reports the X axis with angle 0.
func QuatAxisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	q = q.Normalize()
	w := math.Max(-1.0, math.Min(1.0, q.W))
	angle := 2.0 * math.Acos(w)

	s := math.Sqrt(1.0 - w*w)
	if s < Epsilon {
		return mgl64.Vec3{1, 0, 0}, 0
	}
	return q.V.Mul(1.0 / s), angle
}

// QuatFromEulerXYZ builds a quaternion from intrinsic X, then Y, then Z
// rotations, in radians.
func QuatFromEulerXYZ(x, y, z float64) mgl64.Quat {
	qx := QuatFromAxisAngle(mgl64.Vec3{1, 0, 0}, x)
	qy := QuatFromAxisAngle(mgl64.Vec3{0, 1, 0}, y)
	qz := QuatFromAxisAngle(mgl64.Vec3{0, 0, 1}, z)
	return qz.Mul(qy).Mul(qx).Normalize()
}

// QuatEulerXYZ extracts XYZ-order Euler angles from q. At the gimbal-lock
// poles (|sin(y)| == 1) the Z angle is folded into X.
func QuatEulerXYZ(q mgl64.Quat) (x, y, z float64) {
	q = q.Normalize()
	m := q.Mat4().Mat3()

	// Rotation matrix for Rz*Ry*Rx has m[0,2]... read via column-major At(row, col).
	sy := -m.At(2, 0)
	sy = math.Max(-1.0, math.Min(1.0, sy))
	y = math.Asin(sy)

	if math.Abs(sy) < 1.0-1e-9 {
		x = math.Atan2(m.At(2, 1), m.At(2, 2))
		z = math.Atan2(m.At(1, 0), m.At(0, 0))
	} else {
		x = math.Atan2(-m.At(1, 2), m.At(1, 1))
		z = 0
	}
	return x, y, z
}

// RotateVec rotates v by q using the sandwich product q * (v,0) * conj(q).
func RotateVec(q mgl64.Quat, v mgl64.Vec3) mgl64.Vec3 {
	p := mgl64.Quat{W: 0, V: v}
	r := q.Mul(p).Mul(q.Conjugate())
	return r.V
}

// QuatSlerp spherically interpolates from q1 to q2 by t, taking the shortest
// arc. Nearly parallel quaternions use a normalized linear fast path.
func QuatSlerp(q1, q2 mgl64.Quat, t float64) mgl64.Quat {
	q1 = q1.Normalize()
	q2 = q2.Normalize()

	dot := q1.Dot(q2)
	if dot < 0 {
		q2 = q2.Scale(-1)
		dot = -dot
	}

	const parallelThreshold = 0.9995
	if dot > parallelThreshold {
		return q1.Add(q2.Sub(q1).Scale(t)).Normalize()
	}

	theta := math.Acos(math.Min(1.0, dot))
	sinTheta := math.Sin(theta)
	w1 := math.Sin((1.0-t)*theta) / sinTheta
	w2 := math.Sin(t*theta) / sinTheta

	return q1.Scale(w1).Add(q2.Scale(w2)).Normalize()
}

// QuatToMat3 converts q to its 3x3 rotation matrix.
func QuatToMat3(q mgl64.Quat) mgl64.Mat3 {
	return q.Normalize().Mat4().Mat3()
}

// Mat3ToQuat converts a pure rotation matrix to a unit quaternion using the
// Shepperd branch selection on the largest diagonal term.
func Mat3ToQuat(m mgl64.Mat3) mgl64.Quat {
	trace := m.At(0, 0) + m.At(1, 1) + m.At(2, 2)

	var q mgl64.Quat
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1.0) * 2.0
		q.W = 0.25 * s
		q.V = mgl64.Vec3{
			(m.At(2, 1) - m.At(1, 2)) / s,
			(m.At(0, 2) - m.At(2, 0)) / s,
			(m.At(1, 0) - m.At(0, 1)) / s,
		}
	case m.At(0, 0) > m.At(1, 1) && m.At(0, 0) > m.At(2, 2):
		s := math.Sqrt(1.0+m.At(0, 0)-m.At(1, 1)-m.At(2, 2)) * 2.0
		q.W = (m.At(2, 1) - m.At(1, 2)) / s
		q.V = mgl64.Vec3{
			0.25 * s,
			(m.At(0, 1) + m.At(1, 0)) / s,
			(m.At(0, 2) + m.At(2, 0)) / s,
		}
	case m.At(1, 1) > m.At(2, 2):
		s := math.Sqrt(1.0+m.At(1, 1)-m.At(0, 0)-m.At(2, 2)) * 2.0
		q.W = (m.At(0, 2) - m.At(2, 0)) / s
		q.V = mgl64.Vec3{
			(m.At(0, 1) + m.At(1, 0)) / s,
			0.25 * s,
			(m.At(1, 2) + m.At(2, 1)) / s,
		}
	default:
		s := math.Sqrt(1.0+m.At(2, 2)-m.At(0, 0)-m.At(1, 1)) * 2.0
		q.W = (m.At(1, 0) - m.At(0, 1)) / s
		q.V = mgl64.Vec3{
			(m.At(0, 2) + m.At(2, 0)) / s,
			(m.At(1, 2) + m.At(2, 1)) / s,
			0.25 * s,
		}
	}

	return q.Normalize()
}

// IntegrateOrientation advances orientation q by angular velocity omega over
// dt using the first-order spin update q' = q + 0.5*dt*(omega,0)*q, then
// renormalizes.
func IntegrateOrientation(q mgl64.Quat, omega mgl64.Vec3, dt float64) mgl64.Quat {
	spin := mgl64.Quat{W: 0, V: omega}
	qDot := spin.Mul(q).Scale(0.5)
	return q.Add(qDot.Scale(dt)).Normalize()
}
