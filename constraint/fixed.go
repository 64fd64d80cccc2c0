package constraint

import (
	"github.com/go-gl/mathgl/mgl64"
)

// FixedJoint welds the two bodies together: anchors pinned and relative
// orientation locked to what it was when the joint first prepared.
type FixedJoint struct {
	jointBase

	// restRotation is body B's orientation expressed in A's frame, captured
	// on the first prepare.
	restRotation mgl64.Quat
	initialized  bool

	pA, pB           mgl64.Vec3
	pointMass        mgl64.Mat3
	angularMass      mgl64.Mat3
	positionError    mgl64.Vec3
	orientationError mgl64.Vec3
}

func (j *FixedJoint) Prepare(dt float64, lookup BodyLookup) bool {
	if !j.prepareBodies(dt, lookup) {
		return false
	}
	if !j.initialized {
		j.restRotation = j.a.Transform.Rotation.Inverse().Mul(j.rotationB()).Normalize()
		j.initialized = true
	}

	j.pA = j.anchorA()
	j.pB = j.anchorB()
	j.pointMass = j.pointEffectiveMass(j.pA, j.pB)
	j.angularMass = j.angularEffectiveMass()
	j.positionError = j.pB.Sub(j.pA)
	j.orientationError = orientationError(j.a.Transform.Rotation, j.rotationB(), j.restRotation)
	return true
}

func (j *FixedJoint) SolveVelocity() {
	// Point constraint.
	vRel := j.relativeAnchorVelocity(j.pA, j.pB)
	bias := j.positionError.Mul(jointBaumgarte / j.dt)
	impulse := j.pointMass.Mul3x1(vRel.Add(bias).Mul(-1))
	j.applyImpulseAtAnchors(impulse, j.pA, j.pB)

	// Orientation lock.
	wRel := j.angularVelocityB().Sub(j.a.AngularVelocity)
	angularBias := j.orientationError.Mul(jointBaumgarte / j.dt)
	angularImpulse := j.angularMass.Mul3x1(wRel.Add(angularBias).Mul(-1))
	j.applyAngularImpulse(angularImpulse)
}

func (j *FixedJoint) SolvePosition() {
	pA := j.anchorA()
	pB := j.anchorB()
	j.correctPositions(pB.Sub(pA).Mul(-jointBaumgarte))
}

func (j *FixedJoint) State() State { return j.state() }

// orientationError measures how far body B's orientation has drifted from
// the locked pose qA·rest, as a small rotation vector (2·vector part of the
// error quaternion, sign-folded to the short way around).
func orientationError(qA, qB, rest mgl64.Quat) mgl64.Vec3 {
	target := qA.Mul(rest)
	err := qB.Mul(target.Inverse())
	if err.W < 0 {
		err = mgl64.Quat{W: -err.W, V: err.V.Mul(-1)}
	}
	return err.V.Mul(2)
}
