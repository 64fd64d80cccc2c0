package constraint

import (
	"github.com/go-gl/mathgl/mgl64"
)

// BallJoint pins the two local anchors together while leaving all three
// rotational degrees of freedom free (a ball-and-socket).
type BallJoint struct {
	jointBase

	pA, pB        mgl64.Vec3
	effectiveMass mgl64.Mat3
	positionError mgl64.Vec3
}

func (j *BallJoint) Prepare(dt float64, lookup BodyLookup) bool {
	if !j.prepareBodies(dt, lookup) {
		return false
	}
	j.pA = j.anchorA()
	j.pB = j.anchorB()
	j.effectiveMass = j.pointEffectiveMass(j.pA, j.pB)
	j.positionError = j.pB.Sub(j.pA)
	return true
}

func (j *BallJoint) SolveVelocity() {
	vRel := j.relativeAnchorVelocity(j.pA, j.pB)
	bias := j.positionError.Mul(jointBaumgarte / j.dt)

	impulse := j.effectiveMass.Mul3x1(vRel.Add(bias).Mul(-1))
	j.applyImpulseAtAnchors(impulse, j.pA, j.pB)
}

func (j *BallJoint) SolvePosition() {
	pA := j.anchorA()
	pB := j.anchorB()
	j.correctPositions(pB.Sub(pA).Mul(-jointBaumgarte))
}

func (j *BallJoint) State() State { return j.state() }
