package constraint

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/math3d"
)

// DistanceJoint keeps the two anchors at a fixed separation, like a rigid
// rod. The constraint works along the single anchor-to-anchor axis.
type DistanceJoint struct {
	jointBase

	restLength float64

	pA, pB        mgl64.Vec3
	axis          mgl64.Vec3
	mass          float64
	positionError float64
}

func (j *DistanceJoint) Prepare(dt float64, lookup BodyLookup) bool {
	if !j.prepareBodies(dt, lookup) {
		return false
	}
	j.pA = j.anchorA()
	j.pB = j.anchorB()

	delta := j.pB.Sub(j.pA)
	length := delta.Len()
	if length < math3d.Epsilon {
		// Coincident anchors leave the axis undefined; skip this step.
		return false
	}
	j.axis = delta.Mul(1.0 / length)
	j.positionError = length - j.restLength
	j.mass = j.scalarMassAlong(j.pA, j.pB, j.axis)
	return true
}

func (j *DistanceJoint) SolveVelocity() {
	vRel := j.relativeAnchorVelocity(j.pA, j.pB).Dot(j.axis)
	bias := jointBaumgarte / j.dt * j.positionError

	lambda := -j.mass * (vRel + bias)
	j.applyImpulseAtAnchors(j.axis.Mul(lambda), j.pA, j.pB)
}

func (j *DistanceJoint) SolvePosition() {
	pA := j.anchorA()
	pB := j.anchorB()

	delta := pB.Sub(pA)
	length := delta.Len()
	if length < math3d.Epsilon {
		return
	}
	axis := delta.Mul(1.0 / length)
	err := length - j.restLength
	j.correctPositions(axis.Mul(-err * jointBaumgarte))
}

func (j *DistanceJoint) State() State { return j.state() }

var _ Joint = (*DistanceJoint)(nil)
var _ Joint = (*BallJoint)(nil)
var _ Joint = (*FixedJoint)(nil)
