package constraint

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/math3d"
)

// SpringJoint is the one soft constraint: instead of solving an impulse
// equation it applies a damped Hooke force,
// F = stiffness·(length − restLength) + damping·axialRelativeVelocity,
// converted to a velocity change with the step's real dt. It participates in
// the solver loop but acts exactly once per step and has no position pass.
type SpringJoint struct {
	jointBase

	restLength float64
	stiffness  float64
	damping    float64

	applied bool
	pA, pB  mgl64.Vec3
	axis    mgl64.Vec3
	length  float64
}

func (j *SpringJoint) Prepare(dt float64, lookup BodyLookup) bool {
	if !j.prepareBodies(dt, lookup) {
		return false
	}
	j.applied = false
	j.pA = j.anchorA()
	j.pB = j.anchorB()

	delta := j.pB.Sub(j.pA)
	j.length = delta.Len()
	if j.length < math3d.Epsilon {
		return false
	}
	j.axis = delta.Mul(1.0 / j.length)
	return true
}

func (j *SpringJoint) SolveVelocity() {
	// The force is applied once per step, not once per iteration; repeated
	// application would scale the spring constant by the iteration count.
	if j.applied {
		return
	}
	j.applied = true

	axialVelocity := j.relativeAnchorVelocity(j.pA, j.pB).Dot(j.axis)
	force := j.stiffness*(j.length-j.restLength) + j.damping*axialVelocity

	// Positive force (stretched) pulls the anchors together: body B moves
	// against the axis, body A along it.
	impulse := j.axis.Mul(-force * j.dt)
	j.applyImpulseAtAnchors(impulse, j.pA, j.pB)
}

func (j *SpringJoint) SolvePosition() {}

func (j *SpringJoint) State() State { return j.state() }

var _ Joint = (*SpringJoint)(nil)
