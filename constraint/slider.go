package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/math3d"
)

// SliderJoint allows translation along a single axis fixed in body A's frame
// and locks everything else: perpendicular translation and all relative
// rotation. Supports an optional translation limit and a linear-velocity
// motor along the axis.
type SliderJoint struct {
	jointBase

	localAxisA mgl64.Vec3

	enableLimit bool
	lowerLimit  float64
	upperLimit  float64

	enableMotor   bool
	motorSpeed    float64
	maxMotorForce float64

	// restRotation locks the relative orientation, captured on first prepare.
	restRotation mgl64.Quat
	initialized  bool

	pA, pB           mgl64.Vec3
	worldAxis        mgl64.Vec3
	perp             [2]mgl64.Vec3
	perpMass         [2]float64
	perpError        [2]float64
	angularMass      mgl64.Mat3
	axialMass        float64
	orientationError mgl64.Vec3
	translation      float64

	motorImpulse float64
	limitImpulse float64
}

func (j *SliderJoint) Prepare(dt float64, lookup BodyLookup) bool {
	if !j.prepareBodies(dt, lookup) {
		return false
	}
	if !j.initialized {
		j.restRotation = j.a.Transform.Rotation.Inverse().Mul(j.rotationB()).Normalize()
		j.initialized = true
	}

	j.pA = j.anchorA()
	j.pB = j.anchorB()

	j.worldAxis = j.a.Transform.Rotation.Rotate(j.localAxisA)
	j.perp[0], j.perp[1] = math3d.TangentBasis(j.worldAxis)

	d := j.pB.Sub(j.pA)
	j.translation = d.Dot(j.worldAxis)
	for i := 0; i < 2; i++ {
		j.perpError[i] = d.Dot(j.perp[i])
		j.perpMass[i] = j.scalarMassAlong(j.pA, j.pB, j.perp[i])
	}

	j.angularMass = j.angularEffectiveMass()
	j.axialMass = j.scalarMassAlong(j.pA, j.pB, j.worldAxis)
	j.orientationError = orientationError(j.a.Transform.Rotation, j.rotationB(), j.restRotation)

	j.motorImpulse = 0
	j.limitImpulse = 0
	return true
}

func (j *SliderJoint) SolveVelocity() {
	// Perpendicular translation lock, one scalar constraint per tangent.
	for i := 0; i < 2; i++ {
		vRel := j.relativeAnchorVelocity(j.pA, j.pB).Dot(j.perp[i])
		bias := jointBaumgarte / j.dt * j.perpError[i]
		lambda := -j.perpMass[i] * (vRel + bias)
		j.applyImpulseAtAnchors(j.perp[i].Mul(lambda), j.pA, j.pB)
	}

	// Orientation lock.
	wRel := j.angularVelocityB().Sub(j.a.AngularVelocity)
	angularBias := j.orientationError.Mul(jointBaumgarte / j.dt)
	angularImpulse := j.angularMass.Mul3x1(wRel.Add(angularBias).Mul(-1))
	j.applyAngularImpulse(angularImpulse)

	axialVelocity := j.relativeAnchorVelocity(j.pA, j.pB).Dot(j.worldAxis)

	if j.enableMotor {
		lambda := -j.axialMass * (axialVelocity - j.motorSpeed)
		maxImpulse := j.maxMotorForce * j.dt
		old := j.motorImpulse
		j.motorImpulse = clampAbs(old+lambda, maxImpulse)
		j.applyImpulseAtAnchors(j.worldAxis.Mul(j.motorImpulse-old), j.pA, j.pB)
		axialVelocity = j.relativeAnchorVelocity(j.pA, j.pB).Dot(j.worldAxis)
	}

	if j.enableLimit {
		j.solveLimit(axialVelocity)
	}
}

// solveLimit engages one-sided once the translation reaches a bound.
func (j *SliderJoint) solveLimit(axialVelocity float64) {
	if j.translation <= j.lowerLimit {
		c := j.translation - j.lowerLimit
		lambda := -j.axialMass * (axialVelocity + jointBaumgarte/j.dt*c)
		old := j.limitImpulse
		j.limitImpulse = math.Max(0, old+lambda)
		j.applyImpulseAtAnchors(j.worldAxis.Mul(j.limitImpulse-old), j.pA, j.pB)
	} else if j.translation >= j.upperLimit {
		c := j.translation - j.upperLimit
		lambda := -j.axialMass * (axialVelocity + jointBaumgarte/j.dt*c)
		old := j.limitImpulse
		j.limitImpulse = math.Min(0, old+lambda)
		j.applyImpulseAtAnchors(j.worldAxis.Mul(j.limitImpulse-old), j.pA, j.pB)
	}
}

func (j *SliderJoint) SolvePosition() {
	pA := j.anchorA()
	pB := j.anchorB()
	d := pB.Sub(pA)

	axis := j.a.Transform.Rotation.Rotate(j.localAxisA)
	perpendicular := d.Sub(axis.Mul(d.Dot(axis)))
	j.correctPositions(perpendicular.Mul(-jointBaumgarte))
}

func (j *SliderJoint) State() State { return j.state() }

// Translation returns the slide distance measured at the last prepare.
func (j *SliderJoint) Translation() float64 { return j.translation }

var _ Joint = (*SliderJoint)(nil)
