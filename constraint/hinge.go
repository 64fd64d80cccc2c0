package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/math3d"
)

// HingeJoint pins the anchors together and constrains rotation to a single
// shared axis, with an optional angle limit and an optional angular-velocity
// motor. The hinge angle is measured from the relative pose at first
// prepare.
type HingeJoint struct {
	jointBase

	// localAxisA is the hinge axis in body A's frame; the B-side axis and the
	// angle reference vectors are captured on the first prepare.
	localAxisA mgl64.Vec3
	localAxisB mgl64.Vec3
	localRefA  mgl64.Vec3
	localRefB  mgl64.Vec3

	enableLimit bool
	lowerLimit  float64
	upperLimit  float64

	enableMotor    bool
	motorSpeed     float64
	maxMotorTorque float64

	initialized bool

	pA, pB        mgl64.Vec3
	pointMass     mgl64.Mat3
	angularMass   mgl64.Mat3
	axialMass     float64
	positionError mgl64.Vec3
	axisError     mgl64.Vec3
	worldAxis     mgl64.Vec3
	angle         float64

	motorImpulse float64
	limitImpulse float64
}

func (j *HingeJoint) Prepare(dt float64, lookup BodyLookup) bool {
	if !j.prepareBodies(dt, lookup) {
		return false
	}
	if !j.initialized {
		worldAxis := j.a.Transform.Rotation.Rotate(j.localAxisA)
		j.localAxisB = j.rotationB().Conjugate().Rotate(worldAxis)

		j.localRefA, _ = math3d.TangentBasis(j.localAxisA)
		worldRef := j.a.Transform.Rotation.Rotate(j.localRefA)
		j.localRefB = j.rotationB().Conjugate().Rotate(worldRef)
		j.initialized = true
	}

	j.pA = j.anchorA()
	j.pB = j.anchorB()
	j.pointMass = j.pointEffectiveMass(j.pA, j.pB)
	j.angularMass = j.angularEffectiveMass()
	j.positionError = j.pB.Sub(j.pA)

	axisA := j.a.Transform.Rotation.Rotate(j.localAxisA)
	axisB := j.rotationB().Rotate(j.localAxisB)
	j.worldAxis = axisA
	j.axisError = axisA.Cross(axisB)
	j.axialMass = j.axialAngularMass(axisA)
	j.angle = j.currentAngle(axisA)

	j.motorImpulse = 0
	j.limitImpulse = 0
	return true
}

// currentAngle is the signed rotation of B's reference vector relative to
// A's, measured around the hinge axis.
func (j *HingeJoint) currentAngle(axis mgl64.Vec3) float64 {
	refA := j.a.Transform.Rotation.Rotate(j.localRefA)
	refB := j.rotationB().Rotate(j.localRefB)

	// Project both references into the hinge plane.
	refA = refA.Sub(axis.Mul(refA.Dot(axis)))
	refB = refB.Sub(axis.Mul(refB.Dot(axis)))
	if refA.LenSqr() < math3d.Epsilon || refB.LenSqr() < math3d.Epsilon {
		return 0
	}
	return math.Atan2(axis.Dot(refA.Cross(refB)), refA.Dot(refB))
}

func (j *HingeJoint) SolveVelocity() {
	// Point constraint.
	vRel := j.relativeAnchorVelocity(j.pA, j.pB)
	bias := j.positionError.Mul(jointBaumgarte / j.dt)
	impulse := j.pointMass.Mul3x1(vRel.Add(bias).Mul(-1))
	j.applyImpulseAtAnchors(impulse, j.pA, j.pB)

	// Axis alignment: kill the angular velocity perpendicular to the hinge
	// axis; rotation about the axis itself stays free.
	wRel := j.angularVelocityB().Sub(j.a.AngularVelocity)
	wPerp := wRel.Sub(j.worldAxis.Mul(wRel.Dot(j.worldAxis)))
	angularBias := j.axisError.Mul(jointBaumgarte / j.dt)
	angularImpulse := j.angularMass.Mul3x1(wPerp.Add(angularBias).Mul(-1))
	angularImpulse = angularImpulse.Sub(j.worldAxis.Mul(angularImpulse.Dot(j.worldAxis)))
	j.applyAngularImpulse(angularImpulse)

	axialVelocity := wRel.Dot(j.worldAxis)

	if j.enableMotor {
		lambda := -j.axialMass * (axialVelocity - j.motorSpeed)
		maxImpulse := j.maxMotorTorque * j.dt
		old := j.motorImpulse
		j.motorImpulse = clampAbs(old+lambda, maxImpulse)
		j.applyAngularImpulse(j.worldAxis.Mul(j.motorImpulse - old))
		axialVelocity = j.angularVelocityB().Sub(j.a.AngularVelocity).Dot(j.worldAxis)
	}

	if j.enableLimit {
		j.solveLimit(axialVelocity)
	}
}

// solveLimit applies a one-sided impulse once the hinge angle reaches a
// configured bound.
func (j *HingeJoint) solveLimit(axialVelocity float64) {
	if j.angle <= j.lowerLimit {
		c := j.angle - j.lowerLimit
		lambda := -j.axialMass * (axialVelocity + jointBaumgarte/j.dt*c)
		old := j.limitImpulse
		j.limitImpulse = math.Max(0, old+lambda)
		j.applyAngularImpulse(j.worldAxis.Mul(j.limitImpulse - old))
	} else if j.angle >= j.upperLimit {
		c := j.angle - j.upperLimit
		lambda := -j.axialMass * (axialVelocity + jointBaumgarte/j.dt*c)
		old := j.limitImpulse
		j.limitImpulse = math.Min(0, old+lambda)
		j.applyAngularImpulse(j.worldAxis.Mul(j.limitImpulse - old))
	}
}

func (j *HingeJoint) SolvePosition() {
	pA := j.anchorA()
	pB := j.anchorB()
	j.correctPositions(pB.Sub(pA).Mul(-jointBaumgarte))
}

func (j *HingeJoint) State() State { return j.state() }

// Angle returns the hinge angle measured at the last prepare.
func (j *HingeJoint) Angle() float64 { return j.angle }

var _ Joint = (*HingeJoint)(nil)
