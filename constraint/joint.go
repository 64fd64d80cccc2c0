package constraint

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
	"github.com/akmonengine/bedrock/math3d"
)

// jointBaumgarte is the fraction of position error folded into the velocity
// bias and into each position-correction pass.
const jointBaumgarte = 0.2

// JointID identifies a joint inside a solver.
type JointID uint64

// JointType tags the joint variant.
type JointType int

const (
	JointFixed JointType = iota
	JointHinge
	JointBall
	JointDistance
	JointSpring
	JointSlider
)

func (t JointType) String() string {
	switch t {
	case JointFixed:
		return "fixed"
	case JointHinge:
		return "hinge"
	case JointBall:
		return "ball"
	case JointDistance:
		return "distance"
	case JointSpring:
		return "spring"
	case JointSlider:
		return "slider"
	}
	return "unknown"
}

// State is the externally visible snapshot of one joint after a solve pass.
type State struct {
	ID      JointID
	Type    JointType
	Enabled bool
	Broken  bool

	// ReactionForce and ReactionTorque are the constraint loads accumulated
	// over the step's iterations, expressed as force/torque (impulse over dt).
	ReactionForce  mgl64.Vec3
	ReactionTorque mgl64.Vec3
}

// Joint is one constraint between body A and body B. Body B may be the world
// sentinel, behaving as infinite mass at a fixed world anchor. Broken joints
// are excluded from solving and removed by the owning solver before the next
// prepare phase.
type Joint interface {
	ID() JointID
	Type() JointType
	BodyA() actor.BodyID
	BodyB() actor.BodyID
	Enabled() bool
	Broken() bool
	SetEnabled(enabled bool)

	// ResetReactions clears the per-step reaction accumulators.
	ResetReactions()
	// Prepare resolves the bodies and precomputes anchors, position error,
	// and effective masses. Returns false when a referenced body is missing;
	// the joint is then skipped for the step.
	Prepare(dt float64, lookup BodyLookup) bool
	SolveVelocity()
	SolvePosition()
	// CheckBreak compares the accumulated reaction against the break
	// thresholds and transitions the joint to Broken when exceeded.
	CheckBreak()
	State() State
}

// jointBase carries the bookkeeping shared by every joint variant: body
// references, local anchors, enabled/broken flags, break thresholds, and the
// reaction accumulators. The prepared fields are valid between Prepare and
// the end of the step.
type jointBase struct {
	id        JointID
	jointType JointType

	bodyA actor.BodyID
	bodyB actor.BodyID

	// localAnchorB holds world coordinates when bodyB is the world sentinel.
	localAnchorA mgl64.Vec3
	localAnchorB mgl64.Vec3

	enabled bool
	broken  bool

	// Break thresholds; zero means unbreakable.
	breakForce  float64
	breakTorque float64

	// Accumulated reaction impulses for the current step.
	reactionImpulse        mgl64.Vec3
	reactionAngularImpulse mgl64.Vec3

	// Prepared per step.
	a  *actor.RigidBody
	b  *actor.RigidBody // nil when anchored to the world
	dt float64
}

func (j *jointBase) ID() JointID         { return j.id }
func (j *jointBase) Type() JointType     { return j.jointType }
func (j *jointBase) BodyA() actor.BodyID { return j.bodyA }
func (j *jointBase) BodyB() actor.BodyID { return j.bodyB }
func (j *jointBase) Enabled() bool       { return j.enabled }
func (j *jointBase) Broken() bool        { return j.broken }
func (j *jointBase) SetEnabled(e bool)   { j.enabled = e }

func (j *jointBase) ResetReactions() {
	j.reactionImpulse = mgl64.Vec3{}
	j.reactionAngularImpulse = mgl64.Vec3{}
}

// prepareBodies resolves both bodies. Body B resolves to nil for the world
// sentinel; a missing real body fails the prepare.
func (j *jointBase) prepareBodies(dt float64, lookup BodyLookup) bool {
	j.dt = dt
	j.a = lookup(j.bodyA)
	if j.a == nil {
		return false
	}
	if j.bodyB == actor.WorldBodyID {
		j.b = nil
		return true
	}
	j.b = lookup(j.bodyB)
	return j.b != nil
}

// anchorA returns body A's anchor in world space.
func (j *jointBase) anchorA() mgl64.Vec3 {
	return j.a.PointToWorld(j.localAnchorA)
}

// anchorB returns body B's anchor in world space; for the world sentinel the
// local anchor already is a world position.
func (j *jointBase) anchorB() mgl64.Vec3 {
	if j.b == nil {
		return j.localAnchorB
	}
	return j.b.PointToWorld(j.localAnchorB)
}

func (j *jointBase) invMassB() float64 {
	if j.b == nil {
		return 0
	}
	return j.b.EffectiveInverseMass()
}

func (j *jointBase) invInertiaB() mgl64.Mat3 {
	if j.b == nil {
		return mgl64.Mat3{}
	}
	return j.b.EffectiveInverseInertiaWorld()
}

func (j *jointBase) velocityAtAnchorB(anchor mgl64.Vec3) mgl64.Vec3 {
	if j.b == nil {
		return mgl64.Vec3{}
	}
	return j.b.VelocityAtPoint(anchor)
}

func (j *jointBase) angularVelocityB() mgl64.Vec3 {
	if j.b == nil {
		return mgl64.Vec3{}
	}
	return j.b.AngularVelocity
}

func (j *jointBase) rotationB() mgl64.Quat {
	if j.b == nil {
		return mgl64.QuatIdent()
	}
	return j.b.Transform.Rotation
}

// applyImpulseAtAnchors applies +impulse to body B and -impulse to body A at
// their current world anchors, and accumulates the reaction.
func (j *jointBase) applyImpulseAtAnchors(impulse, pA, pB mgl64.Vec3) {
	rA := pA.Sub(j.a.Transform.Position)
	j.a.Velocity = j.a.Velocity.Sub(impulse.Mul(j.a.EffectiveInverseMass()))
	j.a.AngularVelocity = j.a.AngularVelocity.Sub(
		j.a.EffectiveInverseInertiaWorld().Mul3x1(rA.Cross(impulse)))

	if j.b != nil {
		rB := pB.Sub(j.b.Transform.Position)
		j.b.Velocity = j.b.Velocity.Add(impulse.Mul(j.b.EffectiveInverseMass()))
		j.b.AngularVelocity = j.b.AngularVelocity.Add(
			j.b.EffectiveInverseInertiaWorld().Mul3x1(rB.Cross(impulse)))
	}

	j.reactionImpulse = j.reactionImpulse.Add(impulse)
}

// applyAngularImpulse applies +impulse to body B's and -impulse to body A's
// angular velocity, and accumulates the angular reaction.
func (j *jointBase) applyAngularImpulse(impulse mgl64.Vec3) {
	j.a.AngularVelocity = j.a.AngularVelocity.Sub(
		j.a.EffectiveInverseInertiaWorld().Mul3x1(impulse))
	if j.b != nil {
		j.b.AngularVelocity = j.b.AngularVelocity.Add(
			j.b.EffectiveInverseInertiaWorld().Mul3x1(impulse))
	}
	j.reactionAngularImpulse = j.reactionAngularImpulse.Add(impulse)
}

// correctPositions shifts the bodies apart by the correction vector, split
// proportional to inverse mass. The correction moves body B along +delta.
func (j *jointBase) correctPositions(delta mgl64.Vec3) {
	invA := j.a.EffectiveInverseMass()
	invB := j.invMassB()
	total := invA + invB
	if total <= 0 {
		return
	}
	j.a.Transform.Position = j.a.Transform.Position.Sub(delta.Mul(invA / total))
	if j.b != nil {
		j.b.Transform.Position = j.b.Transform.Position.Add(delta.Mul(invB / total))
	}
}

// CheckBreak transitions the joint to Broken once the accumulated reaction
// exceeds a configured threshold. Breakage is a modeled physical event, not
// an error.
func (j *jointBase) CheckBreak() {
	if j.broken || j.dt <= 0 {
		return
	}
	if j.breakForce > 0 && j.reactionImpulse.Len()/j.dt > j.breakForce {
		j.broken = true
	}
	if j.breakTorque > 0 && j.reactionAngularImpulse.Len()/j.dt > j.breakTorque {
		j.broken = true
	}
}

// pointEffectiveMass builds the 3×3 effective-mass operator for a
// point-to-point constraint at the given world anchors:
// K = (mA⁻¹+mB⁻¹)·I − [rA]ₓ·IA⁻¹·[rA]ₓ − [rB]ₓ·IB⁻¹·[rB]ₓ, inverted.
// Near-singular K falls back to identity.
func (j *jointBase) pointEffectiveMass(pA, pB mgl64.Vec3) mgl64.Mat3 {
	k := mgl64.Ident3().Mul(j.a.EffectiveInverseMass() + j.invMassB())

	rA := pA.Sub(j.a.Transform.Position)
	skewA := math3d.Skew(rA)
	k = k.Sub(skewA.Mul3(j.a.EffectiveInverseInertiaWorld()).Mul3(skewA))

	if j.b != nil {
		rB := pB.Sub(j.b.Transform.Position)
		skewB := math3d.Skew(rB)
		k = k.Sub(skewB.Mul3(j.b.EffectiveInverseInertiaWorld()).Mul3(skewB))
	}

	if inv, ok := math3d.InvertChecked(k); ok {
		return inv
	}
	return mgl64.Ident3()
}

// angularEffectiveMass inverts the summed world inverse inertia of the pair.
func (j *jointBase) angularEffectiveMass() mgl64.Mat3 {
	k := j.a.EffectiveInverseInertiaWorld().Add(j.invInertiaB())
	if inv, ok := math3d.InvertChecked(k); ok {
		return inv
	}
	return mgl64.Ident3()
}

// scalarMassAlong is the single-axis effective mass at the given anchors.
// Returns zero when both bodies are immovable along the axis.
func (j *jointBase) scalarMassAlong(pA, pB, dir mgl64.Vec3) float64 {
	rA := pA.Sub(j.a.Transform.Position)
	rnA := rA.Cross(dir)
	k := j.a.EffectiveInverseMass() +
		j.a.EffectiveInverseInertiaWorld().Mul3x1(rnA).Dot(rnA)

	if j.b != nil {
		rB := pB.Sub(j.b.Transform.Position)
		rnB := rB.Cross(dir)
		k += j.b.EffectiveInverseMass() +
			j.b.EffectiveInverseInertiaWorld().Mul3x1(rnB).Dot(rnB)
	}
	if k <= 0 {
		return 0
	}
	return 1.0 / k
}

// axialAngularMass is the scalar effective mass for rotation about one axis.
func (j *jointBase) axialAngularMass(axis mgl64.Vec3) float64 {
	k := j.a.EffectiveInverseInertiaWorld().Mul3x1(axis).Dot(axis) +
		j.invInertiaB().Mul3x1(axis).Dot(axis)
	if k <= 0 {
		return 0
	}
	return 1.0 / k
}

// relativeAnchorVelocity is the velocity of B's anchor relative to A's.
func (j *jointBase) relativeAnchorVelocity(pA, pB mgl64.Vec3) mgl64.Vec3 {
	return j.velocityAtAnchorB(pB).Sub(j.a.VelocityAtPoint(pA))
}

func (j *jointBase) state() State {
	s := State{
		ID:      j.id,
		Type:    j.jointType,
		Enabled: j.enabled,
		Broken:  j.broken,
	}
	if j.dt > 0 {
		s.ReactionForce = j.reactionImpulse.Mul(1.0 / j.dt)
		s.ReactionTorque = j.reactionAngularImpulse.Mul(1.0 / j.dt)
	}
	return s
}
