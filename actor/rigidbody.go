package actor

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/math3d"
)

// BodyID identifies a rigid body inside a world. IDs are opaque and unique;
// WorldBodyID is reserved as the infinite-mass sentinel used by constraints
// anchored to the world itself.
type BodyID uint64

const WorldBodyID BodyID = 0

// BodyType represents the kind of rigid body.
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, impulses, and collisions.
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// (e.g., ground, walls).
	BodyTypeStatic

	// BodyTypeKinematic bodies move by their velocity alone; forces and
	// impulses are ignored and the solvers treat them as infinite mass.
	BodyTypeKinematic
)

// Material holds the surface response parameters used by the contact solver.
type Material struct {
	Friction          float64 // dynamic friction coefficient
	StaticFriction    float64
	Restitution       float64 // 0 = no rebound, 1 = perfect restitution
	RollingResistance float64
}

// RigidBody represents one simulated body. Force and torque accumulators are
// cleared at the start of every step; collaborators inject into them between
// the clear and the integration phase.
type RigidBody struct {
	ID        BodyID
	Transform Transform

	// Mass properties. InverseMass and InverseInertiaLocal are zero exactly
	// when the body is static.
	Mass                float64
	InverseMass         float64
	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3
	CenterOfMass        mgl64.Vec3

	Material Material

	Velocity        mgl64.Vec3 // m/s
	AngularVelocity mgl64.Vec3 // rad/s
	LinearDamping   float64
	AngularDamping  float64

	// Aerodynamic hints, consumed only by the environment collaborator.
	DragCoefficient  float64
	LiftCoefficient  float64
	CrossSectionArea float64

	BodyType   BodyType
	IsTrigger  bool
	IsSleeping bool
	SleepTimer float64

	// Collision filter: a pair collides only when each body's group
	// intersects the other's mask.
	Group uint32
	Mask  uint32

	Collider *Collider

	force  mgl64.Vec3
	torque mgl64.Vec3
}

// NewRigidBody creates a body with the given mass. Static bodies receive
// infinite mass regardless of the argument; dynamic bodies derive inertia
// from the collider.
func NewRigidBody(transform Transform, collider *Collider, bodyType BodyType, mass float64) *RigidBody {
	rb := &RigidBody{
		Transform: transform,
		Collider:  collider,
		BodyType:  bodyType,
		Group:     0xFFFFFFFF,
		Mask:      0xFFFFFFFF,
	}
	rb.SetMass(mass)
	return rb
}

// NewRigidBodyFromDensity derives the mass from the collider volume.
func NewRigidBodyFromDensity(transform Transform, collider *Collider, bodyType BodyType, density float64) *RigidBody {
	return NewRigidBody(transform, collider, bodyType, collider.ComputeMass(density))
}

// SetMass updates the mass properties, rebuilding the inverse mass and the
// inertia tensors. Static bodies always end with zero inverses.
func (rb *RigidBody) SetMass(mass float64) {
	if rb.BodyType == BodyTypeStatic {
		rb.Mass = 0
		rb.InverseMass = 0
		rb.InertiaLocal = mgl64.Mat3{}
		rb.InverseInertiaLocal = mgl64.Mat3{}
		return
	}

	if mass <= 0 {
		mass = 1
	}
	rb.Mass = mass
	rb.InverseMass = 1.0 / mass

	if rb.Collider != nil {
		rb.InertiaLocal = rb.Collider.ComputeInertia(mass)
	} else {
		rb.InertiaLocal = math3d.Diag(mass, mass, mass)
	}
	if inv, ok := math3d.InvertChecked(rb.InertiaLocal); ok {
		rb.InverseInertiaLocal = inv
	} else {
		rb.InverseInertiaLocal = mgl64.Ident3()
	}
}

// ApplyForce accumulates a force at the center of mass and wakes the body.
// Static and kinematic bodies ignore it.
func (rb *RigidBody) ApplyForce(force mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}
	rb.WakeUp()
	rb.force = rb.force.Add(force)
}

// ApplyForceAtPoint accumulates a force applied at a world-space point,
// adding the induced torque (point - position) × force.
func (rb *RigidBody) ApplyForceAtPoint(force, worldPoint mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}
	rb.WakeUp()
	rb.force = rb.force.Add(force)
	rb.torque = rb.torque.Add(worldPoint.Sub(rb.Transform.Position).Cross(force))
}

// ApplyTorque accumulates torque only.
func (rb *RigidBody) ApplyTorque(torque mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}
	rb.WakeUp()
	rb.torque = rb.torque.Add(torque)
}

// ApplyImpulse immediately changes the linear velocity by impulse/mass.
func (rb *RigidBody) ApplyImpulse(impulse mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}
	rb.WakeUp()
	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.InverseMass))
}

// ApplyImpulseAtPoint changes both the linear and the angular velocity for an
// impulse applied at a world-space point.
func (rb *RigidBody) ApplyImpulseAtPoint(impulse, worldPoint mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}
	rb.WakeUp()
	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.InverseMass))

	r := worldPoint.Sub(rb.Transform.Position)
	rb.AngularVelocity = rb.AngularVelocity.Add(
		rb.InverseInertiaWorld().Mul3x1(r.Cross(impulse)),
	)
}

// Force returns the accumulated force for this step.
func (rb *RigidBody) Force() mgl64.Vec3 { return rb.force }

// Torque returns the accumulated torque for this step.
func (rb *RigidBody) Torque() mgl64.Vec3 { return rb.torque }

// ClearAccumulators resets the per-step force and torque buffers.
func (rb *RigidBody) ClearAccumulators() {
	rb.force = mgl64.Vec3{}
	rb.torque = mgl64.Vec3{}
}

// Sleep zeroes both velocities and marks the body sleeping. Static bodies
// cannot sleep.
func (rb *RigidBody) Sleep() {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.IsSleeping = true
	rb.SleepTimer = 0
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
	rb.ClearAccumulators()
}

// WakeUp clears the sleeping flag and resets the sleep timer.
func (rb *RigidBody) WakeUp() {
	rb.IsSleeping = false
	rb.SleepTimer = 0
}

// TrySleep puts the body to sleep once its speed stays below the velocity
// threshold for longer than the time threshold.
func (rb *RigidBody) TrySleep(dt, timeThreshold, velocityThreshold float64) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timeThreshold {
			rb.Sleep()
		}
	} else {
		rb.SleepTimer = 0
	}
}

// InertiaWorld returns the inertia tensor rotated into world space:
// I_world = R * I_local * Rᵀ.
func (rb *RigidBody) InertiaWorld() mgl64.Mat3 {
	r := rb.Transform.Rotation.Mat4().Mat3()
	return r.Mul3(rb.InertiaLocal).Mul3(r.Transpose())
}

// InverseInertiaWorld returns the inverse inertia tensor in world space.
// Static bodies return the zero matrix.
func (rb *RigidBody) InverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType == BodyTypeStatic {
		return mgl64.Mat3{}
	}
	r := rb.Transform.Rotation.Mat4().Mat3()
	return r.Mul3(rb.InverseInertiaLocal).Mul3(r.Transpose())
}

// EffectiveInverseMass is the inverse mass the solvers use: zero for static
// and kinematic bodies so contacts and joints never move them.
func (rb *RigidBody) EffectiveInverseMass() float64 {
	if rb.BodyType != BodyTypeDynamic {
		return 0
	}
	return rb.InverseMass
}

// EffectiveInverseInertiaWorld is the solver-facing inverse inertia; zero for
// static and kinematic bodies.
func (rb *RigidBody) EffectiveInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType != BodyTypeDynamic {
		return mgl64.Mat3{}
	}
	return rb.InverseInertiaWorld()
}

// PointToWorld maps a body-local point to world space.
func (rb *RigidBody) PointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return rb.Transform.Apply(local)
}

// PointToLocal maps a world-space point into body space.
func (rb *RigidBody) PointToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return rb.Transform.ApplyInverse(world)
}

// VelocityAtPoint returns the world-space velocity of a point rigidly
// attached to the body.
func (rb *RigidBody) VelocityAtPoint(worldPoint mgl64.Vec3) mgl64.Vec3 {
	r := worldPoint.Sub(rb.Transform.Position)
	return rb.Velocity.Add(rb.AngularVelocity.Cross(r))
}

// KineticEnergy is ½mv² + ½ωᵀIω.
func (rb *RigidBody) KineticEnergy() float64 {
	if rb.BodyType == BodyTypeStatic {
		return 0
	}
	linear := 0.5 * rb.Mass * rb.Velocity.LenSqr()
	angular := 0.5 * rb.InertiaWorld().Mul3x1(rb.AngularVelocity).Dot(rb.AngularVelocity)
	return linear + angular
}

// Momentum returns the linear momentum m·v.
func (rb *RigidBody) Momentum() mgl64.Vec3 {
	if rb.BodyType == BodyTypeStatic {
		return mgl64.Vec3{}
	}
	return rb.Velocity.Mul(rb.Mass)
}

// AngularMomentum returns I_world·ω.
func (rb *RigidBody) AngularMomentum() mgl64.Vec3 {
	if rb.BodyType == BodyTypeStatic {
		return mgl64.Vec3{}
	}
	return rb.InertiaWorld().Mul3x1(rb.AngularVelocity)
}

// SupportWorld returns the furthest point of the collider in a world-space
// direction, used by the convex narrow-phase fallback.
func (rb *RigidBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	if rb.Collider == nil {
		return rb.Transform.Position
	}
	rot := rb.Collider.WorldRotation(rb.Transform)
	localDirection := rot.Conjugate().Rotate(direction)
	localSupport := rb.Collider.Support(localDirection)
	return rot.Rotate(scaleVec(localSupport, rb.Transform.Scale)).Add(rb.Collider.WorldCenter(rb.Transform))
}
