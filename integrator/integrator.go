// Package integrator provides the numerical schemes advancing rigid-body
// state by one fixed timestep. A world selects one integrator; all variants
// skip static and kinematic bodies and advance orientation through the same
// first-order quaternion update, so they differ only in how linear state is
// sampled.
package integrator

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
	"github.com/akmonengine/bedrock/math3d"
)

// Integrator advances one body by dt using the force and torque accumulated
// for this step.
type Integrator interface {
	Integrate(body *actor.RigidBody, dt float64)
	Name() string
}

// acceleration derives linear and angular acceleration from the body's
// accumulators: a = F/m, α = I⁻¹·τ.
func acceleration(body *actor.RigidBody) (mgl64.Vec3, mgl64.Vec3) {
	linear := body.Force().Mul(body.InverseMass)
	angular := body.InverseInertiaWorld().Mul3x1(body.Torque())
	return linear, angular
}

func skip(body *actor.RigidBody) bool {
	return body.BodyType != actor.BodyTypeDynamic || body.IsSleeping
}

// integrateOrientation applies the shared spin-quaternion update and the
// angular acceleration.
func integrateOrientation(body *actor.RigidBody, angularAccel mgl64.Vec3, dt float64) {
	body.AngularVelocity = body.AngularVelocity.Add(angularAccel.Mul(dt))
	body.Transform.Rotation = math3d.IntegrateOrientation(
		body.Transform.Rotation, body.AngularVelocity, dt)
}

// ExplicitEuler advances position with the pre-update velocity:
// v += a·dt, then p += v_old·dt. Simple and energy-gaining; kept for
// comparison against the stable schemes.
type ExplicitEuler struct{}

func (ExplicitEuler) Name() string { return "explicit-euler" }

func (ExplicitEuler) Integrate(body *actor.RigidBody, dt float64) {
	if skip(body) {
		return
	}
	linear, angular := acceleration(body)

	oldVelocity := body.Velocity
	body.Velocity = body.Velocity.Add(linear.Mul(dt))
	body.Transform.Position = body.Transform.Position.Add(oldVelocity.Mul(dt))

	integrateOrientation(body, angular, dt)
}

// SymplecticEuler advances position with the post-update velocity:
// v += a·dt, then p += v_new·dt. Unconditionally more stable than explicit
// Euler and the recommended default.
type SymplecticEuler struct{}

func (SymplecticEuler) Name() string { return "symplectic-euler" }

func (SymplecticEuler) Integrate(body *actor.RigidBody, dt float64) {
	if skip(body) {
		return
	}
	linear, angular := acceleration(body)

	body.Velocity = body.Velocity.Add(linear.Mul(dt))
	body.Transform.Position = body.Transform.Position.Add(body.Velocity.Mul(dt))

	integrateOrientation(body, angular, dt)
}

// VelocityVerlet advances position with a second-order term before updating
// velocity: p += v·dt + ½·a·dt², then v += a·dt. Under the per-step
// constant-force assumption the start-of-step acceleration stands in for the
// usual half-step average.
type VelocityVerlet struct{}

func (VelocityVerlet) Name() string { return "velocity-verlet" }

func (VelocityVerlet) Integrate(body *actor.RigidBody, dt float64) {
	if skip(body) {
		return
	}
	linear, angular := acceleration(body)

	body.Transform.Position = body.Transform.Position.
		Add(body.Velocity.Mul(dt)).
		Add(linear.Mul(0.5 * dt * dt))
	body.Velocity = body.Velocity.Add(linear.Mul(dt))

	integrateOrientation(body, angular, dt)
}

// RK4 is the classic 4-stage Runge-Kutta scheme over the coupled
// position/velocity system. Forces are sampled once per step (constant-force
// assumption), so the acceleration is identical at every stage and the
// weighting reduces to exact quadratic motion in position.
type RK4 struct{}

func (RK4) Name() string { return "rk4" }

func (RK4) Integrate(body *actor.RigidBody, dt float64) {
	if skip(body) {
		return
	}
	linear, angular := acceleration(body)

	// Stage derivatives for dp/dt = v, dv/dt = a with constant a.
	k1v := body.Velocity
	k1a := linear
	k2v := body.Velocity.Add(k1a.Mul(dt / 2))
	k2a := linear
	k3v := body.Velocity.Add(k2a.Mul(dt / 2))
	k3a := linear
	k4v := body.Velocity.Add(k3a.Mul(dt))
	k4a := linear

	body.Transform.Position = body.Transform.Position.Add(
		k1v.Add(k2v.Mul(2)).Add(k3v.Mul(2)).Add(k4v).Mul(dt / 6))
	body.Velocity = body.Velocity.Add(
		k1a.Add(k2a.Mul(2)).Add(k3a.Mul(2)).Add(k4a).Mul(dt / 6))

	integrateOrientation(body, angular, dt)
}

var (
	_ Integrator = ExplicitEuler{}
	_ Integrator = SymplecticEuler{}
	_ Integrator = VelocityVerlet{}
	_ Integrator = RK4{}
)
