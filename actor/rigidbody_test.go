package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/math3d"
)

func newTestBody(bodyType BodyType, mass float64) *RigidBody {
	return NewRigidBody(NewTransform(), NewSphereCollider(1), bodyType, mass)
}

func TestSetMassInvariants(t *testing.T) {
	dynamic := newTestBody(BodyTypeDynamic, 4)
	if dynamic.InverseMass != 0.25 {
		t.Errorf("inverse mass = %v, want 0.25", dynamic.InverseMass)
	}
	if dynamic.InertiaLocal.At(0, 0) == 0 {
		t.Error("dynamic body must derive inertia from its collider")
	}

	// Static bodies end with zero inverses no matter the mass argument.
	static := newTestBody(BodyTypeStatic, 10)
	if static.Mass != 0 || static.InverseMass != 0 {
		t.Errorf("static mass/inverse = %v/%v, want 0/0", static.Mass, static.InverseMass)
	}
	if static.InverseInertiaLocal != (mgl64.Mat3{}) {
		t.Error("static inverse inertia must be zero")
	}

	// Non-positive mass falls back to 1 instead of dividing by zero.
	degenerate := newTestBody(BodyTypeDynamic, 0)
	if degenerate.Mass != 1 || degenerate.InverseMass != 1 {
		t.Errorf("zero-mass fallback = %v, want mass 1", degenerate.Mass)
	}
}

func TestEffectiveInverseMass(t *testing.T) {
	tests := []struct {
		name     string
		bodyType BodyType
		wantZero bool
	}{
		{"dynamic", BodyTypeDynamic, false},
		{"static", BodyTypeStatic, true},
		{"kinematic", BodyTypeKinematic, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newTestBody(tt.bodyType, 2)
			if gotZero := body.EffectiveInverseMass() == 0; gotZero != tt.wantZero {
				t.Errorf("EffectiveInverseMass = %v, wantZero=%v", body.EffectiveInverseMass(), tt.wantZero)
			}
			if gotZero := body.EffectiveInverseInertiaWorld() == (mgl64.Mat3{}); gotZero != tt.wantZero {
				t.Errorf("EffectiveInverseInertiaWorld zero = %v, want %v", gotZero, tt.wantZero)
			}
		})
	}
}

func TestForceAccumulation(t *testing.T) {
	body := newTestBody(BodyTypeDynamic, 1)

	body.ApplyForce(mgl64.Vec3{1, 0, 0})
	body.ApplyForce(mgl64.Vec3{0, 2, 0})
	if body.Force() != (mgl64.Vec3{1, 2, 0}) {
		t.Errorf("accumulated force = %v", body.Force())
	}

	// Off-center application induces torque r × F.
	body.ApplyForceAtPoint(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0})
	if body.Torque() != (mgl64.Vec3{0, 0, 1}) {
		t.Errorf("induced torque = %v, want (0,0,1)", body.Torque())
	}

	body.ClearAccumulators()
	if body.Force() != (mgl64.Vec3{}) || body.Torque() != (mgl64.Vec3{}) {
		t.Error("accumulators survived the clear")
	}
}

func TestForcesIgnoredByNonDynamic(t *testing.T) {
	for _, bodyType := range []BodyType{BodyTypeStatic, BodyTypeKinematic} {
		body := newTestBody(bodyType, 1)
		body.ApplyForce(mgl64.Vec3{1, 0, 0})
		body.ApplyTorque(mgl64.Vec3{0, 1, 0})
		body.ApplyImpulse(mgl64.Vec3{1, 0, 0})
		if body.Force() != (mgl64.Vec3{}) || body.Torque() != (mgl64.Vec3{}) {
			t.Errorf("%v body accumulated forces", bodyType)
		}
		if body.Velocity != (mgl64.Vec3{}) {
			t.Errorf("%v body accepted an impulse", bodyType)
		}
	}
}

func TestApplyImpulseAtPoint(t *testing.T) {
	body := newTestBody(BodyTypeDynamic, 2)

	body.ApplyImpulseAtPoint(mgl64.Vec3{0, 4, 0}, mgl64.Vec3{1, 0, 0})
	if !math3d.Equal(body.Velocity, mgl64.Vec3{0, 2, 0}, 1e-9) {
		t.Errorf("velocity = %v, want (0,2,0)", body.Velocity)
	}
	// r × J = (1,0,0) × (0,4,0) = (0,0,4); ω = I⁻¹ · (0,0,4).
	wantSpin := body.InverseInertiaWorld().Mul3x1(mgl64.Vec3{0, 0, 4})
	if !math3d.Equal(body.AngularVelocity, wantSpin, 1e-9) {
		t.Errorf("angular velocity = %v, want %v", body.AngularVelocity, wantSpin)
	}
}

func TestSleepLifecycle(t *testing.T) {
	body := newTestBody(BodyTypeDynamic, 1)
	body.Velocity = mgl64.Vec3{0.01, 0, 0}

	// Slow for half the threshold: timer accrues but no sleep yet.
	body.TrySleep(0.25, 0.5, 0.05)
	if body.IsSleeping {
		t.Fatal("slept before the time threshold")
	}

	// Speeding up resets the timer.
	body.Velocity = mgl64.Vec3{1, 0, 0}
	body.TrySleep(0.25, 0.5, 0.05)
	if body.SleepTimer != 0 {
		t.Errorf("sleep timer = %v after motion, want 0", body.SleepTimer)
	}

	// Slow past the threshold: asleep with velocities zeroed.
	body.Velocity = mgl64.Vec3{0.01, 0, 0}
	body.TrySleep(0.3, 0.5, 0.05)
	body.TrySleep(0.3, 0.5, 0.05)
	if !body.IsSleeping {
		t.Fatal("did not sleep past the time threshold")
	}
	if body.Velocity != (mgl64.Vec3{}) || body.AngularVelocity != (mgl64.Vec3{}) {
		t.Error("sleep left residual velocity")
	}

	body.WakeUp()
	if body.IsSleeping || body.SleepTimer != 0 {
		t.Error("wake did not reset the sleep state")
	}

	static := newTestBody(BodyTypeStatic, 0)
	static.Sleep()
	if static.IsSleeping {
		t.Error("static bodies must never sleep")
	}
}

func TestEnergyAndMomentum(t *testing.T) {
	body := newTestBody(BodyTypeDynamic, 2)
	body.Velocity = mgl64.Vec3{3, 0, 0}

	if got := body.KineticEnergy(); math.Abs(got-9) > 1e-9 {
		t.Errorf("linear kinetic energy = %v, want 9", got)
	}
	if body.Momentum() != (mgl64.Vec3{6, 0, 0}) {
		t.Errorf("momentum = %v, want (6,0,0)", body.Momentum())
	}

	body.AngularVelocity = mgl64.Vec3{0, 2, 0}
	i := body.InertiaLocal.At(1, 1)
	wantEnergy := 9 + 0.5*i*4
	if got := body.KineticEnergy(); math.Abs(got-wantEnergy) > 1e-9 {
		t.Errorf("total kinetic energy = %v, want %v", got, wantEnergy)
	}
	if !math3d.Equal(body.AngularMomentum(), mgl64.Vec3{0, 2 * i, 0}, 1e-9) {
		t.Errorf("angular momentum = %v", body.AngularMomentum())
	}

	static := newTestBody(BodyTypeStatic, 0)
	static.Velocity = mgl64.Vec3{1, 0, 0}
	if static.KineticEnergy() != 0 || static.Momentum() != (mgl64.Vec3{}) {
		t.Error("static bodies carry no energy or momentum")
	}
}

func TestInertiaWorldRotates(t *testing.T) {
	body := NewRigidBody(NewTransform(), NewBoxCollider(mgl64.Vec3{1, 2, 3}), BodyTypeDynamic, 6)

	// Unrotated, world inertia equals local inertia.
	if body.InertiaWorld() != body.InertiaLocal {
		t.Error("identity rotation changed the inertia tensor")
	}

	// A quarter turn around Z swaps the X and Y principal moments.
	body.Transform.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	world := body.InertiaWorld()
	if math.Abs(world.At(0, 0)-body.InertiaLocal.At(1, 1)) > 1e-9 {
		t.Errorf("world Ixx = %v, want local Iyy = %v", world.At(0, 0), body.InertiaLocal.At(1, 1))
	}
	if math.Abs(world.At(1, 1)-body.InertiaLocal.At(0, 0)) > 1e-9 {
		t.Errorf("world Iyy = %v, want local Ixx = %v", world.At(1, 1), body.InertiaLocal.At(0, 0))
	}
}

func TestVelocityAtPoint(t *testing.T) {
	body := newTestBody(BodyTypeDynamic, 1)
	body.Velocity = mgl64.Vec3{1, 0, 0}
	body.AngularVelocity = mgl64.Vec3{0, 0, 2}

	// v + ω × r = (1,0,0) + (0,0,2)×(0,1,0) = (1,0,0) + (-2,0,0).
	got := body.VelocityAtPoint(mgl64.Vec3{0, 1, 0})
	if !math3d.Equal(got, mgl64.Vec3{-1, 0, 0}, 1e-9) {
		t.Errorf("VelocityAtPoint = %v, want (-1,0,0)", got)
	}
}

func TestMassFromDensity(t *testing.T) {
	body := NewRigidBodyFromDensity(NewTransform(), NewBoxCollider(mgl64.Vec3{1, 1, 1}), BodyTypeDynamic, 2)
	if math.Abs(body.Mass-16) > 1e-9 {
		t.Errorf("density-derived mass = %v, want 16", body.Mass)
	}
}
