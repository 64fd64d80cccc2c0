package bedrock

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
)

// Environment is the collaborator supplying ambient forces and spatial
// policy. The world queries it once per step, between clearing the force
// accumulators and integrating; ApplyBoundaries runs at the end of the step
// and may mutate positions and velocities directly per its configured policy
// (reflect, wrap, destroy, custom).
type Environment interface {
	GravityAt(position mgl64.Vec3) mgl64.Vec3
	WindAt(position mgl64.Vec3, time float64) mgl64.Vec3
	MagneticFieldAt(position mgl64.Vec3, time float64) mgl64.Vec3
	ElectricFieldAt(position mgl64.Vec3, time float64) mgl64.Vec3

	// DragOn and BuoyancyOn inject their forces into the body's accumulators
	// directly, using the body's aerodynamic hints.
	DragOn(body *actor.RigidBody, dt float64)
	BuoyancyOn(body *actor.RigidBody)

	ApplyBoundaries(bodies []*actor.RigidBody)
}

// ForceSystem is the user-force collaborator (attractors, vortices,
// explosions, scripted forces). It runs after the environment and injects
// through the rigid-body force methods.
type ForceSystem interface {
	ApplyForces(bodies []*actor.RigidBody, time, dt float64)
}
