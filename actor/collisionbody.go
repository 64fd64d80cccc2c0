package actor

import "github.com/go-gl/mathgl/mgl64"

// CollisionBody is the collision subsystem's view of a rigid body: the body's
// kinematic and material state, its collider, and a cached world AABB. The
// cache is synchronized explicitly via Update; external transform mutations
// that skip Update leave spatial queries stale until the next Update call.
type CollisionBody struct {
	Body *RigidBody
	AABB AABB
}

// NewCollisionBody wraps a rigid body and computes its initial world AABB.
func NewCollisionBody(body *RigidBody) *CollisionBody {
	cb := &CollisionBody{Body: body}
	cb.Update()
	return cb
}

// Update recomputes the cached world AABB from the current transform.
func (cb *CollisionBody) Update() {
	if cb.Body.Collider == nil {
		p := cb.Body.Transform.Position
		cb.AABB = AABB{Min: p, Max: p}
		return
	}
	cb.AABB = cb.Body.Collider.ComputeAABB(cb.Body.Transform)
}

// ID returns the owning body's id.
func (cb *CollisionBody) ID() BodyID { return cb.Body.ID }

// IsTrigger reports whether either the body or its collider is a trigger.
func (cb *CollisionBody) IsTrigger() bool {
	if cb.Body.IsTrigger {
		return true
	}
	return cb.Body.Collider != nil && cb.Body.Collider.IsTrigger
}

// Center returns the collider center in world space.
func (cb *CollisionBody) Center() mgl64.Vec3 {
	if cb.Body.Collider == nil {
		return cb.Body.Transform.Position
	}
	return cb.Body.Collider.WorldCenter(cb.Body.Transform)
}

// SupportWorld forwards to the owning body, satisfying the convex support
// interface used by GJK and EPA.
func (cb *CollisionBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	return cb.Body.SupportWorld(direction)
}
