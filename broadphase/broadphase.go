// Package broadphase provides the coarse spatial pass of collision
// detection: interchangeable indexes that produce a superset of the
// potentially colliding body pairs, plus AABB/ray/sphere queries.
//
// Indexes cache per-body world AABBs; callers must invoke Update after
// mutating a body's transform or subsequent queries return stale results.
package broadphase

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
)

// Pair is a candidate colliding pair, ordered so A < B.
type Pair struct {
	A, B actor.BodyID
}

// MakePair normalizes the id order.
func MakePair(a, b actor.BodyID) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Index is the broad-phase contract. QueryPairs may report false positives
// but never false negatives for bodies whose cached AABBs are current.
type Index interface {
	Insert(cb *actor.CollisionBody)
	Remove(id actor.BodyID) bool
	// Update resynchronizes one body's cached AABB with its transform.
	Update(id actor.BodyID)
	QueryPairs() []Pair
	QueryAABB(box actor.AABB) []actor.BodyID
	QueryRay(origin, dir mgl64.Vec3, maxDist float64) []actor.BodyID
	QuerySphere(center mgl64.Vec3, radius float64) []actor.BodyID
}

// ShouldPair applies the group/mask rule shared by every index
// implementation. It is the only filter the broad phase applies: sleep and
// mobility never suppress a pair here, so overlap reporting stays a strict
// superset of the AABB overlaps and downstream consumers (the contact
// solver, the event diff) decide what each pair means.
func ShouldPair(a, b *actor.RigidBody) bool {
	return a.Group&b.Mask != 0 && b.Group&a.Mask != 0
}
