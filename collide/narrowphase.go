package collide

import (
	"github.com/akmonengine/bedrock/actor"
	"github.com/akmonengine/bedrock/epa"
	"github.com/akmonengine/bedrock/gjk"
)

// pairTest is one shape-pair intersection test. Nil result means no contact.
type pairTest func(a, b *actor.CollisionBody) *ContactManifold

// pairTests maps ordered (shapeA, shapeB) keys to their analytic test.
// Combinations present only in the mirrored order are flipped by Test; pairs
// absent in both orders fall through to the GJK/EPA convex fallback.
var pairTests = map[[2]actor.ShapeType]pairTest{
	{actor.ShapeSphere, actor.ShapeSphere}:   sphereSphere,
	{actor.ShapeSphere, actor.ShapeBox}:      sphereBox,
	{actor.ShapeSphere, actor.ShapeCapsule}:  sphereCapsule,
	{actor.ShapeSphere, actor.ShapePlane}:    spherePlane,
	{actor.ShapeBox, actor.ShapeBox}:         boxBox,
	{actor.ShapeBox, actor.ShapePlane}:       convexPlane,
	{actor.ShapeCapsule, actor.ShapeCapsule}: capsuleCapsule,
	{actor.ShapeCapsule, actor.ShapePlane}:   capsulePlane,
	{actor.ShapeCylinder, actor.ShapePlane}:  convexPlane,
	{actor.ShapeMesh, actor.ShapePlane}:      convexPlane,
	{actor.ShapePlane, actor.ShapePlane}:     planePlane,
}

// planePlane: two infinite planes never produce a useful contact response.
func planePlane(a, b *actor.CollisionBody) *ContactManifold {
	return nil
}

// Test runs the narrow-phase test for one candidate pair. It returns nil for
// non-overlap or degenerate geometry, never an error. Shape combinations
// without an analytic test go through the GJK/EPA convex fallback.
func Test(a, b *actor.CollisionBody) *ContactManifold {
	if a.Body.Collider == nil || b.Body.Collider == nil {
		return nil
	}

	key := [2]actor.ShapeType{a.Body.Collider.Type, b.Body.Collider.Type}
	if fn, ok := pairTests[key]; ok {
		return fn(a, b)
	}
	if fn, ok := pairTests[[2]actor.ShapeType{key[1], key[0]}]; ok {
		return fn(b, a).Flip()
	}
	return convexFallback(a, b)
}

// convexFallback covers shape pairs without an analytic test (cylinder-box,
// mesh-mesh, and the rest) through GJK overlap detection and EPA penetration
// recovery. Single contact point placed midway between the support points.
func convexFallback(a, b *actor.CollisionBody) *ContactManifold {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !gjk.Intersect(a, b, simplex) {
		return nil
	}

	result, err := epa.Penetrate(a, b, simplex)
	if err != nil {
		// Overlap confirmed but depth recovery failed; no contact is safer
		// than a garbage normal.
		return nil
	}

	supportA := a.SupportWorld(result.Normal)
	supportB := b.SupportWorld(result.Normal.Mul(-1))
	mid := supportA.Add(supportB).Mul(0.5)

	m := newManifold(a, b, result.Normal, result.Depth)
	m.addPoint(a, b, mid, result.Depth)
	return m
}
