package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
	"github.com/akmonengine/bedrock/math3d"
)

// upAxis is the fallback normal for degenerate configurations (concentric
// spheres, zero-length closest vectors).
var upAxis = mgl64.Vec3{0, 1, 0}

// sphereWorld extracts the world-space center and scaled radius.
func sphereWorld(cb *actor.CollisionBody) (mgl64.Vec3, float64) {
	c := cb.Body.Collider
	t := cb.Body.Transform
	return c.WorldCenter(t), c.Radius * maxScale(t.Scale)
}

// capsuleWorld returns the world-space axis endpoints and scaled radius.
func capsuleWorld(cb *actor.CollisionBody) (mgl64.Vec3, mgl64.Vec3, float64) {
	c := cb.Body.Collider
	t := cb.Body.Transform
	center := c.WorldCenter(t)
	axis := c.WorldRotation(t).Rotate(mgl64.Vec3{0, c.HalfHeight * t.Scale.Y(), 0})
	return center.Sub(axis), center.Add(axis), c.Radius * maxScale(t.Scale)
}

// planeWorld returns the world-space plane as normal·p = distance.
func planeWorld(cb *actor.CollisionBody) (mgl64.Vec3, float64) {
	c := cb.Body.Collider
	t := cb.Body.Transform
	normal := t.Rotation.Rotate(c.Normal)
	return normal, normal.Dot(t.Position) + c.Distance
}

func maxScale(scale mgl64.Vec3) float64 {
	return math.Max(scale.X(), math.Max(scale.Y(), scale.Z()))
}

func sphereSphere(a, b *actor.CollisionBody) *ContactManifold {
	centerA, radiusA := sphereWorld(a)
	centerB, radiusB := sphereWorld(b)

	delta := centerB.Sub(centerA)
	dist := delta.Len()
	sum := radiusA + radiusB
	if dist > sum {
		return nil
	}

	normal := upAxis
	if dist > math3d.Epsilon {
		normal = delta.Mul(1.0 / dist)
	}
	penetration := sum - dist

	m := newManifold(a, b, normal, penetration)
	m.addPoint(a, b, centerA.Add(normal.Mul(radiusA-penetration*0.5)), penetration)
	return m
}

func sphereBox(a, b *actor.CollisionBody) *ContactManifold {
	center, radius := sphereWorld(a)
	box := boxWorldOf(b)

	// Sphere center in the box's axis coordinates.
	d := center.Sub(box.center)
	var q [3]float64
	for i := 0; i < 3; i++ {
		q[i] = d.Dot(box.axes[i])
	}

	inside := true
	var clamped [3]float64
	for i := 0; i < 3; i++ {
		clamped[i] = q[i]
		if clamped[i] > box.half[i] {
			clamped[i] = box.half[i]
			inside = false
		} else if clamped[i] < -box.half[i] {
			clamped[i] = -box.half[i]
			inside = false
		}
	}

	if !inside {
		closest := box.center
		for i := 0; i < 3; i++ {
			closest = closest.Add(box.axes[i].Mul(clamped[i]))
		}
		delta := center.Sub(closest)
		dist := delta.Len()
		if dist > radius {
			return nil
		}

		// delta points from the box surface toward the sphere center; the
		// manifold normal runs sphere (A) to box (B).
		normal := upAxis.Mul(-1)
		if dist > math3d.Epsilon {
			normal = delta.Mul(-1.0 / dist)
		}
		penetration := radius - dist

		m := newManifold(a, b, normal, penetration)
		m.addPoint(a, b, closest, penetration)
		return m
	}

	// Center inside the box: push out through the face with least penetration.
	bestAxis := 0
	bestSign := 1.0
	bestDepth := math.MaxFloat64
	for i := 0; i < 3; i++ {
		sign := 1.0
		if q[i] < 0 {
			sign = -1.0
		}
		if depth := box.half[i] - math.Abs(q[i]); depth < bestDepth {
			bestDepth = depth
			bestAxis = i
			bestSign = sign
		}
	}

	// Face normal points from box toward the sphere; flip for A→B.
	normal := box.axes[bestAxis].Mul(-bestSign)
	penetration := bestDepth + radius

	m := newManifold(a, b, normal, penetration)
	m.addPoint(a, b, center, penetration)
	return m
}

func spherePlane(a, b *actor.CollisionBody) *ContactManifold {
	center, radius := sphereWorld(a)
	normal, d := planeWorld(b)

	signed := normal.Dot(center) - d
	if signed > radius {
		return nil
	}
	penetration := radius - signed

	// The manifold normal runs sphere (A) into the plane (B).
	m := newManifold(a, b, normal.Mul(-1), penetration)
	m.addPoint(a, b, center.Sub(normal.Mul(signed)), penetration)
	return m
}

func capsulePlane(a, b *actor.CollisionBody) *ContactManifold {
	p0, p1, radius := capsuleWorld(a)
	normal, d := planeWorld(b)

	var m *ContactManifold
	for _, end := range [2]mgl64.Vec3{p0, p1} {
		signed := normal.Dot(end) - d
		if signed > radius {
			continue
		}
		penetration := radius - signed
		if m == nil {
			m = newManifold(a, b, normal.Mul(-1), penetration)
		} else if penetration > m.Penetration {
			m.Penetration = penetration
		}
		m.addPoint(a, b, end.Sub(normal.Mul(signed)), penetration)
	}
	return m
}

// convexPlane tests any convex collider against a plane by checking the
// vertices of its supporting feature facing the plane. Covers box-plane,
// cylinder-plane, and mesh-plane.
func convexPlane(a, b *actor.CollisionBody) *ContactManifold {
	normal, d := planeWorld(b)

	collider := a.Body.Collider
	t := a.Body.Transform
	rot := collider.WorldRotation(t)
	center := collider.WorldCenter(t)

	// The feature facing the plane supports the direction opposite the plane
	// normal, expressed in the collider's local frame.
	localDir := rot.Conjugate().Rotate(normal.Mul(-1))
	feature := collider.ContactFeature(localDir)

	vertices := feature
	if collider.Type == actor.ShapeMesh {
		vertices = collider.Vertices
	}

	var m *ContactManifold
	for _, v := range vertices {
		world := rot.Rotate(scaleVec(v, t.Scale)).Add(center)
		signed := normal.Dot(world) - d
		if signed > 0 {
			continue
		}
		penetration := -signed
		if m == nil {
			m = newManifold(a, b, normal.Mul(-1), penetration)
		} else if penetration > m.Penetration {
			m.Penetration = penetration
		}
		m.addPoint(a, b, world, penetration)
	}
	return m
}

func sphereCapsule(a, b *actor.CollisionBody) *ContactManifold {
	center, radiusA := sphereWorld(a)
	p0, p1, radiusB := capsuleWorld(b)

	closest := closestPointOnSegment(center, p0, p1)
	delta := closest.Sub(center)
	dist := delta.Len()
	sum := radiusA + radiusB
	if dist > sum {
		return nil
	}

	normal := upAxis
	if dist > math3d.Epsilon {
		normal = delta.Mul(1.0 / dist)
	}
	penetration := sum - dist

	m := newManifold(a, b, normal, penetration)
	m.addPoint(a, b, center.Add(normal.Mul(radiusA-penetration*0.5)), penetration)
	return m
}

func capsuleCapsule(a, b *actor.CollisionBody) *ContactManifold {
	a0, a1, radiusA := capsuleWorld(a)
	b0, b1, radiusB := capsuleWorld(b)

	pA, pB := closestPointsSegmentSegment(a0, a1, b0, b1)
	delta := pB.Sub(pA)
	dist := delta.Len()
	sum := radiusA + radiusB
	if dist > sum {
		return nil
	}

	normal := upAxis
	if dist > math3d.Epsilon {
		normal = delta.Mul(1.0 / dist)
	}
	penetration := sum - dist

	m := newManifold(a, b, normal, penetration)
	m.addPoint(a, b, pA.Add(normal.Mul(radiusA-penetration*0.5)), penetration)
	return m
}

func closestPointOnSegment(p, a, b mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	lenSqr := ab.LenSqr()
	if lenSqr < math3d.Epsilon {
		return a
	}
	t := p.Sub(a).Dot(ab) / lenSqr
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Mul(t))
}

// closestPointsSegmentSegment returns the closest points between segments
// [p1,q1] and [p2,q2], covering degenerate (point) and parallel segments.
// Ericson, "Real-Time Collision Detection", §5.1.9.
func closestPointsSegmentSegment(p1, q1, p2, q2 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)

	a := d1.LenSqr()
	e := d2.LenSqr()
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a < math3d.Epsilon && e < math3d.Epsilon:
		// Both segments degenerate to points.
		return p1, p2

	case a < math3d.Epsilon:
		t = clamp01(f / e)

	case e < math3d.Epsilon:
		s = clamp01(-d1.Dot(r) / a)

	default:
		c := d1.Dot(r)
		bb := d1.Dot(d2)
		denom := a*e - bb*bb

		// Parallel segments leave s free; pick s = 0 then recompute t.
		if denom > math3d.Epsilon {
			s = clamp01((bb*f - c*e) / denom)
		}
		t = (bb*s + f) / e

		if t < 0 {
			t = 0
			s = clamp01(-c / a)
		} else if t > 1 {
			t = 1
			s = clamp01((bb - c) / a)
		}
	}

	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scaleVec(v, scale mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X() * scale.X(), v.Y() * scale.Y(), v.Z() * scale.Z()}
}
