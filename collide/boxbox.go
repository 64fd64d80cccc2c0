package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
)

// boxWorld is a box collider resolved into world space: center, unit axes,
// and scaled half extents.
type boxWorld struct {
	center mgl64.Vec3
	axes   [3]mgl64.Vec3
	half   [3]float64
}

func boxWorldOf(cb *actor.CollisionBody) boxWorld {
	c := cb.Body.Collider
	t := cb.Body.Transform
	rot := c.WorldRotation(t)

	return boxWorld{
		center: c.WorldCenter(t),
		axes: [3]mgl64.Vec3{
			rot.Rotate(mgl64.Vec3{1, 0, 0}),
			rot.Rotate(mgl64.Vec3{0, 1, 0}),
			rot.Rotate(mgl64.Vec3{0, 0, 1}),
		},
		half: [3]float64{
			c.HalfExtents.X() * t.Scale.X(),
			c.HalfExtents.Y() * t.Scale.Y(),
			c.HalfExtents.Z() * t.Scale.Z(),
		},
	}
}

// projectionRadius is the half-length of the box's projection onto a unit
// axis.
func (b boxWorld) projectionRadius(axis mgl64.Vec3) float64 {
	return b.half[0]*math.Abs(axis.Dot(b.axes[0])) +
		b.half[1]*math.Abs(axis.Dot(b.axes[1])) +
		b.half[2]*math.Abs(axis.Dot(b.axes[2]))
}

const parallelEdgeThreshold = 1e-10

// boxBox runs the separating axis test over the 15 candidate axes: each box's
// 3 face axes plus the 9 edge-edge cross products (near-parallel crosses are
// skipped as degenerate). Separation on any axis ends the test immediately;
// otherwise the axis of minimum penetration, oriented from A toward B, drives
// contact generation. Face axes produce a clipped contact patch, edge axes a
// single point between the supporting edges.
func boxBox(a, b *actor.CollisionBody) *ContactManifold {
	boxA := boxWorldOf(a)
	boxB := boxWorldOf(b)

	centerDelta := boxB.center.Sub(boxA.center)

	bestPenetration := math.MaxFloat64
	bestAxis := mgl64.Vec3{}
	bestIndex := -1

	testAxis := func(axis mgl64.Vec3, index int) bool {
		lenSqr := axis.LenSqr()
		if lenSqr < parallelEdgeThreshold {
			return true // degenerate cross product, skip
		}
		axis = axis.Mul(1.0 / math.Sqrt(lenSqr))

		distance := math.Abs(centerDelta.Dot(axis))
		penetration := boxA.projectionRadius(axis) + boxB.projectionRadius(axis) - distance
		if penetration < 0 {
			return false // separating axis found
		}
		if penetration < bestPenetration {
			bestPenetration = penetration
			bestAxis = axis
			bestIndex = index
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !testAxis(boxA.axes[i], i) {
			return nil
		}
	}
	for i := 0; i < 3; i++ {
		if !testAxis(boxB.axes[i], 3+i) {
			return nil
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !testAxis(boxA.axes[i].Cross(boxB.axes[j]), 6+i*3+j) {
				return nil
			}
		}
	}

	if bestIndex < 0 {
		return nil
	}

	// Orient the normal from A toward B.
	normal := bestAxis
	if normal.Dot(centerDelta) < 0 {
		normal = normal.Mul(-1)
	}

	if bestIndex < 6 {
		return boxBoxFaceContact(a, b, boxA, boxB, normal, bestPenetration, bestIndex < 3)
	}
	return boxBoxEdgeContact(a, b, normal, bestPenetration)
}

// boxBoxFaceContact builds a contact patch by clipping the incident face of
// one box against the reference face of the other. The reference box owns the
// minimum-penetration axis.
func boxBoxFaceContact(a, b *actor.CollisionBody, boxA, boxB boxWorld, normal mgl64.Vec3, penetration float64, refIsA bool) *ContactManifold {
	ref, inc := a, b
	if !refIsA {
		ref, inc = b, a
	}

	// Reference face looks from the reference box toward the other box.
	refOutward := normal
	if !refIsA {
		refOutward = normal.Mul(-1)
	}

	refFace, refNormal := worldFace(ref, refOutward)
	incFace, _ := worldFace(inc, refOutward.Mul(-1))

	contacts := clipFaceContacts(refFace, refNormal, incFace)

	m := newManifold(a, b, normal, penetration)
	for _, c := range contacts {
		m.addPoint(a, b, c.position, c.depth)
	}

	// Clipping can come up empty on glancing overlaps; fall back to the
	// single-point approximation rather than dropping the contact.
	if len(m.Points) == 0 {
		mid := boxA.center.Add(boxB.center.Sub(boxA.center).Mul(0.5))
		m.addPoint(a, b, mid, penetration)
	}
	return m
}

// boxBoxEdgeContact places one contact point midway between the two
// supporting points along the separation axis.
func boxBoxEdgeContact(a, b *actor.CollisionBody, normal mgl64.Vec3, penetration float64) *ContactManifold {
	supportA := a.SupportWorld(normal)
	supportB := b.SupportWorld(normal.Mul(-1))
	mid := supportA.Add(supportB).Mul(0.5)

	m := newManifold(a, b, normal, penetration)
	m.addPoint(a, b, mid, penetration)
	return m
}

// worldFace returns the collider face best aligned with a world direction,
// with its vertices and outward normal in world space.
func worldFace(cb *actor.CollisionBody, worldDir mgl64.Vec3) ([]mgl64.Vec3, mgl64.Vec3) {
	collider := cb.Body.Collider
	t := cb.Body.Transform
	rot := collider.WorldRotation(t)
	center := collider.WorldCenter(t)

	localDir := rot.Conjugate().Rotate(worldDir)
	local := collider.ContactFeature(localDir)

	face := make([]mgl64.Vec3, len(local))
	for i, v := range local {
		face[i] = rot.Rotate(scaleVec(v, t.Scale)).Add(center)
	}

	faceNormal := worldDir
	if len(face) >= 3 {
		if n := face[1].Sub(face[0]).Cross(face[2].Sub(face[0])); n.LenSqr() > 1e-12 {
			faceNormal = n.Normalize()
			if faceNormal.Dot(worldDir) < 0 {
				faceNormal = faceNormal.Mul(-1)
			}
		}
	}
	return face, faceNormal
}
