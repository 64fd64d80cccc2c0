// Package collide is the narrow phase: exact shape-pair intersection tests
// that turn broad-phase candidate pairs into contact manifolds. Every test
// either returns nil (no contact) or a manifold whose normal points from body
// A toward body B with non-negative penetration and at least one contact
// point.
package collide

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
)

// ContactPoint is one point of a contact patch. The impulse accumulators are
// owned by the contact solver and live only for the step the manifold was
// generated in; manifolds are rebuilt from scratch every step.
type ContactPoint struct {
	// Position is the contact location in world space.
	Position mgl64.Vec3
	// LocalA and LocalB anchor the contact in each body's local frame, used
	// by the position correction pass after the bodies have moved.
	LocalA mgl64.Vec3
	LocalB mgl64.Vec3

	Penetration float64

	NormalImpulse  float64
	TangentImpulse [2]float64
}

// ContactManifold describes one colliding pair for one step.
type ContactManifold struct {
	BodyA actor.BodyID
	BodyB actor.BodyID

	// Normal is the shared separating direction, unit length, pointing from
	// body A toward body B.
	Normal mgl64.Vec3
	// Penetration is the deepest overlap along the normal.
	Penetration float64

	// IsTrigger manifolds produce overlap events but are never solved.
	IsTrigger bool

	Points []ContactPoint
}

func newManifold(a, b *actor.CollisionBody, normal mgl64.Vec3, penetration float64) *ContactManifold {
	return &ContactManifold{
		BodyA:       a.ID(),
		BodyB:       b.ID(),
		Normal:      normal,
		Penetration: penetration,
		IsTrigger:   a.IsTrigger() || b.IsTrigger(),
	}
}

func (m *ContactManifold) addPoint(a, b *actor.CollisionBody, position mgl64.Vec3, penetration float64) {
	m.Points = append(m.Points, ContactPoint{
		Position:    position,
		LocalA:      a.Body.PointToLocal(position),
		LocalB:      b.Body.PointToLocal(position),
		Penetration: penetration,
	})
}

// Flip reverses the manifold orientation: ids swapped, normal negated, local
// anchors exchanged. Used when a pair was tested through its mirrored
// combination.
func (m *ContactManifold) Flip() *ContactManifold {
	if m == nil {
		return nil
	}
	m.BodyA, m.BodyB = m.BodyB, m.BodyA
	m.Normal = m.Normal.Mul(-1)
	for i := range m.Points {
		m.Points[i].LocalA, m.Points[i].LocalB = m.Points[i].LocalB, m.Points[i].LocalA
	}
	return m
}
