package collide

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
)

func newTestBody(id actor.BodyID, position mgl64.Vec3, collider *actor.Collider, bodyType actor.BodyType) *actor.CollisionBody {
	body := actor.NewRigidBody(
		actor.Transform{Position: position, Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}},
		collider,
		bodyType,
		1.0,
	)
	body.ID = id
	return actor.NewCollisionBody(body)
}

func vecNear(a, b mgl64.Vec3, eps float64) bool {
	return a.Sub(b).Len() < eps
}

func TestSphereSphereOverlap(t *testing.T) {
	a := newTestBody(1, mgl64.Vec3{0, 0, 0}, actor.NewSphereCollider(1), actor.BodyTypeDynamic)
	b := newTestBody(2, mgl64.Vec3{1.5, 0, 0}, actor.NewSphereCollider(1), actor.BodyTypeDynamic)

	m := Test(a, b)
	if m == nil {
		t.Fatal("expected contact for overlapping spheres")
	}
	if math.Abs(m.Penetration-0.5) > 1e-9 {
		t.Errorf("penetration = %v, want 0.5", m.Penetration)
	}
	if !vecNear(m.Normal, mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("normal = %v, want (1,0,0)", m.Normal)
	}
	if len(m.Points) != 1 {
		t.Fatalf("contact points = %d, want 1", len(m.Points))
	}
}

func TestSphereSphereSeparated(t *testing.T) {
	a := newTestBody(1, mgl64.Vec3{0, 0, 0}, actor.NewSphereCollider(1), actor.BodyTypeDynamic)
	b := newTestBody(2, mgl64.Vec3{5, 0, 0}, actor.NewSphereCollider(1), actor.BodyTypeDynamic)

	if m := Test(a, b); m != nil {
		t.Errorf("expected no contact, got penetration %v", m.Penetration)
	}
}

func TestSphereSphereConcentric(t *testing.T) {
	a := newTestBody(1, mgl64.Vec3{0, 0, 0}, actor.NewSphereCollider(1), actor.BodyTypeDynamic)
	b := newTestBody(2, mgl64.Vec3{0, 0, 0}, actor.NewSphereCollider(1), actor.BodyTypeDynamic)

	m := Test(a, b)
	if m == nil {
		t.Fatal("expected contact for concentric spheres")
	}
	if !vecNear(m.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Errorf("degenerate normal = %v, want up axis", m.Normal)
	}
	if math.Abs(m.Penetration-2.0) > 1e-9 {
		t.Errorf("penetration = %v, want 2", m.Penetration)
	}
}

func TestBoxBoxSeparated(t *testing.T) {
	a := newTestBody(1, mgl64.Vec3{0, 0, 0}, actor.NewBoxCollider(mgl64.Vec3{1, 1, 1}), actor.BodyTypeDynamic)
	b := newTestBody(2, mgl64.Vec3{3, 0, 0}, actor.NewBoxCollider(mgl64.Vec3{1, 1, 1}), actor.BodyTypeDynamic)

	if m := Test(a, b); m != nil {
		t.Errorf("boxes at distance 3 should not collide, got penetration %v", m.Penetration)
	}
}

func TestBoxBoxFaceOverlap(t *testing.T) {
	a := newTestBody(1, mgl64.Vec3{0, 0, 0}, actor.NewBoxCollider(mgl64.Vec3{1, 1, 1}), actor.BodyTypeDynamic)
	b := newTestBody(2, mgl64.Vec3{0, 1.8, 0}, actor.NewBoxCollider(mgl64.Vec3{1, 1, 1}), actor.BodyTypeDynamic)

	m := Test(a, b)
	if m == nil {
		t.Fatal("expected contact for stacked boxes")
	}
	if math.Abs(m.Penetration-0.2) > 1e-9 {
		t.Errorf("penetration = %v, want 0.2", m.Penetration)
	}
	if !vecNear(m.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Errorf("normal = %v, want (0,1,0)", m.Normal)
	}
	// A full face overlap should produce a clipped patch, not a single point.
	if len(m.Points) < 4 {
		t.Errorf("contact points = %d, want a 4-point patch", len(m.Points))
	}
	for i, p := range m.Points {
		if p.Penetration < 0 {
			t.Errorf("point %d has negative penetration %v", i, p.Penetration)
		}
	}
}

func TestBoxBoxRotatedOverlap(t *testing.T) {
	a := newTestBody(1, mgl64.Vec3{0, 0, 0}, actor.NewBoxCollider(mgl64.Vec3{1, 1, 1}), actor.BodyTypeDynamic)

	// Rotate the second box 45 degrees around two axes so the closest
	// features are edges, then push it into the first box's corner region.
	rot := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}).
		Mul(mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{1, 0, 0}))
	body := actor.NewRigidBody(
		actor.Transform{Position: mgl64.Vec3{2.2, 0, 0}, Rotation: rot, Scale: mgl64.Vec3{1, 1, 1}},
		actor.NewBoxCollider(mgl64.Vec3{1, 1, 1}),
		actor.BodyTypeDynamic,
		1.0,
	)
	body.ID = 2
	b := actor.NewCollisionBody(body)

	m := Test(a, b)
	if m == nil {
		t.Fatal("expected contact for interpenetrating rotated boxes")
	}
	if m.Penetration < 0 {
		t.Errorf("penetration = %v, want non-negative", m.Penetration)
	}
	if m.Normal.Dot(mgl64.Vec3{1, 0, 0}) <= 0 {
		t.Errorf("normal %v should point from A toward B", m.Normal)
	}
}

func TestSpherePlane(t *testing.T) {
	sphere := newTestBody(1, mgl64.Vec3{0, 0.5, 0}, actor.NewSphereCollider(1), actor.BodyTypeDynamic)
	plane := newTestBody(2, mgl64.Vec3{0, 0, 0}, actor.NewPlaneCollider(mgl64.Vec3{0, 1, 0}, 0), actor.BodyTypeStatic)

	m := Test(sphere, plane)
	if m == nil {
		t.Fatal("expected contact for sphere resting through plane")
	}
	if math.Abs(m.Penetration-0.5) > 1e-9 {
		t.Errorf("penetration = %v, want 0.5", m.Penetration)
	}
	if !vecNear(m.Normal, mgl64.Vec3{0, -1, 0}, 1e-9) {
		t.Errorf("normal = %v, want (0,-1,0) pointing into the plane", m.Normal)
	}
}

func TestPlaneSphereMirrored(t *testing.T) {
	sphere := newTestBody(1, mgl64.Vec3{0, 0.5, 0}, actor.NewSphereCollider(1), actor.BodyTypeDynamic)
	plane := newTestBody(2, mgl64.Vec3{0, 0, 0}, actor.NewPlaneCollider(mgl64.Vec3{0, 1, 0}, 0), actor.BodyTypeStatic)

	m := Test(plane, sphere)
	if m == nil {
		t.Fatal("expected contact for mirrored plane-sphere pair")
	}
	if m.BodyA != 2 || m.BodyB != 1 {
		t.Errorf("flipped manifold ids = (%d,%d), want (2,1)", m.BodyA, m.BodyB)
	}
	// Flipped: normal now runs from the plane toward the sphere.
	if !vecNear(m.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Errorf("normal = %v, want (0,1,0)", m.Normal)
	}
}

func TestBoxPlaneContactsPerVertex(t *testing.T) {
	box := newTestBody(1, mgl64.Vec3{0, 0.8, 0}, actor.NewBoxCollider(mgl64.Vec3{1, 1, 1}), actor.BodyTypeDynamic)
	plane := newTestBody(2, mgl64.Vec3{0, 0, 0}, actor.NewPlaneCollider(mgl64.Vec3{0, 1, 0}, 0), actor.BodyTypeStatic)

	m := Test(box, plane)
	if m == nil {
		t.Fatal("expected contact for box sunk into plane")
	}
	if len(m.Points) != 4 {
		t.Fatalf("contact points = %d, want 4 (one per below-plane vertex)", len(m.Points))
	}
	if math.Abs(m.Penetration-0.2) > 1e-9 {
		t.Errorf("penetration = %v, want 0.2", m.Penetration)
	}
	for i, p := range m.Points {
		if math.Abs(p.Penetration-0.2) > 1e-9 {
			t.Errorf("point %d penetration = %v, want 0.2", i, p.Penetration)
		}
	}
}

func TestCapsulePlaneLying(t *testing.T) {
	// Capsule rotated to lie along X, both cap centers at height 0.5 with
	// radius 1: both endpoints penetrate by 0.5.
	rot := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	body := actor.NewRigidBody(
		actor.Transform{Position: mgl64.Vec3{0, 0.5, 0}, Rotation: rot, Scale: mgl64.Vec3{1, 1, 1}},
		actor.NewCapsuleCollider(1, 2),
		actor.BodyTypeDynamic,
		1.0,
	)
	body.ID = 1
	capsule := actor.NewCollisionBody(body)
	plane := newTestBody(2, mgl64.Vec3{0, 0, 0}, actor.NewPlaneCollider(mgl64.Vec3{0, 1, 0}, 0), actor.BodyTypeStatic)

	m := Test(capsule, plane)
	if m == nil {
		t.Fatal("expected contact for capsule lying in plane")
	}
	if len(m.Points) != 2 {
		t.Fatalf("contact points = %d, want one per axis endpoint", len(m.Points))
	}
	if math.Abs(m.Penetration-0.5) > 1e-9 {
		t.Errorf("penetration = %v, want 0.5", m.Penetration)
	}
}

func TestCapsuleCapsuleParallel(t *testing.T) {
	a := newTestBody(1, mgl64.Vec3{0, 0, 0}, actor.NewCapsuleCollider(0.5, 1), actor.BodyTypeDynamic)
	b := newTestBody(2, mgl64.Vec3{0.8, 0, 0}, actor.NewCapsuleCollider(0.5, 1), actor.BodyTypeDynamic)

	m := Test(a, b)
	if m == nil {
		t.Fatal("expected contact for parallel overlapping capsules")
	}
	if math.Abs(m.Penetration-0.2) > 1e-9 {
		t.Errorf("penetration = %v, want 0.2", m.Penetration)
	}
	if !vecNear(m.Normal, mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("normal = %v, want (1,0,0)", m.Normal)
	}
}

func TestCapsuleCapsuleCrossed(t *testing.T) {
	a := newTestBody(1, mgl64.Vec3{0, 0, 0}, actor.NewCapsuleCollider(0.5, 1), actor.BodyTypeDynamic)

	rot := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	body := actor.NewRigidBody(
		actor.Transform{Position: mgl64.Vec3{0, 0, 0.9}, Rotation: rot, Scale: mgl64.Vec3{1, 1, 1}},
		actor.NewCapsuleCollider(0.5, 1),
		actor.BodyTypeDynamic,
		1.0,
	)
	body.ID = 2
	b := actor.NewCollisionBody(body)

	m := Test(a, b)
	if m == nil {
		t.Fatal("expected contact for crossed capsules")
	}
	if math.Abs(m.Penetration-0.1) > 1e-9 {
		t.Errorf("penetration = %v, want 0.1", m.Penetration)
	}
	if !vecNear(m.Normal, mgl64.Vec3{0, 0, 1}, 1e-9) {
		t.Errorf("normal = %v, want (0,0,1)", m.Normal)
	}
}

func TestSphereBoxOutside(t *testing.T) {
	sphere := newTestBody(1, mgl64.Vec3{2.4, 0, 0}, actor.NewSphereCollider(0.5), actor.BodyTypeDynamic)
	box := newTestBody(2, mgl64.Vec3{0, 0, 0}, actor.NewBoxCollider(mgl64.Vec3{2, 2, 2}), actor.BodyTypeDynamic)

	m := Test(sphere, box)
	if m == nil {
		t.Fatal("expected contact for sphere against box face")
	}
	if math.Abs(m.Penetration-0.1) > 1e-9 {
		t.Errorf("penetration = %v, want 0.1", m.Penetration)
	}
	if !vecNear(m.Normal, mgl64.Vec3{-1, 0, 0}, 1e-9) {
		t.Errorf("normal = %v, want (-1,0,0) pointing from sphere toward box", m.Normal)
	}
	if !vecNear(m.Points[0].Position, mgl64.Vec3{2, 0, 0}, 1e-9) {
		t.Errorf("contact at %v, want (2,0,0)", m.Points[0].Position)
	}
}

func TestSphereBoxCenterInside(t *testing.T) {
	sphere := newTestBody(1, mgl64.Vec3{1.5, 0, 0}, actor.NewSphereCollider(0.5), actor.BodyTypeDynamic)
	box := newTestBody(2, mgl64.Vec3{0, 0, 0}, actor.NewBoxCollider(mgl64.Vec3{2, 2, 2}), actor.BodyTypeDynamic)

	m := Test(sphere, box)
	if m == nil {
		t.Fatal("expected contact for sphere center inside box")
	}
	// Closest face is +X: depth to face 0.5 plus the radius.
	if math.Abs(m.Penetration-1.0) > 1e-9 {
		t.Errorf("penetration = %v, want 1.0", m.Penetration)
	}
	if !vecNear(m.Normal, mgl64.Vec3{-1, 0, 0}, 1e-9) {
		t.Errorf("normal = %v, want (-1,0,0)", m.Normal)
	}
}

func TestConvexFallbackCylinderBox(t *testing.T) {
	cylinder := newTestBody(1, mgl64.Vec3{0, 1.4, 0}, actor.NewCylinderCollider(0.5, 1), actor.BodyTypeDynamic)
	box := newTestBody(2, mgl64.Vec3{0, 0, 0}, actor.NewBoxCollider(mgl64.Vec3{1, 1, 1}), actor.BodyTypeDynamic)

	m := Test(cylinder, box)
	if m == nil {
		t.Fatal("expected fallback contact for cylinder overlapping box")
	}
	if m.Penetration <= 0 {
		t.Errorf("penetration = %v, want positive", m.Penetration)
	}
	if len(m.Points) == 0 {
		t.Fatal("fallback manifold has no contact points")
	}
}

func TestConvexFallbackSeparated(t *testing.T) {
	cylinder := newTestBody(1, mgl64.Vec3{0, 5, 0}, actor.NewCylinderCollider(0.5, 1), actor.BodyTypeDynamic)
	box := newTestBody(2, mgl64.Vec3{0, 0, 0}, actor.NewBoxCollider(mgl64.Vec3{1, 1, 1}), actor.BodyTypeDynamic)

	if m := Test(cylinder, box); m != nil {
		t.Errorf("expected no contact for separated shapes, got penetration %v", m.Penetration)
	}
}

func TestTriggerFlagPropagates(t *testing.T) {
	a := newTestBody(1, mgl64.Vec3{0, 0, 0}, actor.NewSphereCollider(1), actor.BodyTypeDynamic)
	trigger := actor.NewSphereCollider(1)
	trigger.IsTrigger = true
	b := newTestBody(2, mgl64.Vec3{1, 0, 0}, trigger, actor.BodyTypeDynamic)

	m := Test(a, b)
	if m == nil {
		t.Fatal("expected overlap")
	}
	if !m.IsTrigger {
		t.Error("manifold should inherit the trigger flag")
	}
}

func TestManifoldLocalAnchors(t *testing.T) {
	a := newTestBody(1, mgl64.Vec3{0, 0, 0}, actor.NewSphereCollider(1), actor.BodyTypeDynamic)
	b := newTestBody(2, mgl64.Vec3{1.5, 0, 0}, actor.NewSphereCollider(1), actor.BodyTypeDynamic)

	m := Test(a, b)
	if m == nil {
		t.Fatal("expected overlap")
	}
	p := m.Points[0]
	if !vecNear(a.Body.PointToWorld(p.LocalA), p.Position, 1e-9) {
		t.Errorf("LocalA does not map back to the contact position")
	}
	if !vecNear(b.Body.PointToWorld(p.LocalB), p.Position, 1e-9) {
		t.Errorf("LocalB does not map back to the contact position")
	}
}
