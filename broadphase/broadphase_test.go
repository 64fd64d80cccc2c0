package broadphase

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
)

func sphereBody(id actor.BodyID, position mgl64.Vec3, radius float64) *actor.CollisionBody {
	body := actor.NewRigidBody(
		actor.Transform{Position: position, Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}},
		actor.NewSphereCollider(radius),
		actor.BodyTypeDynamic,
		1.0,
	)
	body.ID = id
	return actor.NewCollisionBody(body)
}

func planeBody(id actor.BodyID) *actor.CollisionBody {
	body := actor.NewRigidBody(
		actor.Transform{Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}},
		actor.NewPlaneCollider(mgl64.Vec3{0, 1, 0}, 0),
		actor.BodyTypeStatic,
		0,
	)
	body.ID = id
	return actor.NewCollisionBody(body)
}

// bruteForcePairs is the O(n²) reference both indexes must agree with.
func bruteForcePairs(bodies []*actor.CollisionBody) map[Pair]bool {
	want := make(map[Pair]bool)
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			if ShouldPair(a.Body, b.Body) && a.AABB.Overlaps(b.AABB) {
				want[MakePair(a.ID(), b.ID())] = true
			}
		}
	}
	return want
}

func pairSet(pairs []Pair) map[Pair]bool {
	set := make(map[Pair]bool, len(pairs))
	for _, p := range pairs {
		set[p] = true
	}
	return set
}

func indexes() map[string]func() Index {
	return map[string]func() Index{
		"sweep-and-prune": func() Index { return NewSweepAndPrune() },
		"spatial-hash":    func() Index { return NewSpatialHash(2) },
	}
}

func TestQueryPairsMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	var bodies []*actor.CollisionBody
	for id := actor.BodyID(1); id <= 60; id++ {
		position := mgl64.Vec3{
			rng.Float64()*20 - 10,
			rng.Float64()*20 - 10,
			rng.Float64()*20 - 10,
		}
		bodies = append(bodies, sphereBody(id, position, 0.5+rng.Float64()))
	}
	want := bruteForcePairs(bodies)

	for name, build := range indexes() {
		t.Run(name, func(t *testing.T) {
			index := build()
			for _, cb := range bodies {
				index.Insert(cb)
			}

			got := pairSet(index.QueryPairs())
			for p := range want {
				if !got[p] {
					t.Errorf("missing pair %v", p)
				}
			}
			for p := range got {
				if !want[p] {
					t.Errorf("spurious pair %v", p)
				}
			}
		})
	}
}

func TestPairFilters(t *testing.T) {
	for name, build := range indexes() {
		t.Run(name, func(t *testing.T) {
			index := build()

			a := sphereBody(1, mgl64.Vec3{0, 0, 0}, 1)
			b := sphereBody(2, mgl64.Vec3{1, 0, 0}, 1)
			index.Insert(a)
			index.Insert(b)
			if len(index.QueryPairs()) != 1 {
				t.Fatal("overlapping pair not reported")
			}

			// Disjoint masks suppress the pair.
			a.Body.Group, a.Body.Mask = 0x1, 0x1
			b.Body.Group, b.Body.Mask = 0x2, 0x2
			if got := index.QueryPairs(); len(got) != 0 {
				t.Errorf("mask-filtered pair reported: %v", got)
			}
			a.Body.Group, a.Body.Mask = 0xFFFFFFFF, 0xFFFFFFFF
			b.Body.Group, b.Body.Mask = 0xFFFFFFFF, 0xFFFFFFFF

			// Sleep never filters: the overlap stays reported so the event
			// diff sees the pair, and the solvers decide what it means.
			a.Body.IsSleeping = true
			b.Body.IsSleeping = true
			if got := index.QueryPairs(); len(got) != 1 {
				t.Errorf("sleeping overlapping pair missing: %v", got)
			}
			a.Body.IsSleeping = false
			b.Body.IsSleeping = false

			// Neither does immobility: static trigger volumes need their
			// overlaps against other static bodies.
			a.Body.BodyType = actor.BodyTypeStatic
			b.Body.BodyType = actor.BodyTypeStatic
			if got := index.QueryPairs(); len(got) != 1 {
				t.Errorf("static-static overlapping pair missing: %v", got)
			}
		})
	}
}

func TestUpdateTracksMovement(t *testing.T) {
	for name, build := range indexes() {
		t.Run(name, func(t *testing.T) {
			index := build()

			a := sphereBody(1, mgl64.Vec3{0, 0, 0}, 1)
			b := sphereBody(2, mgl64.Vec3{10, 0, 0}, 1)
			index.Insert(a)
			index.Insert(b)
			if len(index.QueryPairs()) != 0 {
				t.Fatal("distant bodies paired")
			}

			b.Body.Transform.Position = mgl64.Vec3{1, 0, 0}
			index.Update(2)
			if len(index.QueryPairs()) != 1 {
				t.Error("pair missing after the body moved into range")
			}

			b.Body.Transform.Position = mgl64.Vec3{10, 0, 0}
			index.Update(2)
			if got := index.QueryPairs(); len(got) != 0 {
				t.Errorf("stale pair after the body moved away: %v", got)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	for name, build := range indexes() {
		t.Run(name, func(t *testing.T) {
			index := build()
			index.Insert(sphereBody(1, mgl64.Vec3{0, 0, 0}, 1))
			index.Insert(sphereBody(2, mgl64.Vec3{1, 0, 0}, 1))

			if !index.Remove(1) {
				t.Error("removing a present body reported false")
			}
			if index.Remove(1) {
				t.Error("double remove reported true")
			}
			if got := index.QueryPairs(); len(got) != 0 {
				t.Errorf("removed body still pairing: %v", got)
			}
		})
	}
}

func TestPlanePairsAgainstEverything(t *testing.T) {
	// The plane's near-infinite AABB must not break either index: it pairs
	// with bodies anywhere, however far from the origin.
	for name, build := range indexes() {
		t.Run(name, func(t *testing.T) {
			index := build()
			index.Insert(planeBody(1))
			index.Insert(sphereBody(2, mgl64.Vec3{500, 0.5, -300}, 1))

			got := index.QueryPairs()
			if len(got) != 1 || got[0] != MakePair(1, 2) {
				t.Errorf("pairs = %v, want the plane-sphere pair", got)
			}
		})
	}
}

func TestQueryAABB(t *testing.T) {
	for name, build := range indexes() {
		t.Run(name, func(t *testing.T) {
			index := build()
			index.Insert(sphereBody(1, mgl64.Vec3{0, 0, 0}, 1))
			index.Insert(sphereBody(2, mgl64.Vec3{5, 0, 0}, 1))
			index.Insert(sphereBody(3, mgl64.Vec3{20, 0, 0}, 1))

			box := actor.AABB{Min: mgl64.Vec3{-2, -2, -2}, Max: mgl64.Vec3{6, 2, 2}}
			got := index.QueryAABB(box)
			if len(got) != 2 || got[0] != 1 || got[1] != 2 {
				t.Errorf("QueryAABB = %v, want [1 2]", got)
			}
		})
	}
}

func TestQueryRay(t *testing.T) {
	for name, build := range indexes() {
		t.Run(name, func(t *testing.T) {
			index := build()
			index.Insert(sphereBody(1, mgl64.Vec3{5, 0, 0}, 1))
			index.Insert(sphereBody(2, mgl64.Vec3{5, 10, 0}, 1))

			got := index.QueryRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, 100)
			if len(got) != 1 || got[0] != 1 {
				t.Errorf("QueryRay = %v, want [1]", got)
			}
			if got := index.QueryRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, 3); len(got) != 0 {
				t.Errorf("short ray hit %v", got)
			}
		})
	}
}

func TestQuerySphere(t *testing.T) {
	for name, build := range indexes() {
		t.Run(name, func(t *testing.T) {
			index := build()
			index.Insert(sphereBody(1, mgl64.Vec3{0, 0, 0}, 1))
			index.Insert(sphereBody(2, mgl64.Vec3{10, 0, 0}, 1))

			got := index.QuerySphere(mgl64.Vec3{2, 0, 0}, 1.5)
			if len(got) != 1 || got[0] != 1 {
				t.Errorf("QuerySphere = %v, want [1]", got)
			}
		})
	}
}

func TestMakePairOrdersIDs(t *testing.T) {
	if p := MakePair(7, 3); p.A != 3 || p.B != 7 {
		t.Errorf("MakePair(7,3) = %v, want ordered", p)
	}
	if p := MakePair(3, 7); p.A != 3 || p.B != 7 {
		t.Errorf("MakePair(3,7) = %v, want ordered", p)
	}
}
