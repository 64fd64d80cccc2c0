package broadphase

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
)

// endpoint is one end of a body's AABB interval on the sweep axis.
type endpoint struct {
	value float64
	id    actor.BodyID
	isMin bool
}

// SweepAndPrune is a single-axis sweep-and-prune index. Endpoints are kept in
// one array sorted on the X axis; sorting is deferred until QueryPairs runs
// on a dirty index. Because bodies move little between steps the endpoint
// array stays nearly sorted, so the deferred pass uses insertion sort.
type SweepAndPrune struct {
	bodies    map[actor.BodyID]*actor.CollisionBody
	endpoints []endpoint
	active    []actor.BodyID
	dirty     bool
}

// NewSweepAndPrune creates an empty sweep-and-prune index.
func NewSweepAndPrune() *SweepAndPrune {
	return &SweepAndPrune{
		bodies: make(map[actor.BodyID]*actor.CollisionBody),
	}
}

func (s *SweepAndPrune) Insert(cb *actor.CollisionBody) {
	if _, exists := s.bodies[cb.ID()]; exists {
		s.Update(cb.ID())
		return
	}
	s.bodies[cb.ID()] = cb
	s.endpoints = append(s.endpoints,
		endpoint{value: cb.AABB.Min.X(), id: cb.ID(), isMin: true},
		endpoint{value: cb.AABB.Max.X(), id: cb.ID(), isMin: false},
	)
	s.dirty = true
}

func (s *SweepAndPrune) Remove(id actor.BodyID) bool {
	if _, exists := s.bodies[id]; !exists {
		return false
	}
	delete(s.bodies, id)

	n := 0
	for _, ep := range s.endpoints {
		if ep.id != id {
			s.endpoints[n] = ep
			n++
		}
	}
	s.endpoints = s.endpoints[:n]
	return true
}

func (s *SweepAndPrune) Update(id actor.BodyID) {
	cb, exists := s.bodies[id]
	if !exists {
		return
	}
	cb.Update()
	for i := range s.endpoints {
		if s.endpoints[i].id != id {
			continue
		}
		if s.endpoints[i].isMin {
			s.endpoints[i].value = cb.AABB.Min.X()
		} else {
			s.endpoints[i].value = cb.AABB.Max.X()
		}
	}
	s.dirty = true
}

// QueryPairs sorts the endpoint array if dirty, then sweeps it with an
// active set: each min endpoint tests its body against every active body
// with a full 3-axis AABB overlap before joining the set, each max endpoint
// leaves the set.
func (s *SweepAndPrune) QueryPairs() []Pair {
	s.sortIfDirty()

	pairs := make([]Pair, 0, len(s.bodies)/2)
	s.active = s.active[:0]

	for _, ep := range s.endpoints {
		if !ep.isMin {
			for i, id := range s.active {
				if id == ep.id {
					s.active[i] = s.active[len(s.active)-1]
					s.active = s.active[:len(s.active)-1]
					break
				}
			}
			continue
		}

		cb := s.bodies[ep.id]
		for _, otherID := range s.active {
			other := s.bodies[otherID]
			if !ShouldPair(cb.Body, other.Body) {
				continue
			}
			if cb.AABB.Overlaps(other.AABB) {
				pairs = append(pairs, MakePair(ep.id, otherID))
			}
		}
		s.active = append(s.active, ep.id)
	}

	return pairs
}

func (s *SweepAndPrune) QueryAABB(box actor.AABB) []actor.BodyID {
	var hits []actor.BodyID
	for id, cb := range s.bodies {
		if cb.AABB.Overlaps(box) {
			hits = append(hits, id)
		}
	}
	sortIDs(hits)
	return hits
}

func (s *SweepAndPrune) QueryRay(origin, dir mgl64.Vec3, maxDist float64) []actor.BodyID {
	var hits []actor.BodyID
	for id, cb := range s.bodies {
		if cb.AABB.IntersectsRay(origin, dir, maxDist) {
			hits = append(hits, id)
		}
	}
	sortIDs(hits)
	return hits
}

func (s *SweepAndPrune) QuerySphere(center mgl64.Vec3, radius float64) []actor.BodyID {
	var hits []actor.BodyID
	for id, cb := range s.bodies {
		if cb.AABB.IntersectsSphere(center, radius) {
			hits = append(hits, id)
		}
	}
	sortIDs(hits)
	return hits
}

func (s *SweepAndPrune) sortIfDirty() {
	if !s.dirty {
		return
	}
	// Insertion sort: near O(n) on the nearly-sorted endpoint array.
	eps := s.endpoints
	for i := 1; i < len(eps); i++ {
		key := eps[i]
		j := i - 1
		for j >= 0 && eps[j].value > key.value {
			eps[j+1] = eps[j]
			j--
		}
		eps[j+1] = key
	}
	s.dirty = false
}

func sortIDs(ids []actor.BodyID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
