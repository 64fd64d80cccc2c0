package broadphase

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
)

// cellKey addresses one cell of the uniform grid.
type cellKey struct {
	X, Y, Z int
}

// SpatialHash is a uniform hashed grid index. Each body registers into every
// cell its AABB overlaps; pairing happens per cell and is de-duplicated
// through the canonical (min-id, max-id) pair key, so a pair sharing several
// cells is reported once.
type SpatialHash struct {
	cellSize float64
	bodies   map[actor.BodyID]*actor.CollisionBody
	cells    map[cellKey][]actor.BodyID
	// Bodies whose AABB is too large to rasterize into cells (planes);
	// they pair against every body instead.
	unbounded []actor.BodyID
	dirty     bool
}

// unboundedSpan is the AABB extent beyond which a body skips cell
// registration. Plane AABBs reach 1e10.
const unboundedSpan = 1e8

// NewSpatialHash creates a grid with the given cell size. Cells around the
// collider size work best; too small and large bodies span many cells, too
// large and unrelated bodies share cells.
func NewSpatialHash(cellSize float64) *SpatialHash {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialHash{
		cellSize: cellSize,
		bodies:   make(map[actor.BodyID]*actor.CollisionBody),
		cells:    make(map[cellKey][]actor.BodyID),
	}
}

// CellSize returns the configured grid cell size.
func (g *SpatialHash) CellSize() float64 { return g.cellSize }

func (g *SpatialHash) Insert(cb *actor.CollisionBody) {
	g.bodies[cb.ID()] = cb
	g.dirty = true
}

func (g *SpatialHash) Remove(id actor.BodyID) bool {
	if _, exists := g.bodies[id]; !exists {
		return false
	}
	delete(g.bodies, id)
	g.dirty = true
	return true
}

func (g *SpatialHash) Update(id actor.BodyID) {
	cb, exists := g.bodies[id]
	if !exists {
		return
	}
	cb.Update()
	g.dirty = true
}

// QueryPairs rebuilds the cell registry if dirty, then pairs bodies sharing a
// cell, de-duplicating across cells.
func (g *SpatialHash) QueryPairs() []Pair {
	g.rebuildIfDirty()

	seen := make(map[Pair]bool)
	pairs := make([]Pair, 0, len(g.bodies)/2)

	for _, unboundedID := range g.unbounded {
		a := g.bodies[unboundedID]
		for id, b := range g.bodies {
			if id == unboundedID {
				continue
			}
			pair := MakePair(unboundedID, id)
			if seen[pair] {
				continue
			}
			seen[pair] = true
			if ShouldPair(a.Body, b.Body) && a.AABB.Overlaps(b.AABB) {
				pairs = append(pairs, pair)
			}
		}
	}

	for _, ids := range g.cells {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pair := MakePair(ids[i], ids[j])
				if seen[pair] {
					continue
				}
				seen[pair] = true

				a := g.bodies[pair.A]
				b := g.bodies[pair.B]
				if !ShouldPair(a.Body, b.Body) {
					continue
				}
				if a.AABB.Overlaps(b.AABB) {
					pairs = append(pairs, pair)
				}
			}
		}
	}

	// Map iteration order is random; sort for a deterministic step.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

func (g *SpatialHash) QueryAABB(box actor.AABB) []actor.BodyID {
	g.rebuildIfDirty()

	var hits []actor.BodyID
	visited := make(map[actor.BodyID]bool)

	for _, id := range g.unbounded {
		visited[id] = true
		if g.bodies[id].AABB.Overlaps(box) {
			hits = append(hits, id)
		}
	}

	minCell := g.worldToCell(box.Min)
	maxCell := g.worldToCell(box.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				for _, id := range g.cells[cellKey{x, y, z}] {
					if visited[id] {
						continue
					}
					visited[id] = true
					if g.bodies[id].AABB.Overlaps(box) {
						hits = append(hits, id)
					}
				}
			}
		}
	}
	sortIDs(hits)
	return hits
}

func (g *SpatialHash) QueryRay(origin, dir mgl64.Vec3, maxDist float64) []actor.BodyID {
	// Rays can cross many cells; test cached AABBs directly.
	var hits []actor.BodyID
	for id, cb := range g.bodies {
		if cb.AABB.IntersectsRay(origin, dir, maxDist) {
			hits = append(hits, id)
		}
	}
	sortIDs(hits)
	return hits
}

func (g *SpatialHash) QuerySphere(center mgl64.Vec3, radius float64) []actor.BodyID {
	rv := mgl64.Vec3{radius, radius, radius}
	box := actor.AABB{Min: center.Sub(rv), Max: center.Add(rv)}

	var hits []actor.BodyID
	for _, id := range g.QueryAABB(box) {
		if g.bodies[id].AABB.IntersectsSphere(center, radius) {
			hits = append(hits, id)
		}
	}
	return hits
}

func (g *SpatialHash) rebuildIfDirty() {
	if !g.dirty {
		return
	}
	for key := range g.cells {
		delete(g.cells, key)
	}
	g.unbounded = g.unbounded[:0]

	for id, cb := range g.bodies {
		span := cb.AABB.Max.Sub(cb.AABB.Min)
		if span.X() > unboundedSpan || span.Y() > unboundedSpan || span.Z() > unboundedSpan {
			g.unbounded = append(g.unbounded, id)
			continue
		}
		minCell := g.worldToCell(cb.AABB.Min)
		maxCell := g.worldToCell(cb.AABB.Max)
		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					key := cellKey{x, y, z}
					g.cells[key] = append(g.cells[key], id)
				}
			}
		}
	}

	// Deterministic order inside each cell.
	for _, ids := range g.cells {
		sortIDs(ids)
	}
	sortIDs(g.unbounded)
	g.dirty = false
}

func (g *SpatialHash) worldToCell(pos mgl64.Vec3) cellKey {
	return cellKey{
		X: int(math.Floor(pos.X() / g.cellSize)),
		Y: int(math.Floor(pos.Y() / g.cellSize)),
		Z: int(math.Floor(pos.Z() / g.cellSize)),
	}
}
