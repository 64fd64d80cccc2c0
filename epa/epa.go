// Package epa implements the Expanding Polytope Algorithm. Run after gjk
// detects an overlap, it expands the final GJK simplex inside the Minkowski
// difference until it finds the face closest to the origin, whose normal and
// distance are the minimum translation vector separating the shapes.
//
// Reference: Van den Bergen, "Proximity Queries and Penetration Depth
// Computation on 3D Game Objects" (2001).
package epa

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/akmonengine/bedrock/gjk"
)

const (
	// maxIterations bounds polytope expansion; typical convergence is 5-15.
	maxIterations = 32

	// convergenceTolerance: stop once a new support point improves the
	// closest-face distance by less than this.
	convergenceTolerance = 0.001

	// minFaceDistance: faces closer to the origin than this are treated as
	// degenerate and dropped.
	minFaceDistance = 0.0001

	// snapThreshold clamps near-zero normal components to exactly zero so
	// axis-aligned stacks resolve along clean axes.
	snapThreshold = 1e-8

	// degenerateDepth is the fallback penetration estimate when GJK hands
	// over an incomplete simplex.
	degenerateDepth = 0.01
)

// Result is the minimum translation vector for a confirmed overlap: a unit
// normal pointing from shape A toward shape B and a non-negative depth.
type Result struct {
	Normal mgl64.Vec3
	Depth  float64
}

// face is one triangle of the expanding polytope, with its outward unit
// normal and distance from the origin.
type face struct {
	points   [3]mgl64.Vec3
	normal   mgl64.Vec3
	distance float64
}

// builder holds the polytope state; pooled to keep the hot path free of
// allocations.
type builder struct {
	faces   []face
	visible []int
	edges   []edgeEntry
}

// edgeEntry counts edge occurrences among visible faces; an edge seen once is
// on the boundary of the hole left by removing them.
type edgeEntry struct {
	a, b  mgl64.Vec3
	count int
}

var builderPool = sync.Pool{
	New: func() interface{} {
		return &builder{
			faces:   make([]face, 0, 16),
			visible: make([]int, 0, 8),
			edges:   make([]edgeEntry, 0, 16),
		}
	},
}

// Penetrate computes the penetration normal and depth for two overlapping
// convex shapes, starting from the GJK simplex. Simplexes with fewer than 4
// points produce an estimated result instead of an error.
func Penetrate(a, b gjk.Convex, simplex *gjk.Simplex) (Result, error) {
	if simplex.Count < 4 {
		return degenerateResult(a, b, simplex), nil
	}

	bld := builderPool.Get().(*builder)
	defer builderPool.Put(bld)
	bld.reset()

	bld.buildInitialFaces(simplex)

	for i := 0; i < maxIterations; i++ {
		if len(bld.faces) == 0 {
			break
		}

		closestIdx := bld.closestFaceIndex()
		closest := bld.faces[closestIdx]

		if closest.distance < minFaceDistance {
			bld.faces[closestIdx] = bld.faces[len(bld.faces)-1]
			bld.faces = bld.faces[:len(bld.faces)-1]
			continue
		}

		support := gjk.MinkowskiSupport(a, b, closest.normal)
		distance := support.Dot(closest.normal)

		if distance-closest.distance < convergenceTolerance {
			return Result{Normal: closest.normal, Depth: closest.distance}, nil
		}

		bld.expand(support, closestIdx)
	}

	return Result{}, errors.Errorf("epa: no convergence after %d iterations", maxIterations)
}

// degenerateResult estimates the contact for an incomplete simplex: the
// closest simplex point for 2+ points, the center separation otherwise.
func degenerateResult(a, b gjk.Convex, simplex *gjk.Simplex) Result {
	if simplex.Count >= 2 {
		p0 := simplex.Points[0]
		p1 := simplex.Points[1]

		if p0.Len() < p1.Len() {
			return Result{Normal: safeNormal(p0), Depth: p0.Len()}
		}
		return Result{Normal: safeNormal(p1), Depth: p1.Len()}
	}

	normal := b.Center().Sub(a.Center())
	if normal.Len() < snapThreshold {
		normal = mgl64.Vec3{0, 1, 0}
	} else {
		normal = normal.Normalize()
	}
	return Result{Normal: normal, Depth: degenerateDepth}
}

func (b *builder) reset() {
	b.faces = b.faces[:0]
	b.visible = b.visible[:0]
	b.edges = b.edges[:0]
}

func (b *builder) buildInitialFaces(simplex *gjk.Simplex) {
	p0, p1, p2, p3 := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]

	candidates := [4]face{
		makeFaceOutward(p0, p1, p2, p3),
		makeFaceOutward(p0, p2, p3, p1),
		makeFaceOutward(p0, p3, p1, p2),
		makeFaceOutward(p1, p3, p2, p0),
	}

	for _, f := range candidates {
		if f.distance >= minFaceDistance {
			b.faces = append(b.faces, f)
		}
	}
	if len(b.faces) < 3 {
		b.faces = append(b.faces[:0], candidates[:]...)
	}
}

// makeFaceOutward builds a face whose normal points away from the opposite
// vertex and away from the origin.
func makeFaceOutward(p0, p1, p2, opposite mgl64.Vec3) face {
	f := face{points: [3]mgl64.Vec3{p0, p1, p2}}

	normal := p1.Sub(p0).Cross(p2.Sub(p0))
	length := normal.Len()
	if length < 1e-8 {
		f.normal = mgl64.Vec3{0, 1, 0}
		f.distance = minFaceDistance
		return f
	}
	normal = normal.Mul(1.0 / length)

	if normal.Dot(opposite.Sub(p0)) > 0 {
		normal = normal.Mul(-1)
	}

	distance := p0.Dot(normal)
	if distance < 0 {
		normal = normal.Mul(-1)
		distance = -distance
	}
	if distance < minFaceDistance {
		distance = minFaceDistance
	}

	f.normal = snapNormalToAxis(normal)
	f.distance = distance
	return f
}

func (b *builder) closestFaceIndex() int {
	closest := 0
	minDist := b.faces[0].distance
	for i := 1; i < len(b.faces); i++ {
		if b.faces[i].distance < minDist {
			closest = i
			minDist = b.faces[i].distance
		}
	}
	return closest
}

// expand removes every face visible from the support point and reconnects
// the resulting boundary edges to it.
func (b *builder) expand(support mgl64.Vec3, closestIdx int) {
	centroid := b.centroid()

	b.visible = b.visible[:0]
	for i := range b.faces {
		if support.Sub(b.faces[i].points[0]).Dot(b.faces[i].normal) > 0 {
			b.visible = append(b.visible, i)
		}
	}

	// Never remove the whole polytope.
	if len(b.visible) >= len(b.faces) {
		b.visible = append(b.visible[:0], closestIdx)
	}

	b.collectBoundaryEdges()
	b.removeVisible()

	for _, e := range b.edges {
		if e.count != 1 {
			continue
		}
		b.faces = append(b.faces, makeFaceOutward(e.a, e.b, support, centroid))
	}

	if len(b.faces) == 0 {
		b.faces = append(b.faces, face{
			points:   [3]mgl64.Vec3{support, support, support},
			normal:   mgl64.Vec3{0, 1, 0},
			distance: minFaceDistance,
		})
	}
}

func (b *builder) centroid() mgl64.Vec3 {
	if len(b.faces) == 0 {
		return mgl64.Vec3{}
	}
	sum := mgl64.Vec3{}
	n := 0
	for i := range b.faces {
		for _, p := range b.faces[i].points {
			sum = sum.Add(p)
			n++
		}
	}
	return sum.Mul(1.0 / float64(n))
}

func (b *builder) collectBoundaryEdges() {
	b.edges = b.edges[:0]

	for _, faceIdx := range b.visible {
		f := &b.faces[faceIdx]
		edges := [3][2]mgl64.Vec3{
			{f.points[0], f.points[1]},
			{f.points[1], f.points[2]},
			{f.points[2], f.points[0]},
		}

		for _, e := range edges {
			ea, eb := e[0], e[1]
			if compareVec3(ea, eb) > 0 {
				ea, eb = eb, ea
			}

			found := false
			for i := range b.edges {
				if b.edges[i].a == ea && b.edges[i].b == eb {
					b.edges[i].count++
					found = true
					break
				}
			}
			if !found {
				b.edges = append(b.edges, edgeEntry{a: ea, b: eb, count: 1})
			}
		}
	}
}

func (b *builder) removeVisible() {
	// Descending order keeps earlier indices valid during swap-with-last.
	for i := 0; i < len(b.visible)-1; i++ {
		for j := i + 1; j < len(b.visible); j++ {
			if b.visible[i] < b.visible[j] {
				b.visible[i], b.visible[j] = b.visible[j], b.visible[i]
			}
		}
	}
	for _, idx := range b.visible {
		if idx < len(b.faces) {
			b.faces[idx] = b.faces[len(b.faces)-1]
			b.faces = b.faces[:len(b.faces)-1]
		}
	}
}

func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		if math.Abs(normal[i]) < snapThreshold {
			normal[i] = 0
		}
	}
	length := normal.Len()
	if length < 1e-8 {
		return mgl64.Vec3{0, 1, 0}
	}
	return normal.Mul(1.0 / length)
}

func safeNormal(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() < snapThreshold {
		return mgl64.Vec3{0, 1, 0}
	}
	return v.Normalize()
}

func compareVec3(a, b mgl64.Vec3) int {
	for i := 0; i < 3; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
