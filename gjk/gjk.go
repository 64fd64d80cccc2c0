// Package gjk implements the Gilbert-Johnson-Keerthi algorithm for convex
// overlap testing. GJK decides whether two convex shapes intersect by testing
// whether their Minkowski difference contains the origin, building a simplex
// incrementally from support points.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance
//     Between Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Convex is any shape that can answer world-space support queries. The
// narrow phase feeds collision bodies through this interface.
type Convex interface {
	// SupportWorld returns the furthest point of the shape in the given
	// world-space direction.
	SupportWorld(direction mgl64.Vec3) mgl64.Vec3
	// Center returns a point inside the shape, used to seed the search
	// direction.
	Center() mgl64.Vec3
}

// Simplex holds 1-4 points of the Minkowski difference. On a detected
// overlap it is always a tetrahedron containing the origin, which EPA uses
// as its starting polytope.
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

// SimplexPool recycles simplexes across narrow-phase calls.
var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// MinkowskiSupport returns the support point of the Minkowski difference
// A - B in the given direction.
func MinkowskiSupport(a, b Convex, direction mgl64.Vec3) mgl64.Vec3 {
	supportA := a.SupportWorld(direction)
	supportB := b.SupportWorld(direction.Mul(-1))
	return supportA.Sub(supportB)
}

// Intersect reports whether the two convex shapes overlap. The simplex is
// modified in place; when the result is true it contains the tetrahedron
// enclosing the origin.
func Intersect(a, b Convex, simplex *Simplex) bool {
	// Seed the search toward the other shape; converges in fewer iterations
	// than a fixed direction.
	direction := b.Center().Sub(a.Center())
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.Points[0] = MinkowskiSupport(a, b, direction)
	simplex.Count = 1

	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < 1e-16 {
		// Shapes exactly touching at a point.
		return true
	}

	const maxIterations = 32
	for i := 0; i < maxIterations; i++ {
		newPoint := MinkowskiSupport(a, b, direction)

		// If the new support point does not pass the origin along the search
		// direction, the origin is unreachable: proven separation.
		if newPoint.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = newPoint
		simplex.Count++

		if containsOrigin(simplex, &direction) {
			return true
		}
	}

	// Failed to converge; treat as separated.
	return false
}

// containsOrigin tests the simplex against the origin, reducing it to its
// closest feature and updating the search direction when the origin lies
// outside.
func containsOrigin(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[1]
	b := simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	// Degenerate: both points coincide.
	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	// Voronoi region of point A alone.
	if ab.Dot(ao) <= 0 {
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	abPerp := ab.Cross(ao).Cross(ab)
	if abPerp.LenSqr() < 1e-8 {
		// Origin sits on the segment.
		return true
	}

	*direction = abPerp
	return false
}

func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[2] // most recent point
	b := simplex.Points[1]
	c := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)

	abc := ab.Cross(ac)

	// Collinear points: fall back to the line case.
	if abc.LenSqr() < 1e-10 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		return line(simplex, direction)
	}

	// Edge AB region.
	abPerp := ab.Cross(abc)
	if abPerp.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	// Edge AC region.
	acPerp := abc.Cross(ac)
	if acPerp.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		// Below the triangle: reverse winding so orientation stays outward.
		simplex.Points[0] = a
		simplex.Points[1] = c
		simplex.Points[2] = b
		simplex.Count = 3
		*direction = abc.Mul(-1)
	}

	return false
}

func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[3] // most recent point
	b := simplex.Points[2]
	c := simplex.Points[1]
	d := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	// Face normals must point away from the opposite vertex.
	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}
	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}
	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	// Degenerate tetrahedron: retry as a triangle.
	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if abc.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if acd.Dot(ao) > 0 {
		simplex.Points[0] = d
		simplex.Points[1] = c
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if adb.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = d
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	return true
}
