package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint checks if a point is inside the AABB.
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap.
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Center returns the midpoint of the box.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Extend grows the box to include the given point.
func (a AABB) Extend(point mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{
			math.Min(a.Min.X(), point.X()),
			math.Min(a.Min.Y(), point.Y()),
			math.Min(a.Min.Z(), point.Z()),
		},
		Max: mgl64.Vec3{
			math.Max(a.Max.X(), point.X()),
			math.Max(a.Max.Y(), point.Y()),
			math.Max(a.Max.Z(), point.Z()),
		},
	}
}

// IntersectsSphere checks the box against a sphere by clamping the center
// onto the box and comparing the residual distance with the radius.
func (a AABB) IntersectsSphere(center mgl64.Vec3, radius float64) bool {
	closest := mgl64.Vec3{
		math.Max(a.Min.X(), math.Min(center.X(), a.Max.X())),
		math.Max(a.Min.Y(), math.Min(center.Y(), a.Max.Y())),
		math.Max(a.Min.Z(), math.Min(center.Z(), a.Max.Z())),
	}
	return closest.Sub(center).LenSqr() <= radius*radius
}

// IntersectsRay performs the slab test against a ray starting at origin with
// the given direction, limited to maxDist. A zero direction component only
// hits when the origin lies between the matching slabs.
func (a AABB) IntersectsRay(origin, dir mgl64.Vec3, maxDist float64) bool {
	tMin := 0.0
	tMax := maxDist

	for axis := 0; axis < 3; axis++ {
		o := origin[axis]
		d := dir[axis]
		lo := a.Min[axis]
		hi := a.Max[axis]

		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}

	return true
}
