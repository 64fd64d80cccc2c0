package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// clippedPoint is a contact candidate produced by face clipping: a world
// position and its depth behind the reference face.
type clippedPoint struct {
	position mgl64.Vec3
	depth    float64
}

const clipEpsilon = 1e-9

// clipFaceContacts clips the incident face against the side planes of the
// reference face (Sutherland-Hodgman), then keeps the points lying behind the
// reference plane. refFace must be wound counterclockwise seen from outside
// along refNormal.
func clipFaceContacts(refFace []mgl64.Vec3, refNormal mgl64.Vec3, incFace []mgl64.Vec3) []clippedPoint {
	if len(refFace) < 3 || len(incFace) == 0 {
		return nil
	}

	polygon := incFace
	for i := 0; i < len(refFace); i++ {
		v0 := refFace[i]
		v1 := refFace[(i+1)%len(refFace)]
		edge := v1.Sub(v0)

		// For counterclockwise winding the inward side normal of each edge is
		// refNormal × edge.
		inward := refNormal.Cross(edge)
		if inward.LenSqr() < clipEpsilon {
			continue
		}
		inward = inward.Normalize()

		polygon = clipPolygonAgainstPlane(polygon, inward, inward.Dot(v0))
		if len(polygon) == 0 {
			return nil
		}
	}

	// Reference face plane: refNormal·p = refD. Points behind it (depth > 0)
	// are actual contacts; points in front were clipped fragments above the
	// face and are dropped.
	refD := refNormal.Dot(refFace[0])

	var contacts []clippedPoint
	for _, p := range polygon {
		depth := refD - refNormal.Dot(p)
		if depth >= -clipEpsilon {
			if depth < 0 {
				depth = 0
			}
			contacts = append(contacts, clippedPoint{position: p, depth: depth})
		}
	}
	return reduceContacts(contacts)
}

// clipPolygonAgainstPlane keeps the part of the polygon on the positive side
// of the plane normal·p >= d, inserting intersection points on crossing
// edges.
func clipPolygonAgainstPlane(polygon []mgl64.Vec3, normal mgl64.Vec3, d float64) []mgl64.Vec3 {
	if len(polygon) == 0 {
		return nil
	}
	if len(polygon) == 1 {
		if normal.Dot(polygon[0]) >= d-clipEpsilon {
			return polygon
		}
		return nil
	}

	out := make([]mgl64.Vec3, 0, len(polygon)+1)
	for i := 0; i < len(polygon); i++ {
		current := polygon[i]
		next := polygon[(i+1)%len(polygon)]

		currentInside := normal.Dot(current) >= d-clipEpsilon
		nextInside := normal.Dot(next) >= d-clipEpsilon

		if currentInside {
			out = append(out, current)
		}
		if currentInside != nextInside {
			if p, ok := linePlaneIntersect(current, next, normal, d); ok {
				out = append(out, p)
			}
		}
	}
	return out
}

func linePlaneIntersect(a, b, normal mgl64.Vec3, d float64) (mgl64.Vec3, bool) {
	ab := b.Sub(a)
	denom := normal.Dot(ab)
	if denom > -clipEpsilon && denom < clipEpsilon {
		return mgl64.Vec3{}, false
	}
	t := (d - normal.Dot(a)) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Mul(t)), true
}

// reduceContacts caps the patch at 4 points: the deepest point, then
// greedily the points farthest from those already kept. Four well-spread
// points are enough to stop a resting box from rocking.
func reduceContacts(contacts []clippedPoint) []clippedPoint {
	if len(contacts) <= 4 {
		return contacts
	}

	deepest := 0
	for i := 1; i < len(contacts); i++ {
		if contacts[i].depth > contacts[deepest].depth {
			deepest = i
		}
	}

	kept := []clippedPoint{contacts[deepest]}
	used := map[int]bool{deepest: true}

	for len(kept) < 4 {
		best := -1
		bestDist := -1.0
		for i := range contacts {
			if used[i] {
				continue
			}
			minDist := math.MaxFloat64
			for _, k := range kept {
				if d := contacts[i].position.Sub(k.position).LenSqr(); d < minDist {
					minDist = d
				}
			}
			if minDist > bestDist {
				bestDist = minDist
				best = i
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		kept = append(kept, contacts[best])
	}
	return kept
}
