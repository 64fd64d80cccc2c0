package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/math3d"
)

// ShapeType tags the collider variant.
type ShapeType int

const (
	ShapeSphere ShapeType = iota
	ShapeBox
	ShapeCylinder
	ShapeCapsule
	ShapePlane
	ShapeMesh
)

func (s ShapeType) String() string {
	switch s {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	case ShapeCapsule:
		return "capsule"
	case ShapePlane:
		return "plane"
	case ShapeMesh:
		return "mesh"
	}
	return "unknown"
}

// Collider is a tagged shape variant attached to a rigid body. Shape
// parameters are per-variant; Offset and LocalRotation place the shape
// relative to the owning body's transform. Cylinders and capsules are aligned
// with the local Y axis, half-height measured from the center.
type Collider struct {
	Type ShapeType

	// Sphere, cylinder, capsule
	Radius float64
	// Cylinder, capsule: half the axis length (capsule: excluding the caps)
	HalfHeight float64
	// Box
	HalfExtents mgl64.Vec3
	// Plane: Normal·p = Distance, normal must be unit length
	Normal   mgl64.Vec3
	Distance float64
	// Mesh
	Vertices []mgl64.Vec3
	Indices  []int

	Offset        mgl64.Vec3
	LocalRotation mgl64.Quat

	IsTrigger bool
}

func NewSphereCollider(radius float64) *Collider {
	return &Collider{Type: ShapeSphere, Radius: radius, LocalRotation: mgl64.QuatIdent()}
}

func NewBoxCollider(halfExtents mgl64.Vec3) *Collider {
	return &Collider{Type: ShapeBox, HalfExtents: halfExtents, LocalRotation: mgl64.QuatIdent()}
}

func NewCylinderCollider(radius, halfHeight float64) *Collider {
	return &Collider{Type: ShapeCylinder, Radius: radius, HalfHeight: halfHeight, LocalRotation: mgl64.QuatIdent()}
}

func NewCapsuleCollider(radius, halfHeight float64) *Collider {
	return &Collider{Type: ShapeCapsule, Radius: radius, HalfHeight: halfHeight, LocalRotation: mgl64.QuatIdent()}
}

func NewPlaneCollider(normal mgl64.Vec3, distance float64) *Collider {
	return &Collider{Type: ShapePlane, Normal: math3d.SafeNormalize(normal), Distance: distance, LocalRotation: mgl64.QuatIdent()}
}

func NewMeshCollider(vertices []mgl64.Vec3, indices []int) *Collider {
	return &Collider{Type: ShapeMesh, Vertices: vertices, Indices: indices, LocalRotation: mgl64.QuatIdent()}
}

// WorldCenter returns the collider center in world space, honoring the local
// offset.
func (c *Collider) WorldCenter(t Transform) mgl64.Vec3 {
	return t.Apply(c.Offset)
}

// WorldRotation composes the body rotation with the collider's local
// rotation.
func (c *Collider) WorldRotation(t Transform) mgl64.Quat {
	return t.Rotation.Mul(c.LocalRotation).Normalize()
}

// ComputeAABB calculates the world-space bounding box of the collider under
// the given transform. Boxes and meshes transform their vertices; round
// shapes expand around their axis endpoints; planes become a thick slab
// extended to near-infinity perpendicular to the normal.
func (c *Collider) ComputeAABB(t Transform) AABB {
	switch c.Type {
	case ShapeSphere:
		center := c.WorldCenter(t)
		r := c.Radius * maxScale(t.Scale)
		rv := mgl64.Vec3{r, r, r}
		return AABB{Min: center.Sub(rv), Max: center.Add(rv)}

	case ShapeBox:
		return c.boxAABB(t)

	case ShapeCylinder, ShapeCapsule:
		rot := c.WorldRotation(t)
		center := c.WorldCenter(t)
		axis := rot.Rotate(mgl64.Vec3{0, c.HalfHeight * t.Scale.Y(), 0})
		r := c.Radius * maxScale(t.Scale)
		rv := mgl64.Vec3{r, r, r}

		top := center.Add(axis)
		bottom := center.Sub(axis)
		return AABB{
			Min: math3d.MinElem(top, bottom).Sub(rv),
			Max: math3d.MaxElem(top, bottom).Add(rv),
		}

	case ShapePlane:
		return c.planeAABB(t)

	case ShapeMesh:
		return c.meshAABB(t)
	}

	center := c.WorldCenter(t)
	return AABB{Min: center, Max: center}
}

func (c *Collider) boxAABB(t Transform) AABB {
	hx, hy, hz := c.HalfExtents.X(), c.HalfExtents.Y(), c.HalfExtents.Z()
	corners := [8]mgl64.Vec3{
		{-hx, -hy, -hz}, {+hx, -hy, -hz}, {-hx, +hy, -hz}, {+hx, +hy, -hz},
		{-hx, -hy, +hz}, {+hx, -hy, +hz}, {-hx, +hy, +hz}, {+hx, +hy, +hz},
	}

	rot := c.WorldRotation(t)
	center := c.WorldCenter(t)

	first := rot.Rotate(scaleVec(corners[0], t.Scale)).Add(center)
	box := AABB{Min: first, Max: first}
	for i := 1; i < 8; i++ {
		box = box.Extend(rot.Rotate(scaleVec(corners[i], t.Scale)).Add(center))
	}
	return box
}

func (c *Collider) planeAABB(t Transform) AABB {
	const thickness = 1.0
	const infinity = 1e10

	normal := t.Rotation.Rotate(c.Normal)
	planePoint := normal.Mul(c.Distance).Add(t.Position)

	min := planePoint.Sub(normal.Mul(thickness))
	max := planePoint
	box := AABB{Min: math3d.MinElem(min, max), Max: math3d.MaxElem(min, max)}

	// Extend to near-infinity along every axis the normal does not dominate.
	absNormal := mgl64.Vec3{
		math.Abs(normal.X()), math.Abs(normal.Y()), math.Abs(normal.Z()),
	}
	for axis := 0; axis < 3; axis++ {
		if absNormal[axis] < 1.0 {
			box.Min[axis] = -infinity
			box.Max[axis] = infinity
		}
	}
	return box
}

func (c *Collider) meshAABB(t Transform) AABB {
	if len(c.Vertices) == 0 {
		center := c.WorldCenter(t)
		return AABB{Min: center, Max: center}
	}

	rot := c.WorldRotation(t)
	center := c.WorldCenter(t)

	first := rot.Rotate(scaleVec(c.Vertices[0], t.Scale)).Add(center)
	box := AABB{Min: first, Max: first}
	for _, v := range c.Vertices[1:] {
		box = box.Extend(rot.Rotate(scaleVec(v, t.Scale)).Add(center))
	}
	return box
}

// ComputeMass calculates mass from the shape volume and the given density.
// Planes report infinite mass; meshes approximate with their bounding box.
func (c *Collider) ComputeMass(density float64) float64 {
	switch c.Type {
	case ShapeSphere:
		return density * (4.0 / 3.0) * math.Pi * c.Radius * c.Radius * c.Radius
	case ShapeBox:
		return density * 8.0 * c.HalfExtents.X() * c.HalfExtents.Y() * c.HalfExtents.Z()
	case ShapeCylinder:
		return density * math.Pi * c.Radius * c.Radius * (2.0 * c.HalfHeight)
	case ShapeCapsule:
		cylinder := math.Pi * c.Radius * c.Radius * (2.0 * c.HalfHeight)
		caps := (4.0 / 3.0) * math.Pi * c.Radius * c.Radius * c.Radius
		return density * (cylinder + caps)
	case ShapePlane:
		return math.Inf(1)
	case ShapeMesh:
		box := c.localBounds()
		size := box.Max.Sub(box.Min)
		return density * size.X() * size.Y() * size.Z()
	}
	return 0
}

// ComputeInertia returns the local inertia tensor for the given mass.
func (c *Collider) ComputeInertia(mass float64) mgl64.Mat3 {
	switch c.Type {
	case ShapeSphere:
		i := (2.0 / 5.0) * mass * c.Radius * c.Radius
		return math3d.Diag(i, i, i)

	case ShapeBox:
		x := c.HalfExtents.X() * 2
		y := c.HalfExtents.Y() * 2
		z := c.HalfExtents.Z() * 2
		factor := mass / 12.0
		return math3d.Diag(
			factor*(y*y+z*z),
			factor*(x*x+z*z),
			factor*(x*x+y*y),
		)

	case ShapeCylinder:
		h := 2.0 * c.HalfHeight
		r2 := c.Radius * c.Radius
		lateral := mass * (3.0*r2 + h*h) / 12.0
		return math3d.Diag(lateral, mass*r2/2.0, lateral)

	case ShapeCapsule:
		// Split the mass between the cylinder and the two hemispherical caps
		// by volume, then combine the tensors with parallel-axis offsets.
		r := c.Radius
		h := 2.0 * c.HalfHeight
		cylVol := math.Pi * r * r * h
		capVol := (4.0 / 3.0) * math.Pi * r * r * r
		total := cylVol + capVol
		if total < math3d.Epsilon {
			return math3d.Diag(1, 1, 1)
		}
		mCyl := mass * cylVol / total
		mCaps := mass * capVol / total

		lateral := mCyl*(3.0*r*r+h*h)/12.0 +
			mCaps*(2.0/5.0*r*r+c.HalfHeight*c.HalfHeight+(3.0/8.0)*r*c.HalfHeight)
		axial := mCyl*r*r/2.0 + mCaps*(2.0/5.0)*r*r
		return math3d.Diag(lateral, axial, lateral)

	case ShapePlane:
		return mgl64.Mat3{}

	case ShapeMesh:
		box := c.localBounds()
		size := box.Max.Sub(box.Min)
		factor := mass / 12.0
		return math3d.Diag(
			factor*(size.Y()*size.Y()+size.Z()*size.Z()),
			factor*(size.X()*size.X()+size.Z()*size.Z()),
			factor*(size.X()*size.X()+size.Y()*size.Y()),
		)
	}
	return math3d.Diag(1, 1, 1)
}

// Support returns the furthest local-space point of the shape in the given
// local direction. Used by GJK and EPA.
func (c *Collider) Support(direction mgl64.Vec3) mgl64.Vec3 {
	switch c.Type {
	case ShapeSphere:
		return math3d.SafeNormalize(direction).Mul(c.Radius)

	case ShapeBox:
		hx, hy, hz := c.HalfExtents.X(), c.HalfExtents.Y(), c.HalfExtents.Z()
		if direction.X() < 0 {
			hx = -hx
		}
		if direction.Y() < 0 {
			hy = -hy
		}
		if direction.Z() < 0 {
			hz = -hz
		}
		return mgl64.Vec3{hx, hy, hz}

	case ShapeCylinder:
		radial := math3d.SafeNormalize(mgl64.Vec3{direction.X(), 0, direction.Z()}).Mul(c.Radius)
		y := c.HalfHeight
		if direction.Y() < 0 {
			y = -y
		}
		return radial.Add(mgl64.Vec3{0, y, 0})

	case ShapeCapsule:
		y := c.HalfHeight
		if direction.Y() < 0 {
			y = -y
		}
		return math3d.SafeNormalize(direction).Mul(c.Radius).Add(mgl64.Vec3{0, y, 0})

	case ShapePlane:
		// Bounded slab stand-in so the Minkowski difference stays finite.
		const halfWidth = 1000.0
		const halfDepth = 1000.0
		const halfThickness = 0.5
		x := halfWidth
		if direction.X() < 0 {
			x = -x
		}
		y := 0.0
		if direction.Y() < 0 {
			y = -halfThickness
		}
		z := halfDepth
		if direction.Z() < 0 {
			z = -z
		}
		return mgl64.Vec3{x, y, z}

	case ShapeMesh:
		if len(c.Vertices) == 0 {
			return mgl64.Vec3{}
		}
		best := c.Vertices[0]
		bestDot := best.Dot(direction)
		for _, v := range c.Vertices[1:] {
			if d := v.Dot(direction); d > bestDot {
				bestDot = d
				best = v
			}
		}
		return best
	}
	return mgl64.Vec3{}
}

// ContactFeature returns the local-space vertices of the face, edge, or point
// most aligned with the given local direction. Manifold clipping uses these
// to turn a single penetration axis into a stable contact patch.
func (c *Collider) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	switch c.Type {
	case ShapeBox:
		return c.boxFace(direction)

	case ShapeCapsule, ShapeCylinder:
		// The axis endpoints form the supporting edge when the direction is
		// mostly radial; otherwise a single cap point.
		if math.Abs(direction.Y()) > 0.9*direction.Len() {
			return []mgl64.Vec3{c.Support(direction)}
		}
		radial := math3d.SafeNormalize(mgl64.Vec3{direction.X(), 0, direction.Z()}).Mul(c.Radius)
		return []mgl64.Vec3{
			radial.Add(mgl64.Vec3{0, -c.HalfHeight, 0}),
			radial.Add(mgl64.Vec3{0, c.HalfHeight, 0}),
		}

	case ShapePlane:
		tangent1, tangent2 := math3d.TangentBasis(c.Normal)
		center := c.Normal.Mul(c.Distance)
		const size = 1000.0
		return []mgl64.Vec3{
			center.Add(tangent1.Mul(-size)).Add(tangent2.Mul(-size)),
			center.Add(tangent1.Mul(size)).Add(tangent2.Mul(-size)),
			center.Add(tangent1.Mul(size)).Add(tangent2.Mul(size)),
			center.Add(tangent1.Mul(-size)).Add(tangent2.Mul(size)),
		}
	}

	return []mgl64.Vec3{c.Support(direction)}
}

// boxFace returns the box face whose outward normal best matches direction,
// vertices ordered counterclockwise seen from outside.
func (c *Collider) boxFace(direction mgl64.Vec3) []mgl64.Vec3 {
	dir := math3d.SafeNormalize(direction)
	hx, hy, hz := c.HalfExtents.X(), c.HalfExtents.Y(), c.HalfExtents.Z()

	faces := []struct {
		normal   mgl64.Vec3
		vertices []mgl64.Vec3
	}{
		{mgl64.Vec3{1, 0, 0}, []mgl64.Vec3{{hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}, {hx, -hy, hz}}},
		{mgl64.Vec3{-1, 0, 0}, []mgl64.Vec3{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}},
		{mgl64.Vec3{0, 1, 0}, []mgl64.Vec3{{-hx, hy, -hz}, {-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}}},
		{mgl64.Vec3{0, -1, 0}, []mgl64.Vec3{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
		{mgl64.Vec3{0, 0, 1}, []mgl64.Vec3{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{mgl64.Vec3{0, 0, -1}, []mgl64.Vec3{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}},
	}

	bestDot := -math.MaxFloat64
	var bestFace []mgl64.Vec3
	for _, face := range faces {
		if dot := dir.Dot(face.normal); dot > bestDot {
			bestDot = dot
			bestFace = face.vertices
		}
	}
	return bestFace
}

func (c *Collider) localBounds() AABB {
	if len(c.Vertices) == 0 {
		return AABB{}
	}
	box := AABB{Min: c.Vertices[0], Max: c.Vertices[0]}
	for _, v := range c.Vertices[1:] {
		box = box.Extend(v)
	}
	return box
}

func scaleVec(v, scale mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X() * scale.X(), v.Y() * scale.Y(), v.Z() * scale.Z()}
}

func maxScale(scale mgl64.Vec3) float64 {
	return math.Max(scale.X(), math.Max(scale.Y(), scale.Z()))
}
