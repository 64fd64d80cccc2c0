package actor

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/math3d"
)

// Transform places a body in world space. Composition order for local points
// is scale, then rotate, then translate; the inverse applies the algebraic
// reverse. Colliders interpret their local offsets through the same order.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// NewTransform creates an identity transform.
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// Apply maps a local-space point to world space.
func (t Transform) Apply(local mgl64.Vec3) mgl64.Vec3 {
	scaled := mgl64.Vec3{
		local.X() * t.Scale.X(),
		local.Y() * t.Scale.Y(),
		local.Z() * t.Scale.Z(),
	}
	return t.Rotation.Rotate(scaled).Add(t.Position)
}

// ApplyInverse maps a world-space point back to local space.
func (t Transform) ApplyInverse(world mgl64.Vec3) mgl64.Vec3 {
	unrotated := t.Rotation.Conjugate().Rotate(world.Sub(t.Position))
	return mgl64.Vec3{
		safeDiv(unrotated.X(), t.Scale.X()),
		safeDiv(unrotated.Y(), t.Scale.Y()),
		safeDiv(unrotated.Z(), t.Scale.Z()),
	}
}

// ApplyDirection rotates a local-space direction into world space, ignoring
// translation and scale.
func (t Transform) ApplyDirection(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local)
}

// ApplyInverseDirection rotates a world-space direction into local space.
func (t Transform) ApplyInverseDirection(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(world)
}

func safeDiv(a, b float64) float64 {
	if b > -math3d.Epsilon && b < math3d.Epsilon {
		return 0
	}
	return a / b
}
