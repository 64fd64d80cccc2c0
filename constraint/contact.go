// Package constraint contains the two iterative solvers that turn geometric
// overlap and joint attachments into velocity and position corrections: the
// sequential-impulse contact solver and the joint solver with its Fixed,
// Hinge, Ball, Distance, Spring, and Slider variants.
package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/bedrock/actor"
	"github.com/akmonengine/bedrock/collide"
	"github.com/akmonengine/bedrock/math3d"
)

// BodyLookup resolves a body id to its rigid body, or nil when the body has
// been removed. Solvers skip entries whose bodies are gone instead of
// failing the step.
type BodyLookup func(actor.BodyID) *actor.RigidBody

// ContactSolverConfig tunes the sequential-impulse iteration counts and the
// position stabilization.
type ContactSolverConfig struct {
	// VelocityIterations is the fixed number of impulse sweeps (default 8).
	VelocityIterations int
	// PositionIterations is the fixed number of Baumgarte sweeps (default 3).
	PositionIterations int
	// Slop is the penetration depth tolerated without correction.
	Slop float64
	// Baumgarte is the fraction of the remaining penetration corrected per
	// position iteration.
	Baumgarte float64
	// RestitutionThreshold is the approach speed below which restitution is
	// ignored, keeping resting contacts from jittering.
	RestitutionThreshold float64
}

// DefaultContactSolverConfig returns the standard tuning.
func DefaultContactSolverConfig() ContactSolverConfig {
	return ContactSolverConfig{
		VelocityIterations:   8,
		PositionIterations:   3,
		Slop:                 0.005,
		Baumgarte:            0.2,
		RestitutionThreshold: 1.0,
	}
}

// ContactSolver resolves contact manifolds by sequential impulses: a fixed
// number of velocity iterations with accumulated-impulse clamping, followed
// by direct positional Baumgarte correction. Impulse accumulators live only
// within one step; manifolds are regenerated from scratch each step and no
// warm-starting is carried across steps.
type ContactSolver struct {
	cfg ContactSolverConfig

	contacts []contactConstraint
}

// contactConstraint is the precomputed per-point working state.
type contactConstraint struct {
	a, b  *actor.RigidBody
	point *collide.ContactPoint

	normal  mgl64.Vec3
	tangent [2]mgl64.Vec3
	rA, rB  mgl64.Vec3

	normalMass  float64
	tangentMass [2]float64

	// biasVelocity is the desired post-solve separation speed from
	// restitution; zero for slow approaches.
	biasVelocity float64
	friction     float64
}

// NewContactSolver creates a solver, filling non-positive config fields with
// their defaults.
func NewContactSolver(cfg ContactSolverConfig) *ContactSolver {
	def := DefaultContactSolverConfig()
	if cfg.VelocityIterations <= 0 {
		cfg.VelocityIterations = def.VelocityIterations
	}
	if cfg.PositionIterations <= 0 {
		cfg.PositionIterations = def.PositionIterations
	}
	if cfg.Slop <= 0 {
		cfg.Slop = def.Slop
	}
	if cfg.Baumgarte <= 0 {
		cfg.Baumgarte = def.Baumgarte
	}
	if cfg.RestitutionThreshold <= 0 {
		cfg.RestitutionThreshold = def.RestitutionThreshold
	}
	return &ContactSolver{cfg: cfg}
}

// Solve resolves the step's physical manifolds. Trigger manifolds, manifolds
// referencing removed bodies, and pairs with both bodies asleep are skipped.
// Positions are mutated
// directly by the correction pass; the caller owns resynchronizing any
// spatial caches afterwards.
func (s *ContactSolver) Solve(manifolds []*collide.ContactManifold, lookup BodyLookup) {
	s.prepare(manifolds, lookup)
	if len(s.contacts) == 0 {
		return
	}

	for i := 0; i < s.cfg.VelocityIterations; i++ {
		for j := range s.contacts {
			s.contacts[j].solveVelocity()
		}
	}
	for i := 0; i < s.cfg.PositionIterations; i++ {
		for j := range s.contacts {
			s.contacts[j].solvePosition(s.cfg.Slop, s.cfg.Baumgarte)
		}
	}
}

func (s *ContactSolver) prepare(manifolds []*collide.ContactManifold, lookup BodyLookup) {
	s.contacts = s.contacts[:0]

	for _, m := range manifolds {
		if m == nil || m.IsTrigger {
			continue
		}
		a := lookup(m.BodyA)
		b := lookup(m.BodyB)
		if a == nil || b == nil {
			continue
		}
		// A fully sleeping pair keeps its overlap reported upstream but gets
		// no solving until one body wakes.
		if a.IsSleeping && b.IsSleeping {
			continue
		}

		friction := math.Sqrt(a.Material.Friction * b.Material.Friction)
		restitution := math.Min(a.Material.Restitution, b.Material.Restitution)

		for i := range m.Points {
			point := &m.Points[i]
			cc := contactConstraint{
				a:        a,
				b:        b,
				point:    point,
				normal:   m.Normal,
				friction: friction,
			}
			cc.rA = point.Position.Sub(a.Transform.Position)
			cc.rB = point.Position.Sub(b.Transform.Position)

			cc.normalMass = effectiveMassAlong(a, b, cc.rA, cc.rB, m.Normal)

			vRel := relativeVelocity(a, b, cc.rA, cc.rB)
			vn := vRel.Dot(m.Normal)

			// Restitution engages only for genuine impacts; the threshold
			// swallows resting-contact noise.
			if vn < -s.cfg.RestitutionThreshold {
				cc.biasVelocity = -restitution * (vn + s.cfg.RestitutionThreshold)
			}

			// Tangent basis from the pre-solve sliding direction, with an
			// arbitrary orthogonal fallback when the pair is not sliding.
			vt := vRel.Sub(m.Normal.Mul(vn))
			if vt.LenSqr() > math3d.Epsilon {
				cc.tangent[0] = vt.Normalize()
				cc.tangent[1] = m.Normal.Cross(cc.tangent[0])
			} else {
				cc.tangent[0], cc.tangent[1] = math3d.TangentBasis(m.Normal)
			}
			cc.tangentMass[0] = effectiveMassAlong(a, b, cc.rA, cc.rB, cc.tangent[0])
			cc.tangentMass[1] = effectiveMassAlong(a, b, cc.rA, cc.rB, cc.tangent[1])

			s.contacts = append(s.contacts, cc)
		}
	}
}

func (c *contactConstraint) solveVelocity() {
	vRel := relativeVelocity(c.a, c.b, c.rA, c.rB)
	vn := vRel.Dot(c.normal)

	// Normal impulse, accumulated and clamped non-negative: contacts push,
	// never pull.
	lambda := -c.normalMass * (vn - c.biasVelocity)
	oldAccum := c.point.NormalImpulse
	c.point.NormalImpulse = math.Max(0, oldAccum+lambda)
	c.applyImpulse(c.normal.Mul(c.point.NormalImpulse - oldAccum))

	// Coulomb friction, box-approximated: each tangent clamps independently
	// to the current normal impulse.
	maxFriction := c.friction * c.point.NormalImpulse
	for i := 0; i < 2; i++ {
		vRel = relativeVelocity(c.a, c.b, c.rA, c.rB)
		vt := vRel.Dot(c.tangent[i])

		lambda = -c.tangentMass[i] * vt
		oldAccum = c.point.TangentImpulse[i]
		c.point.TangentImpulse[i] = clampAbs(oldAccum+lambda, maxFriction)
		c.applyImpulse(c.tangent[i].Mul(c.point.TangentImpulse[i] - oldAccum))
	}
}

// solvePosition removes penetration beyond the slop directly from the
// positions, split between the bodies proportional to inverse mass.
func (c *contactConstraint) solvePosition(slop, baumgarte float64) {
	pA := c.a.PointToWorld(c.point.LocalA)
	pB := c.b.PointToWorld(c.point.LocalB)

	// The anchors coincided at manifold generation; any separation gained
	// along the normal since then reduces the recorded penetration.
	penetration := c.point.Penetration - pB.Sub(pA).Dot(c.normal)
	correction := baumgarte * (penetration - slop)
	if correction <= 0 {
		return
	}

	invA := c.a.EffectiveInverseMass()
	invB := c.b.EffectiveInverseMass()
	total := invA + invB
	if total <= 0 {
		return
	}

	shift := c.normal.Mul(correction / total)
	c.a.Transform.Position = c.a.Transform.Position.Sub(shift.Mul(invA))
	c.b.Transform.Position = c.b.Transform.Position.Add(shift.Mul(invB))
}

// applyImpulse applies +impulse to body B and -impulse to body A at the
// contact anchors.
func (c *contactConstraint) applyImpulse(impulse mgl64.Vec3) {
	invA := c.a.EffectiveInverseMass()
	invB := c.b.EffectiveInverseMass()

	c.a.Velocity = c.a.Velocity.Sub(impulse.Mul(invA))
	c.a.AngularVelocity = c.a.AngularVelocity.Sub(
		c.a.EffectiveInverseInertiaWorld().Mul3x1(c.rA.Cross(impulse)))

	c.b.Velocity = c.b.Velocity.Add(impulse.Mul(invB))
	c.b.AngularVelocity = c.b.AngularVelocity.Add(
		c.b.EffectiveInverseInertiaWorld().Mul3x1(c.rB.Cross(impulse)))
}

// relativeVelocity is the velocity of B's anchor relative to A's anchor.
func relativeVelocity(a, b *actor.RigidBody, rA, rB mgl64.Vec3) mgl64.Vec3 {
	vA := a.Velocity.Add(a.AngularVelocity.Cross(rA))
	vB := b.Velocity.Add(b.AngularVelocity.Cross(rB))
	return vB.Sub(vA)
}

// effectiveMassAlong returns the inverse of the pair's combined inverse mass
// projected on one direction, including the inertia-coupled angular terms.
// Returns zero when both bodies are immovable.
func effectiveMassAlong(a, b *actor.RigidBody, rA, rB, dir mgl64.Vec3) float64 {
	rnA := rA.Cross(dir)
	rnB := rB.Cross(dir)

	k := a.EffectiveInverseMass() + b.EffectiveInverseMass() +
		a.EffectiveInverseInertiaWorld().Mul3x1(rnA).Dot(rnA) +
		b.EffectiveInverseInertiaWorld().Mul3x1(rnB).Dot(rnB)
	if k <= 0 {
		return 0
	}
	return 1.0 / k
}

func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
