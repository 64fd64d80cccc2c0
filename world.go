// Package bedrock is a deterministic fixed-step rigid-body physics core:
// bodies with convex colliders, a pluggable broad phase, analytic and
// GJK/EPA narrow phase, sequential-impulse contacts, six joint types, and
// four interchangeable integrators. The world is single-threaded and
// synchronous; one Step call runs the whole pipeline in a fixed order.
package bedrock

import (
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/akmonengine/bedrock/actor"
	"github.com/akmonengine/bedrock/broadphase"
	"github.com/akmonengine/bedrock/collide"
	"github.com/akmonengine/bedrock/constraint"
	"github.com/akmonengine/bedrock/integrator"
	"github.com/akmonengine/bedrock/math3d"
)

// Config assembles a world. Zero-value fields select the defaults:
// sweep-and-prune broad phase, symplectic Euler integration, no-op logging,
// and no environment or force collaborators.
type Config struct {
	Tuning Tuning

	// Index overrides the broad phase. When nil, UseSpatialHash selects a
	// spatial hash sized from Tuning.SpatialCellSize instead of the default
	// sweep-and-prune.
	Index          broadphase.Index
	UseSpatialHash bool

	Integrator  integrator.Integrator
	Logger      *zap.SugaredLogger
	Environment Environment
	Forces      ForceSystem
}

// World owns the simulation state and runs the stepping pipeline. Not safe
// for concurrent use; nothing in the core runs concurrently with itself.
type World struct {
	logger *zap.SugaredLogger
	tuning Tuning

	bodies    map[actor.BodyID]*actor.RigidBody
	collision map[actor.BodyID]*actor.CollisionBody
	// order holds body ids sorted ascending, so every per-body loop is
	// deterministic.
	order  []actor.BodyID
	nextID actor.BodyID

	index      broadphase.Index
	integrator integrator.Integrator
	contacts   *constraint.ContactSolver
	joints     *constraint.Solver
	events     *EventBus

	env    Environment
	forces ForceSystem

	// sleeping mirrors each body's sleep flag as of the previous step's end,
	// for sleep/wake event transitions.
	sleeping map[actor.BodyID]bool

	time      float64
	manifolds []*collide.ContactManifold
}

// NewWorld creates a world from the configuration.
func NewWorld(cfg Config) *World {
	tuning := cfg.Tuning.fillDefaults()

	if cfg.Index == nil {
		if cfg.UseSpatialHash {
			cfg.Index = broadphase.NewSpatialHash(tuning.SpatialCellSize)
		} else {
			cfg.Index = broadphase.NewSweepAndPrune()
		}
	}
	if cfg.Integrator == nil {
		cfg.Integrator = integrator.SymplecticEuler{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	return &World{
		logger:     cfg.Logger,
		tuning:     tuning,
		bodies:     make(map[actor.BodyID]*actor.RigidBody),
		collision:  make(map[actor.BodyID]*actor.CollisionBody),
		nextID:     1,
		index:      cfg.Index,
		integrator: cfg.Integrator,
		contacts: constraint.NewContactSolver(constraint.ContactSolverConfig{
			VelocityIterations:   tuning.VelocityIterations,
			PositionIterations:   tuning.PositionIterations,
			Slop:                 tuning.PenetrationSlop,
			Baumgarte:            tuning.BaumgarteFactor,
			RestitutionThreshold: tuning.RestitutionThreshold,
		}),
		joints: constraint.NewSolver(constraint.SolverConfig{
			VelocityIterations: tuning.VelocityIterations,
			PositionIterations: tuning.PositionIterations,
		}),
		events:   NewEventBus(),
		env:      cfg.Environment,
		forces:   cfg.Forces,
		sleeping: make(map[actor.BodyID]bool),
	}
}

// AddBody registers a body. A zero id gets the next free one; inserting
// under an id already in use is a loud, fatal error and never a silent
// overwrite.
func (w *World) AddBody(body *actor.RigidBody) (actor.BodyID, error) {
	if body.ID == actor.WorldBodyID {
		body.ID = w.nextID
	}
	if _, exists := w.bodies[body.ID]; exists {
		err := errors.Errorf("world: duplicate body id %d", body.ID)
		w.logger.Errorw("add body rejected", "id", body.ID, "error", err)
		return 0, err
	}
	if body.ID >= w.nextID {
		w.nextID = body.ID + 1
	}

	w.bodies[body.ID] = body
	cb := actor.NewCollisionBody(body)
	w.collision[body.ID] = cb
	w.index.Insert(cb)

	w.order = append(w.order, body.ID)
	sort.Slice(w.order, func(i, j int) bool { return w.order[i] < w.order[j] })
	return body.ID, nil
}

// RemoveBody unregisters a body and its overlap state. Removing an unknown
// id is a no-op reported through the boolean. Joints referencing the body
// are skipped during solving until they are removed by the caller.
func (w *World) RemoveBody(id actor.BodyID) bool {
	if _, exists := w.bodies[id]; !exists {
		return false
	}
	delete(w.bodies, id)
	delete(w.collision, id)
	delete(w.sleeping, id)
	w.index.Remove(id)
	w.events.forgetBody(id)

	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// Body returns a body by id.
func (w *World) Body(id actor.BodyID) (*actor.RigidBody, bool) {
	body, ok := w.bodies[id]
	return body, ok
}

// Bodies returns all bodies sorted by id.
func (w *World) Bodies() []*actor.RigidBody {
	out := make([]*actor.RigidBody, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.bodies[id])
	}
	return out
}

// SyncBody resynchronizes one body's cached AABB after an external transform
// mutation. Skipping this leaves spatial queries stale; the manual contract
// keeps the hot loop free of observers.
func (w *World) SyncBody(id actor.BodyID) {
	w.index.Update(id)
}

// AddJoint creates a joint from its configuration, validating the referenced
// bodies exist (body B may be the world sentinel).
func (w *World) AddJoint(cfg constraint.Config) (constraint.JointID, error) {
	if _, ok := w.bodies[cfg.BodyA]; !ok {
		return 0, errors.Errorf("world: joint references unknown body %d", cfg.BodyA)
	}
	if cfg.BodyB != actor.WorldBodyID {
		if _, ok := w.bodies[cfg.BodyB]; !ok {
			return 0, errors.Errorf("world: joint references unknown body %d", cfg.BodyB)
		}
	}
	id, err := w.joints.Add(cfg)
	if err != nil {
		w.logger.Errorw("add joint rejected", "type", cfg.Type, "error", err)
		return 0, err
	}

	w.wake(cfg.BodyA)
	w.wake(cfg.BodyB)
	return id, nil
}

// RemoveJoint deletes a joint; unknown ids report false.
func (w *World) RemoveJoint(id constraint.JointID) bool {
	return w.joints.Remove(id)
}

// Joint returns a joint by id.
func (w *World) Joint(id constraint.JointID) (constraint.Joint, bool) {
	return w.joints.Get(id)
}

// JointStates snapshots every joint after the last step.
func (w *World) JointStates() []constraint.State {
	return w.joints.States()
}

// Events returns the world's event bus.
func (w *World) Events() *EventBus { return w.events }

// Time returns the accumulated simulation time.
func (w *World) Time() float64 { return w.time }

// Manifolds returns the contact manifolds produced by the last step.
func (w *World) Manifolds() []*collide.ContactManifold { return w.manifolds }

// QueryAABB returns the ids of bodies whose cached AABB overlaps the box.
func (w *World) QueryAABB(box actor.AABB) []actor.BodyID { return w.index.QueryAABB(box) }

// Step advances the simulation by one fixed timestep, running the pipeline
// in strict order: clear accumulators, environment forces, user forces,
// integration, collision detection, contact solving, joint solving, damping,
// sleep management, boundaries, clock. Non-positive dt is ignored.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		w.logger.Warnw("step skipped", "dt", dt)
		return
	}

	for _, id := range w.order {
		w.bodies[id].ClearAccumulators()
	}

	if w.env != nil {
		w.applyEnvironment(dt)
	}
	if w.forces != nil {
		w.forces.ApplyForces(w.Bodies(), w.time, dt)
	}

	w.integrate(dt)
	for _, id := range w.order {
		w.index.Update(id)
	}

	w.detectCollisions()
	w.contacts.Solve(w.manifolds, w.lookup)

	w.joints.Solve(dt, w.lookup)
	for _, s := range w.joints.States() {
		if s.Broken {
			w.events.recordJoint(EventJointBroken, s.ID, w.time)
		}
	}

	w.applyDamping(dt)
	w.updateSleep(dt)

	if w.env != nil {
		w.env.ApplyBoundaries(w.Bodies())
	}

	// Solvers and boundaries moved bodies directly; resynchronize the
	// spatial caches before the next step's queries.
	for _, id := range w.order {
		w.index.Update(id)
	}

	w.time += dt
	w.events.flush()
}

func (w *World) lookup(id actor.BodyID) *actor.RigidBody {
	return w.bodies[id]
}

func (w *World) wake(id actor.BodyID) {
	if body, ok := w.bodies[id]; ok {
		body.WakeUp()
	}
}

// applyEnvironment injects gravity, drag, and buoyancy into awake dynamic
// bodies. The field queries (wind, magnetic, electric) are part of the
// Environment contract for its own force computations.
func (w *World) applyEnvironment(dt float64) {
	for _, id := range w.order {
		body := w.bodies[id]
		if body.BodyType != actor.BodyTypeDynamic || body.IsSleeping {
			continue
		}
		gravity := w.env.GravityAt(body.Transform.Position)
		body.ApplyForce(gravity.Mul(body.Mass))
		w.env.DragOn(body, dt)
		w.env.BuoyancyOn(body)
	}
}

// integrate advances dynamic bodies through the selected scheme; kinematic
// bodies move by their velocities alone, immune to forces.
func (w *World) integrate(dt float64) {
	for _, id := range w.order {
		body := w.bodies[id]
		switch body.BodyType {
		case actor.BodyTypeDynamic:
			w.integrator.Integrate(body, dt)
		case actor.BodyTypeKinematic:
			if body.IsSleeping {
				continue
			}
			body.Transform.Position = body.Transform.Position.Add(body.Velocity.Mul(dt))
			body.Transform.Rotation = math3d.IntegrateOrientation(
				body.Transform.Rotation, body.AngularVelocity, dt)
		}
	}
}

// detectCollisions runs broad then narrow phase, records overlap sets for
// the event diff, and stores the step's manifolds.
func (w *World) detectCollisions() {
	w.manifolds = w.manifolds[:0]

	physical := make(map[pairKey]bool)
	triggered := make(map[pairKey]bool)

	for _, pair := range w.index.QueryPairs() {
		a := w.collision[pair.A]
		b := w.collision[pair.B]
		if a == nil || b == nil {
			continue
		}
		m := collide.Test(a, b)
		if m == nil {
			continue
		}
		w.manifolds = append(w.manifolds, m)

		key := makePairKey(m.BodyA, m.BodyB)
		if m.IsTrigger {
			triggered[key] = true
		} else {
			physical[key] = true
		}
	}

	w.events.recordOverlaps(physical, false, w.time)
	w.events.recordOverlaps(triggered, true, w.time)
}

// applyDamping bleeds velocity with the implicit form v /= 1 + d·dt, which
// is unconditionally stable for any damping coefficient.
func (w *World) applyDamping(dt float64) {
	for _, id := range w.order {
		body := w.bodies[id]
		if body.BodyType != actor.BodyTypeDynamic || body.IsSleeping {
			continue
		}
		if body.LinearDamping > 0 {
			body.Velocity = body.Velocity.Mul(1.0 / (1.0 + body.LinearDamping*dt))
		}
		if body.AngularDamping > 0 {
			body.AngularVelocity = body.AngularVelocity.Mul(1.0 / (1.0 + body.AngularDamping*dt))
		}
	}
}

// updateSleep advances each body's sleep timer and emits sleep/wake events.
// Transitions are diffed against the previous step's end state: waking
// happens earlier in the step (forces and impulses call WakeUp), so it is
// only observable here.
func (w *World) updateSleep(dt float64) {
	for _, id := range w.order {
		body := w.bodies[id]
		if body.BodyType == actor.BodyTypeStatic {
			continue
		}
		body.TrySleep(dt, w.tuning.SleepTimeThreshold, w.tuning.SleepVelocityThreshold)

		was := w.sleeping[id]
		now := body.IsSleeping
		if now && !was {
			w.events.recordBody(EventBodySleep, id, w.time)
		} else if was && !now {
			w.events.recordBody(EventBodyWake, id, w.time)
		}
		w.sleeping[id] = now
	}
}
