package bedrock

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/akmonengine/bedrock/actor"
)

// BodyState is a point-in-time snapshot of one body's dynamic state,
// sufficient to restore it later.
type BodyState struct {
	ID actor.BodyID

	Position mgl64.Vec3
	Rotation mgl64.Quat

	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	// Accelerations are derived from the force and torque accumulated during
	// the last step; they are informational and ignored on restore.
	Acceleration        mgl64.Vec3
	AngularAcceleration mgl64.Vec3

	IsSleeping bool

	KineticEnergy   float64
	Momentum        mgl64.Vec3
	AngularMomentum mgl64.Vec3
}

// WorldStats aggregates per-step observables.
type WorldStats struct {
	Time          float64
	Bodies        int
	AwakeBodies   int
	Manifolds     int
	ContactPoints int
	Joints        int

	KineticEnergy   float64
	Momentum        mgl64.Vec3
	AngularMomentum mgl64.Vec3
}

// Snapshot captures every body's state, sorted by id.
func (w *World) Snapshot() []BodyState {
	states := make([]BodyState, 0, len(w.bodies))
	for _, id := range w.order {
		body := w.bodies[id]
		states = append(states, BodyState{
			ID:                  body.ID,
			Position:            body.Transform.Position,
			Rotation:            body.Transform.Rotation,
			Velocity:            body.Velocity,
			AngularVelocity:     body.AngularVelocity,
			Acceleration:        body.Force().Mul(body.EffectiveInverseMass()),
			AngularAcceleration: body.EffectiveInverseInertiaWorld().Mul3x1(body.Torque()),
			IsSleeping:          body.IsSleeping,
			KineticEnergy:       body.KineticEnergy(),
			Momentum:            body.Momentum(),
			AngularMomentum:     body.AngularMomentum(),
		})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}

// RestoreBody overwrites one body's dynamic state from a snapshot and
// resynchronizes its spatial cache.
func (w *World) RestoreBody(state BodyState) error {
	body, ok := w.bodies[state.ID]
	if !ok {
		return errors.Errorf("restore: unknown body %d", state.ID)
	}
	body.Transform.Position = state.Position
	body.Transform.Rotation = state.Rotation
	body.Velocity = state.Velocity
	body.AngularVelocity = state.AngularVelocity
	body.IsSleeping = state.IsSleeping
	body.SleepTimer = 0
	w.SyncBody(state.ID)
	return nil
}

// Restore applies a full snapshot. Bodies present in the world but missing
// from the snapshot are left untouched; unknown ids fail the whole restore.
func (w *World) Restore(states []BodyState) error {
	for _, s := range states {
		if err := w.RestoreBody(s); err != nil {
			return err
		}
	}
	return nil
}

// Stats summarizes the world after the most recent step.
func (w *World) Stats() WorldStats {
	stats := WorldStats{
		Time:      w.time,
		Bodies:    len(w.bodies),
		Manifolds: len(w.manifolds),
		Joints:    w.joints.Count(),
	}
	for _, body := range w.bodies {
		if !body.IsSleeping {
			stats.AwakeBodies++
		}
		stats.KineticEnergy += body.KineticEnergy()
		stats.Momentum = stats.Momentum.Add(body.Momentum())
		stats.AngularMomentum = stats.AngularMomentum.Add(body.AngularMomentum())
	}
	for _, m := range w.manifolds {
		stats.ContactPoints += len(m.Points)
	}
	return stats
}
