package constraint

import (
	"sort"

	"github.com/pkg/errors"
)

// SolverConfig tunes the joint solver's iteration counts.
type SolverConfig struct {
	VelocityIterations int
	PositionIterations int
}

// DefaultSolverConfig returns the standard tuning.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{VelocityIterations: 8, PositionIterations: 3}
}

// Solver owns the world's joints and runs the per-step solve: remove broken
// joints from the previous step, reset reactions, prepare, iterate velocity
// then position passes, check breakage. Iteration order is by ascending joint
// id so steps are deterministic.
type Solver struct {
	cfg SolverConfig

	joints map[JointID]Joint
	order  []JointID
	nextID JointID

	// prepared joints for the current step
	active []Joint
}

// NewSolver creates an empty joint solver.
func NewSolver(cfg SolverConfig) *Solver {
	def := DefaultSolverConfig()
	if cfg.VelocityIterations <= 0 {
		cfg.VelocityIterations = def.VelocityIterations
	}
	if cfg.PositionIterations <= 0 {
		cfg.PositionIterations = def.PositionIterations
	}
	return &Solver{
		cfg:    cfg,
		joints: make(map[JointID]Joint),
		nextID: 1,
	}
}

// Add creates a joint from its configuration and registers it, returning the
// assigned id.
func (s *Solver) Add(cfg Config) (JointID, error) {
	id := s.nextID
	joint, err := New(id, cfg)
	if err != nil {
		return 0, errors.WithMessage(err, "add joint")
	}
	s.nextID++
	s.joints[id] = joint
	s.order = append(s.order, id)
	return id, nil
}

// Remove deletes a joint. Removing an unknown id is a no-op reported through
// the boolean.
func (s *Solver) Remove(id JointID) bool {
	if _, exists := s.joints[id]; !exists {
		return false
	}
	delete(s.joints, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a joint by id.
func (s *Solver) Get(id JointID) (Joint, bool) {
	j, ok := s.joints[id]
	return j, ok
}

// Count returns the number of registered joints, broken ones included until
// their removal at the next solve.
func (s *Solver) Count() int { return len(s.joints) }

// Solve runs one step of the joint solver. Joints broken in the previous
// step are removed before anything else; joints referencing removed bodies
// are skipped for this step.
func (s *Solver) Solve(dt float64, lookup BodyLookup) {
	s.removeBroken()

	s.active = s.active[:0]
	for _, id := range s.order {
		j := s.joints[id]
		if !j.Enabled() || j.Broken() {
			continue
		}
		j.ResetReactions()
		if !j.Prepare(dt, lookup) {
			continue
		}
		s.active = append(s.active, j)
	}
	if len(s.active) == 0 {
		return
	}

	for i := 0; i < s.cfg.VelocityIterations; i++ {
		for _, j := range s.active {
			j.SolveVelocity()
		}
	}
	for _, j := range s.active {
		j.CheckBreak()
	}
	for i := 0; i < s.cfg.PositionIterations; i++ {
		for _, j := range s.active {
			if j.Broken() {
				continue
			}
			j.SolvePosition()
		}
	}
}

// States snapshots every registered joint, sorted by id.
func (s *Solver) States() []State {
	states := make([]State, 0, len(s.joints))
	for _, id := range s.order {
		states = append(states, s.joints[id].State())
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}

func (s *Solver) removeBroken() {
	for _, id := range append([]JointID(nil), s.order...) {
		if s.joints[id].Broken() {
			s.Remove(id)
		}
	}
}
