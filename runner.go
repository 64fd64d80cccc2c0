package bedrock

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// RunnerConfig tunes the fixed-step loop.
type RunnerConfig struct {
	// StepDt is the fixed simulation timestep in seconds.
	StepDt float64
	// MaxSubSteps bounds how many fixed steps one frame may run to catch up
	// with wall-clock time; accumulated time beyond the bound is dropped, so
	// the simulation lags rather than the solver being overloaded.
	MaxSubSteps int
	// Clock defaults to the real clock; tests inject a mock.
	Clock clock.Clock
}

// DefaultRunnerConfig returns a 60 Hz loop with a 5-substep catch-up bound.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		StepDt:      1.0 / 60.0,
		MaxSubSteps: 5,
	}
}

// Runner drives a world with fixed timesteps from wall-clock time: it
// accumulates elapsed real time and performs a bounded number of fixed
// sub-steps per frame. Cancellation granularity is whole-step only.
type Runner struct {
	world *World
	cfg   RunnerConfig
	clk   clock.Clock

	accumulator float64
	last        time.Time
	started     bool
}

// NewRunner wraps a world in a fixed-step loop.
func NewRunner(world *World, cfg RunnerConfig) (*Runner, error) {
	if world == nil {
		return nil, errors.New("runner: nil world")
	}
	def := DefaultRunnerConfig()
	if cfg.StepDt <= 0 {
		cfg.StepDt = def.StepDt
	}
	if cfg.MaxSubSteps <= 0 {
		cfg.MaxSubSteps = def.MaxSubSteps
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &Runner{world: world, cfg: cfg, clk: cfg.Clock}, nil
}

// Advance consumes the wall-clock time elapsed since the previous call and
// performs up to MaxSubSteps fixed steps, returning how many ran. Excess
// accumulated time is dropped.
func (r *Runner) Advance() int {
	now := r.clk.Now()
	if !r.started {
		r.started = true
		r.last = now
		return 0
	}

	r.accumulator += now.Sub(r.last).Seconds()
	r.last = now

	steps := 0
	for r.accumulator >= r.cfg.StepDt && steps < r.cfg.MaxSubSteps {
		r.world.Step(r.cfg.StepDt)
		r.accumulator -= r.cfg.StepDt
		steps++
	}

	if r.accumulator >= r.cfg.StepDt {
		dropped := r.accumulator - r.cfg.StepDt
		r.world.logger.Warnw("runner lagging, dropping accumulated time",
			"dropped", dropped, "maxSubSteps", r.cfg.MaxSubSteps)
		r.accumulator = 0
	}
	return steps
}

// Run steps the world from a ticker until the context is cancelled. The
// ticker period matches the fixed timestep; catch-up after stalls is bounded
// by MaxSubSteps.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.clk.Ticker(time.Duration(r.cfg.StepDt * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Advance()
		}
	}
}
