package control

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/mpc-car/core"
	"github.com/lixenwraith/mpc-car/physics"
)

// SolveStats describes the most recent solve
type SolveStats struct {
	Tick       uint64
	Status     Status
	Cost       float64
	Iterations int
	Duration   time.Duration
}

// MotionController is the receding-horizon controller
// It owns the warm-start trajectory, which only ComputeAction mutates
type MotionController struct {
	cfg       ControllerConfig
	dynamics  physics.Discrete
	optimizer Optimizer

	guess *Trajectory
	last  core.Action
	tick  uint64
	stats SolveStats
}

// NewMotionController validates the configuration and binds the optimizer
// dynamics must be the discretization the plant is simulated with
func NewMotionController(cfg ControllerConfig, dynamics physics.Discrete, optimizer Optimizer) (*MotionController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dynamics.Model.Wheelbase() <= 0 {
		return nil, core.Invalid("controller requires a constructed bicycle model")
	}
	if dynamics.DeltaLimit != cfg.Bounds.DeltaMax {
		return nil, core.Invalid("prediction steering limit %v differs from configured bound %v",
			dynamics.DeltaLimit, cfg.Bounds.DeltaMax)
	}
	if optimizer == nil {
		return nil, core.Invalid("controller requires an optimizer")
	}
	return &MotionController{
		cfg:       cfg,
		dynamics:  dynamics,
		optimizer: optimizer,
	}, nil
}

// Config returns the immutable configuration
func (c *MotionController) Config() ControllerConfig {
	return c.cfg
}

// SetInitialGuess seeds the first solve, later solves warm-start from the shifted previous solution
func (c *MotionController) SetInitialGuess(t Trajectory) error {
	if !t.Valid(c.cfg.Horizon) {
		return core.Invalid("initial guess must have %d actions and %d states, got %d and %d",
			c.cfg.Horizon, c.cfg.Horizon+1, len(t.Actions), len(t.States))
	}
	g := Trajectory{
		States:  append([]core.State(nil), t.States...),
		Actions: append([]core.Action(nil), t.Actions...),
	}
	c.guess = &g
	return nil
}

// LastAction is the most recent successfully computed action
func (c *MotionController) LastAction() core.Action {
	return c.last
}

// Stats returns the statistics of the most recent solve
func (c *MotionController) Stats() SolveStats {
	return c.stats
}

// Problem assembles the descriptor for one solve without running it
func (c *MotionController) Problem(state core.State, ref Reference) *Problem {
	return &Problem{
		Horizon:    c.cfg.Horizon,
		TimeStep:   c.cfg.TimeStep,
		Wheelbase:  c.dynamics.Model.Wheelbase(),
		Integrator: c.dynamics.Scheme.String(),
		Initial:    state,
		Previous:   c.last,
		Reference:  ref,
		Extent:     c.cfg.Extent,
		Weights:    c.cfg.Weights,
		Bounds:     c.cfg.Bounds,
		Guess:      c.warmStart(state),
	}
}

// ComputeAction solves the horizon problem from the measured state and returns its first action
// On failure it returns the last successful action together with a *ControlFailure, the caller
// decides whether that held action may be applied
func (c *MotionController) ComputeAction(state core.State, ref Reference) (core.Action, error) {
	c.tick++
	p := c.Problem(state, ref)

	start := time.Now()
	sol, err := c.optimizer.Solve(p)
	c.stats = SolveStats{
		Tick:       c.tick,
		Status:     sol.Status,
		Cost:       sol.Cost,
		Iterations: sol.Iterations,
		Duration:   time.Since(start),
	}

	if err != nil {
		if sol.Status.Succeeded() {
			sol.Status = StatusFailed
			c.stats.Status = StatusFailed
		}
		return c.last, &ControlFailure{Tick: c.tick, Status: sol.Status, Cause: errors.Wrap(err, "optimizer")}
	}
	if !sol.Status.Succeeded() {
		return c.last, &ControlFailure{Tick: c.tick, Status: sol.Status}
	}
	if !sol.Valid(c.cfg.Horizon) {
		c.stats.Status = StatusFailed
		return c.last, &ControlFailure{
			Tick:   c.tick,
			Status: StatusFailed,
			Cause: errors.Errorf("solution has %d actions and %d states, want %d and %d",
				len(sol.Actions), len(sol.States), c.cfg.Horizon, c.cfg.Horizon+1),
		}
	}
	first := sol.Actions[0]
	if math.IsNaN(first.V) || math.IsNaN(first.Phi) || math.IsInf(first.V, 0) || math.IsInf(first.Phi, 0) {
		c.stats.Status = StatusFailed
		return c.last, &ControlFailure{Tick: c.tick, Status: StatusFailed, Cause: errors.New("non-finite action")}
	}

	shifted := sol.Trajectory.Shift()
	c.guess = &shifted
	c.last = c.cfg.Bounds.ClampAction(first)
	return c.last, nil
}

// warmStart returns the stored guess, or the measured state held with zero actions before the first solve
func (c *MotionController) warmStart(state core.State) Trajectory {
	if c.guess != nil {
		g := Trajectory{
			States:  append([]core.State(nil), c.guess.States...),
			Actions: append([]core.Action(nil), c.guess.Actions...),
		}
		g.States[0] = state
		return g
	}
	n := c.cfg.Horizon
	g := Trajectory{
		States:  make([]core.State, n+1),
		Actions: make([]core.Action, n),
	}
	for i := range g.States {
		g.States[i] = state
	}
	return g
}
