package physics

import (
	"github.com/lixenwraith/mpc-car/core"
)

// Simulator advances the true plant state by one fixed step
type Simulator struct {
	dynamics Discrete
	dt       float64
}

// NewSimulator binds the discrete dynamics to a fixed time step
func NewSimulator(dynamics Discrete, dt float64) (*Simulator, error) {
	if !(dt > 0) {
		return nil, core.Invalid("time step must be positive, got %v", dt)
	}
	if dynamics.Model.Wheelbase() <= 0 {
		return nil, core.Invalid("simulator requires a constructed bicycle model")
	}
	return &Simulator{dynamics: dynamics, dt: dt}, nil
}

// Step returns the state after applying action for one time step, the caller decides whether to commit it
func (s *Simulator) Step(state core.State, action core.Action) core.State {
	return s.dynamics.Next(state, action, s.dt)
}

// TimeStep returns the fixed step length in seconds
func (s *Simulator) TimeStep() float64 {
	return s.dt
}

// Dynamics exposes the discretization so the controller predicts with the identical rule
func (s *Simulator) Dynamics() Discrete {
	return s.dynamics
}
