package control

import (
	"math"
	"testing"

	"github.com/lixenwraith/mpc-car/core"
	"github.com/lixenwraith/mpc-car/physics"
)

// testConfig mirrors the shipped defaults
func testConfig() ControllerConfig {
	return ControllerConfig{
		Horizon:  10,
		TimeStep: 0.1,
		Extent:   Extent{Width: 1200, Height: 800},
		Weights: Weights{
			Position:     22,
			Heading:      1,
			Steering:     0.5,
			Speed:        1e-2,
			SteeringRate: 1e-2,
		},
		Bounds: Bounds{VMin: -100, VMax: 50, PhiMax: 2, DeltaMax: math.Pi / 8},
	}
}

func testDynamics(t *testing.T) physics.Discrete {
	t.Helper()
	b, err := physics.NewBicycle(45)
	if err != nil {
		t.Fatal(err)
	}
	return physics.Discrete{Model: b, Scheme: physics.SchemeRK4, DeltaLimit: math.Pi / 8}
}

// scriptedOptimizer rolls out a fixed action sequence and records every problem it receives
type scriptedOptimizer struct {
	actions  []core.Action
	status   Status
	err      error
	problems []*Problem
}

func (o *scriptedOptimizer) Solve(p *Problem) (Solution, error) {
	o.problems = append(o.problems, p)
	if o.err != nil {
		return Solution{Status: StatusFailed}, o.err
	}
	d, err := p.Dynamics()
	if err != nil {
		return Solution{Status: StatusFailed}, err
	}
	traj := p.Rollout(d, o.actions)
	return Solution{Trajectory: traj, Status: o.status, Cost: p.Objective(traj)}, nil
}

func constantActions(n int, a core.Action) []core.Action {
	out := make([]core.Action, n)
	for i := range out {
		out[i] = a
	}
	return out
}
