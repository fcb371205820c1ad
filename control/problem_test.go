package control

import (
	"math"
	"testing"

	"github.com/lixenwraith/mpc-car/core"
)

func newTestProblem(t *testing.T) *Problem {
	t.Helper()
	cfg := testConfig()
	c, err := NewMotionController(cfg, testDynamics(t), &scriptedOptimizer{})
	if err != nil {
		t.Fatal(err)
	}
	return c.Problem(core.State{X: 500, Y: 400}, Reference{X: 500, Y: 400})
}

// Pins the stage cost to the shipped gains: position 22 over a 1200x800 extent, heading 1, steering 0.5
func TestStageCostWeights(t *testing.T) {
	p := newTestProblem(t)
	p.Reference = Reference{X: 100, Y: 700, Theta: 3, Delta: 0}

	s := core.State{X: 700, Y: 300, Theta: 1, Delta: 0.2}
	ex := 22 * (600.0 / 1200)
	ey := 22 * (-400.0 / 800)
	et := 1 * (1 - 3.0)
	ed := 0.5 * 0.2
	want := ex*ex + ey*ey + et*et + ed*ed

	if got := p.StageCost(s); math.Abs(got-want) > 1e-12 {
		t.Errorf("StageCost = %v, want %v", got, want)
	}
}

func TestStageGradMatchesCost(t *testing.T) {
	p := newTestProblem(t)
	p.Reference = Reference{X: 250, Y: 100, Theta: -2, Delta: 0.1}
	s := core.State{X: 800, Y: 650, Theta: 0.5, Delta: -0.3}
	g := p.StageGrad(s)

	const h = 1e-6
	v := s.Vec()
	for i := range v {
		up, down := v, v
		up[i] += h
		down[i] -= h
		num := (p.StageCost(core.StateFromVec(up)) - p.StageCost(core.StateFromVec(down))) / (2 * h)
		if math.Abs(num-g[i]) > 1e-5*(1+math.Abs(num)) {
			t.Errorf("component %d: analytic %v, numeric %v", i, g[i], num)
		}
	}
}

func TestObjectiveIncludesTerminalAndControlTerms(t *testing.T) {
	p := newTestProblem(t)
	p.Horizon = 2
	p.Weights.SpeedChange = 0.5
	p.Previous = core.Action{V: 2}

	s0 := core.State{X: 500, Y: 400}
	s1 := core.State{X: 512, Y: 400}
	s2 := core.State{X: 524, Y: 400}
	traj := Trajectory{
		States:  []core.State{s0, s1, s2},
		Actions: []core.Action{{V: 4}, {V: 6, Phi: 1}},
	}

	// Speed normalized by 100, steering rate by 2
	want := p.StageCost(s0) + p.StageCost(s1) + p.StageCost(s2) +
		1e-2*0.0016 + 0.5*0.0004 +
		1e-2*0.0036 + 1e-2*0.25 + 0.5*0.0004
	if got := p.Objective(traj); math.Abs(got-want) > 1e-12 {
		t.Errorf("Objective = %v, want %v", got, want)
	}
}

func TestControlGradMatchesCost(t *testing.T) {
	p := newTestProblem(t)
	p.Weights.SpeedChange = 0.3
	p.Weights.SteeringRateChange = 0.7
	u := core.Action{V: 35, Phi: -1.2}
	prev := core.Action{V: -10, Phi: 0.4}
	du, dprev := p.ControlGrad(u, prev)

	const h = 1e-5
	check := func(name string, got float64, f func(float64) float64) {
		num := (f(h) - f(-h)) / (2 * h)
		if math.Abs(num-got) > 1e-6*(1+math.Abs(num)) {
			t.Errorf("%s: analytic %v, numeric %v", name, got, num)
		}
	}
	check("dv", du[0], func(e float64) float64 { return p.ControlCost(core.Action{V: u.V + e, Phi: u.Phi}, prev) })
	check("dphi", du[1], func(e float64) float64 { return p.ControlCost(core.Action{V: u.V, Phi: u.Phi + e}, prev) })
	check("dprev v", dprev[0], func(e float64) float64 { return p.ControlCost(u, core.Action{V: prev.V + e, Phi: prev.Phi}) })
	check("dprev phi", dprev[1], func(e float64) float64 { return p.ControlCost(u, core.Action{V: prev.V, Phi: prev.Phi + e}) })
}

func TestViolation(t *testing.T) {
	p := newTestProblem(t)
	inside := Trajectory{
		States:  []core.State{{X: -50}, {X: 10, Y: 10}},
		Actions: []core.Action{{V: 10}},
	}
	// The measured initial state is not a decision variable
	if v := p.Violation(inside); v != 0 {
		t.Errorf("expected no violation, got %v", v)
	}

	outside := Trajectory{
		States:  []core.State{{}, {X: 1320, Y: 10}},
		Actions: []core.Action{{V: 10}},
	}
	if v := p.Violation(outside); math.Abs(v-0.1) > 1e-12 {
		t.Errorf("expected violation 0.1, got %v", v)
	}

	fast := Trajectory{
		States:  []core.State{{}, {X: 10, Y: 10}},
		Actions: []core.Action{{V: 70}},
	}
	if v := p.Violation(fast); math.Abs(v-0.2) > 1e-12 {
		t.Errorf("expected violation 0.2, got %v", v)
	}
}

func TestTrajectoryShift(t *testing.T) {
	traj := Trajectory{
		States:  []core.State{{X: 0}, {X: 1}, {X: 2}, {X: 3}},
		Actions: []core.Action{{V: 10}, {V: 20}, {V: 30}},
	}
	got := traj.Shift()

	wantStates := []float64{1, 2, 3, 3}
	for i, s := range got.States {
		if s.X != wantStates[i] {
			t.Errorf("state %d: got %v, want %v", i, s.X, wantStates[i])
		}
	}
	wantActions := []float64{20, 30, 30}
	for i, a := range got.Actions {
		if a.V != wantActions[i] {
			t.Errorf("action %d: got %v, want %v", i, a.V, wantActions[i])
		}
	}
	if traj.States[0].X != 0 {
		t.Error("Shift must not modify the receiver")
	}
}

func TestProblemDynamicsRoundTrip(t *testing.T) {
	p := newTestProblem(t)
	d, err := p.Dynamics()
	if err != nil {
		t.Fatal(err)
	}
	if d != testDynamics(t) {
		t.Errorf("descriptor rebuilt different dynamics: %+v", d)
	}

	p.Integrator = "leapfrog"
	if _, err := p.Dynamics(); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
