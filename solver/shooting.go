// Package solver provides the nonlinear programming backend for the motion controller
//
// Problems are solved by single shooting: actions are the only free variables and the
// predicted states follow from rolling out the shared discrete dynamics, so the dynamics
// equality constraints hold exactly. Action bounds are enforced by projection plus a
// quadratic penalty, position bounds by a quadratic penalty that is raised while the result
// stays infeasible, and steering by the clamp inside the dynamics. Gradients are computed
// by an adjoint sweep over the rollout.
package solver

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/lixenwraith/mpc-car/control"
	"github.com/lixenwraith/mpc-car/core"
	"github.com/lixenwraith/mpc-car/physics"
)

// penaltyGrowth multiplies the penalty weight between rounds
const penaltyGrowth = 10

// Shooting is a control.Optimizer backed by gonum's L-BFGS
type Shooting struct {
	settings Settings
}

var _ control.Optimizer = (*Shooting)(nil)

// NewShooting creates a solver, zero fields fall back to defaults
func NewShooting(s Settings) *Shooting {
	d := DefaultSettings()
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.GradientTolerance <= 0 {
		s.GradientTolerance = d.GradientTolerance
	}
	if s.AcceptableGradient <= 0 {
		s.AcceptableGradient = d.AcceptableGradient
	}
	if s.Penalty <= 0 {
		s.Penalty = d.Penalty
	}
	if s.PenaltyRounds <= 0 {
		s.PenaltyRounds = d.PenaltyRounds
	}
	if s.FeasibilityTolerance <= 0 {
		s.FeasibilityTolerance = d.FeasibilityTolerance
	}
	if s.Memory <= 0 {
		s.Memory = d.Memory
	}
	return &Shooting{settings: s}
}

// Settings returns the effective settings
func (s *Shooting) Settings() Settings {
	return s.settings
}

// Solve implements control.Optimizer
func (s *Shooting) Solve(p *control.Problem) (control.Solution, error) {
	if p.Horizon < 1 {
		return control.Solution{Status: control.StatusFailed}, errors.Errorf("horizon %d", p.Horizon)
	}
	dyn, err := p.Dynamics()
	if err != nil {
		return control.Solution{Status: control.StatusFailed}, errors.Wrap(err, "problem dynamics")
	}

	ev := newEvaluator(p, dyn)
	z0 := ev.encode(p.Guess.Actions)

	settings := &optimize.Settings{
		GradientThreshold: s.settings.GradientTolerance,
		MajorIterations:   s.settings.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-12,
			Iterations: 25,
		},
	}
	problem := optimize.Problem{Func: ev.value, Grad: ev.gradient}

	var (
		sol       control.Solution
		res       *optimize.Result
		optErr    error
		guessCost float64
	)
	z := z0
	ev.rho = s.settings.Penalty
	for round := 0; ; round++ {
		guessCost = ev.value(z0)
		res, optErr = optimize.Minimize(problem, z, settings, &optimize.LBFGS{Store: s.settings.Memory})
		if res == nil {
			return control.Solution{Status: control.StatusFailed}, errors.Wrap(optErr, "lbfgs")
		}

		traj := p.Rollout(dyn, ev.decode(res.X))
		sol = control.Solution{
			Trajectory:  traj,
			Cost:        p.Objective(traj),
			Violation:   p.Violation(traj),
			Iterations:  sol.Iterations + res.Stats.MajorIterations,
			Evaluations: sol.Evaluations + res.Stats.FuncEvaluations,
		}
		if sol.Violation <= s.settings.FeasibilityTolerance || round >= s.settings.PenaltyRounds ||
			math.IsNaN(res.F) || math.IsInf(res.F, 0) {
			break
		}
		// Restart from the infeasible optimum with a stiffer penalty
		z = res.X
		ev.rho *= penaltyGrowth
	}

	sol.Status = s.classify(res, sol, guessCost)
	if sol.Status == control.StatusFailed && optErr != nil {
		return sol, errors.Wrap(optErr, "lbfgs")
	}
	return sol, nil
}

// classify maps the gonum outcome onto controller statuses
// A feasible point that misses the strict gradient tolerance is still acceptable when it meets the
// relaxed tolerance or improves on the warm start: the receding horizon re-solves it next tick
func (s *Shooting) classify(res *optimize.Result, sol control.Solution, guessCost float64) control.Status {
	if math.IsNaN(res.F) || math.IsInf(res.F, 0) || math.IsNaN(sol.Cost) {
		return control.StatusFailed
	}
	if sol.Violation > s.settings.FeasibilityTolerance {
		return control.StatusInfeasible
	}

	gnorm := math.Inf(1)
	if len(res.Gradient) > 0 {
		gnorm = floats.Norm(res.Gradient, math.Inf(1))
	}
	if gnorm <= s.settings.GradientTolerance || res.Status == optimize.GradientThreshold {
		return control.StatusConverged
	}
	if gnorm <= s.settings.AcceptableGradient*(1+math.Abs(res.F)) || res.F <= guessCost {
		return control.StatusAcceptable
	}

	switch res.Status {
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.GradientEvaluationLimit:
		return control.StatusIterationLimit
	}
	return control.StatusFailed
}

// evaluator computes the penalized objective and its adjoint gradient in normalized action space
// z[2k] = v_k / vScale, z[2k+1] = phi_k / phiScale
type evaluator struct {
	p      *control.Problem
	dyn    physics.Discrete
	rho    float64
	vs, ps float64
	lo, hi [core.ActionDim]float64

	states []core.State
	jac    []physics.Jacobian
	acts   []core.Action

	// Adjoint sweep workspaces
	ws     *physics.Workspace
	lambda *mat.VecDense
	next   *mat.VecDense
	grad   *mat.VecDense
	du     *mat.Dense
	duk    *mat.VecDense
}

func newEvaluator(p *control.Problem, dyn physics.Discrete) *evaluator {
	vs, ps := p.Bounds.ActionScale()
	n := p.Horizon
	e := &evaluator{
		p:      p,
		dyn:    dyn,
		vs:     vs,
		ps:     ps,
		lo:     [core.ActionDim]float64{p.Bounds.VMin / vs, -1},
		hi:     [core.ActionDim]float64{p.Bounds.VMax / vs, 1},
		states: make([]core.State, n+1),
		jac:    make([]physics.Jacobian, n),
		acts:   make([]core.Action, n),
		ws:     physics.NewWorkspace(),
		lambda: mat.NewVecDense(core.StateDim, nil),
		next:   mat.NewVecDense(core.StateDim, nil),
		grad:   mat.NewVecDense(core.StateDim, nil),
		du:     mat.NewDense(n, core.ActionDim, nil),
		duk:    mat.NewVecDense(core.ActionDim, nil),
	}
	for k := range e.jac {
		e.jac[k] = physics.NewJacobian()
	}
	return e
}

// encode maps a guess onto normalized variables, a malformed guess starts from zero actions
func (e *evaluator) encode(actions []core.Action) []float64 {
	z := make([]float64, core.ActionDim*e.p.Horizon)
	if len(actions) != e.p.Horizon {
		return z
	}
	for k, a := range actions {
		z[2*k] = finiteOr(a.V, 0) / e.vs
		z[2*k+1] = finiteOr(a.Phi, 0) / e.ps
	}
	return z
}

// decode returns the projected (applied) actions
func (e *evaluator) decode(z []float64) []core.Action {
	out := make([]core.Action, e.p.Horizon)
	for k := range out {
		out[k] = core.Action{
			V:   clampRange(z[2*k], e.lo[0], e.hi[0]) * e.vs,
			Phi: clampRange(z[2*k+1], e.lo[1], e.hi[1]) * e.ps,
		}
	}
	return out
}

// rollout fills states, actions and, when withJac is set, the step Jacobians
func (e *evaluator) rollout(z []float64, withJac bool) {
	copy(e.acts, e.decode(z))
	e.states[0] = e.p.Initial
	for k, u := range e.acts {
		if withJac {
			e.states[k+1] = e.dyn.NextJacobian(e.ws, e.jac[k], e.states[k], u, e.p.TimeStep)
		} else {
			e.states[k+1] = e.dyn.Next(e.states[k], u, e.p.TimeStep)
		}
	}
}

func (e *evaluator) value(z []float64) float64 {
	e.rollout(z, false)
	p := e.p

	var f float64
	prev := p.Previous
	for k, u := range e.acts {
		f += p.StageCost(e.states[k]) + p.ControlCost(u, prev)
		prev = u
	}
	f += p.StageCost(e.states[p.Horizon])

	for _, s := range e.states[1:] {
		f += e.statePenalty(s)
	}
	for i, zi := range z {
		d := zi - clampRange(zi, e.lo[i%2], e.hi[i%2])
		f += e.rho * d * d
	}
	return f
}

func (e *evaluator) gradient(grad, z []float64) {
	e.rollout(z, true)
	p := e.p
	n := p.Horizon

	// lambda is the adjoint of the state following the action being differentiated
	e.setStateGrad(e.lambda, e.states[n])

	// du row k accumulates dJ/du_k in physical units
	e.du.Zero()
	for k := n - 1; k >= 0; k-- {
		j := e.jac[k]
		e.duk.MulVec(j.B.T(), e.lambda)

		prev := p.Previous
		if k > 0 {
			prev = e.acts[k-1]
		}
		g, gPrev := p.ControlGrad(e.acts[k], prev)
		for c := 0; c < core.ActionDim; c++ {
			e.du.Set(k, c, e.du.At(k, c)+e.duk.AtVec(c)+g[c])
			if k > 0 {
				e.du.Set(k-1, c, e.du.At(k-1, c)+gPrev[c])
			}
		}

		if k > 0 {
			e.next.MulVec(j.A.T(), e.lambda)
			e.setStateGrad(e.grad, e.states[k])
			e.lambda.AddVec(e.next, e.grad)
		}
	}

	scale := [core.ActionDim]float64{e.vs, e.ps}
	for k := 0; k < n; k++ {
		for c := 0; c < core.ActionDim; c++ {
			i := 2*k + c
			zi := z[i]
			proj := clampRange(zi, e.lo[c], e.hi[c])
			g := 2 * e.rho * (zi - proj)
			if zi >= e.lo[c] && zi <= e.hi[c] {
				g += e.du.At(k, c) * scale[c]
			}
			grad[i] = g
		}
	}
}

// setStateGrad writes the gradient of the stage cost plus the bound penalty at s into dst
func (e *evaluator) setStateGrad(dst *mat.VecDense, s core.State) {
	g, pg := e.p.StageGrad(s), e.statePenaltyGrad(s)
	for i := range g {
		dst.SetVec(i, g[i]+pg[i])
	}
}

// statePenalty is the squared normalized position excess, steering is already projected by the dynamics
func (e *evaluator) statePenalty(s core.State) float64 {
	ex := excess(s.X, e.p.Extent.Width) / e.p.Extent.Width
	ey := excess(s.Y, e.p.Extent.Height) / e.p.Extent.Height
	return e.rho * (ex*ex + ey*ey)
}

func (e *evaluator) statePenaltyGrad(s core.State) [core.StateDim]float64 {
	w, h := e.p.Extent.Width, e.p.Extent.Height
	return [core.StateDim]float64{
		2 * e.rho * excess(s.X, w) / (w * w),
		2 * e.rho * excess(s.Y, h) / (h * h),
	}
}

// excess is the signed distance of v outside [0, hi], zero inside
func excess(v, hi float64) float64 {
	switch {
	case v < 0:
		return v
	case v > hi:
		return v - hi
	}
	return 0
}

func clampRange(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
