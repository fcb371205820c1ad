package control

import (
	"math"

	"github.com/lixenwraith/mpc-car/core"
	"github.com/lixenwraith/mpc-car/physics"
)

// Reference is the tracking target, held constant over the horizon of one solve
type Reference struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
	Delta float64 `json:"delta"`
}

// ReferenceFrom builds a reference from a target pose and the desired steering angle
func ReferenceFrom(target core.TargetPose, delta float64) Reference {
	return Reference{X: target.X, Y: target.Y, Theta: target.Theta, Delta: delta}
}

// Trajectory is a predicted state sequence of N+1 states and its N actions
type Trajectory struct {
	States  []core.State  `json:"states"`
	Actions []core.Action `json:"actions"`
}

// Valid reports whether the trajectory has the shape of a horizon-n solution
func (t Trajectory) Valid(n int) bool {
	return len(t.Actions) == n && len(t.States) == n+1
}

// Shift drops the first step and repeats the last one, the standard receding-horizon warm start
func (t Trajectory) Shift() Trajectory {
	if len(t.Actions) == 0 || len(t.States) == 0 {
		return t
	}
	out := Trajectory{
		States:  make([]core.State, len(t.States)),
		Actions: make([]core.Action, len(t.Actions)),
	}
	copy(out.States, t.States[1:])
	out.States[len(out.States)-1] = t.States[len(t.States)-1]
	copy(out.Actions, t.Actions[1:])
	out.Actions[len(out.Actions)-1] = t.Actions[len(t.Actions)-1]
	return out
}

// Problem is the serializable description of one finite-horizon solve
//
// Decision variables are States[0..N] and Actions[0..N-1] linked by the discrete dynamics,
// States[0] is fixed to Initial. Objective:
//
//	sum_{k<N} (l(x_k) + r(u_k, u_{k-1})) + l(x_N)
//
// with l the normalized tracking cost and r the normalized control regularization. Constraints:
// 0 <= x <= Width, 0 <= y <= Height, |delta| <= DeltaMax, VMin <= v <= VMax, |phi| <= PhiMax.
type Problem struct {
	Horizon    int        `json:"horizon"`
	TimeStep   float64    `json:"time_step"`
	Wheelbase  float64    `json:"wheelbase"`
	Integrator string     `json:"integrator"`
	Initial    core.State `json:"initial"`
	// Previous is the last applied action, the u_{-1} of the change penalty
	Previous  core.Action `json:"previous"`
	Reference Reference   `json:"reference"`
	Extent    Extent      `json:"extent"`
	Weights   Weights     `json:"weights"`
	Bounds    Bounds      `json:"bounds"`
	Guess     Trajectory  `json:"guess"`
}

// Dynamics rebuilds the discretization the problem was assembled with
func (p *Problem) Dynamics() (physics.Discrete, error) {
	model, err := physics.NewBicycle(p.Wheelbase)
	if err != nil {
		return physics.Discrete{}, err
	}
	scheme, err := physics.ParseScheme(p.Integrator)
	if err != nil {
		return physics.Discrete{}, err
	}
	return physics.Discrete{Model: model, Scheme: scheme, DeltaLimit: p.Bounds.DeltaMax}, nil
}

// norm rescales v from [lo, hi] into the unit range
func norm(v, lo, hi float64) float64 {
	return (v - lo) / (hi - lo)
}

// StageCost is the weighted squared tracking error of one predicted state
func (p *Problem) StageCost(s core.State) float64 {
	w, r := p.Weights, p.Reference
	ex := w.Position * norm(s.X-r.X, 0, p.Extent.Width)
	ey := w.Position * norm(s.Y-r.Y, 0, p.Extent.Height)
	et := w.Heading * (s.Theta - r.Theta)
	ed := w.Steering * (s.Delta - r.Delta)
	return ex*ex + ey*ey + et*et + ed*ed
}

// StageGrad is the gradient of StageCost with respect to the state
func (p *Problem) StageGrad(s core.State) [core.StateDim]float64 {
	w, r := p.Weights, p.Reference
	wx := w.Position / p.Extent.Width
	wy := w.Position / p.Extent.Height
	return [core.StateDim]float64{
		2 * wx * wx * (s.X - r.X),
		2 * wy * wy * (s.Y - r.Y),
		2 * w.Heading * w.Heading * (s.Theta - r.Theta),
		2 * w.Steering * w.Steering * (s.Delta - r.Delta),
	}
}

// ActionScale returns the magnitudes used to normalize speed and steering rate
func (b Bounds) ActionScale() (v, phi float64) {
	return math.Max(-b.VMin, b.VMax), b.PhiMax
}

// ControlCost penalizes action magnitude and the change from the previous action
// Both terms use actions normalized by their bound magnitude
func (p *Problem) ControlCost(u, prev core.Action) float64 {
	w := p.Weights
	vs, ps := p.Bounds.ActionScale()
	v, phi := u.V/vs, u.Phi/ps
	dv, dphi := (u.V-prev.V)/vs, (u.Phi-prev.Phi)/ps
	return w.Speed*v*v + w.SteeringRate*phi*phi +
		w.SpeedChange*dv*dv + w.SteeringRateChange*dphi*dphi
}

// ControlGrad returns the gradient of ControlCost with respect to u and to prev
func (p *Problem) ControlGrad(u, prev core.Action) (du, dprev [core.ActionDim]float64) {
	w := p.Weights
	vs, ps := p.Bounds.ActionScale()
	cv := 2 * w.SpeedChange * (u.V - prev.V) / (vs * vs)
	cphi := 2 * w.SteeringRateChange * (u.Phi - prev.Phi) / (ps * ps)
	du[0] = 2*w.Speed*u.V/(vs*vs) + cv
	du[1] = 2*w.SteeringRate*u.Phi/(ps*ps) + cphi
	dprev[0], dprev[1] = -cv, -cphi
	return du, dprev
}

// Objective evaluates the full horizon cost of a trajectory
func (p *Problem) Objective(t Trajectory) float64 {
	var j float64
	prev := p.Previous
	for k, u := range t.Actions {
		j += p.StageCost(t.States[k]) + p.ControlCost(u, prev)
		prev = u
	}
	// Terminal cost equals the stage cost at the final state
	j += p.StageCost(t.States[len(t.States)-1])
	return j
}

// Violation returns the largest normalized bound excess over predicted states and actions
func (p *Problem) Violation(t Trajectory) float64 {
	var worst float64
	for _, s := range t.States[1:] {
		worst = math.Max(worst, excess(s.X, 0, p.Extent.Width)/p.Extent.Width)
		worst = math.Max(worst, excess(s.Y, 0, p.Extent.Height)/p.Extent.Height)
		worst = math.Max(worst, excess(s.Delta, -p.Bounds.DeltaMax, p.Bounds.DeltaMax)/p.Bounds.DeltaMax)
	}
	vs, ps := p.Bounds.ActionScale()
	for _, u := range t.Actions {
		worst = math.Max(worst, excess(u.V, p.Bounds.VMin, p.Bounds.VMax)/vs)
		worst = math.Max(worst, excess(u.Phi, -p.Bounds.PhiMax, p.Bounds.PhiMax)/ps)
	}
	return worst
}

// Rollout propagates Initial through the dynamics under the given actions
func (p *Problem) Rollout(d physics.Discrete, actions []core.Action) Trajectory {
	t := Trajectory{
		States:  make([]core.State, len(actions)+1),
		Actions: append([]core.Action(nil), actions...),
	}
	t.States[0] = p.Initial
	for k, u := range actions {
		t.States[k+1] = d.Next(t.States[k], u, p.TimeStep)
	}
	return t
}

// excess is how far v lies outside [lo, hi], zero inside
func excess(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return math.Inf(1)
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	}
	return 0
}
