package physics

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/lixenwraith/mpc-car/core"
)

// Scheme selects the fixed-step integration rule
type Scheme uint8

const (
	SchemeRK4 Scheme = iota
	SchemeEuler
)

var schemeNames = map[Scheme]string{
	SchemeRK4:   "rk4",
	SchemeEuler: "euler",
}

func (s Scheme) String() string {
	if n, ok := schemeNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseScheme resolves a scheme by name
func ParseScheme(name string) (Scheme, error) {
	for s, n := range schemeNames {
		if n == name {
			return s, nil
		}
	}
	return 0, core.Invalid("unknown integration scheme %q", name)
}

// Discrete is the sampled-time dynamics shared by the plant simulator and the controller's prediction
// Steering angle is clamped to [-DeltaLimit, DeltaLimit] after every step
type Discrete struct {
	Model      Bicycle
	Scheme     Scheme
	DeltaLimit float64
}

// Next integrates one step of length dt
func (d Discrete) Next(s core.State, a core.Action, dt float64) core.State {
	next := d.integrate(s, a, dt)
	next.Delta = d.ClampDelta(next.Delta)
	return next
}

func (d Discrete) integrate(s core.State, a core.Action, dt float64) core.State {
	switch d.Scheme {
	case SchemeEuler:
		return add(s, d.Model.Derivative(s, a), dt)
	default:
		k1 := d.Model.Derivative(s, a)
		k2 := d.Model.Derivative(add(s, k1, dt/2), a)
		k3 := d.Model.Derivative(add(s, k2, dt/2), a)
		k4 := d.Model.Derivative(add(s, k3, dt), a)
		var sum [core.StateDim]float64
		for i := range sum {
			sum[i] = k1[i] + 2*k2[i] + 2*k3[i] + k4[i]
		}
		return add(s, sum, dt/6)
	}
}

// ClampDelta bounds a steering angle to the physical limit
func (d Discrete) ClampDelta(delta float64) float64 {
	if d.DeltaLimit <= 0 || math.IsNaN(delta) {
		return delta
	}
	return lo.Clamp(delta, -d.DeltaLimit, d.DeltaLimit)
}

// Workspace holds the scratch matrices of NextJacobian, one per goroutine
type Workspace struct {
	eye *mat.Dense
	lin Jacobian
	// Stage sensitivities of the RK4 slopes to the step's start state and action
	ks [4]*mat.Dense
	ku [4]*mat.Dense
	ts *mat.Dense
	tu *mat.Dense
}

// NewWorkspace allocates the scratch space of NextJacobian
func NewWorkspace() *Workspace {
	w := &Workspace{
		eye: mat.NewDense(core.StateDim, core.StateDim, nil),
		lin: NewJacobian(),
		ts:  mat.NewDense(core.StateDim, core.StateDim, nil),
		tu:  mat.NewDense(core.StateDim, core.ActionDim, nil),
	}
	for i := 0; i < core.StateDim; i++ {
		w.eye.Set(i, i, 1)
	}
	for i := range w.ks {
		w.ks[i] = mat.NewDense(core.StateDim, core.StateDim, nil)
		w.ku[i] = mat.NewDense(core.StateDim, core.ActionDim, nil)
	}
	return w
}

// NextJacobian integrates one step, writing d(next)/d(state) and d(next)/d(action) into dst
// When the steering clamp is active the delta row is zero, matching the projection
func (d Discrete) NextJacobian(w *Workspace, dst Jacobian, s core.State, a core.Action, dt float64) core.State {
	switch d.Scheme {
	case SchemeEuler:
		d.Model.Linearize(w.lin, s, a)
		dst.A.Scale(dt, w.lin.A)
		dst.A.Add(w.eye, dst.A)
		dst.B.Scale(dt, w.lin.B)
	default:
		h := dt
		d.Model.Linearize(w.lin, s, a)
		w.ks[0].Copy(w.lin.A)
		w.ku[0].Copy(w.lin.B)

		k1 := d.Model.Derivative(s, a)
		s2 := add(s, k1, h/2)
		w.stage(1, s2, a, d.Model, h/2)

		k2 := d.Model.Derivative(s2, a)
		s3 := add(s, k2, h/2)
		w.stage(2, s3, a, d.Model, h/2)

		k3 := d.Model.Derivative(s3, a)
		s4 := add(s, k3, h)
		w.stage(3, s4, a, d.Model, h)

		// A = I + h/6 (ks0 + 2 ks1 + 2 ks2 + ks3), B likewise without the identity
		dst.A.Add(w.ks[1], w.ks[2])
		dst.A.Scale(2, dst.A)
		dst.A.Add(dst.A, w.ks[0])
		dst.A.Add(dst.A, w.ks[3])
		dst.A.Scale(h/6, dst.A)
		dst.A.Add(w.eye, dst.A)

		dst.B.Add(w.ku[1], w.ku[2])
		dst.B.Scale(2, dst.B)
		dst.B.Add(dst.B, w.ku[0])
		dst.B.Add(dst.B, w.ku[3])
		dst.B.Scale(h/6, dst.B)
	}

	next := d.integrate(s, a, dt)
	if d.DeltaLimit > 0 && math.Abs(next.Delta) > d.DeltaLimit {
		// Clamp engaged, delta no longer depends on state or action
		dst.A.SetRow(3, make([]float64, core.StateDim))
		dst.B.SetRow(3, make([]float64, core.ActionDim))
		next.Delta = d.ClampDelta(next.Delta)
	}
	return next
}

// stage computes the sensitivities of RK4 slope i evaluated at si = s + c*k_{i-1}:
// ks[i] = J_s(si) (I + c ks[i-1]), ku[i] = J_s(si) c ku[i-1] + J_u(si)
func (w *Workspace) stage(i int, si core.State, a core.Action, model Bicycle, c float64) {
	model.Linearize(w.lin, si, a)

	w.ts.Scale(c, w.ks[i-1])
	w.ts.Add(w.eye, w.ts)
	w.ks[i].Mul(w.lin.A, w.ts)

	w.tu.Scale(c, w.ku[i-1])
	w.ku[i].Mul(w.lin.A, w.tu)
	w.ku[i].Add(w.ku[i], w.lin.B)
}

func add(s core.State, d [core.StateDim]float64, h float64) core.State {
	v := s.Vec()
	for i := range v {
		v[i] += h * d[i]
	}
	return core.StateFromVec(v)
}
