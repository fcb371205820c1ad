package physics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/lixenwraith/mpc-car/core"
)

// Bicycle is the kinematic bicycle model with the reference point on the rear axle
//
//	dx/dt     = v cos(theta)
//	dy/dt     = v sin(theta)
//	dtheta/dt = v tan(delta) / L
//	ddelta/dt = phi
type Bicycle struct {
	wheelbase float64
}

// NewBicycle creates a model with wheelbase L, rejecting non-positive or non-finite values
func NewBicycle(wheelbase float64) (Bicycle, error) {
	if !(wheelbase > 0) || math.IsInf(wheelbase, 0) {
		return Bicycle{}, core.Invalid("wheelbase must be positive, got %v", wheelbase)
	}
	return Bicycle{wheelbase: wheelbase}, nil
}

// Wheelbase returns L
func (b Bicycle) Wheelbase() float64 {
	return b.wheelbase
}

// Derivative returns ds/dt for state s under action a
func (b Bicycle) Derivative(s core.State, a core.Action) [core.StateDim]float64 {
	sin, cos := math.Sincos(s.Theta)
	return [core.StateDim]float64{
		a.V * cos,
		a.V * sin,
		a.V * math.Tan(s.Delta) / b.wheelbase,
		a.Phi,
	}
}

// Jacobian holds the partial derivatives of a state map with respect to state (A, StateDim x StateDim)
// and action (B, StateDim x ActionDim)
type Jacobian struct {
	A *mat.Dense
	B *mat.Dense
}

// NewJacobian allocates a zero Jacobian
func NewJacobian() Jacobian {
	return Jacobian{
		A: mat.NewDense(core.StateDim, core.StateDim, nil),
		B: mat.NewDense(core.StateDim, core.ActionDim, nil),
	}
}

// Linearize writes the Jacobian of Derivative at (s, a) into dst
func (b Bicycle) Linearize(dst Jacobian, s core.State, a core.Action) {
	sin, cos := math.Sincos(s.Theta)
	tan := math.Tan(s.Delta)
	sec2 := 1 + tan*tan

	dst.A.Zero()
	dst.A.Set(0, 2, -a.V*sin)
	dst.A.Set(1, 2, a.V*cos)
	dst.A.Set(2, 3, a.V*sec2/b.wheelbase)

	dst.B.Zero()
	dst.B.Set(0, 0, cos)
	dst.B.Set(1, 0, sin)
	dst.B.Set(2, 0, tan/b.wheelbase)
	dst.B.Set(3, 1, 1)
}
