package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/lixenwraith/mpc-car/core"
)

func TestNewBicycleRejectsInvalidWheelbase(t *testing.T) {
	tests := []struct {
		name      string
		wheelbase float64
	}{
		{"zero", 0},
		{"negative", -45},
		{"NaN", math.NaN()},
		{"infinite", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBicycle(tt.wheelbase)
			if err == nil {
				t.Fatalf("expected error for wheelbase %v", tt.wheelbase)
			}
			if !errors.Is(err, core.ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestBicycleDerivative(t *testing.T) {
	b, err := NewBicycle(45)
	if err != nil {
		t.Fatal(err)
	}

	s := core.State{X: 10, Y: 20, Theta: math.Pi / 2, Delta: math.Pi / 8}
	a := core.Action{V: 30, Phi: -1.5}
	d := b.Derivative(s, a)

	want := [4]float64{0, 30, 30 * math.Tan(math.Pi/8) / 45, -1.5}
	for i := range want {
		if math.Abs(d[i]-want[i]) > 1e-9 {
			t.Errorf("component %d: got %v, want %v", i, d[i], want[i])
		}
	}
}

func TestBicycleZeroSpeedOnlySteers(t *testing.T) {
	b, _ := NewBicycle(45)
	d := b.Derivative(core.State{X: 1, Y: 2, Theta: 3, Delta: 0.2}, core.Action{V: 0, Phi: 0.7})
	if d[0] != 0 || d[1] != 0 || d[2] != 0 {
		t.Errorf("expected stationary pose rates, got %v", d)
	}
	if d[3] != 0.7 {
		t.Errorf("expected steering rate 0.7, got %v", d[3])
	}
}

// Small perturbations of the inputs produce proportionally small changes in the derivative
func TestBicycleDerivativeContinuity(t *testing.T) {
	b, _ := NewBicycle(45)
	base := core.State{X: 300, Y: 200, Theta: 0.4, Delta: 0.1}
	act := core.Action{V: 20, Phi: 0.5}
	d0 := b.Derivative(base, act)

	for _, eps := range []float64{1e-3, 1e-5, 1e-7} {
		s := base
		s.Theta += eps
		s.Delta += eps
		a := act
		a.V += eps
		a.Phi += eps
		d1 := b.Derivative(s, a)
		for i := range d0 {
			// Lipschitz bound for the operating region, generous
			if diff := math.Abs(d1[i] - d0[i]); diff > 100*eps {
				t.Errorf("eps=%g component %d changed by %g", eps, i, diff)
			}
		}
	}
}
