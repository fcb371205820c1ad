package solver

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/optimize"

	"github.com/lixenwraith/mpc-car/control"
)

func TestClassify(t *testing.T) {
	s := NewShooting(DefaultSettings())

	cases := []struct {
		name      string
		f         float64
		grad      float64
		status    optimize.Status
		violation float64
		guessCost float64
		want      control.Status
	}{
		{"strict gradient", 10, 1e-8, optimize.IterationLimit, 0, 5, control.StatusConverged},
		{"gradient threshold", 10, 1, optimize.GradientThreshold, 0, 5, control.StatusConverged},
		{"relaxed gradient", 10, 5e-3, optimize.IterationLimit, 0, 5, control.StatusAcceptable},
		{"iteration limit improving warm start", 10, 5, optimize.IterationLimit, 0, 12, control.StatusAcceptable},
		{"iteration limit equal to warm start", 10, 5, optimize.IterationLimit, 0, 10, control.StatusAcceptable},
		{"iteration limit above warm start", 10, 5, optimize.IterationLimit, 0, 9, control.StatusIterationLimit},
		{"evaluation limit above warm start", 10, 5, optimize.FunctionEvaluationLimit, 0, 9, control.StatusIterationLimit},
		{"feasible within tolerance", 10, 5, optimize.IterationLimit, 5e-4, 12, control.StatusAcceptable},
		{"infeasible", 10, 1e-8, optimize.GradientThreshold, 0.01, 12, control.StatusInfeasible},
		{"non-finite cost", math.NaN(), 1e-8, optimize.GradientThreshold, 0, 12, control.StatusFailed},
		{"line search stall above warm start", 10, 5, optimize.NotTerminated, 0, 9, control.StatusFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := &optimize.Result{
				Location: optimize.Location{F: tc.f, Gradient: []float64{tc.grad, -tc.grad / 2}},
				Status:   tc.status,
			}
			sol := control.Solution{Cost: tc.f, Violation: tc.violation}
			if math.IsNaN(tc.f) {
				sol.Cost = 0
			}
			if got := s.classify(res, sol, tc.guessCost); got != tc.want {
				t.Errorf("classify = %v, want %v", got, tc.want)
			}
		})
	}
}
