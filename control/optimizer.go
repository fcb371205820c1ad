package control

// Status is the outcome reported by an Optimizer
type Status uint8

const (
	StatusConverged Status = iota
	// StatusAcceptable is a feasible point that met the relaxed optimality tolerance
	StatusAcceptable
	StatusIterationLimit
	StatusInfeasible
	StatusFailed
)

var statusNames = [...]string{
	StatusConverged:      "converged",
	StatusAcceptable:     "acceptable",
	StatusIterationLimit: "iteration_limit",
	StatusInfeasible:     "infeasible",
	StatusFailed:         "failed",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Succeeded reports whether the solution may be applied
func (s Status) Succeeded() bool {
	return s == StatusConverged || s == StatusAcceptable
}

// Solution is the optimizer's answer to a Problem
type Solution struct {
	Trajectory
	Status      Status  `json:"status"`
	Cost        float64 `json:"cost"`
	Violation   float64 `json:"violation"`
	Iterations  int     `json:"iterations"`
	Evaluations int     `json:"evaluations"`
}

// Optimizer solves a Problem, an error or a non-succeeded status both count as failure
type Optimizer interface {
	Solve(p *Problem) (Solution, error)
}

// OptimizerFunc adapts a function to the Optimizer interface
type OptimizerFunc func(p *Problem) (Solution, error)

func (f OptimizerFunc) Solve(p *Problem) (Solution, error) {
	return f(p)
}
