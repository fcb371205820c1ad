package solver

// Settings tune the shooting solver
type Settings struct {
	// MaxIterations bounds L-BFGS major iterations per solve
	MaxIterations int `json:"max_iterations" toml:"max_iterations"`
	// GradientTolerance is the infinity-norm gradient for a converged solve
	GradientTolerance float64 `json:"gradient_tolerance" toml:"gradient_tolerance"`
	// AcceptableGradient is the relative gradient below which an iteration-limited solve is still usable
	AcceptableGradient float64 `json:"acceptable_gradient" toml:"acceptable_gradient"`
	// Penalty weights squared normalized bound excess of positions and actions
	Penalty float64 `json:"penalty" toml:"penalty"`
	// PenaltyRounds bounds the re-solves with a tenfold penalty while the result is infeasible
	PenaltyRounds int `json:"penalty_rounds" toml:"penalty_rounds"`
	// FeasibilityTolerance is the largest normalized bound excess of an accepted solution
	FeasibilityTolerance float64 `json:"feasibility_tolerance" toml:"feasibility_tolerance"`
	// Memory is the number of L-BFGS correction pairs
	Memory int `json:"memory" toml:"memory"`
}

// DefaultSettings returns settings sized for a 10-step horizon at 10 Hz
func DefaultSettings() Settings {
	return Settings{
		MaxIterations:        500,
		GradientTolerance:    1e-6,
		AcceptableGradient:   1e-3,
		Penalty:              1e4,
		PenaltyRounds:        3,
		FeasibilityTolerance: 1e-3,
		Memory:               10,
	}
}
