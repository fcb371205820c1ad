package constants

import "math"

// Scene extent in scene units
const (
	SceneWidth  = 1200.0
	SceneHeight = 800.0
)

// Vehicle
const (
	// Wheelbase is the bicycle model length L, also the car artwork scale
	Wheelbase = 45.0

	// Integrator is the discretization shared by the simulator and the controller's prediction
	Integrator = "rk4"
)

// Controller timing and horizon
const (
	// TimeStep is the discretization step in seconds, also the tick period
	TimeStep = 0.1

	// Horizon is the number of predicted steps N
	Horizon = 10
)

// Cost gains, squared inside the stage cost
const (
	PositionGain = 22.0
	HeadingGain  = 1.0
	SteeringGain = 0.5

	// Control magnitude regularization
	SpeedPenalty        = 1e-2
	SteeringRatePenalty = 1e-2
)

// Bounds: reverse may be faster than forward
const (
	SpeedMin        = -100.0
	SpeedMax        = 50.0
	SteeringRateMax = 2.0
	SteeringMax     = math.Pi / 8
)

// Initial target pose and its desired steering angle
const (
	TargetX     = 100.0
	TargetY     = 700.0
	TargetTheta = 3.0
	TargetDelta = 0.0
)

// Random initial state ranges
const (
	// InitialXMinFraction of the scene width is the lowest random x
	InitialXMinFraction = 1.0 / 7.0
	InitialSteeringMax  = math.Pi / 4
)
