package control

import (
	"math"

	"github.com/lixenwraith/mpc-car/core"
)

// Extent is the scene size used for position bounds and error normalization
type Extent struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// Weights are the cost gains
// Tracking gains enter squared (Position, Heading, Steering), control gains enter linearly
type Weights struct {
	Position           float64 `json:"position" toml:"position"`
	Heading            float64 `json:"heading" toml:"heading"`
	Steering           float64 `json:"steering" toml:"steering"`
	Speed              float64 `json:"speed" toml:"speed"`
	SteeringRate       float64 `json:"steering_rate" toml:"steering_rate"`
	SpeedChange        float64 `json:"speed_change" toml:"speed_change"`
	SteeringRateChange float64 `json:"steering_rate_change" toml:"steering_rate_change"`
}

// Bounds limit the actions and the steering angle, positions are bounded by Extent
type Bounds struct {
	VMin     float64 `json:"v_min" toml:"v_min"`
	VMax     float64 `json:"v_max" toml:"v_max"`
	PhiMax   float64 `json:"phi_max" toml:"phi_max"`
	DeltaMax float64 `json:"delta_max" toml:"delta_max"`
}

// ClampAction bounds an action to the configured ranges
func (b Bounds) ClampAction(a core.Action) core.Action {
	return core.Action{
		V:   clamp(a.V, b.VMin, b.VMax),
		Phi: clamp(a.Phi, -b.PhiMax, b.PhiMax),
	}
}

// ControllerConfig is immutable after the controller is built
type ControllerConfig struct {
	Horizon  int     `json:"horizon" toml:"horizon"`
	TimeStep float64 `json:"time_step" toml:"time_step"`
	Extent   Extent  `json:"extent" toml:"extent"`
	Weights  Weights `json:"weights" toml:"weights"`
	Bounds   Bounds  `json:"bounds" toml:"bounds"`
}

// Validate rejects configurations the controller cannot run with
func (c ControllerConfig) Validate() error {
	if c.Horizon < 1 {
		return core.Invalid("horizon must be at least 1, got %d", c.Horizon)
	}
	if !positive(c.TimeStep) {
		return core.Invalid("time step must be positive, got %v", c.TimeStep)
	}
	if !positive(c.Extent.Width) || !positive(c.Extent.Height) {
		return core.Invalid("scene extent must be positive, got %vx%v", c.Extent.Width, c.Extent.Height)
	}

	w := c.Weights
	for name, v := range map[string]float64{
		"position": w.Position, "heading": w.Heading, "steering": w.Steering,
		"speed": w.Speed, "steering_rate": w.SteeringRate,
		"speed_change": w.SpeedChange, "steering_rate_change": w.SteeringRateChange,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return core.Invalid("weight %s must be finite and non-negative, got %v", name, v)
		}
	}

	b := c.Bounds
	if !(b.VMin < 0 && b.VMax > 0) {
		return core.Invalid("speed range must straddle zero, got [%v, %v]", b.VMin, b.VMax)
	}
	if !positive(b.PhiMax) {
		return core.Invalid("steering rate limit must be positive, got %v", b.PhiMax)
	}
	if !positive(b.DeltaMax) || b.DeltaMax >= math.Pi/2 {
		return core.Invalid("steering limit must be in (0, pi/2), got %v", b.DeltaMax)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}
