// Package config holds the simulation settings, their defaults and validation
package config

import (
	"math"
	"math/rand"
	"time"

	"github.com/lixenwraith/mpc-car/constants"
	"github.com/lixenwraith/mpc-car/control"
	"github.com/lixenwraith/mpc-car/core"
	"github.com/lixenwraith/mpc-car/physics"
)

// Config is the complete run configuration
type Config struct {
	Scene      Scene      `json:"scene" toml:"scene"`
	Vehicle    Vehicle    `json:"vehicle" toml:"vehicle"`
	Controller Controller `json:"controller" toml:"controller"`
	Initial    Initial    `json:"initial" toml:"initial"`
	Target     Target     `json:"target" toml:"target"`
	Loop       Loop       `json:"loop" toml:"loop"`
	Display    Display    `json:"display" toml:"display"`
	Audio      Audio      `json:"audio" toml:"audio"`
	Log        Log        `json:"log" toml:"log"`
}

// Scene is the world extent, independent of the terminal size
type Scene struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

type Vehicle struct {
	Wheelbase  float64 `json:"wheelbase" toml:"wheelbase"`
	Integrator string  `json:"integrator" toml:"integrator"`
}

type Controller struct {
	Horizon  int     `json:"horizon" toml:"horizon"`
	TimeStep float64 `json:"time_step" toml:"time_step"`
	Weights  Weights `json:"weights" toml:"weights"`
	Bounds   Bounds  `json:"bounds" toml:"bounds"`
}

type Weights struct {
	Position           float64 `json:"position" toml:"position"`
	Heading            float64 `json:"heading" toml:"heading"`
	Steering           float64 `json:"steering" toml:"steering"`
	Speed              float64 `json:"speed" toml:"speed"`
	SteeringRate       float64 `json:"steering_rate" toml:"steering_rate"`
	SpeedChange        float64 `json:"speed_change" toml:"speed_change"`
	SteeringRateChange float64 `json:"steering_rate_change" toml:"steering_rate_change"`
}

type Bounds struct {
	VMin     float64 `json:"v_min" toml:"v_min"`
	VMax     float64 `json:"v_max" toml:"v_max"`
	PhiMax   float64 `json:"phi_max" toml:"phi_max"`
	DeltaMax float64 `json:"delta_max" toml:"delta_max"`
}

// Initial selects a fixed or a random starting state
type Initial struct {
	Random bool       `json:"random" toml:"random"`
	Seed   int64      `json:"seed" toml:"seed"` // 0 seeds from the clock
	State  core.State `json:"state" toml:"state"`
}

type Target struct {
	X     float64 `json:"x" toml:"x"`
	Y     float64 `json:"y" toml:"y"`
	Theta float64 `json:"theta" toml:"theta"`
	Delta float64 `json:"delta" toml:"delta"`
}

type Loop struct {
	FailurePolicy string `json:"failure_policy" toml:"failure_policy"`
	CancelKey     string `json:"cancel_key" toml:"cancel_key"`
	MaxTicks      int    `json:"max_ticks" toml:"max_ticks"` // 0 runs until stopped
	HistorySize   int    `json:"history_size" toml:"history_size"`
}

type Display struct {
	Headless bool   `json:"headless" toml:"headless"`
	Title    string `json:"title" toml:"title"`
	Columns  int    `json:"columns" toml:"columns"`
	Rows     int    `json:"rows" toml:"rows"`
}

type Audio struct {
	Enabled bool `json:"enabled" toml:"enabled"`
}

type Log struct {
	Level string `json:"level" toml:"level"`
	File  string `json:"file" toml:"file"`
}

// Default returns the shipped configuration
func Default() Config {
	return Config{
		Scene: Scene{Width: constants.SceneWidth, Height: constants.SceneHeight},
		Vehicle: Vehicle{
			Wheelbase:  constants.Wheelbase,
			Integrator: constants.Integrator,
		},
		Controller: Controller{
			Horizon:  constants.Horizon,
			TimeStep: constants.TimeStep,
			Weights: Weights{
				Position:     constants.PositionGain,
				Heading:      constants.HeadingGain,
				Steering:     constants.SteeringGain,
				Speed:        constants.SpeedPenalty,
				SteeringRate: constants.SteeringRatePenalty,
			},
			Bounds: Bounds{
				VMin:     constants.SpeedMin,
				VMax:     constants.SpeedMax,
				PhiMax:   constants.SteeringRateMax,
				DeltaMax: constants.SteeringMax,
			},
		},
		Initial: Initial{Random: true},
		Target: Target{
			X:     constants.TargetX,
			Y:     constants.TargetY,
			Theta: constants.TargetTheta,
			Delta: constants.TargetDelta,
		},
		Loop: Loop{
			FailurePolicy: constants.FailurePolicy,
			CancelKey:     constants.CancelKey,
			HistorySize:   constants.HistorySize,
		},
		Display: Display{
			Title:   constants.Title,
			Columns: constants.HeadlessColumns,
			Rows:    constants.HeadlessRows,
		},
		Audio: Audio{Enabled: true},
		Log:   Log{Level: constants.LogLevel, File: constants.LogFile},
	}
}

// ControllerConfig converts to the controller's configuration
func (c Config) ControllerConfig() control.ControllerConfig {
	w, b := c.Controller.Weights, c.Controller.Bounds
	return control.ControllerConfig{
		Horizon:  c.Controller.Horizon,
		TimeStep: c.Controller.TimeStep,
		Extent:   control.Extent{Width: c.Scene.Width, Height: c.Scene.Height},
		Weights: control.Weights{
			Position:           w.Position,
			Heading:            w.Heading,
			Steering:           w.Steering,
			Speed:              w.Speed,
			SteeringRate:       w.SteeringRate,
			SpeedChange:        w.SpeedChange,
			SteeringRateChange: w.SteeringRateChange,
		},
		Bounds: control.Bounds{VMin: b.VMin, VMax: b.VMax, PhiMax: b.PhiMax, DeltaMax: b.DeltaMax},
	}
}

// Dynamics builds the discretization shared by simulator and controller
func (c Config) Dynamics() (physics.Discrete, error) {
	model, err := physics.NewBicycle(c.Vehicle.Wheelbase)
	if err != nil {
		return physics.Discrete{}, err
	}
	scheme, err := physics.ParseScheme(c.Vehicle.Integrator)
	if err != nil {
		return physics.Discrete{}, err
	}
	return physics.Discrete{Model: model, Scheme: scheme, DeltaLimit: c.Controller.Bounds.DeltaMax}, nil
}

// TickPeriod is the controller time step as a duration
func (c Config) TickPeriod() time.Duration {
	return time.Duration(c.Controller.TimeStep * float64(time.Second))
}

// TargetPose returns the initial target
func (c Config) TargetPose() core.TargetPose {
	return core.TargetPose{X: c.Target.X, Y: c.Target.Y, Theta: c.Target.Theta}
}

// CancelRune returns the cancel key, 0 when unset
func (c Config) CancelRune() rune {
	for _, r := range c.Loop.CancelKey {
		return r
	}
	return 0
}

// InitialState returns the configured state, or draws one when Initial.Random is set:
// x in [W/7, W), y in [0, H), theta in [-pi, pi), delta in [-pi/4, pi/4)
// The random steering may exceed the model bound, the first simulator step clamps it
func (c Config) InitialState(rng *rand.Rand) core.State {
	if !c.Initial.Random {
		return c.Initial.State
	}
	w, h := c.Scene.Width, c.Scene.Height
	xMin := w * constants.InitialXMinFraction
	return core.State{
		X:     xMin + rng.Float64()*(w-xMin),
		Y:     rng.Float64() * h,
		Theta: -math.Pi + rng.Float64()*2*math.Pi,
		Delta: -constants.InitialSteeringMax + rng.Float64()*2*constants.InitialSteeringMax,
	}
}
