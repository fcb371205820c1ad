package core

import "math"

// State is the measured pose of the car: rear-axle position in scene units, heading and steering angle in radians
type State struct {
	X     float64 `json:"x" toml:"x"`
	Y     float64 `json:"y" toml:"y"`
	Theta float64 `json:"theta" toml:"theta"`
	Delta float64 `json:"delta" toml:"delta"`
}

// StateDim is the number of state components
const StateDim = 4

// Vec returns the state as an ordered vector (x, y, theta, delta)
func (s State) Vec() [StateDim]float64 {
	return [StateDim]float64{s.X, s.Y, s.Theta, s.Delta}
}

// StateFromVec is the inverse of State.Vec
func StateFromVec(v [StateDim]float64) State {
	return State{X: v[0], Y: v[1], Theta: v[2], Delta: v[3]}
}

// IsFinite reports whether every component is a finite number
func (s State) IsFinite() bool {
	for _, c := range s.Vec() {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Position returns the rear-axle reference point
func (s State) Position() Vec2 {
	return Vec2{X: s.X, Y: s.Y}
}

// Action is a control command: forward speed and steering rate
type Action struct {
	V   float64 `json:"v" toml:"v"`
	Phi float64 `json:"phi" toml:"phi"`
}

// ActionDim is the number of control inputs
const ActionDim = 2

// Vec returns the action as an ordered vector (v, phi)
func (a Action) Vec() [ActionDim]float64 {
	return [ActionDim]float64{a.V, a.Phi}
}

// ActionFromVec is the inverse of Action.Vec
func ActionFromVec(v [ActionDim]float64) Action {
	return Action{V: v[0], Phi: v[1]}
}

// TargetPose is the user-selected reference pose, always replaced as a whole
type TargetPose struct {
	X     float64 `json:"x" toml:"x"`
	Y     float64 `json:"y" toml:"y"`
	Theta float64 `json:"theta" toml:"theta"`
}

// Position returns the target point
func (t TargetPose) Position() Vec2 {
	return Vec2{X: t.X, Y: t.Y}
}
