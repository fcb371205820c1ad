// Package scene turns simulation state and the target pose into drawable geometry
// It holds no mutable state and never touches a display
package scene

import (
	"github.com/lixenwraith/mpc-car/core"
)

// Model projects {State, TargetPose} into drawables
type Model struct {
	car   carGeometry
	arrow arrowGeometry
}

// NewModel builds the car artwork for the given wheelbase
func NewModel(wheelbase float64) (*Model, error) {
	if !(wheelbase > 0) {
		return nil, core.Invalid("scene wheelbase must be positive, got %v", wheelbase)
	}
	return &Model{
		car:   newCarGeometry(wheelbase),
		arrow: newArrowGeometry(),
	}, nil
}

// Project returns the drawables in paint order: body, rear wheels, front wheels, target arrow
func (m *Model) Project(s core.State, t core.TargetPose) []Drawable {
	out := m.car.project(s)
	return append(out, m.arrow.project(t)...)
}
