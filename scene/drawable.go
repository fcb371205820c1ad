package scene

import (
	"github.com/samber/lo"

	"github.com/lixenwraith/mpc-car/core"
)

// Kind is the primitive a drawable is rendered as
type Kind uint8

const (
	KindPolygon Kind = iota
	KindPolyline
)

// Role tells the canvas which style a drawable takes
type Role uint8

const (
	RoleBody Role = iota
	RoleRearWheel
	RoleFrontWheel
	RoleArrowShaft
	RoleArrowHead
)

// Drawable is a shape in its own local frame plus the transform placing it in the scene
// Rotation is in degrees, counter-clockwise as seen on screen, applied about the local origin
// before translating the origin to Anchor
type Drawable struct {
	Role      Role
	Kind      Kind
	Shape     []core.Vec2
	Rotation  float64
	Anchor    core.Vec2
	Thickness float64
}

// Points returns the shape's vertices in scene coordinates
func (d Drawable) Points() []core.Vec2 {
	return lo.Map(d.Shape, func(p core.Vec2, _ int) core.Vec2 {
		return d.Anchor.Add(p.Rotate(d.Rotation))
	})
}

// rect returns the corners of a w x h rectangle centred on c
func rect(c core.Vec2, w, h float64) []core.Vec2 {
	hw, hh := w/2, h/2
	return []core.Vec2{
		{X: c.X - hw, Y: c.Y - hh},
		{X: c.X + hw, Y: c.Y - hh},
		{X: c.X + hw, Y: c.Y + hh},
		{X: c.X - hw, Y: c.Y + hh},
	}
}
