package scene

import (
	"github.com/lixenwraith/mpc-car/core"
)

// Car artwork proportions, all relative to the wheelbase L
const (
	carWidthFactor      = 1.0
	wheelOffsetFactor   = 0.4
	wheelWidthFactor    = 0.2
	wheelHeightFactor   = 0.4
	wheelSpacingFactor  = 0.45
	frontWheelNarrowing = 0.8
)

// ScreenRotationBaseline is the on-screen rotation of a car with heading zero
// The artwork's nose lies along local +y, so a heading theta needs 90 - theta degrees
const ScreenRotationBaseline = 90.0

// carGeometry is the car artwork in its local frame: origin at the body centre, nose toward +y
type carGeometry struct {
	wheelbase  float64
	body       []core.Vec2
	rearWheels [2][]core.Vec2
	frontWheel []core.Vec2
	frontAxle  [2]core.Vec2
}

func newCarGeometry(wheelbase float64) carGeometry {
	width := carWidthFactor * wheelbase
	wheelOffset := wheelOffsetFactor * wheelbase
	height := wheelbase + 2*wheelOffset
	wheelW := wheelWidthFactor * wheelbase
	wheelH := wheelHeightFactor * wheelbase
	spacing := wheelSpacingFactor * width

	// Wheel centres sit wheelOffset in from the body's ends, i.e. L/2 either side of the centre
	axle := height/2 - wheelOffset

	g := carGeometry{
		wheelbase:  wheelbase,
		body:       rect(core.Vec2{}, width, height),
		frontWheel: rect(core.Vec2{}, wheelW*frontWheelNarrowing, wheelH),
		frontAxle:  [2]core.Vec2{{X: -spacing, Y: axle}, {X: spacing, Y: axle}},
	}
	g.rearWheels[0] = rect(core.Vec2{X: -spacing, Y: -axle}, wheelW, wheelH)
	g.rearWheels[1] = rect(core.Vec2{X: spacing, Y: -axle}, wheelW, wheelH)
	return g
}

// CarRotation is the on-screen rotation in degrees for heading theta in radians
func CarRotation(theta float64) float64 {
	return ScreenRotationBaseline - core.Degrees(theta)
}

// project places the car for state s
// The state's (x, y) is the rear axle, the body centre is L/2 ahead along the heading
func (g carGeometry) project(s core.State) []Drawable {
	rot := CarRotation(s.Theta)
	centre := s.Position().Add(core.Polar(g.wheelbase/2, s.Theta))

	out := make([]Drawable, 0, 5)
	out = append(out, Drawable{Role: RoleBody, Kind: KindPolygon, Shape: g.body, Rotation: rot, Anchor: centre})
	for _, w := range g.rearWheels {
		out = append(out, Drawable{Role: RoleRearWheel, Kind: KindPolygon, Shape: w, Rotation: rot, Anchor: centre})
	}

	// Front wheels turn by delta relative to the body
	wheelRot := rot - core.Degrees(s.Delta)
	for _, hub := range g.frontAxle {
		out = append(out, Drawable{
			Role:     RoleFrontWheel,
			Kind:     KindPolygon,
			Shape:    g.frontWheel,
			Rotation: wheelRot,
			Anchor:   centre.Add(hub.Rotate(rot)),
		})
	}
	return out
}
