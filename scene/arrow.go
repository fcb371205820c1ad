package scene

import (
	"math"

	"github.com/lixenwraith/mpc-car/core"
)

// Target arrow dimensions in scene units
const (
	ArrowLength    = 70.0
	ArrowHeadSize  = 15.0
	ArrowTipShift  = 5.0
	ArrowThickness = 4.0
)

// arrowBaseline is the direction the unrotated arrow points: screen angle pi, leftward
const arrowBaseline = math.Pi

type arrowGeometry struct {
	shaft []core.Vec2
	head  []core.Vec2
}

func newArrowGeometry() arrowGeometry {
	end := core.Polar(ArrowLength, arrowBaseline)
	tip := end.Add(core.Polar(ArrowTipShift, arrowBaseline))
	left := tip.Sub(core.Polar(ArrowHeadSize, math.Pi/4+arrowBaseline))
	right := tip.Sub(core.Polar(ArrowHeadSize, -math.Pi/4+arrowBaseline))
	return arrowGeometry{
		shaft: []core.Vec2{{}, end},
		head:  []core.Vec2{tip, left, right},
	}
}

// ArrowRotation is the on-screen rotation in degrees for a target heading theta
func ArrowRotation(theta float64) float64 {
	return -core.Degrees(theta)
}

// ArrowDirection is the screen angle (radians, y down) the drawn arrow points along
// The leftward baseline rotated by -theta degrees counter-clockwise ends up at pi + theta,
// so the arrow points opposite the stored heading, along the drag that produced it
func ArrowDirection(theta float64) float64 {
	return arrowBaseline + theta
}

func (g arrowGeometry) project(t core.TargetPose) []Drawable {
	rot := ArrowRotation(t.Theta)
	anchor := t.Position()
	return []Drawable{
		{Role: RoleArrowShaft, Kind: KindPolyline, Shape: g.shaft, Rotation: rot, Anchor: anchor, Thickness: ArrowThickness},
		{Role: RoleArrowHead, Kind: KindPolygon, Shape: g.head, Rotation: rot, Anchor: anchor},
	}
}
