package input

import (
	"math"

	"github.com/samber/lo"

	"github.com/lixenwraith/mpc-car/core"
)

// Gesture tracks the press/release drag that redefines the target
// Press records an anchor, release commits a complete target pose at once
type Gesture struct {
	width, height float64
	anchor        core.Vec2
	held          bool
}

// NewGesture creates a tracker clamping points into the scene extent
func NewGesture(width, height float64) *Gesture {
	return &Gesture{width: width, height: height}
}

// Held reports whether a press is waiting for its release
func (g *Gesture) Held() bool {
	return g.held
}

// Press records the anchor, non-finite coordinates are dropped
func (g *Gesture) Press(p core.Vec2) bool {
	if !p.IsFinite() {
		return false
	}
	g.anchor = g.clamp(p)
	g.held = true
	return true
}

// Release completes the drag and returns the new target
// A release without a matching press, or with non-finite coordinates, yields nothing
func (g *Gesture) Release(p core.Vec2) (core.TargetPose, bool) {
	if !g.held || !p.IsFinite() {
		return core.TargetPose{}, false
	}
	g.held = false
	return TargetFromDrag(g.anchor, g.clamp(p)), true
}

// TargetFromDrag places the target at the release point facing opposite the drag:
// theta = atan2(dy, dx) - pi with (dx, dy) = release - anchor
func TargetFromDrag(anchor, release core.Vec2) core.TargetPose {
	d := release.Sub(anchor)
	return core.TargetPose{
		X:     release.X,
		Y:     release.Y,
		Theta: math.Atan2(d.Y, d.X) - math.Pi,
	}
}

func (g *Gesture) clamp(p core.Vec2) core.Vec2 {
	return core.Vec2{
		X: lo.Clamp(p.X, 0, g.width),
		Y: lo.Clamp(p.Y, 0, g.height),
	}
}
