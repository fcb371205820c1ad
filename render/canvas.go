// Package render draws scene geometry and the HUD on a terminal canvas
package render

import (
	"github.com/pkg/errors"

	"github.com/lixenwraith/mpc-car/core"
	"github.com/lixenwraith/mpc-car/input"
	"github.com/lixenwraith/mpc-car/scene"
)

// ErrRenderingUnavailable is returned when no canvas can be initialized
var ErrRenderingUnavailable = errors.New("rendering unavailable")

// Canvas is the drawing surface and pull-based input source of the interaction loop
type Canvas interface {
	// Clear resets the frame to the scene background
	Clear()
	// Draw paints one drawable into the pending frame
	Draw(d scene.Drawable)
	// DrawHUD replaces the status overlay of the pending frame
	DrawHUD(h HUD)
	// Present flips the pending frame to the display
	Present()
	// PollEvents drains the input received since the previous call without blocking
	PollEvents() []input.Event
	// PointerPosition returns the last known pointer location in scene units
	PointerPosition() core.Vec2
	Close()
}

// HUD is the textual overlay below the scene
type HUD struct {
	Fields []Field
	Series []Series
	Alert  string
}

// Field is one label/value pair of the status line
type Field struct {
	Label string
	Value string
}

// Series is a labelled history rendered as a sparkline, auto-scaled if Min and Max are both 0
type Series struct {
	Label    string
	Values   []float64
	Min, Max float64
}
