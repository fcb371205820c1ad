package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/mpc-car/scene"
)

// RGB color definitions for the scene and the HUD
var (
	RgbBackground = tcell.NewRGBColor(128, 128, 128) // Scene grey
	RgbLetterbox  = tcell.NewRGBColor(20, 20, 24)    // Area outside the scene extent
	RgbBody       = tcell.NewRGBColor(200, 45, 45)   // Car body red
	RgbWheel      = tcell.NewRGBColor(30, 30, 30)    // Tyres
	RgbArrow      = tcell.NewRGBColor(10, 10, 10)    // Target arrow

	RgbStatusBar   = tcell.NewRGBColor(255, 255, 255) // White
	RgbStatusLabel = tcell.NewRGBColor(180, 180, 180) // Brighter gray
	RgbStatusBg    = tcell.NewRGBColor(26, 27, 38)    // Tokyo Night background
	RgbSeparator   = tcell.NewRGBColor(80, 80, 100)
	RgbSparkSpeed  = tcell.NewRGBColor(100, 150, 255) // Normal Blue
	RgbSparkRate   = tcell.NewRGBColor(0, 200, 0)     // Normal Green
	RgbAlert       = tcell.NewRGBColor(255, 80, 80)   // Normal Red
)

// RoleColor returns the paint colour of a drawable role
func RoleColor(r scene.Role) tcell.Color {
	switch r {
	case scene.RoleBody:
		return RgbBody
	case scene.RoleRearWheel, scene.RoleFrontWheel:
		return RgbWheel
	default:
		return RgbArrow
	}
}
