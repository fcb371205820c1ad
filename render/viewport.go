package render

import (
	"github.com/lixenwraith/mpc-car/core"
)

// Viewport maps scene units onto the pixel raster with a uniform scale, letterboxed and centred
type Viewport struct {
	scale  float64
	offset core.Vec2
}

// NewViewport fits a sceneW x sceneH extent into a pixW x pixH raster
func NewViewport(sceneW, sceneH float64, pixW, pixH int) Viewport {
	if sceneW <= 0 || sceneH <= 0 || pixW <= 0 || pixH <= 0 {
		return Viewport{scale: 1}
	}
	scale := min(float64(pixW)/sceneW, float64(pixH)/sceneH)
	return Viewport{
		scale: scale,
		offset: core.Vec2{
			X: (float64(pixW) - sceneW*scale) / 2,
			Y: (float64(pixH) - sceneH*scale) / 2,
		},
	}
}

// Scale returns pixels per scene unit
func (v Viewport) Scale() float64 {
	return v.scale
}

// ToPixel converts a scene point to continuous pixel coordinates
func (v Viewport) ToPixel(p core.Vec2) core.Vec2 {
	return v.offset.Add(p.Scale(v.scale))
}

// ToScene converts continuous pixel coordinates back to scene units
func (v Viewport) ToScene(p core.Vec2) core.Vec2 {
	return p.Sub(v.offset).Scale(1 / v.scale)
}
