package render

import (
	"github.com/gdamore/tcell/v2"
)

// PixelBuffer is a colour raster at twice the terminal's vertical resolution
// Two stacked pixels share one cell through the upper half block glyph
type PixelBuffer struct {
	pix    []tcell.Color
	width  int
	height int
}

// NewPixelBuffer creates a buffer with the specified dimensions
func NewPixelBuffer(width, height int) *PixelBuffer {
	b := &PixelBuffer{}
	b.Resize(width, height)
	return b
}

// Resize adjusts buffer dimensions, reallocates only if capacity insufficient
func (b *PixelBuffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	size := width * height
	if cap(b.pix) < size {
		b.pix = make([]tcell.Color, size)
	} else {
		b.pix = b.pix[:size]
	}
	b.width = width
	b.height = height
}

// Size returns the buffer dimensions in pixels
func (b *PixelBuffer) Size() (int, int) {
	return b.width, b.height
}

// Fill paints every pixel
func (b *PixelBuffer) Fill(c tcell.Color) {
	for i := range b.pix {
		b.pix[i] = c
	}
}

// Set paints one pixel, out of range writes are dropped
func (b *PixelBuffer) Set(x, y int, c tcell.Color) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	b.pix[y*b.width+x] = c
}

// At returns the pixel colour, ColorDefault out of range
func (b *PixelBuffer) At(x, y int) tcell.Color {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return tcell.ColorDefault
	}
	return b.pix[y*b.width+x]
}
