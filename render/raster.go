package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/mpc-car/core"
)

// FillPolygon paints every pixel whose centre lies inside the polygon (even-odd rule)
// Points are in pixel coordinates, pixel (i, j) covers [i, i+1) x [j, j+1)
func (b *PixelBuffer) FillPolygon(pts []core.Vec2, c tcell.Color) {
	if len(pts) < 3 {
		return
	}
	x0, y0, x1, y1, ok := b.bounds(pts, 0)
	if !ok {
		return
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if insidePolygon(pts, core.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}) {
				b.Set(x, y, c)
			}
		}
	}
}

// StrokePolyline paints every pixel whose centre lies within half the thickness of a segment
func (b *PixelBuffer) StrokePolyline(pts []core.Vec2, thickness float64, c tcell.Color) {
	if len(pts) == 0 {
		return
	}
	half := math.Max(thickness, 1) / 2
	if len(pts) == 1 {
		pts = []core.Vec2{pts[0], pts[0]}
	}
	for i := 0; i+1 < len(pts); i++ {
		a, e := pts[i], pts[i+1]
		x0, y0, x1, y1, ok := b.bounds([]core.Vec2{a, e}, half)
		if !ok {
			continue
		}
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				p := core.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}
				if segmentDistance(p, a, e) <= half {
					b.Set(x, y, c)
				}
			}
		}
	}
}

// bounds returns the clipped pixel box covering pts grown by pad
func (b *PixelBuffer) bounds(pts []core.Vec2, pad float64) (x0, y0, x1, y1 int, ok bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		if !p.IsFinite() {
			return 0, 0, 0, 0, false
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	x0 = max(int(math.Floor(minX-pad)), 0)
	y0 = max(int(math.Floor(minY-pad)), 0)
	x1 = min(int(math.Ceil(maxX+pad)), b.width-1)
	y1 = min(int(math.Ceil(maxY+pad)), b.height-1)
	return x0, y0, x1, y1, x0 <= x1 && y0 <= y1
}

func insidePolygon(pts []core.Vec2, p core.Vec2) bool {
	in := false
	j := len(pts) - 1
	for i := range pts {
		a, e := pts[i], pts[j]
		if (a.Y > p.Y) != (e.Y > p.Y) {
			xCross := a.X + (p.Y-a.Y)*(e.X-a.X)/(e.Y-a.Y)
			if p.X < xCross {
				in = !in
			}
		}
		j = i
	}
	return in
}

func segmentDistance(p, a, e core.Vec2) float64 {
	ab := e.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Dist(a.Add(ab.Scale(t)))
}
