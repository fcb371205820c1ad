package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec2 is a point or direction in scene units, y grows downward as on screen
type Vec2 r2.Vec

func (v Vec2) Add(o Vec2) Vec2      { return Vec2(r2.Add(r2.Vec(v), r2.Vec(o))) }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2(r2.Sub(r2.Vec(v), r2.Vec(o))) }
func (v Vec2) Scale(k float64) Vec2 { return Vec2(r2.Scale(k, r2.Vec(v))) }
func (v Vec2) Len() float64         { return r2.Norm(r2.Vec(v)) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }
func (v Vec2) Dot(o Vec2) float64   { return r2.Dot(r2.Vec(v), r2.Vec(o)) }
func (v Vec2) IsFinite() bool       { return isFinite(v.X) && isFinite(v.Y) }
func (v Vec2) Angle() float64       { return math.Atan2(v.Y, v.X) }
func (v Vec2) ApproxEq(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Rotate turns v by deg degrees counter-clockwise as seen on screen (y down),
// which is a clockwise rotation in the y-up frame r2 works in
func (v Vec2) Rotate(deg float64) Vec2 {
	return Vec2(r2.Rotate(r2.Vec(v), -Radians(deg), r2.Vec{}))
}

// Polar returns the point at distance r along screen angle a (radians, clockwise on screen because y is down)
func Polar(r, a float64) Vec2 {
	s, c := math.Sincos(a)
	return Vec2{X: r * c, Y: r * s}
}

// Degrees converts radians to degrees
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Radians converts degrees to radians
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
