// Package geom holds the vector primitives shared by the puzzle packages:
// points, bezier path nodes and closed piece outlines.
//
// Coordinates follow SVG conventions: x grows to the right and y grows
// downward. A [Path] is a sequence of [Node] values whose handles are stored
// as absolute positions, so the cubic segment between two consecutive nodes
// a and b is (a.Anchor, a.Out, b.In, b.Anchor). A handle equal to its anchor
// is a zero-length handle.
package geom

import "math"

// Epsilon is the tolerance used for geometric comparisons.
const Epsilon = 1e-9

// Point is a 2D position or vector.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point    { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point    { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(s float64) Point  { return Point{p.X * s, p.Y * s} }
func (p Point) Dot(q Point) float64  { return p.X*q.X + p.Y*q.Y }
func (p Point) Len() float64         { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64 { return q.Sub(p).Len() }

func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Unit returns p scaled to length 1. The zero vector is returned unchanged.
func (p Point) Unit() Point {
	l := p.Len()
	if l == 0 {
		return p
	}
	return Point{p.X / l, p.Y / l}
}

// Near reports whether p and q are within eps of each other.
func (p Point) Near(q Point, eps float64) bool {
	return p.Dist(q) <= eps
}

// IsFinite reports whether both coordinates are finite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Rect is an axis-aligned rectangle given by its minimum and maximum corners.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Outset grows the rectangle by d on every side; negative d shrinks it.
func (r Rect) Outset(d float64) Rect {
	return Rect{
		Min: Point{r.Min.X - d, r.Min.Y - d},
		Max: Point{r.Max.X + d, r.Max.Y + d},
	}
}
