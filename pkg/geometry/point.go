// Package geometry holds the planar primitives shared by the converter and
// the preview. Units are millimetres throughout.
package geometry

import "math"

type Point struct {
	X float64
	Y float64
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dot returns the dot product of p and q as vectors.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Segment is the straight line from A to B.
type Segment struct {
	A Point
	B Point
}

func (s Segment) Length() float64 {
	return s.A.Distance(s.B)
}

// Distance returns the distance from p to the nearest point of the segment.
func (s Segment) Distance(p Point) float64 {
	ab := s.B.Sub(s.A)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Distance(s.A)
	}
	t := math.Max(0, math.Min(1, p.Sub(s.A).Dot(ab)/l2))
	return p.Distance(Point{X: s.A.X + t*ab.X, Y: s.A.Y + t*ab.Y})
}

// Rect is an axis-aligned bounding box. The zero Rect contains only the
// origin.
type Rect struct {
	Min Point
	Max Point
}

// Extend returns the smallest Rect containing r and p.
func (r Rect) Extend(p Point) Rect {
	return Rect{
		Min: Point{X: math.Min(r.Min.X, p.X), Y: math.Min(r.Min.Y, p.Y)},
		Max: Point{X: math.Max(r.Max.X, p.X), Y: math.Max(r.Max.Y, p.Y)},
	}
}

func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }
