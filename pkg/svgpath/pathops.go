package svgpath

import (
	"math"

	"cutsend/pkg/geometry"
)

func (path *SubPath) StartPoint() (float64, float64) {
	return path.X, path.Y
}

func (path *SubPath) EndPoint() (float64, float64) {
	if len(path.DrawTo) > 0 {
		last := path.DrawTo[len(path.DrawTo)-1]
		return last.X, last.Y
	}
	return path.X, path.Y
}

// Reverse reverses a path and returns the result
func (path *SubPath) Reverse() *SubPath {
	reversed := &SubPath{}
	reversed.X, reversed.Y = path.EndPoint()
	for i := len(path.DrawTo) - 1; i >= 0; i-- {
		drawTo := path.DrawTo[i]
		var prevX, prevY float64
		if i > 0 {
			prevX = path.DrawTo[i-1].X
			prevY = path.DrawTo[i-1].Y
		} else {
			prevX = path.X
			prevY = path.Y
		}
		rDrawTo := &DrawTo{
			Command: drawTo.Command,
			X:       prevX,
			Y:       prevY,
		}
		switch drawTo.Command {
		case LineTo:
			// Nothing more to do
		case ClosePath:
			// A reversed close is just the line back along the same edge.
			rDrawTo.Command = LineTo
		case CurveTo:
			rDrawTo.X1 = drawTo.X2
			rDrawTo.Y1 = drawTo.Y2
			rDrawTo.X2 = drawTo.X1
			rDrawTo.Y2 = drawTo.Y1
		}
		reversed.DrawTo = append(reversed.DrawTo, rDrawTo)
	}
	return reversed
}

// Flatten approximates the sub-path by a polyline that deviates from it by
// at most tolerance. The first point is the sub-path start.
func (path *SubPath) Flatten(tolerance float64) geometry.Polyline {
	line := geometry.Polyline{{X: path.X, Y: path.Y}}
	lastX, lastY := path.StartPoint()
	for _, drawTo := range path.DrawTo {
		switch drawTo.Command {
		case LineTo, ClosePath:
			line = append(line, geometry.Point{X: drawTo.X, Y: drawTo.Y})
		case CurveTo:
			p0 := geometry.Point{X: lastX, Y: lastY}
			p1 := geometry.Point{X: drawTo.X1, Y: drawTo.Y1}
			p2 := geometry.Point{X: drawTo.X2, Y: drawTo.Y2}
			p3 := geometry.Point{X: drawTo.X, Y: drawTo.Y}
			line = flattenCubic(line, p0, p1, p2, p3, tolerance, 0)
		}
		lastX, lastY = drawTo.X, drawTo.Y
	}
	return line
}

const maxFlattenDepth = 16

// flattenCubic appends the points after p0 of a cubic Bézier curve,
// subdividing at t=0.5 until each piece is flat within tolerance.
func flattenCubic(line geometry.Polyline, p0, p1, p2, p3 geometry.Point, tolerance float64, depth int) geometry.Polyline {
	if depth >= maxFlattenDepth || isFlat(p0, p1, p2, p3, tolerance) {
		return append(line, p3)
	}
	mid := geometry.Midpoint
	// de Casteljau split
	p01, p12, p23 := mid(p0, p1), mid(p1, p2), mid(p2, p3)
	p012, p123 := mid(p01, p12), mid(p12, p23)
	m := mid(p012, p123)
	line = flattenCubic(line, p0, p01, p012, m, tolerance, depth+1)
	return flattenCubic(line, m, p123, p23, p3, tolerance, depth+1)
}

// isFlat bounds the distance between the curve and its chord, after Roger
// Willcocks' flatness test.
func isFlat(p0, p1, p2, p3 geometry.Point, tolerance float64) bool {
	ux := 3*p1.X - 2*p0.X - p3.X
	uy := 3*p1.Y - 2*p0.Y - p3.Y
	vx := 3*p2.X - p0.X - 2*p3.X
	vy := 3*p2.Y - p0.Y - 2*p3.Y
	ux, uy, vx, vy = ux*ux, uy*uy, vx*vx, vy*vy
	return math.Max(ux, vx)+math.Max(uy, vy) <= 16*tolerance*tolerance
}
