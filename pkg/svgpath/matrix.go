package svgpath

import (
	"math"

	"golang.org/x/xerrors"
)

// Matrix is an SVG affine transform:
//
//	⎡ A  C  E ⎤
//	⎢ B  D  F ⎥
//	⎣ 0  0  1 ⎦
type Matrix struct {
	A float64
	B float64
	C float64
	D float64
	E float64
	F float64
}

// Identity is the transform that leaves points unchanged.
var Identity = Matrix{A: 1, D: 1}

// Scale returns a uniform scaling transform.
func Scale(f float64) Matrix {
	return Matrix{A: f, D: f}
}

// ParseTransform parses the value of a transform attribute.
func ParseTransform(transform string) (Matrix, error) {
	m := Identity

	functions, err := ParseFunctions(transform)
	if err != nil {
		return m, xerrors.Errorf("transform %q: %w", transform, err)
	}

	for _, function := range functions {
		args := function.Args
		switch function.Name {
		case "matrix":
			if len(args) != 6 {
				return m, xerrors.Errorf("6 args required for matrix transform, got %v", args)
			}
			m = m.Multiply(Matrix{
				A: args[0], C: args[2], E: args[4],
				B: args[1], D: args[3], F: args[5],
			})
		case "translate":
			if len(args) != 2 && len(args) != 1 {
				return m, xerrors.Errorf("1 or 2 args required for translate transform, got %v", args)
			}
			x := args[0]
			y := 0.0
			if len(args) == 2 {
				y = args[1]
			}
			m = m.Multiply(Matrix{
				A: 1, C: 0, E: x,
				B: 0, D: 1, F: y,
			})
		case "scale":
			if len(args) != 2 && len(args) != 1 {
				return m, xerrors.Errorf("1 or 2 args required for scale transform, got %v", args)
			}
			x := args[0]
			y := x
			if len(args) == 2 {
				y = args[1]
			}
			m = m.Multiply(Matrix{
				A: x, C: 0, E: 0,
				B: 0, D: y, F: 0,
			})
		case "rotate":
			//  ⎡ cos(θ)  −sin(θ)  −x⋅cos(θ)+y⋅sin(θ)+x ⎤
			//  ⎢ sin(θ)   cos(θ)  −x⋅sin(θ)−y⋅cos(θ)+y |
			//  ⎣   0        0               1          ⎦
			if len(args) != 3 && len(args) != 1 {
				return m, xerrors.Errorf("1 or 3 args required for rotate transform, got %v", args)
			}
			cos := math.Cos(args[0] * math.Pi / 180)
			sin := math.Sin(args[0] * math.Pi / 180)
			x, y := 0.0, 0.0
			if len(args) == 3 {
				x, y = args[1], args[2]
			}
			m = m.Multiply(Matrix{
				A: cos, C: -sin, E: -x*cos + y*sin + x,
				B: sin, D: cos, F: -x*sin - y*cos + y,
			})
		case "skewX":
			if len(args) != 1 {
				return m, xerrors.Errorf("1 arg required for skewX transform, got %v", args)
			}
			m = m.Multiply(Matrix{A: 1, C: math.Tan(args[0] * math.Pi / 180), D: 1})
		case "skewY":
			if len(args) != 1 {
				return m, xerrors.Errorf("1 arg required for skewY transform, got %v", args)
			}
			m = m.Multiply(Matrix{A: 1, B: math.Tan(args[0] * math.Pi / 180), D: 1})
		default:
			return m, xerrors.Errorf("unknown transform function %q %v", function.Name, args)
		}
	}

	return m, nil
}

func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.C*other.B,
		B: m.B*other.A + m.D*other.B,
		C: m.A*other.C + m.C*other.D,
		D: m.B*other.C + m.D*other.D,
		E: m.A*other.E + m.C*other.F + m.E,
		F: m.B*other.E + m.D*other.F + m.F,
	}
}

func (m Matrix) transformX(x, y float64) float64 {
	return m.A*x + m.C*y + m.E
}

func (m Matrix) transformY(x, y float64) float64 {
	return m.B*x + m.D*y + m.F
}

func (m Matrix) TransformPoint(x, y float64) (float64, float64) {
	return m.transformX(x, y), m.transformY(x, y)
}

// TransformPath transforms every point of path in place.
func (m Matrix) TransformPath(path []*SubPath) {
	for _, group := range path {
		group.X, group.Y = m.TransformPoint(group.X, group.Y)
		for _, drawTo := range group.DrawTo {
			drawTo.X, drawTo.Y = m.TransformPoint(drawTo.X, drawTo.Y)
			if drawTo.Command == CurveTo {
				drawTo.X1, drawTo.Y1 = m.TransformPoint(drawTo.X1, drawTo.Y1)
				drawTo.X2, drawTo.Y2 = m.TransformPoint(drawTo.X2, drawTo.Y2)
			}
		}
	}
}
