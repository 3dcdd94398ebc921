// Package svgpath parses SVG path data into absolute sub-paths made of
// straight lines and cubic Bézier curves.
package svgpath

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// The parser follows the path data grammar of SVG 1.1, section 8.3.9:
//
// svg-path:
//     wsp* moveto-drawto-command-groups? wsp*
// moveto-drawto-command-group:
//     moveto wsp* drawto-commands?
// drawto-command:
//     closepath | lineto | horizontal-lineto | vertical-lineto
//     | curveto | smooth-curveto | quadratic-bezier-curveto
//     | smooth-quadratic-bezier-curveto | elliptical-arc
// elliptical-arc-argument:
//     nonnegative-number comma-wsp? nonnegative-number comma-wsp?
//         number comma-wsp flag comma-wsp? flag comma-wsp? coordinate-pair
// coordinate-pair:
//     coordinate comma-wsp? coordinate
// number:
//     sign? integer-constant
//     | sign? floating-point-constant
// floating-point-constant:
//     fractional-constant exponent?
//     | digit-sequence exponent
// flag:
//     "0" | "1"
// comma-wsp:
//     (wsp+ comma? wsp*) | (comma wsp*)
// wsp:
//     (#x20 | #x9 | #xD | #xA)
//
// Quadratic curves are raised to cubics and arcs are approximated by cubics,
// so the output only contains LineTo, CurveTo and ClosePath.

type state struct {
	data     string
	index    int
	subPaths []*SubPath
	group    *SubPath
	currentX float64
	currentY float64
	relative bool

	// Reflection points for the smooth curve commands.
	lastCubicX, lastCubicY float64
	lastQuadX, lastQuadY   float64
	lastCommand            byte
}

type SubPath struct {
	X, Y   float64
	DrawTo []*DrawTo
}

type Command string

const (
	ClosePath Command = "Z"
	LineTo    Command = "L"
	CurveTo   Command = "C"
)

type DrawTo struct {
	Command Command
	X, Y    float64
	X1, Y1  float64
	X2, Y2  float64
}

func (s *state) parse() error {
	for {
		s.whitespace()

		c := s.peek()
		if c != 'M' && c != 'm' {
			break
		}

		if err := s.parseMoveTo(); err != nil {
			return err
		}
		s.whitespace()
		if err := s.parseDrawToCommands(); err != nil {
			return err
		}
	}

	s.whitespace()

	if s.index != len(s.data) {
		return xerrors.Errorf("unparsed data at offset %d: %q", s.index, s.data[s.index:])
	}

	return nil
}

// parseMoveTo parses one move to command
func (s *state) parseMoveTo() error {
	command := s.next()
	if command != 'M' && command != 'm' {
		return xerrors.Errorf("expected \"M\" or \"m\", got %q", string(command))
	}
	s.relative = command == 'm'
	s.whitespace()

	x, y, err := s.parseCoordinatePair()
	if err != nil {
		return err
	}
	if s.relative {
		x += s.currentX
		y += s.currentY
	}
	s.currentX, s.currentY = x, y
	s.lastCommand = 'M'

	// The move to command always starts a new sub path group
	s.group = nil
	s.ensureSubPath()

	// The Move To can be followed directly by more coordinate pairs as implicit Line To sequences.
	for {
		savedIndex := s.index
		s.commaWhitespace()
		x, y, err := s.parseCoordinatePair()
		if err != nil {
			// backtrack.
			s.index = savedIndex
			break
		}
		if s.relative {
			x += s.currentX
			y += s.currentY
		}
		s.lineTo(x, y)
	}

	return nil
}

// ensureSubPath starts a new sub path if there isn't already one.
func (s *state) ensureSubPath() {
	if s.group == nil {
		s.group = &SubPath{X: s.currentX, Y: s.currentY}
		s.subPaths = append(s.subPaths, s.group)
	}
}

func (s *state) lineTo(x, y float64) {
	s.group.DrawTo = append(s.group.DrawTo,
		&DrawTo{Command: LineTo, X: x, Y: y})
	s.currentX = x
	s.currentY = y
	s.lastCommand = 'L'
}

func (s *state) cubicTo(x1, y1, x2, y2, x, y float64) {
	s.group.DrawTo = append(s.group.DrawTo,
		&DrawTo{Command: CurveTo, X: x, Y: y, X1: x1, Y1: y1, X2: x2, Y2: y2})
	s.lastCubicX, s.lastCubicY = x2, y2
	s.currentX = x
	s.currentY = y
	s.lastCommand = 'C'
}

func (s *state) quadTo(qx, qy, x, y float64) {
	x0, y0 := s.currentX, s.currentY
	s.cubicTo(
		x0+2.0/3.0*(qx-x0), y0+2.0/3.0*(qy-y0),
		x+2.0/3.0*(qx-x), y+2.0/3.0*(qy-y),
		x, y)
	s.lastQuadX, s.lastQuadY = qx, qy
	s.lastCommand = 'Q'
}

// parseCoordinatePair parses "coordinate comma-wsp? coordinate"
func (s *state) parseCoordinatePair() (float64, float64, error) {
	x, err := s.parseNumber()
	if err != nil {
		return 0, 0, err
	}
	s.commaWhitespace()
	y, err := s.parseNumber()
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// parseNumber parses a number
func (s *state) parseNumber() (float64, error) {
	c := s.peek()
	if c == '+' || c == '-' {
		s.next()
		n, err := s.parseNonNegativeNumber()
		if c == '-' {
			n = -n
		}
		return n, err
	}
	return s.parseNonNegativeNumber()
}

func (s *state) parseNonNegativeNumber() (float64, error) {
	number := s.digitSequence()
	if number == "" {
		// Possible fractional constant starting with a decimal point
		c := s.peek()
		if c != '.' {
			return 0, xerrors.Errorf("expected a number, got %q", string(c))
		}
		s.next()
		number = "." + s.digitSequence()
		if number == "." {
			return 0, xerrors.New("expected a number, got only a \".\"")
		}
	} else {
		// Check for possible fractional constant
		if s.peek() == '.' {
			s.next()
			number += "." + s.digitSequence()
		}
	}

	// Check for possible exponent
	c := s.peek()
	if c == 'E' || c == 'e' {
		saved := s.index
		s.next()
		sign := ""
		c = s.peek()
		if c == '+' || c == '-' {
			s.next()
			sign = string(c)
		}
		exponent := s.digitSequence()
		if exponent == "" {
			// Not an exponent after all.
			s.index = saved
		} else {
			number += "E" + sign + exponent
		}
	}

	n, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, xerrors.Errorf("number %q: %w", number, err)
	}
	return n, nil
}

func (s *state) digitSequence() string {
	start := s.index
	for {
		c := s.peek()
		if '0' <= c && c <= '9' {
			s.next()
		} else {
			break
		}
	}
	return s.data[start:s.index]
}

// parseFlag parses a single "0" or "1". Flags need no separator, as in "a1 1 0 011 1".
func (s *state) parseFlag() (bool, error) {
	switch c := s.next(); c {
	case '0':
		return false, nil
	case '1':
		return true, nil
	default:
		return false, xerrors.Errorf("expected flag \"0\" or \"1\", got %q", string(c))
	}
}

// parseDrawToCommands parses 0 or more Draw To commands.
func (s *state) parseDrawToCommands() error {
	first := true
	for {
		if !first {
			s.whitespace()
		}
		first = false

		var err error

		c := s.peek()
		switch c {
		case 'L', 'l':
			err = s.parseArguments(2, s.lineToArgs)
		case 'H', 'h':
			err = s.parseArguments(1, s.horizontalArgs)
		case 'V', 'v':
			err = s.parseArguments(1, s.verticalArgs)
		case 'C', 'c':
			err = s.parseArguments(6, s.curveToArgs)
		case 'S', 's':
			err = s.parseArguments(4, s.smoothCurveToArgs)
		case 'Q', 'q':
			err = s.parseArguments(4, s.quadToArgs)
		case 'T', 't':
			err = s.parseArguments(2, s.smoothQuadToArgs)
		case 'A', 'a':
			err = s.parseArc()
		case 'Z', 'z':
			err = s.parseClosePath()
		default:
			return nil
		}

		if err != nil {
			return err
		}
	}
}

func (s *state) parseClosePath() error {
	s.next()
	if s.group == nil {
		// "Z" straight after another "Z" closes nothing new.
		return nil
	}
	s.group.DrawTo = append(s.group.DrawTo,
		&DrawTo{Command: ClosePath, X: s.group.X, Y: s.group.Y})
	s.currentX = s.group.X
	s.currentY = s.group.Y
	s.group = nil
	s.lastCommand = 'Z'
	return nil
}

// parseArguments consumes a command letter followed by one or more groups
// of n numbers, handing each group to apply.
func (s *state) parseArguments(n int, apply func(args []float64)) error {
	c := s.next()
	s.relative = 'a' <= c && c <= 'z'

	s.whitespace()
	s.ensureSubPath()

	args := make([]float64, n)
	first := true
	for {
		oldIndex := s.index
		if !first {
			s.commaWhitespace()
		}

		var err error
		for i := 0; i < n && err == nil; i++ {
			if i > 0 {
				s.commaWhitespace()
			}
			args[i], err = s.parseNumber()
		}
		if err != nil {
			if !first {
				s.index = oldIndex
				return nil
			}
			return xerrors.Errorf("command %q: %w", string(c), err)
		}
		apply(args)
		first = false
	}
}

func (s *state) lineToArgs(args []float64) {
	x, y := args[0], args[1]
	if s.relative {
		x += s.currentX
		y += s.currentY
	}
	s.lineTo(x, y)
}

func (s *state) horizontalArgs(args []float64) {
	x := args[0]
	if s.relative {
		x += s.currentX
	}
	s.lineTo(x, s.currentY)
}

func (s *state) verticalArgs(args []float64) {
	y := args[0]
	if s.relative {
		y += s.currentY
	}
	s.lineTo(s.currentX, y)
}

func (s *state) curveToArgs(args []float64) {
	x1, y1, x2, y2, x, y := args[0], args[1], args[2], args[3], args[4], args[5]
	if s.relative {
		x1 += s.currentX
		y1 += s.currentY
		x2 += s.currentX
		y2 += s.currentY
		x += s.currentX
		y += s.currentY
	}
	s.cubicTo(x1, y1, x2, y2, x, y)
}

func (s *state) smoothCurveToArgs(args []float64) {
	x2, y2, x, y := args[0], args[1], args[2], args[3]
	if s.relative {
		x2 += s.currentX
		y2 += s.currentY
		x += s.currentX
		y += s.currentY
	}
	// The first control point reflects the previous cubic's second one.
	x1, y1 := s.currentX, s.currentY
	if s.lastCommand == 'C' {
		x1 = 2*s.currentX - s.lastCubicX
		y1 = 2*s.currentY - s.lastCubicY
	}
	s.cubicTo(x1, y1, x2, y2, x, y)
}

func (s *state) quadToArgs(args []float64) {
	qx, qy, x, y := args[0], args[1], args[2], args[3]
	if s.relative {
		qx += s.currentX
		qy += s.currentY
		x += s.currentX
		y += s.currentY
	}
	s.quadTo(qx, qy, x, y)
}

func (s *state) smoothQuadToArgs(args []float64) {
	x, y := args[0], args[1]
	if s.relative {
		x += s.currentX
		y += s.currentY
	}
	qx, qy := s.currentX, s.currentY
	if s.lastCommand == 'Q' {
		qx = 2*s.currentX - s.lastQuadX
		qy = 2*s.currentY - s.lastQuadY
	}
	s.quadTo(qx, qy, x, y)
}

func (s *state) parseArc() error {
	c := s.next()
	s.relative = c == 'a'

	s.whitespace()
	s.ensureSubPath()

	first := true
	for {
		oldIndex := s.index
		if !first {
			s.commaWhitespace()
		}

		rx, err := s.parseNumber()
		if err != nil {
			if !first {
				s.index = oldIndex
				return nil
			}
			return xerrors.Errorf("command %q: %w", string(c), err)
		}
		s.commaWhitespace()
		ry, err := s.parseNumber()
		if err != nil {
			return err
		}
		s.commaWhitespace()
		rotation, err := s.parseNumber()
		if err != nil {
			return err
		}
		s.commaWhitespace()
		largeArc, err := s.parseFlag()
		if err != nil {
			return err
		}
		s.commaWhitespace()
		sweep, err := s.parseFlag()
		if err != nil {
			return err
		}
		s.commaWhitespace()
		x, y, err := s.parseCoordinatePair()
		if err != nil {
			return err
		}
		if s.relative {
			x += s.currentX
			y += s.currentY
		}
		s.arcTo(rx, ry, rotation, largeArc, sweep, x, y)
		first = false
	}
}

// arcTo appends an elliptical arc as cubic segments spanning at most 90
// degrees each, using the endpoint to center conversion of SVG 1.1 F.6.5.
func (s *state) arcTo(rx, ry, rotation float64, largeArc, sweep bool, x, y float64) {
	x0, y0 := s.currentX, s.currentY
	if x0 == x && y0 == y {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		s.lineTo(x, y)
		return
	}

	phi := rotation * math.Pi / 180
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	dx2, dy2 := (x0-x)/2, (y0-y)/2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	// Scale up radii that are too small to span the endpoints.
	lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry)
	if lambda > 1 {
		k := math.Sqrt(lambda)
		rx *= k
		ry *= k
	}

	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	coef := 0.0
	if den != 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if largeArc == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := -coef * ry * x1p / rx

	cx := cosPhi*cxp - sinPhi*cyp + (x0+x)/2
	cy := sinPhi*cxp + cosPhi*cyp + (y0+y)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	}
	theta1 := angle(1, 0, (x1p-cxp)/rx, (y1p-cyp)/ry)
	delta := angle((x1p-cxp)/rx, (y1p-cyp)/ry, (-x1p-cxp)/rx, (-y1p-cyp)/ry)
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	segments := int(math.Ceil(math.Abs(delta) / (math.Pi / 2)))
	step := delta / float64(segments)
	k := 4.0 / 3.0 * math.Tan(step/4)

	point := func(theta float64) (float64, float64) {
		ex, ey := rx*math.Cos(theta), ry*math.Sin(theta)
		return cosPhi*ex - sinPhi*ey + cx, sinPhi*ex + cosPhi*ey + cy
	}
	derivative := func(theta float64) (float64, float64) {
		ex, ey := -rx*math.Sin(theta), ry*math.Cos(theta)
		return cosPhi*ex - sinPhi*ey, sinPhi*ex + cosPhi*ey
	}

	theta := theta1
	for i := 0; i < segments; i++ {
		next := theta + step
		px, py := point(theta)
		qx, qy := point(next)
		if i == segments-1 {
			qx, qy = x, y
		}
		d1x, d1y := derivative(theta)
		d2x, d2y := derivative(next)
		s.cubicTo(px+k*d1x, py+k*d1y, qx-k*d2x, qy-k*d2y, qx, qy)
		theta = next
	}
}

// whitespace consumes "wsp*", and returns the number of bytes consumed
func (s *state) whitespace() int {
	count := 0
	for {
		switch s.peek() {
		case ' ', '\t', '\n', '\r':
			s.next()
			count++
		default:
			return count
		}
	}
}

// commaWhitespace consumes an optional "(wsp+ comma? wsp*) | (comma wsp*)",
// and returns true if something was consumed
func (s *state) commaWhitespace() bool {
	if s.peek() == ',' {
		s.next()
		s.whitespace()
		return true
	}

	consumed := s.whitespace()
	if consumed > 0 {
		if s.peek() == ',' {
			s.next()
		}
		s.whitespace()
		return true
	}

	return false
}

// peek returns the next byte without consuming it, or 0 if at the end of stream
func (s *state) peek() byte {
	if s.index < len(s.data) {
		return s.data[s.index]
	}
	return 0
}

// next consumes and returns the next byte, or 0 if at the end of stream
func (s *state) next() byte {
	if s.index < len(s.data) {
		i := s.index
		s.index++
		return s.data[i]
	}
	return 0
}

// Parse parses a path string. On error the sub-paths parsed so far are
// returned along with it.
func Parse(path string) ([]*SubPath, error) {
	s := &state{data: path}
	err := s.parse()
	return s.subPaths, err
}

type Function struct {
	Name string
	Args []float64
}

func (s *state) parseFunctions() ([]*Function, error) {
	var functions []*Function
	// (wsp* identifier wsp* "(" wsp* number (comma-wsp number)* wsp* ")" comma-wsp?)*
	for {
		s.whitespace()
		if s.peek() == 0 {
			return functions, nil
		}

		function := &Function{}
		functions = append(functions, function)

		// identifier
		start := s.index
		c := s.next()
		if !isLetter(c) {
			return functions, xerrors.Errorf("identifier must start with a letter, got %q", string(c))
		}
		for {
			c := s.peek()
			if isLetter(c) || ('0' <= c && c <= '9') || c == '_' || c == '-' {
				s.next()
			} else {
				break
			}
		}
		function.Name = s.data[start:s.index]

		// Open parenthesis
		s.whitespace()
		c = s.next()
		if c != '(' {
			return functions, xerrors.Errorf("expected \"(\", got %q", string(c))
		}

		// First argument (optional)
		s.whitespace()
		oldIndex := s.index
		n, err := s.parseNumber()
		if err != nil {
			s.index = oldIndex
		} else {
			function.Args = append(function.Args, n)
			// Remaining arguments
			for {
				oldIndex = s.index
				s.commaWhitespace()
				n, err = s.parseNumber()
				if err != nil {
					s.index = oldIndex
					break
				}
				function.Args = append(function.Args, n)
			}
		}

		// Close parenthesis
		s.whitespace()
		c = s.next()
		if c != ')' {
			return functions, xerrors.Errorf("expected \")\", got %q", string(c))
		}
		s.commaWhitespace()
	}
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// ParseFunctions parses a list of functional notations such as the value of
// a transform attribute.
func ParseFunctions(functions string) ([]*Function, error) {
	s := &state{data: functions}
	return s.parseFunctions()
}

func ToString(groups []*SubPath) string {
	var buf strings.Builder

	// Note: this function runs a simple serialization. It does not try to optimize the path string.

	formatNumber := func(n float64) string {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	for i, group := range groups {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString("M " + formatNumber(group.X) + " " + formatNumber(group.Y))
		for _, drawTo := range group.DrawTo {
			switch drawTo.Command {
			case LineTo:
				buf.WriteString(" L " + formatNumber(drawTo.X) + " " + formatNumber(drawTo.Y))
			case CurveTo:
				buf.WriteString(" C " +
					formatNumber(drawTo.X1) + " " + formatNumber(drawTo.Y1) + " " +
					formatNumber(drawTo.X2) + " " + formatNumber(drawTo.Y2) + " " +
					formatNumber(drawTo.X) + " " + formatNumber(drawTo.Y))
			case ClosePath:
				buf.WriteString(" Z")
			}
		}
	}

	return buf.String()
}
