package geometry

// Polyline is a connected run of straight segments.
type Polyline []Point

// Length returns the total length of the polyline.
func (line Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += line[i-1].Distance(line[i])
	}
	return total
}

// Simplify reduces the polyline with the Douglas-Peucker algorithm: a point
// is dropped when it lies within epsilon of the simplified line. The end
// points are always kept and the result is a new slice.
func (line Polyline) Simplify(epsilon float64) Polyline {
	if len(line) < 3 {
		return append(Polyline(nil), line...)
	}

	keep := make([]bool, len(line))
	keep[0], keep[len(line)-1] = true, true

	type span struct{ first, last int }
	stack := []span{{0, len(line) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		chord := Segment{A: line[s.first], B: line[s.last]}
		dmax, index := 0.0, 0
		for i := s.first + 1; i < s.last; i++ {
			if d := chord.Distance(line[i]); d > dmax {
				dmax, index = d, i
			}
		}
		if dmax < epsilon {
			continue
		}
		keep[index] = true
		stack = append(stack, span{s.first, index}, span{index, s.last})
	}

	var simplified Polyline
	for i, p := range line {
		if keep[i] {
			simplified = append(simplified, p)
		}
	}
	return simplified
}
