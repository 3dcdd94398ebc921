package gcode

import (
	"fmt"
	"strconv"
	"strings"

	"cutsend/pkg/geometry"
)

// Move is one straight XY motion of the tool.
type Move struct {
	From  geometry.Point
	To    geometry.Point
	Laser bool
}

type word struct {
	letter byte
	value  float64
}

// parseWords splits a command such as "G1X10 Y-2.5;" into its words. Text
// after ';' and inside parentheses is ignored.
func parseWords(line string) ([]word, error) {
	if i := strings.Index(line, CommentMarker); i >= 0 {
		line = line[:i]
	}
	var words []word
	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '(':
			end := strings.IndexByte(line[i:], ')')
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment")
			}
			i += end + 1
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
			j := i + 1
			for j < len(line) && strings.IndexByte("+-.0123456789 ", line[j]) >= 0 {
				j++
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(line[i+1:j], " ", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("word %q: bad number", line[i:j])
			}
			words = append(words, word{letter: c &^ 0x20, value: value})
			i = j
		default:
			return nil, fmt.Errorf("unexpected %q", string(c))
		}
	}
	return words, nil
}

// Walk interprets the motion commands of a program and calls fn for every
// XY move, in order. It understands G0/G1 (arcs are taken as straight moves
// to their end point), G20/G21, G90/G91, M3/M4/M5 and S. Other words are
// ignored.
func Walk(lines []string, fn func(Move)) error {
	var (
		pos      geometry.Point
		absolute = true
		scale    = 1.0
		laserOn  bool
		power    = -1.0
	)
	for n, line := range lines {
		if Classify(line) != Command {
			continue
		}
		words, err := parseWords(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", n+1, err)
		}

		target := pos
		moved := false
		for _, w := range words {
			switch w.letter {
			case 'G':
				switch w.value {
				case 20:
					scale = 25.4
				case 21:
					scale = 1
				case 90:
					absolute = true
				case 91:
					absolute = false
				}
			case 'M':
				switch w.value {
				case 3, 4:
					laserOn = true
				case 5:
					laserOn = false
				}
			case 'S':
				power = w.value
			case 'X':
				moved = true
				if absolute {
					target.X = w.value * scale
				} else {
					target.X += w.value * scale
				}
			case 'Y':
				moved = true
				if absolute {
					target.Y = w.value * scale
				} else {
					target.Y += w.value * scale
				}
			}
		}
		if moved {
			// S0 keeps a laser dark even while M3 is active.
			fn(Move{From: pos, To: target, Laser: laserOn && power != 0})
			pos = target
		}
	}
	return nil
}
