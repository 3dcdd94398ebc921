package drawing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/xerrors"

	"cutsend/pkg/svgpath"
)

func scaleFactor(baseUnits string) float64 {
	/*
		Units as defined at https://www.w3.org/TR/css3-values/#absolute-lengths

		unit	name	equivalence
		cm	centimeters	1cm = 96px/2.54
		mm	millimeters	1mm = 1/10th of 1 cm
		Q	quarter-millimeters	1Q = 1/40th of 1 cm
		in	inches	1 in = 2.54cm = 96px
		pc	picas	1 pc = 1/6th of 1 in
		pt	points	1 pt = 1/72th of 1 in
		px	pixels	1 px = 1/96th of 1 in
	*/
	factors := map[string]float64{
		"cm": 10,
		"mm": 1,
		"Q":  0.25,
		"in": 25.4,
		"pc": 25.4 / 6,
		"pt": 25.4 / 72,
		"px": 25.4 / 96,
	}
	if factor, ok := factors[baseUnits]; ok {
		return factor
	}
	return 0
}

var lengthRE = regexp.MustCompile(`^\s*([+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?)\s*([a-zA-Z%]*)\s*$`)

// lengthToMM converts an absolute length such as "210mm" or "96" (pixels) to
// millimetres. ok is false for empty, relative or malformed lengths.
func lengthToMM(length string) (mm float64, ok bool) {
	match := lengthRE.FindStringSubmatch(length)
	if match == nil {
		return 0, false
	}
	unit := match[2]
	if unit == "" {
		unit = "px"
	}
	factor := scaleFactor(unit)
	if factor == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return value * factor, true
}

// userLength parses a coordinate attribute in user units. Unit suffixes are
// converted relative to px, the size of one user unit.
func userLength(length string) float64 {
	if strings.TrimSpace(length) == "" {
		return 0
	}
	mm, ok := lengthToMM(length)
	if !ok {
		return ParseNumber(length)
	}
	return mm / scaleFactor("px")
}

type viewBox struct {
	x, y, width, height float64
}

func parseViewBox(s string) (viewBox, bool, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return viewBox{}, false, nil
	}
	if len(fields) != 4 {
		return viewBox{}, false, xerrors.Errorf("viewBox %q: want 4 numbers", s)
	}
	var v [4]float64
	for i, field := range fields {
		n, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return viewBox{}, false, xerrors.Errorf("viewBox %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return viewBox{}, false, xerrors.Errorf("viewBox %q: width and height must be positive", s)
	}
	return viewBox{x: v[0], y: v[1], width: v[2], height: v[3]}, true, nil
}

// pageMatrix maps the root element's user units to millimetres and returns
// the page size in millimetres. A size of 0 means the document left it
// unspecified.
func (n *Node) pageMatrix() (m svgpath.Matrix, widthMM, heightMM float64, err error) {
	vb, hasViewBox, err := parseViewBox(n.ViewBox)
	if err != nil {
		return svgpath.Identity, 0, 0, err
	}
	pxToMM := scaleFactor("px")

	widthMM, widthOK := lengthToMM(n.Width)
	heightMM, heightOK := lengthToMM(n.Height)

	if !hasViewBox {
		return svgpath.Scale(pxToMM), widthMM, heightMM, nil
	}

	switch {
	case !widthOK && !heightOK:
		widthMM, heightMM = vb.width*pxToMM, vb.height*pxToMM
	case !widthOK:
		widthMM = heightMM * vb.width / vb.height
	case !heightOK:
		heightMM = widthMM * vb.height / vb.width
	}

	sx := widthMM / vb.width
	sy := heightMM / vb.height
	var tx, ty float64
	if strings.TrimSpace(n.PreserveAspectRatio) != "none" {
		// Default xMidYMid meet: uniform scale, centred.
		s := math.Min(sx, sy)
		tx = (widthMM - vb.width*s) / 2
		ty = (heightMM - vb.height*s) / 2
		sx, sy = s, s
	}
	return svgpath.Matrix{
		A: sx, E: tx - vb.x*sx,
		D: sy, F: ty - vb.y*sy,
	}, widthMM, heightMM, nil
}
