package svgpath_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"cutsend/pkg/geometry"
	"cutsend/pkg/svgpath"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestBasic(t *testing.T) {
	subPaths, err := svgpath.Parse(" \t\r\nM1.e2 2. 1 .2.3 0.4e2 z L 7 8 9 10 H 11 12 13 L 2 2v5C 5 6 7 8 9 10")
	if err != nil {
		t.Errorf("parsing failed: %s", err)
	}
	expected := []*svgpath.SubPath{
		{X: 100, Y: 2, DrawTo: []*svgpath.DrawTo{
			{Command: svgpath.LineTo, X: 1, Y: .2},
			{Command: svgpath.LineTo, X: .3, Y: 40},
			{Command: svgpath.ClosePath, X: 100, Y: 2},
		}},
		{X: 100, Y: 2, DrawTo: []*svgpath.DrawTo{
			{Command: svgpath.LineTo, X: 7, Y: 8},
			{Command: svgpath.LineTo, X: 9, Y: 10},
			{Command: svgpath.LineTo, X: 11, Y: 10},
			{Command: svgpath.LineTo, X: 12, Y: 10},
			{Command: svgpath.LineTo, X: 13, Y: 10},
			{Command: svgpath.LineTo, X: 2, Y: 2},
			{Command: svgpath.LineTo, X: 2, Y: 7},
			{Command: svgpath.CurveTo, X: 9, Y: 10, X1: 5, Y1: 6, X2: 7, Y2: 8},
		}},
	}
	if diff := cmp.Diff(expected, subPaths); diff != "" {
		t.Errorf("incorrect output: %s", diff)
	}
}

func TestMoveToStartsSubPath(t *testing.T) {
	subPaths, err := svgpath.Parse("M 0 0 L 10 0 m 5 5 l 1 1 2 2")
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	expected := []*svgpath.SubPath{
		{X: 0, Y: 0, DrawTo: []*svgpath.DrawTo{
			{Command: svgpath.LineTo, X: 10, Y: 0},
		}},
		{X: 15, Y: 5, DrawTo: []*svgpath.DrawTo{
			{Command: svgpath.LineTo, X: 16, Y: 6},
			{Command: svgpath.LineTo, X: 18, Y: 8},
		}},
	}
	if diff := cmp.Diff(expected, subPaths); diff != "" {
		t.Errorf("incorrect output: %s", diff)
	}
}

func TestSmoothAndQuadraticCurves(t *testing.T) {
	subPaths, err := svgpath.Parse("M0,0 C0,10 10,10 10,0 S20,-10 20,0 Q25,10 30,0 T40,0")
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	expected := []*svgpath.SubPath{
		{X: 0, Y: 0, DrawTo: []*svgpath.DrawTo{
			{Command: svgpath.CurveTo, X1: 0, Y1: 10, X2: 10, Y2: 10, X: 10, Y: 0},
			// S reflects the previous second control point (10,10) about (10,0).
			{Command: svgpath.CurveTo, X1: 10, Y1: -10, X2: 20, Y2: -10, X: 20, Y: 0},
			// Q raised to a cubic: control points at 2/3 towards (25,10).
			{Command: svgpath.CurveTo, X1: 20 + 2.0/3.0*5, Y1: 2.0 / 3.0 * 10, X2: 30 - 2.0/3.0*5, Y2: 2.0 / 3.0 * 10, X: 30, Y: 0},
			// T reflects (25,10) about (30,0) to (35,-10).
			{Command: svgpath.CurveTo, X1: 30 + 2.0/3.0*5, Y1: -2.0 / 3.0 * 10, X2: 40 - 2.0/3.0*5, Y2: -2.0 / 3.0 * 10, X: 40, Y: 0},
		}},
	}
	if diff := cmp.Diff(expected, subPaths, approx); diff != "" {
		t.Errorf("incorrect output: %s", diff)
	}
}

func TestArc(t *testing.T) {
	subPaths, err := svgpath.Parse("M 0 0 A 5 5 0 0 1 10 0")
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	if len(subPaths) != 1 || len(subPaths[0].DrawTo) != 2 {
		t.Fatalf("expected one sub-path with two curve segments, got %s", svgpath.ToString(subPaths))
	}
	first, last := subPaths[0].DrawTo[0], subPaths[0].DrawTo[1]
	if math.Abs(first.X-5) > 1e-9 || math.Abs(first.Y+5) > 1e-9 {
		t.Errorf("half way point = (%g, %g), want (5, -5)", first.X, first.Y)
	}
	if last.X != 10 || last.Y != 0 {
		t.Errorf("end point = (%g, %g), want (10, 0)", last.X, last.Y)
	}
	for _, p := range subPaths[0].Flatten(0.01) {
		if r := math.Hypot(p.X-5, p.Y); math.Abs(r-5) > 0.01 {
			t.Errorf("point %v is %g from the centre, want 5", p, r)
		}
	}
}

func TestArcCompactFlags(t *testing.T) {
	subPaths, err := svgpath.Parse("M0 0a5 5 0 015 5")
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	x, y := subPaths[0].EndPoint()
	if math.Abs(x-5) > 1e-9 || math.Abs(y-5) > 1e-9 {
		t.Errorf("end point = (%g, %g), want (5, 5)", x, y)
	}
}

func TestParseErrors(t *testing.T) {
	for _, path := range []string{
		"L 1 2",
		"M 1",
		"M 0 0 L 1",
		"M 0 0 A 1 1 0 2 0 3 3",
		"M 0 0 X 1 2",
	} {
		if _, err := svgpath.Parse(path); err == nil {
			t.Errorf("Parse(%q) succeeded, want an error", path)
		}
	}
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		transform string
		want      svgpath.Matrix
	}{
		{"", svgpath.Identity},
		{"translate(10)", svgpath.Matrix{A: 1, D: 1, E: 10}},
		{"translate(10, 20) scale(2)", svgpath.Matrix{A: 2, D: 2, E: 10, F: 20}},
		{"scale(2,3)", svgpath.Matrix{A: 2, D: 3}},
		{"matrix(1 2 3 4 5 6)", svgpath.Matrix{A: 1, B: 2, C: 3, D: 4, E: 5, F: 6}},
		{"rotate(90)", svgpath.Matrix{A: 0, B: 1, C: -1, D: 0}},
		{"skewX(45)", svgpath.Matrix{A: 1, C: 1, D: 1}},
	}
	for _, test := range tests {
		got, err := svgpath.ParseTransform(test.transform)
		if err != nil {
			t.Errorf("ParseTransform(%q) failed: %s", test.transform, err)
			continue
		}
		if diff := cmp.Diff(test.want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Errorf("ParseTransform(%q) incorrect output: %s", test.transform, diff)
		}
	}

	for _, bad := range []string{"rotate(1, 2)", "wobble(3)", "scale(1", "matrix(1 2 3)"} {
		if _, err := svgpath.ParseTransform(bad); err == nil {
			t.Errorf("ParseTransform(%q) succeeded, want an error", bad)
		}
	}
}

func TestReverse(t *testing.T) {
	subPaths, err := svgpath.Parse("M 0 0 L 10 0 C 10 5 15 10 20 10")
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	reversed := subPaths[0].Reverse()
	expected := &svgpath.SubPath{X: 20, Y: 10, DrawTo: []*svgpath.DrawTo{
		{Command: svgpath.CurveTo, X1: 15, Y1: 10, X2: 10, Y2: 5, X: 10, Y: 0},
		{Command: svgpath.LineTo, X: 0, Y: 0},
	}}
	if diff := cmp.Diff(expected, reversed); diff != "" {
		t.Errorf("incorrect output: %s", diff)
	}
}

func TestFlatten(t *testing.T) {
	subPaths, err := svgpath.Parse("M 0 0 L 10 0 C 10 10 0 10 0 0 Z")
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	line := subPaths[0].Flatten(0.05)
	if line[0] != (geometry.Point{X: 0, Y: 0}) || line[1] != (geometry.Point{X: 10, Y: 0}) {
		t.Errorf("flattened polyline starts %v, want (0,0) (10,0)", line[:2])
	}
	if last := line[len(line)-1]; last != (geometry.Point{X: 0, Y: 0}) {
		t.Errorf("flattened polyline ends at %v, want the start point", last)
	}
	if len(line) < 6 {
		t.Errorf("curve flattened into only %d points", len(line))
	}
	// The curve peaks at y = 7.5 for t = 0.5.
	peak := 0.0
	for _, p := range line {
		peak = math.Max(peak, p.Y)
	}
	if math.Abs(peak-7.5) > 0.05 {
		t.Errorf("peak = %g, want 7.5 within tolerance", peak)
	}
}

func TestToString(t *testing.T) {
	const path = "M 0 0 L 1 2 C 3 4 5 6 7 8 Z"
	subPaths, err := svgpath.Parse(path)
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	if got := svgpath.ToString(subPaths); got != path {
		t.Errorf("ToString() = %q, want %q", got, path)
	}
}
