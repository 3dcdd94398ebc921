package drawing_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"cutsend/pkg/drawing"
	"cutsend/pkg/svgpath"
)

func mustParse(t *testing.T, d string) []*svgpath.SubPath {
	t.Helper()
	paths, err := svgpath.Parse(d)
	if err != nil {
		t.Fatalf("parse %q: %v", d, err)
	}
	return paths
}

func TestJoinPaths(t *testing.T) {
	paths := mustParse(t, "M 0 0 L 10 0 M 10 0.05 L 10 10 M 20 20 L 30 20")

	joined := drawing.JoinPaths(paths, 0.1)

	expected := []*svgpath.SubPath{
		{X: 0, Y: 0, DrawTo: []*svgpath.DrawTo{
			{Command: svgpath.LineTo, X: 10, Y: 0},
			{Command: svgpath.LineTo, X: 10, Y: 0.05},
			{Command: svgpath.LineTo, X: 10, Y: 10},
		}},
		{X: 20, Y: 20, DrawTo: []*svgpath.DrawTo{
			{Command: svgpath.LineTo, X: 30, Y: 20},
		}},
	}
	if diff := cmp.Diff(expected, joined); diff != "" {
		t.Errorf("incorrect join: %s", diff)
	}

	// The inputs are left alone.
	if len(paths[0].DrawTo) != 1 {
		t.Errorf("input path modified: %d commands", len(paths[0].DrawTo))
	}
}

func TestJoinPathsExactMatch(t *testing.T) {
	joined := drawing.JoinPaths(mustParse(t, "M 0 0 L 5 5 M 5 5 L 9 0"), 0)
	if len(joined) != 1 {
		t.Fatalf("expected one path, got %d", len(joined))
	}
	if n := len(joined[0].DrawTo); n != 2 {
		t.Errorf("expected no bridging line, got %d commands", n)
	}
}

func TestJoinPathsClosed(t *testing.T) {
	joined := drawing.JoinPaths(mustParse(t, "M 0 0 L 10 0 L 10 10 Z M 0 0 L -5 0"), 0.1)
	if len(joined) != 1 {
		t.Fatalf("expected one path, got %d", len(joined))
	}
	expected := []*svgpath.DrawTo{
		{Command: svgpath.LineTo, X: 10, Y: 0},
		{Command: svgpath.LineTo, X: 10, Y: 10},
		{Command: svgpath.LineTo, X: 0, Y: 0},
		{Command: svgpath.LineTo, X: -5, Y: 0},
	}
	if diff := cmp.Diff(expected, joined[0].DrawTo); diff != "" {
		t.Errorf("incorrect join: %s", diff)
	}
}

func TestJoinPathsSkipsEmpty(t *testing.T) {
	paths := []*svgpath.SubPath{{X: 3, Y: 3}}
	if joined := drawing.JoinPaths(paths, 1); len(joined) != 0 {
		t.Errorf("expected no paths, got %d", len(joined))
	}
}
