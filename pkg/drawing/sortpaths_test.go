package drawing_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"cutsend/pkg/drawing"
	"cutsend/pkg/svgpath"
)

func line(x1, y1, x2, y2 float64) *svgpath.SubPath {
	return &svgpath.SubPath{X: x1, Y: y1, DrawTo: []*svgpath.DrawTo{
		{Command: svgpath.LineTo, X: x2, Y: y2},
	}}
}

func TestSortPaths(t *testing.T) {
	far := line(100, 0, 50, 0)
	first := line(1, 0, 10, 0)
	middle := line(30, 0, 12, 0)

	sorted := drawing.SortPaths([]*svgpath.SubPath{far, first, middle}, 0, 0)

	expected := []*svgpath.SubPath{
		line(1, 0, 10, 0),
		line(12, 0, 30, 0),
		line(50, 0, 100, 0),
	}
	if diff := cmp.Diff(expected, sorted); diff != "" {
		t.Errorf("incorrect order: %s", diff)
	}

	// Reversal builds new paths.
	if diff := cmp.Diff(line(30, 0, 12, 0), middle); diff != "" {
		t.Errorf("input path modified: %s", diff)
	}
}

func TestSortPathsTies(t *testing.T) {
	a := line(5, 0, 9, 0)
	b := line(5, 0, 8, 0)

	sorted := drawing.SortPaths([]*svgpath.SubPath{a, b}, 0, 0)

	expected := []*svgpath.SubPath{
		line(5, 0, 9, 0),
		line(8, 0, 5, 0),
	}
	if diff := cmp.Diff(expected, sorted); diff != "" {
		t.Errorf("incorrect order: %s", diff)
	}
}

func TestSortPathsClosed(t *testing.T) {
	square, err := svgpath.Parse("M 20 20 L 30 20 L 30 30 Z M 0 0 L 1 0 L 1 1 Z")
	if err != nil {
		t.Fatal(err)
	}
	sorted := drawing.SortPaths(square, 0, 0)
	if len(sorted) != 2 {
		t.Fatalf("got %d paths, want 2", len(sorted))
	}
	if sorted[0].X != 0 || sorted[1].X != 20 {
		t.Errorf("got order starting at %g then %g, want 0 then 20", sorted[0].X, sorted[1].X)
	}
}

func TestSortPathsEmpty(t *testing.T) {
	if sorted := drawing.SortPaths(nil, 0, 0); len(sorted) != 0 {
		t.Errorf("got %d paths, want none", len(sorted))
	}
}
