package drawing

import (
	"math"

	"cutsend/pkg/svgpath"
)

// JoinPaths merges each path into the one before it when the earlier path
// ends within maxGap of where the later one starts, so that both are cut
// without switching the laser off. A non-zero gap is bridged with a line.
// Paths are joined in the given order and never reversed; run SortPaths
// first. The input paths are not modified.
func JoinPaths(paths []*svgpath.SubPath, maxGap float64) []*svgpath.SubPath {
	var joined []*svgpath.SubPath
	var last *svgpath.SubPath
	for _, path := range paths {
		if len(path.DrawTo) == 0 {
			continue
		}
		if last != nil {
			ex, ey := last.EndPoint()
			if math.Hypot(path.X-ex, path.Y-ey) <= maxGap {
				glue(last, path)
				continue
			}
		}
		last = &svgpath.SubPath{
			X:      path.X,
			Y:      path.Y,
			DrawTo: append([]*svgpath.DrawTo(nil), path.DrawTo...),
		}
		joined = append(joined, last)
	}
	return joined
}

// glue appends b to a.
func glue(a, b *svgpath.SubPath) {
	// A close inside the joined path would return to a's start, which is
	// only correct at the very end; make it an explicit line instead.
	if end := a.DrawTo[len(a.DrawTo)-1]; end.Command == svgpath.ClosePath {
		a.DrawTo[len(a.DrawTo)-1] = &svgpath.DrawTo{Command: svgpath.LineTo, X: end.X, Y: end.Y}
	}
	if ex, ey := a.EndPoint(); ex != b.X || ey != b.Y {
		a.DrawTo = append(a.DrawTo, &svgpath.DrawTo{Command: svgpath.LineTo, X: b.X, Y: b.Y})
	}
	a.DrawTo = append(a.DrawTo, b.DrawTo...)
}
