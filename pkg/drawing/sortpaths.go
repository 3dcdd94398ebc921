package drawing

import (
	"cutsend/pkg/svgpath"
)

// SortPaths orders paths to minimize travel distance: starting from (x, y),
// it repeatedly picks the path with the nearest end point, reversing the
// path when its end is nearer than its start. The input slice is not
// modified.
func SortPaths(paths []*svgpath.SubPath, x, y float64) []*svgpath.SubPath {
	if len(paths) == 0 {
		return nil
	}

	minX, minY, maxX, maxY := Bounds(paths)
	tree := newPathTree(minX, minY, maxX, maxY)
	for _, path := range paths {
		tree.addPath(path)
	}

	sorted := make([]*svgpath.SubPath, 0, len(paths))
	for {
		nearest := tree.findNearest(x, y)
		if nearest == nil {
			break
		}
		tree.removePath(nearest)

		sx, sy := nearest.StartPoint()
		ex, ey := nearest.EndPoint()
		if squaredDistance(x, y, ex, ey) < squaredDistance(x, y, sx, sy) {
			nearest = nearest.Reverse()
		}
		x, y = nearest.EndPoint()
		sorted = append(sorted, nearest)
	}

	// Paths without drawing commands are not indexed; keep them at the end.
	for _, path := range paths {
		if len(path.DrawTo) == 0 {
			sorted = append(sorted, path)
		}
	}
	return sorted
}

func squaredDistance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}
