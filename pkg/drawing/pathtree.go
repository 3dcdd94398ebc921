package drawing

import (
	"math"

	"github.com/asim/quadtree"
	"golang.org/x/exp/slices"

	"cutsend/pkg/svgpath"
)

var zeroPoint = quadtree.NewPoint(0, 0, nil)

// endpoint lists the paths starting or ending at one location, in input
// order.
type endpoint struct {
	paths []*svgpath.SubPath
}

// pathTree indexes path end points for nearest-neighbour lookups.
type pathTree struct {
	quadTree *quadtree.QuadTree
	minX     float64
	minY     float64
	maxX     float64
	maxY     float64
	order    map[*svgpath.SubPath]int
	count    int
}

func newPathTree(minX, minY, maxX, maxY float64) *pathTree {
	midX := (maxX + minX) / 2
	midY := (maxY + minY) / 2
	halfWidth := maxX - midX
	halfHeight := maxY - midY

	// Add a small margin to avoid dropping objects at the edges
	halfWidth += 10
	halfHeight += 10

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(midX, midY, nil),
		quadtree.NewPoint(halfWidth, halfHeight, nil))
	return &pathTree{
		quadTree: quadtree.New(aabb, 0, nil),
		minX:     midX - halfWidth,
		minY:     midY - halfHeight,
		maxX:     midX + halfWidth,
		maxY:     midY + halfHeight,
		order:    map[*svgpath.SubPath]int{},
	}
}

// pointAt returns the tree point stored at exactly (x, y), if any.
func (t *pathTree) pointAt(x, y float64) *quadtree.Point {
	point := quadtree.NewPoint(x, y, nil)
	for _, p := range t.quadTree.Search(quadtree.NewAABB(point, zeroPoint)) {
		px, py := p.Coordinates()
		if px == x && py == y {
			return p
		}
	}
	return nil
}

func (t *pathTree) addPath(path *svgpath.SubPath) {
	if len(path.DrawTo) == 0 {
		return
	}
	t.order[path] = len(t.order)
	t.count++

	addOne := func(x, y float64) {
		if existing := t.pointAt(x, y); existing != nil {
			// Add the path to the existing list
			e := existing.Data().(*endpoint)
			if !slices.Contains(e.paths, path) {
				e.paths = append(e.paths, path)
			}
			return
		}
		t.quadTree.Insert(quadtree.NewPoint(x, y, &endpoint{paths: []*svgpath.SubPath{path}}))
	}

	addOne(path.StartPoint())
	addOne(path.EndPoint())
}

func (t *pathTree) removePath(path *svgpath.SubPath) {
	removeOne := func(x, y float64) {
		existing := t.pointAt(x, y)
		if existing == nil {
			return
		}
		e := existing.Data().(*endpoint)
		if i := slices.Index(e.paths, path); i >= 0 {
			e.paths = slices.Delete(e.paths, i, i+1)
		}
		if len(e.paths) == 0 {
			t.quadTree.Remove(existing)
		}
	}
	removeOne(path.StartPoint())
	removeOne(path.EndPoint())
	t.count--
}

// findNearest returns the path with an end point closest to (x, y), or nil
// when the tree is empty. Ties go to the path added first.
func (t *pathTree) findNearest(x, y float64) *svgpath.SubPath {
	if t.count == 0 {
		return nil
	}
	// The largest box needed to cover the whole tree from (x, y).
	limit := math.Max(
		math.Max(math.Abs(x-t.minX), math.Abs(x-t.maxX)),
		math.Max(math.Abs(y-t.minY), math.Abs(y-t.maxY)))

	radius := math.Max(limit/64, 1)
	for {
		aabb := quadtree.NewAABB(
			quadtree.NewPoint(x, y, nil),
			quadtree.NewPoint(radius, radius, nil),
		)
		var best *svgpath.SubPath
		bestDist := math.Inf(1)
		for _, point := range t.quadTree.Search(aabb) {
			px, py := point.Coordinates()
			d := math.Hypot(px-x, py-y)
			for _, path := range point.Data().(*endpoint).paths {
				if d < bestDist || (d == bestDist && t.order[path] < t.order[best]) {
					best, bestDist = path, d
				}
			}
		}
		// Anything closer than bestDist lies inside the searched box, so
		// the candidate is final once it is within the radius.
		if best != nil && (bestDist <= radius || radius >= limit) {
			return best
		}
		if radius >= limit {
			return nil
		}
		radius *= 2
	}
}
