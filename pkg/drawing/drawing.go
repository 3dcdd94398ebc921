// Package drawing turns an SVG document into the outlines a cutter follows:
// absolute sub-paths in millimetres with the origin at the bottom-left corner
// of the page and Y pointing up.
package drawing

import (
	"math"
	"os"

	"golang.org/x/xerrors"

	"cutsend/pkg/svgpath"
)

type Drawing struct {
	// Page size in millimetres. When the document gives no size, the
	// extent of its content is used.
	WidthMM  float64
	HeightMM float64
	Paths    []*svgpath.SubPath
}

// Elements whose content is never drawn directly.
var skipped = map[string]bool{
	"defs":      true,
	"metadata":  true,
	"namedview": true,
	"title":     true,
	"desc":      true,
	"style":     true,
	"script":    true,
	"symbol":    true,
	"clipPath":  true,
	"mask":      true,
	"marker":    true,
	"pattern":   true,
	"text":      true,
}

// Load reads and parses an SVG file.
func Load(filename string) (*Drawing, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	d, err := Parse(data)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", filename, err)
	}
	return d, nil
}

// Parse parses an SVG document.
func Parse(data []byte) (*Drawing, error) {
	root, err := parseXML(data)
	if err != nil {
		return nil, xerrors.Errorf("xml: %w", err)
	}
	if root.XMLName.Local != "svg" {
		return nil, xerrors.Errorf("root element is <%s>, not <svg>", root.XMLName.Local)
	}

	page, widthMM, heightMM, err := root.pageMatrix()
	if err != nil {
		return nil, err
	}

	d := &Drawing{WidthMM: widthMM, HeightMM: heightMM}
	if err := d.descend(root, page); err != nil {
		return nil, err
	}

	_, _, maxX, maxY := Bounds(d.Paths)
	if d.WidthMM == 0 && len(d.Paths) > 0 {
		d.WidthMM = math.Max(maxX, 0)
	}
	if d.HeightMM == 0 && len(d.Paths) > 0 {
		d.HeightMM = math.Max(maxY, 0)
	}

	// SVG's Y axis points down; the machine's points up.
	flip := svgpath.Matrix{A: 1, D: -1, F: d.HeightMM}
	flip.TransformPath(d.Paths)
	return d, nil
}

func (d *Drawing) descend(node *Node, matrix svgpath.Matrix) error {
	if skipped[node.XMLName.Local] || node.hidden() {
		return nil
	}

	transform, err := svgpath.ParseTransform(node.Transform)
	if err != nil {
		return xerrors.Errorf("<%s id=%q>: %w", node.XMLName.Local, node.ID, err)
	}
	matrix = matrix.Multiply(transform)

	paths, err := node.shapePaths()
	if err != nil {
		return err
	}
	matrix.TransformPath(paths)
	for _, path := range paths {
		// A lone moveto draws nothing.
		if len(path.DrawTo) > 0 {
			d.Paths = append(d.Paths, path)
		}
	}

	for _, child := range node.Children {
		if err := d.descend(child, matrix); err != nil {
			return err
		}
	}
	return nil
}

// Bounds returns the box enclosing every point of paths, control points
// included. For no paths the box is empty (min > max).
func Bounds(paths []*svgpath.SubPath) (minX, minY, maxX, maxY float64) {
	minX = math.Inf(1)
	maxX = math.Inf(-1)
	minY = math.Inf(1)
	maxY = math.Inf(-1)
	add := func(x, y float64) {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}
	for _, path := range paths {
		add(path.X, path.Y)
		for _, d := range path.DrawTo {
			add(d.X, d.Y)
			if d.Command == svgpath.CurveTo {
				add(d.X1, d.Y1)
				add(d.X2, d.Y2)
			}
		}
	}
	return
}
