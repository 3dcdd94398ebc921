package drawing

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/xerrors"

	"cutsend/pkg/svgpath"
)

// shapePaths returns the outline of a basic shape or path element in its own
// user space. Elements with a zero size render nothing.
func (n *Node) shapePaths() ([]*svgpath.SubPath, error) {
	var d string
	switch n.XMLName.Local {
	case "path":
		d = n.D
	case "line":
		d = fmt.Sprintf("M %g %g L %g %g",
			userLength(n.X1), userLength(n.Y1), userLength(n.X2), userLength(n.Y2))
	case "rect":
		d = n.rectPath()
	case "circle":
		r := userLength(n.R)
		d = ellipsePath(userLength(n.CX), userLength(n.CY), r, r)
	case "ellipse":
		d = ellipsePath(userLength(n.CX), userLength(n.CY), userLength(n.RX), userLength(n.RY))
	case "polyline", "polygon":
		if strings.TrimSpace(n.Points) == "" {
			return nil, nil
		}
		d = "M " + n.Points
		if n.XMLName.Local == "polygon" {
			d += " Z"
		}
	default:
		return nil, nil
	}

	paths, err := svgpath.Parse(d)
	if err != nil {
		return nil, xerrors.Errorf("<%s id=%q>: %w", n.XMLName.Local, n.ID, err)
	}
	return paths, nil
}

func (n *Node) rectPath() string {
	x, y := userLength(n.X), userLength(n.Y)
	w, h := userLength(n.Width), userLength(n.Height)
	if w <= 0 || h <= 0 {
		return ""
	}

	rx, ry := userLength(n.RX), userLength(n.RY)
	switch {
	case n.RX == "" && n.RY != "":
		rx = ry
	case n.RY == "" && n.RX != "":
		ry = rx
	}
	rx = math.Min(math.Max(rx, 0), w/2)
	ry = math.Min(math.Max(ry, 0), h/2)

	if rx == 0 || ry == 0 {
		return fmt.Sprintf("M %g %g H %g V %g H %g Z", x, y, x+w, y+h, x)
	}
	arc := func(ex, ey float64) string {
		return fmt.Sprintf(" A %g %g 0 0 1 %g %g", rx, ry, ex, ey)
	}
	return fmt.Sprintf("M %g %g H %g", x+rx, y, x+w-rx) +
		arc(x+w, y+ry) + fmt.Sprintf(" V %g", y+h-ry) +
		arc(x+w-rx, y+h) + fmt.Sprintf(" H %g", x+rx) +
		arc(x, y+h-ry) + fmt.Sprintf(" V %g", y+ry) +
		arc(x+rx, y) + " Z"
}

func ellipsePath(cx, cy, rx, ry float64) string {
	if rx <= 0 || ry <= 0 {
		return ""
	}
	return fmt.Sprintf("M %g %g A %g %g 0 0 1 %g %g A %g %g 0 0 1 %g %g Z",
		cx+rx, cy, rx, ry, cx-rx, cy, rx, ry, cx+rx, cy)
}
