// Package preview rasterizes the toolpath of a G-code program to PNG, so a
// job can be checked before it is sent to the machine.
package preview

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"cutsend/pkg/gcode"
	"cutsend/pkg/geometry"
)

// Options control the rendering.
type Options struct {
	// PixelsPerMM is the resolution; it is reduced when the image would
	// exceed MaxSize pixels on a side.
	PixelsPerMM float64
	// StrokeWidth of the drawn moves, in mm.
	StrokeWidth float64
	// ShowTravel also draws the laser-off moves, in grey.
	ShowTravel bool
	MaxSize    int
}

// DefaultOptions is used by Render for zero-valued fields.
var DefaultOptions = Options{
	PixelsPerMM: 5,
	StrokeWidth: 0.2,
	MaxSize:     4096,
}

const margin = 10 // pixels

var travelColor = color.NRGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}

func (o Options) withDefaults() Options {
	if o.PixelsPerMM <= 0 {
		o.PixelsPerMM = DefaultOptions.PixelsPerMM
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = DefaultOptions.StrokeWidth
	}
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultOptions.MaxSize
	}
	return o
}

// Rasterize draws the program's moves onto a white image covering the
// machine origin and every move. Machine Y points up; image Y points down.
func Rasterize(lines []string, opts Options) (*image.NRGBA, error) {
	opts = opts.withDefaults()

	var moves []gcode.Move
	if err := gcode.Walk(lines, func(m gcode.Move) {
		if m.From != m.To {
			moves = append(moves, m)
		}
	}); err != nil {
		return nil, err
	}

	var bounds geometry.Rect
	for _, m := range moves {
		bounds = bounds.Extend(m.From).Extend(m.To)
	}

	ppmm := opts.PixelsPerMM
	limit := opts.MaxSize - 2*margin
	if extent := math.Max(bounds.Dx(), bounds.Dy()); extent*ppmm > float64(limit) {
		ppmm = float64(limit) / extent
	}
	width := min(int(math.Ceil(bounds.Dx()*ppmm)), limit) + 2*margin
	height := min(int(math.Ceil(bounds.Dy()*ppmm)), limit) + 2*margin

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	toPixel := func(p geometry.Point) fixed.Point26_6 {
		return rasterx.ToFixedP(
			(p.X-bounds.Min.X)*ppmm+margin,
			(bounds.Max.Y-p.Y)*ppmm+margin)
	}

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	stroke := fixed.Int26_6(opts.StrokeWidth * ppmm * 64)
	dasher.SetStroke(stroke, 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)

	drawMoves := func(laser bool, clr color.Color) {
		dasher.Clear()
		dasher.SetColor(clr)
		started := false
		var pen geometry.Point
		for _, m := range moves {
			if m.Laser != laser {
				continue
			}
			if !started || pen != m.From {
				if started {
					dasher.Stop(false)
				}
				dasher.Start(toPixel(m.From))
				started = true
			}
			dasher.Line(toPixel(m.To))
			pen = m.To
		}
		if started {
			dasher.Stop(false)
			dasher.Draw()
		}
	}
	if opts.ShowTravel {
		drawMoves(false, travelColor)
	}
	drawMoves(true, color.Black)
	return img, nil
}

// Render rasterizes the program and writes it to w as PNG.
func Render(w io.Writer, lines []string, opts Options) error {
	img, err := Rasterize(lines, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// RenderFile renders the program to a PNG file at path.
func RenderFile(path string, lines []string, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f, lines, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
