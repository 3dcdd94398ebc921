// Package gcode converts drawings into G-code programs and reads programs
// back as instruction lines.
package gcode

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"cutsend/pkg/config"
	"cutsend/pkg/drawing"
	"cutsend/pkg/geometry"
	"cutsend/pkg/svgpath"
)

// PathCompiler turns a drawing file into a G-code program file and returns
// the program's path.
type PathCompiler interface {
	Compile(ctx context.Context, svgPath string) (string, error)
}

// Compiler is the built-in PathCompiler. Every path is cut as straight G1
// moves with the laser on, travelling between paths with the laser off. The
// whole drawing is repeated once per pass, stepping the Z axis down by the
// pass depth in between.
type Compiler struct {
	settings config.CompilerConfig
	log      *zap.Logger
}

// Stats summarises a generated program.
type Stats struct {
	Paths    int
	Commands int
	// Distances in mm for a single pass.
	CutLength    float64
	TravelLength float64
}

func NewCompiler(settings config.CompilerConfig, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{settings: settings, log: log}
}

// OutputPath returns where Compile writes the program for svgPath: the same
// name with a .gcode extension.
func OutputPath(svgPath string) string {
	return strings.TrimSuffix(svgPath, filepath.Ext(svgPath)) + ".gcode"
}

// Compile converts the SVG file at svgPath and writes the program next to it.
func (c *Compiler) Compile(ctx context.Context, svgPath string) (string, error) {
	d, err := drawing.Load(svgPath)
	if err != nil {
		return "", err
	}

	out := OutputPath(svgPath)
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", out, err)
	}
	stats, err := c.Write(ctx, f, d, filepath.Base(svgPath))
	if err != nil {
		f.Close()
		os.Remove(out)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}

	c.log.Info("compiled drawing",
		zap.String("source", svgPath),
		zap.String("output", out),
		zap.Int("paths", stats.Paths),
		zap.Int("commands", stats.Commands),
		zap.Float64("cut_mm", stats.CutLength),
		zap.Float64("travel_mm", stats.TravelLength),
	)
	return out, nil
}

// program accumulates output lines, keeping the first write error.
type program struct {
	w        *bufio.Writer
	err      error
	commands int
}

func (p *program) comment(format string, args ...interface{}) {
	p.line("; " + fmt.Sprintf(format, args...))
}

func (p *program) command(format string, args ...interface{}) {
	p.line(fmt.Sprintf(format, args...) + ";")
	p.commands++
}

func (p *program) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = p.w.WriteString(s + "\n")
}

// Write generates the program for d. source only names the drawing in the
// leading comments.
func (c *Compiler) Write(ctx context.Context, w io.Writer, d *drawing.Drawing, source string) (Stats, error) {
	s := c.settings
	var stats Stats

	paths := d.Paths
	if s.Optimize {
		paths = drawing.JoinPaths(drawing.SortPaths(paths, 0, 0), s.Tolerance)
	}

	// Flatten once; every pass repeats the same moves.
	var polylines []geometry.Polyline
	lastX, lastY := 0.0, 0.0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := flatten(path, s.Tolerance)
		if len(line) < 2 {
			continue
		}
		polylines = append(polylines, line)
		stats.TravelLength += math.Hypot(line[0].X-lastX, line[0].Y-lastY)
		stats.CutLength += line.Length()
		lastX, lastY = line[len(line)-1].X, line[len(line)-1].Y
	}
	stats.Paths = len(polylines)

	p := &program{w: bufio.NewWriter(w)}
	p.comment("cutsend program for %s", source)
	p.comment("page %smm x %smm, %d paths", number(d.WidthMM), number(d.HeightMM), len(polylines))
	p.comment("movement speed %s, cutting speed %s, laser power %d",
		number(s.MovementSpeed), number(s.CuttingSpeed), s.LaserPower)
	p.comment("%d passes, pass depth %smm", s.Passes, number(s.PassDepth))

	p.command("G90")
	p.command("G21")
	for pass := 0; pass < s.Passes; pass++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if pass > 0 {
			p.command("M5")
			p.command("G91")
			p.command("G1 Z%s", number(-s.PassDepth))
			p.command("G90")
		}
		for _, line := range polylines {
			p.command("M5")
			p.command("F%s", number(s.MovementSpeed))
			p.command("G1 X%s Y%s", number(line[0].X), number(line[0].Y))
			p.command("F%s", number(s.CuttingSpeed))
			p.command("M3 S%d", s.LaserPower)
			for _, point := range line[1:] {
				p.command("G1 X%s Y%s", number(point.X), number(point.Y))
			}
		}
	}
	p.command("M5")

	if p.err == nil {
		p.err = p.w.Flush()
	}
	stats.Commands = p.commands
	return stats, p.err
}

// flatten approximates path with as few straight segments as the tolerance
// allows.
func flatten(path *svgpath.SubPath, tolerance float64) geometry.Polyline {
	// Split the budget between curve flattening and point reduction.
	return path.Flatten(tolerance / 2).Simplify(tolerance / 2)
}

// number formats a coordinate or setting rounded to micrometres.
func number(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		// No "-0".
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
