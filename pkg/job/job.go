// Package job runs one cutting job from an input file to the last
// acknowledged command.
package job

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"cutsend/pkg/config"
	apperrors "cutsend/pkg/errors"
	"cutsend/pkg/gcode"
	"cutsend/pkg/preview"
	"cutsend/pkg/sender"
	"cutsend/pkg/serial"
)

// InputKind tells how an input file is handled.
type InputKind int

const (
	// Drawing inputs are compiled before sending.
	Drawing InputKind = iota
	// Program inputs are sent as they are.
	Program
)

var (
	drawingExtensions = []string{".svg"}
	programExtensions = []string{".gcode", ".nc", ".gc"}
)

// ValidateInput checks that path names an existing regular file with a
// recognised extension. Extensions are compared case-insensitively after
// trimming whitespace.
func ValidateInput(path string) (InputKind, error) {
	if strings.TrimSpace(path) == "" {
		return 0, apperrors.New(apperrors.ErrInputValidation, "no input file given")
	}
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return 0, apperrors.Newf(apperrors.ErrInputValidation, "%s does not exist", path)
	case err != nil:
		return 0, apperrors.Wrapf(err, apperrors.ErrInputValidation, "%s", path)
	case !info.Mode().IsRegular():
		return 0, apperrors.Newf(apperrors.ErrInputValidation, "%s is not a regular file", path)
	}

	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(path)))
	switch {
	case slices.Contains(drawingExtensions, ext):
		return Drawing, nil
	case slices.Contains(programExtensions, ext):
		return Program, nil
	}
	return 0, apperrors.Newf(apperrors.ErrInputValidation,
		"%s: unsupported file type %q, expected .svg, .gcode, .nc or .gc", path, ext)
}

// Options select what Run does with the input.
type Options struct {
	Input string
	// DryRun prints the commands to Output instead of opening a port.
	DryRun bool
	Output io.Writer
	// Preview, when set, is the path of a PNG rendering of the toolpath.
	Preview  string
	Progress sender.Progress
}

// Runner holds the collaborators of a job. The zero values of Compiler,
// Dialer and Ports are replaced by the real implementations in New.
type Runner struct {
	Config   *config.Config
	Compiler gcode.PathCompiler
	Dialer   serial.Dialer
	Ports    func() []string
	Log      *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		Config:   cfg,
		Compiler: gcode.NewCompiler(cfg.Compiler, log),
		Dialer:   serial.TarmDialer{},
		Ports:    serial.ListPorts,
		Log:      log,
	}
}

// Run validates and, for drawings, compiles the input, then streams the
// program to the machine. The serial port is closed before Run returns,
// whatever the outcome.
func (r *Runner) Run(ctx context.Context, opts Options) (sender.Result, error) {
	log := r.Log.With(zap.String("job_id", uuid.NewString()), zap.String("input", opts.Input))

	kind, err := ValidateInput(opts.Input)
	if err != nil {
		return sender.Result{}, err
	}

	programPath := opts.Input
	if kind == Drawing {
		programPath, err = r.Compiler.Compile(ctx, opts.Input)
		if err != nil {
			return sender.Result{}, apperrors.Wrapf(err, apperrors.ErrCompile, "%s", opts.Input)
		}
	}

	lines, err := gcode.ReadLines(programPath)
	if err != nil {
		return sender.Result{}, err
	}
	log.Debug("program loaded", zap.String("program", programPath), zap.Int("lines", len(lines)))

	if opts.Preview != "" {
		if err := preview.RenderFile(opts.Preview, lines, preview.Options{}); err != nil {
			return sender.Result{}, apperrors.Wrapf(err, apperrors.ErrFileAccess, "preview %s", opts.Preview)
		}
		log.Info("preview written", zap.String("path", opts.Preview))
	}

	if opts.DryRun {
		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		return sender.Transmit(ctx, lines, sender.Printer{W: out}, nil)
	}

	return r.send(ctx, log, lines, opts.Progress)
}

func (r *Runner) send(ctx context.Context, log *zap.Logger, lines []string, progress sender.Progress) (sender.Result, error) {
	sc := r.Config.Serial
	var candidates []string
	if sc.Port == "" {
		candidates = r.Ports()
		log.Debug("detected serial ports", zap.Strings("ports", candidates))
	}
	port, err := serial.SelectPort(sc.Port, candidates)
	if err != nil {
		return sender.Result{}, err
	}

	session, err := serial.Open(ctx, serial.Options{
		Port:        port,
		BaudRate:    sc.BaudRate,
		SettleDelay: sc.SettleDelay,
		AckTimeout:  sc.AckTimeout,
		Dialer:      r.Dialer,
		Logger:      log,
	})
	if err != nil {
		return sender.Result{}, err
	}
	defer session.Close()

	res, err := sender.Transmit(ctx, lines, session, progress)
	if err != nil {
		log.Error("transmission failed", zap.Int("sent", res.Sent), zap.Error(err))
		return res, err
	}
	log.Info("job complete", zap.Int("sent", res.Sent), zap.Int("skipped", res.Skipped))
	return res, nil
}
