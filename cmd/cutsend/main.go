package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cutsend/pkg/config"
	apperrors "cutsend/pkg/errors"
	"cutsend/pkg/job"
	"cutsend/pkg/logger"
	"cutsend/pkg/sender"
)

var (
	configPath  string
	dryRun      bool
	previewPath string
)

var rootCmd = &cobra.Command{
	Use:   "cutsend [flags] <file>",
	Short: "Convert SVG drawings to G-code and stream them to a laser cutter",
	Long: `cutsend converts an SVG drawing into G-code and sends it line by line
to a GRBL-style controller over a serial port, waiting for "ok" after each
command. G-code files (.gcode, .nc, .gc) are sent as they are.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	d := config.Default()
	f := rootCmd.PersistentFlags()
	f.StringVarP(&configPath, "config", "c", "", "config file (default ./cutsend.yaml or $HOME/.config/cutsend/cutsend.yaml)")
	f.String("log-level", d.Log.Level, "log level: debug, info, warn or error")

	f = rootCmd.Flags()
	f.StringP("port", "p", "", "serial device; detected automatically when only one is present")
	f.IntP("baudrate", "b", d.Serial.BaudRate, "serial baud rate")
	f.Duration("settle", d.Serial.SettleDelay, "pause after waking the controller")
	f.Duration("ack-timeout", d.Serial.AckTimeout, "maximum wait for each ok, 0 waits forever")
	f.BoolVarP(&dryRun, "dry-run", "n", false, "print the commands instead of sending them")
	f.StringVar(&previewPath, "preview", "", "write a PNG preview of the toolpath to this file")

	f.Float64("movement-speed", d.Compiler.MovementSpeed, "travel feed rate in mm/min")
	f.Float64("cutting-speed", d.Compiler.CuttingSpeed, "cutting feed rate in mm/min")
	f.Float64("pass-depth", d.Compiler.PassDepth, "Z step-down between passes in mm")
	f.Int("passes", d.Compiler.Passes, "number of passes")
	f.Int("laser-power", d.Compiler.LaserPower, "laser power (S word)")
	f.Float64("tolerance", d.Compiler.Tolerance, "curve flattening tolerance in mm")
	f.Bool("optimize", d.Compiler.Optimize, "reorder paths to shorten travel")

	rootCmd.AddCommand(portsCmd)
}

func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrConfig)
	}
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrConfig)
	}
	return cfg, log, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := job.Options{
		Input:   args[0],
		DryRun:  dryRun,
		Output:  cmd.OutOrStdout(),
		Preview: previewPath,
	}
	if !dryRun {
		opts.Progress = sender.NewBarProgress(cmd.ErrOrStderr(), "sending")
	}

	_, err = job.New(cfg, log).Run(ctx, opts)
	return err
}

func report(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrAmbiguousPort {
		for _, c := range appErr.Candidates {
			fmt.Fprintf(os.Stderr, "  %s\n", c)
		}
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		report(err)
		os.Exit(1)
	}
}
