// Package sender streams an instruction program to a machine one command at a
// time.
package sender

import (
	"context"
	"fmt"
	"io"
	"strings"

	apperrors "cutsend/pkg/errors"
	"cutsend/pkg/gcode"
)

// LineSender transmits one command and returns once the machine has
// acknowledged it.
type LineSender interface {
	SendLine(ctx context.Context, command string) error
}

// Result counts the lines of a transmitted program.
type Result struct {
	// Sent is the number of commands acknowledged.
	Sent int
	// Skipped is the number of comment and blank lines.
	Skipped int
}

// Transmit sends every command line of lines through s, in order, skipping
// comments and blank lines. It stops at the first failure, which is returned
// as an ErrTransmission AppError together with the counts so far. p may be
// nil.
func Transmit(ctx context.Context, lines []string, s LineSender, p Progress) (Result, error) {
	if p == nil {
		p = NopProgress{}
	}

	total := 0
	for _, line := range lines {
		if gcode.Classify(line) == gcode.Command {
			total++
		}
	}
	p.Start(total)
	defer p.Finish()

	var res Result
	for i, line := range lines {
		if gcode.Classify(line) != gcode.Command {
			res.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, apperrors.Wrapf(err, apperrors.ErrTransmission, "line %d", i+1)
		}
		command := strings.TrimRight(line, "\r\n")
		if err := s.SendLine(ctx, command); err != nil {
			return res, apperrors.Wrapf(err, apperrors.ErrTransmission, "line %d", i+1)
		}
		res.Sent++
		p.Step(command)
	}
	return res, nil
}

// Printer is a LineSender that writes commands to w instead of a machine.
// Every command is acknowledged immediately.
type Printer struct {
	W io.Writer
}

func (p Printer) SendLine(ctx context.Context, command string) error {
	_, err := fmt.Fprintln(p.W, command)
	return err
}
