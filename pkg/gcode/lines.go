package gcode

import (
	"bufio"
	"io"
	"os"
	"strings"

	apperrors "cutsend/pkg/errors"
)

// Kind classifies one line of a program.
type Kind int

const (
	Command Kind = iota
	Comment
	Blank
)

func (k Kind) String() string {
	switch k {
	case Comment:
		return "comment"
	case Blank:
		return "blank"
	default:
		return "command"
	}
}

// CommentMarker starts a comment line.
const CommentMarker = ";"

// Classify reports whether line is a comment, blank or a command. Leading
// whitespace is ignored.
func Classify(line string) Kind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return Blank
	case strings.HasPrefix(trimmed, CommentMarker):
		return Comment
	default:
		return Command
	}
}

// ReadLines returns the lines of the file at path exactly as stored,
// including their newlines. A final line without a newline is kept as is.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrFileAccess, "open %s", path)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrFileAccess, "read %s", path)
	}
	return lines, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
