package serial

import (
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/exp/slices"

	apperrors "cutsend/pkg/errors"
)

// Device name patterns of USB serial adapters and CDC-ACM boards.
var portPatterns = map[string][]string{
	"linux":   {"/dev/ttyUSB*", "/dev/ttyACM*"},
	"darwin":  {"/dev/cu.usbmodem*", "/dev/cu.usbserial*"},
	"freebsd": {"/dev/cuaU*"},
}

const maxCOMPort = 256

// ListPorts returns the serial devices present on this machine, sorted and
// without duplicates. On Windows COM1 to COM256 are probed by opening them.
func ListPorts() []string {
	return listPorts(runtime.GOOS, filepath.Glob, probe)
}

func listPorts(goos string, glob func(string) ([]string, error), probe func(string) bool) []string {
	var ports []string
	if goos == "windows" {
		for i := 1; i <= maxCOMPort; i++ {
			name := fmt.Sprintf("COM%d", i)
			if probe(name) {
				ports = append(ports, name)
			}
		}
		return ports
	}

	for _, pattern := range portPatterns[goos] {
		matches, err := glob(pattern)
		if err != nil {
			continue
		}
		ports = append(ports, matches...)
	}
	slices.Sort(ports)
	return slices.Compact(ports)
}

// probe reports whether the device can be opened.
func probe(name string) bool {
	p, err := (TarmDialer{}).Dial(name, 9600)
	if err != nil {
		return false
	}
	p.Close()
	return true
}

// SelectPort picks the device to use: requested when given, otherwise the
// only candidate. Zero or several candidates without a request is an
// ErrAmbiguousPort AppError listing them.
func SelectPort(requested string, candidates []string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	return "", apperrors.AmbiguousPort(candidates)
}
