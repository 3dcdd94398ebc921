// Package errors defines the error taxonomy surfaced by the cutsend command.
// Every failure that ends the process is reported as an *AppError so the
// command line can print a single diagnostic and exit non-zero.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies the class of a failure.
type ErrorCode int

const (
	ErrUnknown ErrorCode = 1000

	// Input errors (2000-2999)
	ErrInputValidation ErrorCode = 2000
	ErrFileAccess      ErrorCode = 2001
	ErrCompile         ErrorCode = 2002
	ErrConfig          ErrorCode = 2003

	// Serial errors (3000-3999)
	ErrConnection    ErrorCode = 3000
	ErrAmbiguousPort ErrorCode = 3001
	ErrTransmission  ErrorCode = 3002
)

var errorMessages = map[ErrorCode]string{
	ErrUnknown:         "unknown error",
	ErrInputValidation: "invalid input",
	ErrFileAccess:      "cannot read instruction file",
	ErrCompile:         "cannot convert drawing",
	ErrConfig:          "invalid configuration",
	ErrConnection:      "cannot open serial port",
	ErrAmbiguousPort:   "no serial port selected",
	ErrTransmission:    "transmission failed",
}

// String returns the short message for the code.
func (c ErrorCode) String() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return errorMessages[ErrUnknown]
}

// AppError is a classified failure.
type AppError struct {
	Code    ErrorCode
	Message string
	Details string
	Cause   error

	// Port is the serial device involved, when there is one.
	Port string
	// Candidates lists the detected devices for ErrAmbiguousPort.
	Candidates []string
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails sets the detail text.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause sets the underlying error, using its text as details when none
// are set.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	if cause != nil && e.Details == "" {
		e.Details = cause.Error()
	}
	return e
}

// WithPort records the serial device the error refers to.
func (e *AppError) WithPort(port string) *AppError {
	e.Port = port
	return e
}

// New creates an error for code; details are joined with "; ".
func New(code ErrorCode, details ...string) *AppError {
	return &AppError{
		Code:    code,
		Message: code.String(),
		Details: strings.Join(details, "; "),
	}
}

// Newf creates an error for code with formatted details.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap classifies err under code. An error that already carries an
// *AppError keeps its original code; extra details are prepended.
func Wrap(err error, code ErrorCode, details ...string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if len(details) > 0 {
			appErr.Details = strings.Join(details, "; ") + ": " + appErr.Details
		}
		return appErr
	}

	wrapped := New(code, details...)
	wrapped.Cause = err
	if wrapped.Details == "" {
		wrapped.Details = err.Error()
	} else {
		wrapped.Details += ": " + err.Error()
	}
	return wrapped
}

// Wrapf is Wrap with formatted details.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's chain is an *AppError with code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// GetCode returns the code of the first *AppError in err's chain, 0 for a
// nil error and ErrUnknown otherwise.
func GetCode(err error) ErrorCode {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrUnknown
}

// Connection reports a serial open failure for port.
func Connection(port string, cause error) *AppError {
	return Wrapf(cause, ErrConnection, "port %s", port).WithPort(port)
}

// AmbiguousPort reports that no single port could be selected from
// candidates.
func AmbiguousPort(candidates []string) *AppError {
	var e *AppError
	switch len(candidates) {
	case 0:
		e = New(ErrAmbiguousPort, "no serial devices detected; select one with --port")
	default:
		e = Newf(ErrAmbiguousPort, "%d serial devices detected; select one with --port", len(candidates))
	}
	e.Candidates = append([]string(nil), candidates...)
	return e
}
