package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrInputValidation)
	suite.Equal(ErrInputValidation, err.Code)
	suite.Equal("invalid input", err.Message)
	suite.Empty(err.Details)
	suite.Equal("invalid input", err.Error())

	err = New(ErrFileAccess, "drawing.gcode", "permission denied")
	suite.Equal("drawing.gcode; permission denied", err.Details)
	suite.Equal("cannot read instruction file: drawing.gcode; permission denied", err.Error())
}

func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrInputValidation, "%s is not a regular file", "plans")
	suite.Equal("plans is not a regular file", err.Details)
}

func (suite *ErrorsTestSuite) TestWrap() {
	cause := errors.New("no such file or directory")
	err := Wrap(cause, ErrFileAccess)
	suite.Equal(ErrFileAccess, err.Code)
	suite.Equal("no such file or directory", err.Details)
	suite.Same(cause, err.Cause)
	suite.ErrorIs(err, cause)

	err = Wrap(cause, ErrFileAccess, "open drawing.gcode")
	suite.Equal("open drawing.gcode: no such file or directory", err.Details)

	suite.Nil(Wrap(nil, ErrUnknown))
}

func (suite *ErrorsTestSuite) TestWrapKeepsCode() {
	inner := New(ErrConnection, "port /dev/ttyUSB0")
	err := Wrap(fmt.Errorf("session: %w", inner), ErrTransmission, "open")
	suite.Equal(ErrConnection, err.Code)
	suite.Contains(err.Details, "open")
}

func (suite *ErrorsTestSuite) TestIsAndGetCode() {
	err := fmt.Errorf("outer: %w", New(ErrTransmission))
	suite.True(Is(err, ErrTransmission))
	suite.False(Is(err, ErrConnection))
	suite.False(Is(nil, ErrTransmission))

	suite.Equal(ErrTransmission, GetCode(err))
	suite.Equal(ErrorCode(0), GetCode(nil))
	suite.Equal(ErrUnknown, GetCode(errors.New("plain")))
}

func (suite *ErrorsTestSuite) TestConnection() {
	err := Connection("/dev/ttyACM0", errors.New("device busy"))
	suite.Equal(ErrConnection, err.Code)
	suite.Equal("/dev/ttyACM0", err.Port)
	suite.Contains(err.Error(), "/dev/ttyACM0")
	suite.Contains(err.Error(), "device busy")
}

func (suite *ErrorsTestSuite) TestAmbiguousPort() {
	err := AmbiguousPort(nil)
	suite.Equal(ErrAmbiguousPort, err.Code)
	suite.Empty(err.Candidates)
	suite.Contains(err.Error(), "no serial devices")

	candidates := []string{"/dev/ttyACM0", "/dev/ttyUSB0"}
	err = AmbiguousPort(candidates)
	suite.Equal(candidates, err.Candidates)
	candidates[0] = "changed"
	suite.Equal("/dev/ttyACM0", err.Candidates[0])
}

func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
