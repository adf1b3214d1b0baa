package robot

import (
	"errors"
	"fmt"
)

// ErrorKind classifies command errors.
type ErrorKind int

// Error kinds.
const (
	// ProtocolError is a malformed or unknown command.
	ProtocolError ErrorKind = iota
	// ValidationError is a bad parameter; no state was changed.
	ValidationError
	// SafetyError is a motion refused for safety.
	SafetyError
	// CalibrationFault is a failed calibration sweep.
	CalibrationFault
)

func (k ErrorKind) String() string {
	switch k {
	case ProtocolError:
		return "protocol"
	case ValidationError:
		return "validation"
	case SafetyError:
		return "safety"
	case CalibrationFault:
		return "calibration"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// CommandError is reported to the peer as ERROR:<Reason>.
type CommandError struct {
	Kind   ErrorKind
	Reason string
}

// Error implements error.
func (e *CommandError) Error() string {
	return e.Reason
}

// Reasons.
const (
	ReasonUnknownCommand      = "UNKNOWN_COMMAND"
	ReasonUnexpectedParameter = "UNEXPECTED_PARAMETER"
	ReasonMissingParameter    = "MISSING_PARAMETER"
	ReasonInvalidSpeedLevel   = "INVALID_SPEED_LEVEL (use 1-3)"
	ReasonNotCalibrated       = "NOT_CALIBRATED"
	ReasonCollisionDetected   = "COLLISION_DETECTED"
	ReasonCalibrating         = "CALIBRATING"
)

var (
	errUnknownCommand      = &CommandError{Kind: ProtocolError, Reason: ReasonUnknownCommand}
	errUnexpectedParameter = &CommandError{Kind: ProtocolError, Reason: ReasonUnexpectedParameter}
	errMissingParameter    = &CommandError{Kind: ProtocolError, Reason: ReasonMissingParameter}
	errInvalidSpeedLevel   = &CommandError{Kind: ValidationError, Reason: ReasonInvalidSpeedLevel}
	errNotCalibrated       = &CommandError{Kind: ValidationError, Reason: ReasonNotCalibrated}
	errCollisionDetected   = &CommandError{Kind: SafetyError, Reason: ReasonCollisionDetected}
	errCalibrating         = &CommandError{Kind: ValidationError, Reason: ReasonCalibrating}
)

// ErrAborted is the calibration fault when a stop interrupts the sweep.
var ErrAborted = errors.New("aborted")

func calibrationFault(err error) *CommandError {
	return &CommandError{
		Kind:   CalibrationFault,
		Reason: fmt.Sprintf("CALIBRATION_FAILED (%v)", err),
	}
}

// ErrorText renders err as a response line.
func ErrorText(err error) string {
	return "ERROR:" + err.Error()
}
