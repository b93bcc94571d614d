package lpr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the LPD job transport.
var (
	// Connection errors.
	ErrConfigNil      = errors.New("lpr: session config is nil")
	ErrResolve        = errors.New("lpr: host resolution failed")
	ErrNoCandidate    = errors.New("lpr: no reachable address")
	ErrConnectTimeout = errors.New("lpr: connect timeout")

	// Handshake errors.
	ErrHandshakeRejected = errors.New("lpr: handshake rejected by device")
	ErrShortRead         = errors.New("lpr: short read on acknowledgement")
	ErrReadFailure       = errors.New("lpr: acknowledgement read failed")

	// Data stream errors.
	ErrShortWrite      = errors.New("lpr: short write")
	ErrSessionNotReady = errors.New("lpr: session is not ready")
)

// Step identifies one of the four framed exchanges of the job handshake.
type Step int

const (
	// StepQueue selects the print queue.
	StepQueue Step = iota + 1
	// StepControlFile announces the control file.
	StepControlFile
	// StepControlBody sends the control file body.
	StepControlBody
	// StepDataFile announces the data file.
	StepDataFile
)

// String returns the name of the handshake step.
func (s Step) String() string {
	switch s {
	case StepQueue:
		return "queue"
	case StepControlFile:
		return "control-file"
	case StepControlBody:
		return "control-body"
	case StepDataFile:
		return "data-file"
	default:
		return "unknown"
	}
}

// HandshakeError reports a failed handshake step.
//
// Err is one of ErrHandshakeRejected, ErrShortRead, ErrReadFailure or
// ErrShortWrite, possibly wrapping the underlying I/O error. Code holds the
// status byte returned by the device and is only meaningful when Err is
// ErrHandshakeRejected.
type HandshakeError struct {
	Step Step
	Code int8
	Err  error
}

func (e *HandshakeError) Error() string {
	if errors.Is(e.Err, ErrHandshakeRejected) {
		return fmt.Sprintf("lpr: handshake step %s: device returned status 0x%02x", e.Step, uint8(e.Code))
	}

	return fmt.Sprintf("lpr: handshake step %s: %v", e.Step, e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}
