package acquire

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

var (
	// ErrRunning indicates a run is already active.
	ErrRunning = errors.New("acquisition already running")
	// ErrNotRunning indicates no run is active.
	ErrNotRunning = errors.New("acquisition not running")
)

// Step names the step of a run which failed.
type Step string

// Steps.
const (
	StepClear    Step = "clear"
	StepOpenLog  Step = "open-log"
	StepWriteLog Step = "write-log"
	StepSend     Step = "send"
	StepDecode   Step = "decode"
	StepCloseLog Step = "close-log"
	StepDisplay  Step = "display"
	StepReceive  Step = "receive"
)

// StepError wraps the error of a failed step.
type StepError struct {
	Step Step
	Err  error
}

// Error implements error.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the wrapped error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// ErrorReporter receives every failure of a run.
type ErrorReporter interface {
	ReportError(error)
}

// ReportErrorFunc is func type of ErrorReporter.
type ReportErrorFunc func(error)

// ReportError implements ErrorReporter.
func (f ReportErrorFunc) ReportError(err error) {
	f(err)
}

// LogReporter reports errors to the log.
var LogReporter = ReportErrorFunc(func(err error) {
	glog.Errorf("acquisition: %v", err)
})
