package session

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPrecondition matches every *PreconditionError through errors.Is.
	ErrPrecondition = errors.New("precondition not met")

	// ErrBusy is returned while another mutation is in flight.
	ErrBusy = errors.New("another operation is in progress")

	ErrNoImage        = errors.New("no image loaded")
	ErrNoSelection    = errors.New("no valid selection")
	ErrEmptyClipboard = errors.New("clipboard holds no image")
)

// PreconditionError reports an operation that was not attempted because
// the session was not ready for it. It is shown as a warning.
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// Is makes every precondition error match ErrPrecondition.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

func precondition(op string, err error) error {
	return &PreconditionError{Op: op, Err: err}
}

// ProcessingError reports an engine failure. The history entry recorded
// for the operation has already been rolled back.
type ProcessingError struct {
	Op      string
	Elapsed time.Duration
	Err     error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("[%s] processing failed after %d ms: %v", e.Op, e.Elapsed.Milliseconds(), e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// EngineDataError reports a forward transform that produced an image but
// retained no coefficients for the inverse.
type EngineDataError struct {
	Op string
}

func (e *EngineDataError) Error() string {
	return fmt.Sprintf("%s: engine retained no transform data", e.Op)
}
