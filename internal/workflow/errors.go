package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState matches every InvalidStateError.
	ErrInvalidState = errors.New("invalid workflow state")

	// Reasons carried by InvalidStateError.
	ErrRequestInFlight = errors.New("a request is already in flight")
	ErrWrongStage      = errors.New("operation not allowed at this stage")
	ErrNoSkills        = errors.New("no skills detected")

	// ErrIndexOutOfRange matches every IndexOutOfRangeError.
	ErrIndexOutOfRange = errors.New("answer index out of range")
)

// InvalidStateError is a precondition violation. State is untouched when
// it is returned.
type InvalidStateError struct {
	Op     string
	Stage  Stage
	Reason error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %v (stage %s)", e.Op, e.Reason, e.Stage)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

func (e *InvalidStateError) Unwrap() error { return e.Reason }

// IndexOutOfRangeError is returned by SetAnswer for an index outside
// [0, Len).
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("answer index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexOutOfRangeError) Is(target error) bool { return target == ErrIndexOutOfRange }
