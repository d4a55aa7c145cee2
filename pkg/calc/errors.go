package calc

import (
	"errors"
	"fmt"
)

// Code classifies an Error.
type Code int

// Error codes. InvalidArgument is the only code raised by Cell.
const (
	InvalidArgument Code = iota + 1
)

func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "invalid argument"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Sentinel errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidColumn   = errors.New("invalid column")
	ErrNonNumeric      = errors.New("non-numeric operand")
)

// ErrNotArrayColumn is returned for array operations on a declared column of
// another type. It matches ErrInvalidColumn.
var ErrNotArrayColumn = fmt.Errorf("%w: not an array column", ErrInvalidColumn)

// Error is a classified failure raised by Cell operations. It matches
// ErrInvalidArgument under errors.Is when Code is InvalidArgument, and
// unwraps to the more specific sentinel in Err.
type Error struct {
	Code   Code   // Classification.
	Op     string // Operation that failed, e.g. "set" or "append".
	Column string // Column the operation addressed.
	Err    error  // Specific cause, e.g. ErrInvalidColumn.
}

func (e *Error) Error() string {
	return fmt.Sprintf("calc: %s %q: %v", e.Op, e.Column, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this error's code.
func (e *Error) Is(target error) bool {
	return e.Code == InvalidArgument && target == ErrInvalidArgument
}

// CodeOf returns the Code of the first *Error in err's chain, or 0 when
// there is none.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}

func invalidColumn(op, column string) error {
	return &Error{Code: InvalidArgument, Op: op, Column: column, Err: ErrInvalidColumn}
}

func notArrayColumn(op, column string) error {
	return &Error{Code: InvalidArgument, Op: op, Column: column, Err: ErrNotArrayColumn}
}
