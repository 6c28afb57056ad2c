package utils

import "fmt"

// AppError carries the failing operation alongside an operator-facing
// message. The underlying cause, when present, stays reachable through
// errors.Is and errors.As.
type AppError struct {
	Op  string
	Msg string
	Err error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError wraps err with the operation name and message. A nil err
// is allowed for failures with no underlying cause.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}
