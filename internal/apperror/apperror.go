package apperror

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure surfaced to callers
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrNotFound = Kind("not found")
	ErrInvalid  = Kind("invalid request")
	ErrConflict = Kind("conflict, retry the request")
	ErrInternal = Kind("internal error")
)

// Error wraps a failure with its kind and the operation that produced it.
// Msg is safe to show to clients; Err (if any) is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, apperror.ErrNotFound) match on the kind
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func NotFound(op, msg string) *Error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: msg}
}

func Invalid(op, msg string) *Error {
	return &Error{Kind: ErrInvalid, Op: op, Msg: msg}
}

func Conflict(op string, err error) *Error {
	return &Error{Kind: ErrConflict, Op: op, Msg: string(ErrConflict), Err: err}
}

func Internal(op string, err error) *Error {
	return &Error{Kind: ErrInternal, Op: op, Msg: string(ErrInternal), Err: err}
}

// KindOf reports the kind of err. Errors that were never classified count as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrInternal
}

// Message returns the client-facing message of err
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return string(ErrInternal)
}
