package services

import (
	"errors"
	"fmt"
)

// Kind is the outcome category of a failed operation. Transports map kinds
// to status codes.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindUnauthorized
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	default:
		return "unexpected"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func notFound(format string, args ...any) *Error {
	return NewError(KindNotFound, fmt.Sprintf(format, args...), nil)
}

func unauthorized(message string) *Error {
	return NewError(KindUnauthorized, message, nil)
}

func invalid(format string, args ...any) *Error {
	return NewError(KindValidation, fmt.Sprintf(format, args...), nil)
}

func unexpected(message string, err error) *Error {
	return NewError(KindUnexpected, message, err)
}

// KindOf reports the category of err. Errors that did not come from this
// package are unexpected.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindUnexpected
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return "unexpected error"
}

// ErrNotFound is returned by stores when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrSequenceUnavailable is returned by an IDAllocator that cannot hand out
// another id.
var ErrSequenceUnavailable = errors.New("id sequence unavailable")
