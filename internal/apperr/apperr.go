package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure the way the callable surface and the token
// endpoint report it. The zero value is Internal.
type Kind int

const (
	Internal Kind = iota
	InvalidArgument
	NotFound
	PermissionDenied
	Unauthenticated
	FailedPrecondition
	DeadlineExceeded
	ResourceExhausted
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid-argument"
	case NotFound:
		return "not-found"
	case PermissionDenied:
		return "permission-denied"
	case Unauthenticated:
		return "unauthenticated"
	case FailedPrecondition:
		return "failed-precondition"
	case DeadlineExceeded:
		return "deadline-exceeded"
	case ResourceExhausted:
		return "resource-exhausted"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or Internal for errors that did not
// originate from this package.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// MessageOf returns the user-facing message of err, or fallback when err
// carries none.
func MessageOf(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
