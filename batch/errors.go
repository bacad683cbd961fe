package batch

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the error values this core returns, matching
// spec §7 exactly: ObjectDisposed, InvalidOperation, Unsupported,
// Cancelled, Protocol, Io.
type ErrorKind string

const (
	KindObjectDisposed   ErrorKind = "OBJECT_DISPOSED"
	KindInvalidOperation ErrorKind = "INVALID_OPERATION"
	KindUnsupported      ErrorKind = "UNSUPPORTED"
	KindCancelled        ErrorKind = "CANCELLED"
	KindProtocol         ErrorKind = "PROTOCOL"
	KindIo               ErrorKind = "IO"
)

// Error is this module's error value: a code plus a human message plus an
// optional wrapped cause, ported and trimmed from the teacher's
// pkg/api/errors.go (*Error{Code ErrorCode; Message string; Cause error}).
// Unlike the teacher's version, it does not capture a stack trace: this
// core raises errors from a handful of well-known validation/protocol call
// sites, not across a dynamic plugin boundary, so a captured stack adds
// ambient weight without payoff.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an Error with no wrapped cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds an Error wrapping cause. Returns nil if cause is nil,
// matching the teacher's WrapError nil-passthrough behavior.
func WrapError(cause error, kind ErrorKind, message string) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
