package common

import (
	"fmt"
)

// ErrorKind classifies analysis failures
type ErrorKind string

const (
	// KindInvalidConfiguration covers non-positive or inconsistent parameters.
	// These are raised before any partial computation.
	KindInvalidConfiguration ErrorKind = "INVALID_CONFIGURATION"

	// KindDegenerateInput covers silent frames and zero denominators. Callers
	// normally recover from these with a sentinel value.
	KindDegenerateInput ErrorKind = "DEGENERATE_INPUT"
)

// Error is the error type returned by the analysis packages
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Op      string    `json:"op"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Sentinels for errors.Is
var (
	ErrInvalidConfiguration = &Error{Kind: KindInvalidConfiguration}
	ErrDegenerateInput      = &Error{Kind: KindDegenerateInput}
)

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// InvalidConfiguration builds a KindInvalidConfiguration error for op
func InvalidConfiguration(op, format string, args ...any) *Error {
	return &Error{
		Kind:    KindInvalidConfiguration,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// DegenerateInput builds a KindDegenerateInput error for op
func DegenerateInput(op, format string, args ...any) *Error {
	return &Error{
		Kind:    KindDegenerateInput,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}
