// Package errors defines the typed failures reported by the lane pipeline.
//
// Every stage reports failures to its immediate caller as an *Error carrying
// a Kind. Nothing is retried; the pipeline has no external dependency that
// could recover on a second attempt.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorises a pipeline failure.
type Kind string

const (
	KindInvalidDimensions       Kind = "invalid_dimensions"
	KindOutOfBounds             Kind = "out_of_bounds"
	KindInvalidKernelParameters Kind = "invalid_kernel_parameters"
	KindInvalidAngleRange       Kind = "invalid_angle_range"
	KindAllocationFailure       Kind = "allocation_failure"
	KindInvalidClusterCount     Kind = "invalid_cluster_count"
)

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrInvalidDimensions       = &Error{Kind: KindInvalidDimensions}
	ErrOutOfBounds             = &Error{Kind: KindOutOfBounds}
	ErrInvalidKernelParameters = &Error{Kind: KindInvalidKernelParameters}
	ErrInvalidAngleRange       = &Error{Kind: KindInvalidAngleRange}
	ErrAllocationFailure       = &Error{Kind: KindAllocationFailure}
	ErrInvalidClusterCount     = &Error{Kind: KindInvalidClusterCount}
)

// Error is a structured pipeline error.
type Error struct {
	Kind    Kind   `json:"kind"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind for operation op.
func New(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an error of the given kind that keeps cause in its chain.
func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{
		Kind:  kind,
		Op:    op,
		Cause: cause,
	}
}

// IsKind checks if any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
