package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies terminal and recoverable workflow failures.
type ErrorKind string

const (
	// ErrKindValidation: malformed input. Not retried, immediately terminal.
	ErrKindValidation ErrorKind = "ValidationError"

	// ErrKindGeocode: address unresolvable after the bounded retry count.
	ErrKindGeocode ErrorKind = "GeocodeError"

	// ErrKindDataFetch: POI provider failure after retries are exhausted.
	ErrKindDataFetch ErrorKind = "DataFetchError"

	// ErrKindComputation: every selected metric failed to compute.
	ErrKindComputation ErrorKind = "ComputationError"

	// ErrKindSummary: summary collaborator failure. Always recovered locally
	// via the template fallback, never surfaced as a request failure.
	ErrKindSummary ErrorKind = "SummaryError"
)

// StageError is a workflow failure with a stable kind and a message safe to
// show to callers. The wrapped cause is kept for logs only.
type StageError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError builds a StageError wrapping cause. Cause may be nil.
func NewStageError(kind ErrorKind, cause error, format string, args ...any) *StageError {
	return &StageError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// KindOf extracts the ErrorKind from an error chain. The second return is
// false when the chain carries no StageError.
func KindOf(err error) (ErrorKind, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}
