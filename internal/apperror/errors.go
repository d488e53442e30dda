// Package apperror defines the typed error taxonomy shared by the
// personalization and imaging subsystems. Errors implement StatusCode so
// the HTTP error middleware can map them without switching on strings.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation policy decisions.
type Kind int

const (
	// KindInvalidInput marks requests rejected before any downstream call.
	KindInvalidInput Kind = iota
	// KindNotFound marks an absent week or patient.
	KindNotFound
	// KindUnavailable marks an unreachable downstream dependency.
	KindUnavailable
)

// Error is a classified application error.
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

func (e *Error) Unwrap() error { return e.Err }

// StatusCode maps the error kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// InvalidInput builds an input-validation error.
func InvalidInput(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds an absent-resource error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a downstream failure.
func Unavailable(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnavailable, Message: fmt.Sprintf(format, args...), Err: err}
}

// PipelineError marks the exhaustion of a required pipeline stage. It is
// fatal for the single request only.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %q failed: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// StatusCode reports 502: a downstream stage, not this service, failed.
func (e *PipelineError) StatusCode() int { return http.StatusBadGateway }

// Pipeline wraps err as a failure of the named stage. Typed errors that
// already carry a classification pass through unchanged so NotFound and
// InvalidInput keep their HTTP mapping.
func Pipeline(stage string, err error) error {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindUnavailable {
		return err
	}
	return &PipelineError{Stage: stage, Err: err}
}

func isKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

// IsInvalidInput reports whether err is an input-validation error.
func IsInvalidInput(err error) bool { return isKind(err, KindInvalidInput) }

// IsNotFound reports whether err marks an absent resource.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsUnavailable reports whether err marks an unreachable dependency.
func IsUnavailable(err error) bool { return isKind(err, KindUnavailable) }

// AsPipeline extracts a PipelineError if err carries one.
func AsPipeline(err error) (*PipelineError, bool) {
	var pe *PipelineError
	ok := errors.As(err, &pe)
	return pe, ok
}
