package models

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the normalized failure categories of a gateway call.
type ErrorKind string

const (
	ErrorValidation         ErrorKind = "validation"
	ErrorConflict           ErrorKind = "conflict"
	ErrorUnauthorized       ErrorKind = "unauthorized"
	ErrorNetworkUnavailable ErrorKind = "network_unavailable"
	ErrorUnknown            ErrorKind = "unknown"
)

// ErrorReport is the uniform representation of any gateway failure.
type ErrorReport struct {
	Kind         ErrorKind
	Message      string
	SourceStatus *int
}

// NewErrorReport builds a report without a source status.
func NewErrorReport(kind ErrorKind, message string) *ErrorReport {
	return &ErrorReport{Kind: kind, Message: message}
}

// WithStatus attaches the HTTP status the report originated from.
func (e *ErrorReport) WithStatus(status int) *ErrorReport {
	e.SourceStatus = &status
	return e
}

// Status returns the source status or 0 when none was recorded.
func (e *ErrorReport) Status() int {
	if e == nil || e.SourceStatus == nil {
		return 0
	}
	return *e.SourceStatus
}

func (e *ErrorReport) Error() string {
	if e.SourceStatus != nil {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, *e.SourceStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches another report of the same kind, so errors.Is(err, &ErrorReport{Kind: ...}) works.
func (e *ErrorReport) Is(target error) bool {
	var other *ErrorReport
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// Recoverable reports whether the failure can be handled by showing the message and keeping user input.
func (e *ErrorReport) Recoverable() bool {
	return e.Kind == ErrorValidation || e.Kind == ErrorConflict
}

// AsErrorReport extracts the ErrorReport carried by err. Errors that are not reports
// are wrapped as ErrorUnknown so callers always get a report.
func AsErrorReport(err error) *ErrorReport {
	if err == nil {
		return nil
	}
	var report *ErrorReport
	if errors.As(err, &report) {
		return report
	}
	return NewErrorReport(ErrorUnknown, err.Error())
}

// IsKind reports whether err carries an ErrorReport of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var report *ErrorReport
	return errors.As(err, &report) && report.Kind == kind
}
