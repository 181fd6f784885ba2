// Package apperr defines the error taxonomy shared by the planner and the
// diagnosis engine. Every error names the offending field or metric so callers
// can render an actionable message.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// InvalidInput marks malformed or out-of-range request fields. Never retried.
	InvalidInput Kind = "InvalidInput"

	// DivisionByZero marks degenerate target inputs such as a zero budget.
	DivisionByZero Kind = "DivisionByZero"

	// ConfigurationError marks a bad static table. Fatal at load time.
	ConfigurationError Kind = "ConfigurationError"

	// InsufficientData marks a diagnosis that cannot run on the metrics given.
	// Callers may retry after fetching metrics again.
	InsufficientData Kind = "InsufficientData"
)

// Error implements error so a bare Kind can be used as an errors.Is target.
func (k Kind) Error() string {
	return string(k)
}

// Error is a classified failure carrying the field or metric it concerns.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
}

// Is reports whether target is this error's Kind.
func (e *Error) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == e.Kind
}

// New builds an Error.
func New(kind Kind, field, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Invalid builds an InvalidInput error for field.
func Invalid(field, format string, args ...interface{}) *Error {
	return New(InvalidInput, field, format, args...)
}

// Config builds a ConfigurationError for field.
func Config(field, format string, args ...interface{}) *Error {
	return New(ConfigurationError, field, format, args...)
}

// KindOf extracts the Kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// FieldOf extracts the offending field of err, or "" when err is not classified.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
