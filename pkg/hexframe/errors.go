// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hexframe

import (
	"errors"
	"fmt"
)

// Kind identifies one failure condition of a transaction.
// A Kind is itself an error so it can be used as an errors.Is target.
type Kind int

const (
	// Validation errors (detected before any transport activity)
	EmptyInput Kind = iota + 1
	InconsistentLineLength
	LineTooLong
	TooManyLines
	InvalidHexDigit

	// Encoding faults (internal contract violations)
	FieldOutOfRange
	PayloadLengthMismatch

	// Transport errors
	LinkUnavailable
	WriteTimeout

	// Response anomaly (recoverable)
	IncompleteResponse
)

// Class groups kinds by where they are detected
type Class int

const (
	ClassValidation Class = iota
	ClassEncoding
	ClassTransport
	ClassAnomaly
)

// String returns the class name
func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassEncoding:
		return "encoding"
	case ClassTransport:
		return "transport"
	case ClassAnomaly:
		return "anomaly"
	default:
		return "unknown"
	}
}

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case EmptyInput:
		return "EmptyInput"
	case InconsistentLineLength:
		return "InconsistentLineLength"
	case LineTooLong:
		return "LineTooLong"
	case TooManyLines:
		return "TooManyLines"
	case InvalidHexDigit:
		return "InvalidHexDigit"
	case FieldOutOfRange:
		return "FieldOutOfRange"
	case PayloadLengthMismatch:
		return "PayloadLengthMismatch"
	case LinkUnavailable:
		return "LinkUnavailable"
	case WriteTimeout:
		return "WriteTimeout"
	case IncompleteResponse:
		return "IncompleteResponse"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error implements the error interface
func (k Kind) Error() string {
	return "hexframe: " + k.String()
}

// Class returns the class the kind belongs to
func (k Kind) Class() Class {
	switch k {
	case EmptyInput, InconsistentLineLength, LineTooLong, TooManyLines, InvalidHexDigit:
		return ClassValidation
	case FieldOutOfRange, PayloadLengthMismatch:
		return ClassEncoding
	case LinkUnavailable, WriteTimeout:
		return ClassTransport
	default:
		return ClassAnomaly
	}
}

// Fatal reports whether the kind aborts the transaction.
// Only IncompleteResponse is recoverable.
func (k Kind) Fatal() bool {
	return k != IncompleteResponse
}

// Error is a transaction failure with the offending value attached
type Error struct {
	Kind    Kind
	Message string
	Value   interface{}
	Details map[string]interface{}
	Err     error // underlying cause, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches a bare Kind target
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates an Error with a formatted message
func newError(kind Kind, value interface{}, details map[string]interface{}, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Value:   value,
		Details: details,
	}
}

// NewError creates an Error of the given kind wrapping cause.
// Used by transport packages that share this taxonomy.
func NewError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// KindOf extracts the Kind from err, or 0 if err carries none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return 0
}
