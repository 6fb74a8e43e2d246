// Package errors provides coded application errors shared by every layer of the CRM.
//
// Errors carry a Code that survives wrapping, so callers match them with the standard
// library's errors.Is against the sentinel values declared here:
//
//	if errors.Is(err, apperrors.ErrNotFound) { ... }
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies an application error.
type Code string

const (
	ErrCodeNotFound           Code = "NOT_FOUND"
	ErrCodeDuplicateKey       Code = "DUPLICATE_KEY"
	ErrCodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       Code = "UNAUTHORIZED"
	ErrCodeForbidden          Code = "FORBIDDEN"
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeExpired            Code = "EXPIRED"
	ErrCodeNoSession          Code = "NO_SESSION"
	ErrCodeMalformed          Code = "MALFORMED"
	ErrCodeInvalidSignature   Code = "INVALID_SIGNATURE"
	ErrCodeInternal           Code = "INTERNAL"
)

// Error is a coded application error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Sentinels for errors.Is. They match any *Error with the same code.
var (
	ErrNotFound           = &Error{Code: ErrCodeNotFound}
	ErrDuplicateKey       = &Error{Code: ErrCodeDuplicateKey}
	ErrInvalidCredentials = &Error{Code: ErrCodeInvalidCredentials}
	ErrUnauthorized       = &Error{Code: ErrCodeUnauthorized}
	ErrForbidden          = &Error{Code: ErrCodeForbidden}
	ErrInvalidInput       = &Error{Code: ErrCodeInvalidInput}
	ErrExpired            = &Error{Code: ErrCodeExpired}
	ErrNoSession          = &Error{Code: ErrCodeNoSession}
	ErrMalformed          = &Error{Code: ErrCodeMalformed}
	ErrInvalidSignature   = &Error{Code: ErrCodeInvalidSignature}
	ErrInternal           = &Error{Code: ErrCodeInternal}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// NotFound reports a missing entity.
func NotFound(resource string, id any) *Error {
	return Newf(ErrCodeNotFound, "%s %v not found", resource, id)
}

// Duplicate reports a uniqueness violation.
func Duplicate(resource, field string) *Error {
	return Newf(ErrCodeDuplicateKey, "%s with this %s already exists", resource, field)
}

// InvalidInput reports a failed validation predicate.
func InvalidInput(format string, args ...any) *Error {
	return Newf(ErrCodeInvalidInput, format, args...)
}

// Forbidden reports a failed authorization rule.
func Forbidden(format string, args ...any) *Error {
	return Newf(ErrCodeForbidden, format, args...)
}

// CodeOf returns the code of the first *Error in err's chain, or ErrCodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
