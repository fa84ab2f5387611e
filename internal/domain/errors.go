package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a machine-readable failure kind surfaced to callers verbatim.
type ErrorCode string

const (
	CodeValidation       ErrorCode = "VALIDATION_ERROR"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidState     ErrorCode = "INVALID_STATE"
	CodeStaleState       ErrorCode = "STALE_STATE"
	CodeNotFound         ErrorCode = "NOT_FOUND"
)

// Error is the domain error. Two errors are equal under errors.Is when their codes match,
// so callers compare against the sentinels below.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrPermissionDenied = &Error{Code: CodePermissionDenied, Message: "permission denied"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInvalidState     = &Error{Code: CodeInvalidState, Message: "invalid state"}
	ErrStaleState       = &Error{Code: CodeStaleState, Message: "stale state"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
)

func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Validationf(format string, args ...any) *Error {
	return NewError(CodeValidation, format, args...)
}

// CodeOf returns the domain code carried by err, or "" for infrastructure failures.
func CodeOf(err error) ErrorCode {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return CodeConflict
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ConflictError is returned when a seller already holds a pending offer on a request.
// Existing lets the caller show that offer instead of retrying.
type ConflictError struct {
	Existing *Offer
}

func (e *ConflictError) Error() string {
	if e.Existing == nil {
		return "seller already has a pending offer for this request"
	}
	return fmt.Sprintf("seller already has a pending offer %s for this request", e.Existing.ID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
