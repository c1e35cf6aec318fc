package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to callers.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindInvalidState ErrorKind = "invalid_state"
	KindConflict     ErrorKind = "conflict"
)

// Messages shared between services and their callers.
const (
	MsgOrderNotFound     = "Order not found or access denied"
	MsgUserNotFound      = "User not found"
	MsgCannotDeletePast  = "Cannot delete past orders"
	MsgEmailAlreadyTaken = "Email is already registered to another account"
)

// Error is a caller-facing failure with a kind and a message safe to show verbatim.
type Error struct {
	Kind    ErrorKind
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

// ValidationError reports a malformed or out-of-catalog request field.
func ValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFoundError reports an unknown or inaccessible resource.
func NotFoundError(msg string, cause error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: cause}
}

// InvalidStateError reports an operation that breaks a lifecycle rule.
func InvalidStateError(msg string) *Error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

// ConflictError reports a uniqueness violation.
func ConflictError(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

// KindOf returns the kind of err, or "" when err is not a service error.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}
