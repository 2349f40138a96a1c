package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so transport layers can map it to a status
// code without inspecting messages.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindStoreFailure Kind = "store_failure"
)

// Error is the error type returned by the core services. Message is safe to
// show to callers; Err keeps the underlying cause for logs.
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

func (e *Error) Unwrap() error {
	return e.Err
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// StoreFailure wraps an unexpected persistence error. Domain checks run
// before any write, so this is the only kind that carries a cause by default.
func StoreFailure(msg string, err error) *Error {
	return &Error{Kind: KindStoreFailure, Message: msg, Err: err}
}

// KindOf extracts the kind from err. Unclassified errors are treated as
// store failures: they can only come from layers below the domain checks.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreFailure
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
