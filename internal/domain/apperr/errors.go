// Package apperr holds the error taxonomy shared by every domain package.
// Domain sentinels are *Error values, so errors.Is matches the exact failure
// and KindOf recovers its class for transport mapping.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindStateConflict
	KindInsufficientFunds
	KindDuplicate
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStateConflict:
		return "state_conflict"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindDuplicate:
		return "duplicate"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func New(kind Kind, code, msg string) *Error { return &Error{Kind: kind, Code: code, Msg: msg} }

func (e *Error) Error() string { return e.Msg }

// ErrInternal is the opaque storage-layer failure.
var ErrInternal = New(KindInternal, "InternalError", "internal error")

// Internal wraps an infrastructure error so it matches ErrInternal while
// keeping the cause for logs.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

// ValidationError reports malformed or out-of-range input on one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, msg string) *ValidationError { return &ValidationError{Field: field, Message: msg} }

// KindOf classifies err. Anything outside the taxonomy is internal.
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsDomain reports whether err is a business-rule failure rather than an
// infrastructure one.
func IsDomain(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInternal) {
		return false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var ae *Error
	return errors.As(err, &ae)
}

// Code returns the stable error code for err.
func Code(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "ValidationError"
	}
	if errors.Is(err, ErrInternal) {
		return ErrInternal.Code
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrInternal.Code
}
