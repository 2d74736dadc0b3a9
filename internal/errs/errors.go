// Package errs provides the unified error type used across all of sqlgate.
//
// Every subsystem (config, database, gateway, server) wraps its native errors
// into *errs.Error before returning them to callers. Callers use the Is*
// predicates to handle errors without importing driver-specific packages.
//
// Usage:
//
//	// In a driver, wrap native errors:
//	return errs.Wrap(errs.ErrKindQueryFailed, "statement failed", myErr)
//
//	// In a handler, check error kind:
//	if errs.IsInvalidInput(err) {
//	    http.Error(w, err.Error(), http.StatusBadRequest)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind says where in the call an error came from.
// It maps onto the gateway's taxonomy: input validation, connection
// establishment, statement execution, and anything unexpected.
type ErrKind int

const (
	ErrKindInternal         ErrKind = iota // unexpected fault, not from the driver
	ErrKindInvalidInput                    // bad arguments from the caller
	ErrKindConnectionFailed                // session could not be established
	ErrKindQueryFailed                     // driver rejected or failed the statement
	ErrKindTimeout                         // context deadline / cancellation
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// MarshalText renders the kind by name in JSON payloads.
func (k ErrKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Category is the actionable class of a driver failure, derived from the
// driver's error text.
type Category int

const (
	CategoryOther Category = iota
	CategoryConnectionUnreachable
	CategoryAccessDenied
	CategoryUnknownDatabase
	CategoryUnknownTable
	CategoryUnknownColumn
	CategoryConstraintViolation
	CategorySyntaxError
)

func (c Category) String() string {
	switch c {
	case CategoryConnectionUnreachable:
		return "connection_unreachable"
	case CategoryAccessDenied:
		return "access_denied"
	case CategoryUnknownDatabase:
		return "unknown_database"
	case CategoryUnknownTable:
		return "unknown_table"
	case CategoryUnknownColumn:
		return "unknown_column"
	case CategoryConstraintViolation:
		return "constraint_violation"
	case CategorySyntaxError:
		return "syntax_error"
	default:
		return "other"
	}
}

// MarshalText renders the category by name in JSON payloads.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Error is the single error type returned by all sqlgate subsystems.
// Drivers produce it; the gateway enriches it with Category and Hint.
type Error struct {
	Kind     ErrKind
	Message  string
	Cause    error // original driver-level error, preserved for logging
	Category Category
	Hint     string // human-oriented advice; empty when unclassified
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Detail is the user-facing text: the message, the raw cause and the hint
// when one is known.
func (e *Error) Detail() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Hint != "" {
		msg += "\n" + e.Hint
	}
	return msg
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Classified returns a copy of e carrying category and hint.
func (e *Error) Classified(c Category, hint string) *Error {
	out := *e
	out.Category = c
	out.Hint = hint
	return &out
}

// --- Predicates ---

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsConnectionFailed reports whether err is a session establishment failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a statement execution failure.
func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsInternal reports whether err is an unexpected fault.
// Errors that are not *Error count as internal.
func IsInternal(err error) bool {
	return err != nil && KindOf(err) == ErrKindInternal
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindInternal
}

// CategoryOf extracts the Category from any error in the chain.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryOther
}
