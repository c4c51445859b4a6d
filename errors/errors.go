// Package errors provides error handling for pyxstub.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrInvalidContainer) {
//	    // skip this module, keep converting the rest
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is     = crdb.Is
	IsAny  = crdb.IsAny
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for use across pyxstub.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrInvalidContainer indicates a reflected object is not module- or
	// class-shaped, or is missing a required introspection capability.
	// Fatal for the conversion of that one container only.
	ErrInvalidContainer = New("invalid reflected container")

	// ErrNoSignature indicates runtime signature introspection failed for a
	// native callable that carries no signature metadata. Always recovered
	// locally with a generic placeholder, never surfaced to callers.
	ErrNoSignature = New("no signature metadata")

	// ErrSyntax indicates Python source text failed to parse.
	ErrSyntax = New("syntax error")
)

// IsInvalidContainer checks if an error is or wraps ErrInvalidContainer.
func IsInvalidContainer(err error) bool {
	return err != nil && Is(err, ErrInvalidContainer)
}

// WrapInvalidContainer wraps an error as an invalid-container error with context.
func WrapInvalidContainer(err error, context string) error {
	return Wrap(Wrap(ErrInvalidContainer, err.Error()), context)
}

// NewInvalidContainerError creates an invalid-container error with a formatted message.
func NewInvalidContainerError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidContainer, Newf(format, args...).Error())
}
