// Package errors provides error handling for mwconv.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints for user-facing failures (e.g. how to raise a recursion limit)
//
// Usage:
//
//	if err := expand(); err != nil {
//	    return errors.Wrap(err, "expanding attribute value")
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New         = crdb.New
	Newf        = crdb.Newf
	Wrap        = crdb.Wrap
	Wrapf       = crdb.Wrapf
	WithStack   = crdb.WithStack
	WithMessage = crdb.WithMessage
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
	Is            = crdb.Is
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	FlattenHints  = crdb.FlattenHints
	GetAllDetails = crdb.GetAllDetails
)

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors shared across the pipeline.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrRecursionDepth indicates macro expansion nested deeper than the frame allows.
	ErrRecursionDepth = New("expansion depth exceeded")

	// ErrUnknownFormat indicates an unsupported output or input format name.
	ErrUnknownFormat = New("unknown format")

	// ErrInvalidConfig indicates a malformed configuration file.
	ErrInvalidConfig = New("invalid configuration")
)

// IsRecursionDepth checks if an error is or wraps ErrRecursionDepth.
func IsRecursionDepth(err error) bool {
	return err != nil && Is(err, ErrRecursionDepth)
}

// NewInvalidConfigError creates an invalid-config error with a formatted message.
func NewInvalidConfigError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidConfig, Newf(format, args...).Error())
}
