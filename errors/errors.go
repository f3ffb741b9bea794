// Package errors provides error handling for codecgen.
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
//	if errors.Is(err, errors.ErrZeroValueUnavailable) {
//	    // degrade to an external zero parameter
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
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
	Join      = crdb.Join
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for use across codecgen.
// Use these with errors.Is() for type-safe error checking; wrap them with
// errors.Wrap() to add context while preserving the type.
var (
	// ErrUnresolvedType indicates a type reference could not be matched to a
	// built-in, alias, custom type, or registered codec anywhere reachable
	// through the import graph. Non-fatal: generation degrades the type into
	// an externally supplied function parameter.
	ErrUnresolvedType = New("type could not be resolved")

	// ErrGenericUnsupported indicates a field's type is a bare type variable.
	// Non-fatal: the field renders as a visible todo marker.
	ErrGenericUnsupported = New("type parameters are not supported")

	// ErrZeroValueUnavailable indicates no default instance could be
	// synthesized for a type (opaque type, exhausted variants, or the
	// recursion guard tripped).
	ErrZeroValueUnavailable = New("no zero value available")

	// ErrOpaqueType indicates a type's constructors are not visible outside
	// its defining module.
	ErrOpaqueType = New("type is opaque")

	// ErrDuplicateModule indicates two source files mapped to the same
	// logical module path.
	ErrDuplicateModule = New("duplicate module path")

	// ErrParse indicates source text could not be parsed into the module
	// model. Scoped to one file; never aborts the whole run.
	ErrParse = New("parse error")
)
