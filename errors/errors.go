// Package errors provides error handling for typeshape.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for configuration errors
//   - Assertion failures for programming errors
//
// Usage:
//
//	// Wrap with context
//	if err := conv.Initialize(ctx); err != nil {
//	    return errors.Wrapf(err, "initialize convention %s", name)
//	}
//
//	// Mark with a taxonomy sentinel
//	return errors.Mark(errors.Newf("no converter from %s to %s", from, to), errors.ErrConversion)
//
//	// Check errors
//	if errors.Is(err, errors.ErrConventionConflict) {
//	    // abort the schema build
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
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapOnce     = crdb.UnwrapOnce
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions and panics
var (
	AssertionFailedf                 = crdb.AssertionFailedf
	NewAssertionErrorWithWrappedErrf = crdb.NewAssertionErrorWithWrappedErrf
	HasAssertionFailure              = crdb.HasAssertionFailure
)

// Taxonomy sentinels shared by the shape engine, the converter registry and
// the convention lifecycle. Mark or wrap these so callers can use Is().
var (
	// ErrUnsupportedShape indicates a type could not be decomposed into a valid component stack
	ErrUnsupportedShape = New("unsupported shape")

	// ErrInvalidRewrite indicates a nullability rewrite request was rejected
	ErrInvalidRewrite = New("invalid nullability rewrite")

	// ErrConversion indicates no converter could be produced for a type pair
	ErrConversion = New("conversion not supported")

	// ErrConventionConflict indicates two owning conventions were registered for one scope
	ErrConventionConflict = New("convention conflict")

	// ErrConventionNotCreated indicates a resolved convention does not implement its contract
	ErrConventionNotCreated = New("convention could not be created")

	// ErrConventionReinitialized indicates a convention was initialized twice
	ErrConventionReinitialized = New("convention already initialized")
)

// IsUnsupportedShapeError checks if an error is or wraps ErrUnsupportedShape
func IsUnsupportedShapeError(err error) bool {
	return err != nil && Is(err, ErrUnsupportedShape)
}

// IsConversionError checks if an error is or wraps ErrConversion
func IsConversionError(err error) bool {
	return err != nil && Is(err, ErrConversion)
}

// IsConfigurationError reports whether err is a configuration-class error that
// must abort schema construction: convention conflicts, failed contract casts
// and re-initialization.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	return IsAny(err, ErrConventionConflict, ErrConventionNotCreated, ErrConventionReinitialized) ||
		HasAssertionFailure(err)
}

// NewUnsupportedShapeError creates an unsupported-shape error with a formatted message
func NewUnsupportedShapeError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrUnsupportedShape)
}
