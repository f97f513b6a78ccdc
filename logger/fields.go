package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across typeshape.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"
	FieldBuildID   = "build_id"

	// Shapes
	FieldType     = "type"
	FieldShape    = "shape"
	FieldStrategy = "strategy"
	FieldDepth    = "depth"
	FieldReason   = "reason"
	FieldMember   = "member"

	// Conversion
	FieldFrom     = "from"
	FieldTo       = "to"
	FieldProvider = "provider"

	// Conventions
	FieldContract   = "contract"
	FieldScope      = "scope"
	FieldConvention = "convention"
	FieldExtensions = "extensions"
	FieldSource     = "source"

	// Files
	FieldFile = "file"
	FieldOp   = "op"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Inspector struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func New() *Inspector {
//	    return &Inspector{
//	        logger: logger.ComponentLogger("inspector"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
// Use for sub-operations that need extra context fields.
//
// Example:
//
//	buildLogger := logger.ChildLogger(baseLogger, logger.FieldBuildID, ctx.ID())
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
