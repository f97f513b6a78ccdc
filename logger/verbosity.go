package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
//
// shapectl maps the repeated -v flag onto these levels.
const (
	VerbosityUser  = 0 // No flags: results and errors only
	VerbosityInfo  = 1 // -v: + config and catalog details
	VerbosityDebug = 2 // -vv: + decomposition rejections, convention resolution
	VerbosityTrace = 3 // -vvv: + converter creation per type pair
)

// VerbosityToLevel maps verbosity flags (-v, -vv, etc.) to zap log levels.
// Anything at or above -vv logs at debug; zap has nothing finer.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// ShouldLogTrace returns true for verbosity >= 3 (-vvv)
func ShouldLogTrace(verbosity int) bool {
	return verbosity >= VerbosityTrace
}
