package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
	}{
		{name: "JSON output mode", jsonOutput: true},
		{name: "Console output mode", jsonOutput: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := Logger
			defer func() { Logger = prev }()

			require.NoError(t, InitializeWithLevel(tt.jsonOutput, zapcore.DebugLevel))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)
			assert.True(t, Logger.Desugar().Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestInitializeReadsEnvLevel(t *testing.T) {
	prev := Logger
	defer func() { Logger = prev }()

	t.Setenv("TYPESHAPE_LOG_LEVEL", "error")
	require.NoError(t, Initialize(false))
	assert.False(t, Logger.Desugar().Core().Enabled(zapcore.WarnLevel))
	assert.True(t, Logger.Desugar().Core().Enabled(zapcore.ErrorLevel))
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityUser))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
	assert.False(t, ShouldLogTrace(VerbosityDebug))
	assert.True(t, ShouldLogTrace(VerbosityTrace))
}

func TestComponentLogger(t *testing.T) {
	l := ComponentLogger("inspector")
	require.NotNil(t, l)
	child := ChildLogger(l, FieldScope, "default")
	assert.NotNil(t, child)
}

func TestPackageHelpersTolerateNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Debugw("decompose rejected", FieldType, "int", FieldReason, "too deep")
		Infow("info")
		Warnw("warn")
		Errorw("error")
		Cleanup()
	})
}
