package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_LevelOverride(t *testing.T) {
	l, err := New("personio-adapter", "prod", "warn")
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_InvalidLevelKeepsDefault(t *testing.T) {
	l, err := New("personio-adapter", "dev", "chatty")
	require.NoError(t, err)

	// development config defaults to debug
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestInit_SetsGlobals(t *testing.T) {
	Init("personio-adapter", "prod", "error")
	defer Sync()

	assert.NotNil(t, L())
	assert.NotNil(t, S())
	assert.False(t, L().Core().Enabled(zapcore.WarnLevel))
}
