package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitIsIdempotent(t *testing.T) {
	require.NoError(t, Init(zapcore.WarnLevel, zap.String("service", "test")))
	first := Log
	require.NoError(t, Init(zapcore.DebugLevel))
	assert.Same(t, first, Log)
	assert.False(t, Log.Core().Enabled(zapcore.InfoLevel))
}
