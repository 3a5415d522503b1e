package logger

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_ParsesLevel(t *testing.T) {
	log, err := New("debug", "")
	require.NoError(t, err)
	assert.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))

	_, err = New("loud", "")
	assert.Error(t, err)
}

func TestSentryLevel(t *testing.T) {
	assert.Equal(t, sentry.LevelWarning, SentryLevel(zapcore.WarnLevel))
	assert.Equal(t, sentry.LevelError, SentryLevel(zapcore.ErrorLevel))
	assert.Equal(t, sentry.LevelFatal, SentryLevel(zapcore.FatalLevel))
	assert.Equal(t, sentry.LevelInfo, SentryLevel(zapcore.InfoLevel))
}
