package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"":        zapcore.ErrorLevel,
		"ERROR":   zapcore.ErrorLevel,
		"debug":   zapcore.DebugLevel,
		"Warning": zapcore.WarnLevel,
		"info":    zapcore.InfoLevel,
	} {
		got, err := parseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud")
	assert.EqualError(t, err, "invalid log level: loud")
}

func TestNew_EnablesLevel(t *testing.T) {
	log, err := New("info")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
