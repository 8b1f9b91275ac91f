package logger

import (
	"errors"
	"testing"

	"github.com/employeedir/core/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "chatty", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewBuildsBothFormats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := New(config.LoggerConfig{Level: "info", Format: format, Output: "stderr"})
		require.NoError(t, err)
		assert.NotNil(t, l.SugaredLogger)
	}
}

func TestLogStoreOperationLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).WithComponent("store")

	l.LogStoreOperation("load", "json", 2, 0.4, nil)
	l.LogStoreOperation("save", "json", 3, 1.2, errors.New("disk full"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "disk full", entries[1].ContextMap()["error"])
	assert.Equal(t, "store", entries[1].ContextMap()["component"])
}

func TestLogHTTPRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := FromZap(zap.New(core))

	l.LogHTTPRequest("GET", "/api/employees", "req-1", "127.0.0.1", 200, 1.5)
	l.LogHTTPRequest("DELETE", "/api/employees/99", "req-2", "127.0.0.1", 404, 0.8)
	l.LogHTTPRequest("GET", "/api/employees", "req-3", "127.0.0.1", 500, 2.1)

	entries := logs.All()
	require.Len(t, entries, 3)

	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, int64(200), fields["status_code"])
	assert.Equal(t, "req-1", fields["request_id"])

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "HTTP request", entries[1].Message)
	assert.Equal(t, int64(404), entries[1].ContextMap()["status_code"])
	assert.NotContains(t, entries[1].ContextMap(), "error")

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "HTTP request failed", entries[2].Message)
}
