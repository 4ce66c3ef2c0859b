package logger

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = prev })
	return logs
}

func TestInit(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	require.NoError(t, Init(true))
	assert.NotNil(t, Logger)
	require.NoError(t, Init(false))
	assert.NotNil(t, Logger)
}

func TestError_AttachesCause(t *testing.T) {
	logs := observe(t)

	Error("Repository: insert failed", errors.New("boom"), zap.String("task_id", "42"))
	Error("Repository: nothing", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, "42", entries[0].ContextMap()["task_id"])
	assert.NotContains(t, entries[1].ContextMap(), "error")
}

func TestHttpRequestInfo(t *testing.T) {
	logs := observe(t)

	r := httptest.NewRequest("GET", "/api/tasks?x=1", nil)
	HttpRequestInfo(r, "HTTP_IN:")

	entries := logs.FilterMessage("HTTP_IN:").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/tasks", fields["path"])
	assert.Equal(t, "x=1", fields["query"])
}
