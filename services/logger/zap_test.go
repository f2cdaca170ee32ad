package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tkalearning/lms/core"
)

func TestZapLogger(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(obs), &core.Config{Env: "TEST"})
	logger.Enable(false)

	auth := core.AuthContext{UserID: 7, Username: "ada"}
	logger.Error("toggling completion", errors.New("boom"), auth, map[string]interface{}{"course_id": 3})
	logger.Info("plain")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "toggling completion", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "boom", ctx["error"])
	assert.EqualValues(t, 7, ctx["user_id"])
	assert.Equal(t, "ada", ctx["username"])
	assert.EqualValues(t, 3, ctx["course_id"])

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Empty(t, entries[1].ContextMap())
}

func TestZapLogger_anonymousIsNotAPerson(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(obs), &core.Config{})
	logger.Enable(false)

	logger.Warn("anonymous", core.AuthContext{})
	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "user_id")
}
