package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"vkinder/config"
)

func TestTraceIDIsAppended(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ReplaceGlobal(zap.New(core))
	defer ReplaceGlobal(zap.NewNop())

	ctx := WithTraceID(context.Background(), "trace-1")
	Info(ctx, "hello", Int64("user_id", 42), ErrorField("cause", errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "trace-1", fields[TraceIDKey])
	assert.Equal(t, int64(42), fields["user_id"])
	assert.Equal(t, "boom", fields["cause"])
}

func TestNoTraceIDWithoutContextValue(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ReplaceGlobal(zap.New(core))
	defer ReplaceGlobal(zap.NewNop())

	Warn(context.Background(), "plain")
	Debug(nil, "nil ctx") //nolint:staticcheck

	require.Len(t, logs.All(), 2)
	_, ok := logs.All()[0].ContextMap()[TraceIDKey]
	assert.False(t, ok)
}

func TestWithTraceIDGeneratesWhenEmpty(t *testing.T) {
	ctx := WithTraceID(context.Background(), "")
	assert.NotEmpty(t, TraceID(ctx))
	assert.Equal(t, "", TraceID(context.Background()))
}

func TestBuildFallsBackToInfoOnBadLevel(t *testing.T) {
	cfg := config.DefaultLoggerConfig()
	cfg.Level = "loud"
	l, err := Build(cfg)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
