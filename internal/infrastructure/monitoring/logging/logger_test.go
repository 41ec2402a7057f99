package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo, Format: "json", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_EmptyOutputPathsRejected(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestLogger_FieldsAreEncoded(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Info("structure loaded",
		String("url", "file:///tmp/1tqn.cif"),
		Int("atoms", 50),
		Float64("max_charge", 0.8123),
		Bool("consistent", true),
		Duration("took", time.Millisecond),
		Strings("methods", []string{"eem/un_2016"}),
		Err(errors.New("boom")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "file:///tmp/1tqn.cif", ctx["url"])
	assert.Equal(t, int64(50), ctx["atoms"])
	assert.Equal(t, 0.8123, ctx["max_charge"])
	assert.Equal(t, true, ctx["consistent"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLogger_WithAndNamed(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	child := l.Named("viewer").With(String("component", "type-switcher"))
	child.Warn("representation skipped")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "viewer", entries[0].LoggerName)
	assert.Equal(t, "type-switcher", entries[0].ContextMap()["component"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, logs := newObservedLogger(zapcore.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown")
	assert.Equal(t, 2, logs.Len())
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestSetLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo})
	require.NoError(t, err)
	assert.True(t, SetLevel(l, LevelDebug))
	assert.False(t, SetLevel(NewNopLogger(), LevelDebug))
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.Info("msg")
		l.Warn("msg")
		l.Error("msg")
		_ = l.With(String("k", "v")).Named("x").Sync()
	})
}

func TestContextPropagation(t *testing.T) {
	l, logs := newObservedLogger(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), l)

	FromContext(ctx).Info("from context")
	assert.Equal(t, 1, logs.Len())

	assert.NotNil(t, FromContext(context.Background()))
}

func TestDefault_SetAndGet(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := newObservedLogger(zapcore.InfoLevel)
	SetDefault(l)
	assert.Same(t, l, Default())

	SetDefault(nil)
	assert.Same(t, l, Default())
}

//Personal.AI order the ending
