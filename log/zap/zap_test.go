package zap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/cacheaside"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Warn("provider get failed", cacheaside.Fields{"key": "k", "err": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, zapcore.WarnLevel, e.Level)
	assert.Equal(t, "cacheaside", e.LoggerName)
	ctx := e.ContextMap()
	assert.Equal(t, "k", ctx["key"])
	assert.Equal(t, "boom", ctx["err"])
}

func TestNewFiltered(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	l, err := NewFiltered(zap.New(core), "warn+:cacheaside")
	require.NoError(t, err)
	l.Debug("dropped", nil)
	l.Info("dropped", nil)
	l.Error("kept", nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)

	_, err = NewFiltered(zap.New(core), "nope:cacheaside")
	assert.Error(t, err)
}
