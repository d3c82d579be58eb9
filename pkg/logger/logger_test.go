package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init("loud", "json"))
}

func TestPackageFunctionsUseInstalledLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := L()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })

	Info("hello", zap.String("user", "u1"))
	Warn("careful")

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "hello", entries[0].Message)
	assert.Equal(t, "u1", entries[0].ContextMap()["user"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}
