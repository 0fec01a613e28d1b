package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/ftsi/internal/logger"
)

func TestOperation_LogsByOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	Operation(ctx, "delete", "Article", time.Now(), nil, zap.Int("count", 1))
	Operation(ctx, "delete", "Article", time.Now(), errors.New("disk"))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "index operation completed", entries[0].Message)
	assert.Equal(t, int64(1), entries[0].ContextMap()["count"])
	assert.Equal(t, "Article", entries[0].ContextMap()["entity"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "disk", entries[1].ContextMap()["error"])
}

func TestOperation_NoLoggerInContext(t *testing.T) {
	assert.NotPanics(t, func() {
		Operation(context.Background(), "status", "Article", time.Now(), nil)
	})
}
