// Package observe records logs and metrics for index operations.
package observe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ftsi/internal/logger"
	"github.com/kailas-cloud/ftsi/internal/metrics"
)

// Operation logs the outcome of op on the request logger and records its metrics.
// Failures log at Warn, successes at Debug.
func Operation(ctx context.Context, op, entity string, start time.Time, err error, fields ...zap.Field) {
	metrics.ObserveOperation(op, entity, start, err)

	log := logger.FromContext(ctx)
	fields = append(fields,
		zap.String("op", op),
		zap.String("entity", entity),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		log.Warn("index operation failed", append(fields, zap.Error(err))...)
		return
	}
	log.Debug("index operation completed", fields...)
}
