package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// emitTimeout is the max time allowed for a single async emit. Used by EmitAsync and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after gRPC GracefulStop before shutting down OTel providers,
// so in-flight async emits have time to complete. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not blocked.
// Request cancellation does not abort an in-flight emit. A nil emitter is a no-op.
func EmitAsync(emitter EventEmitter, event Event, log *zap.Logger) {
	if emitter == nil {
		return
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil && log != nil {
			log.Warn("telemetry: async emit failed", zap.String("event_type", event.Type), zap.Error(err))
		}
	}()
}
