package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"booking-platform/auth/internal/audit/domain"
	"booking-platform/auth/internal/audit/producer"
)

// emitTimeout is the max time allowed for a single async emit. Used by EmitAsync and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after HTTP server shutdown before
// closing the producer, so in-flight async emits have time to complete.
// Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not
// blocked. Fire-and-forget: errors are logged.
//
// p and event may be nil; EmitAsync returns immediately without starting a goroutine.
// The goroutine uses context.Background() with emitTimeout so request
// cancellation does not abort an in-flight emit.
func EmitAsync(p producer.Producer, event *domain.SecurityEvent, log *zap.Logger) {
	if p == nil || event == nil {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := p.Emit(emitCtx, event); err != nil {
			log.Warn("security events: async emit failed", zap.Error(err))
		}
	}()
}
