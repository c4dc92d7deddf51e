package services

import (
	"context"

	"duka/internal/log"
	"duka/internal/ports"
)

// publish announces a status change. Broker failures are logged and never
// fail the request: the state change is already persisted.
func publish(ctx context.Context, p ports.EventPublisher, logger *log.StructuredLogger, kind, id, from, to string) {
	if p == nil {
		logger.Debug(ctx, "No event publisher, skipping status change event", log.FieldKind, kind)
		return
	}
	if err := p.PublishStatusChanged(ctx, kind, id, from, to); err != nil {
		logger.LogError(ctx, "Failed to publish status change", err, log.OpPublish,
			log.NewFields().WithStatusChange(kind, id, from, to))
	}
}
