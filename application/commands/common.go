package commands

import (
	"context"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/domain/core/aggregates"
)

// flushEvents publishes the canvas's uncommitted events and marks them
// committed. Publish failures are logged, not returned: the mutation has
// already happened and events are advisory downstream.
func flushEvents(ctx context.Context, eventBus ports.EventBus, logger *zap.Logger, canvas *aggregates.Canvas) {
	pending := canvas.GetUncommittedEvents()
	if len(pending) == 0 {
		return
	}
	if err := eventBus.PublishBatch(ctx, pending); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.String("canvasID", canvas.ID().String()),
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
	}
	canvas.MarkEventsAsCommitted()
}
