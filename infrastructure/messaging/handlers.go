package messaging

import (
	"context"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/domain/events"
	"flowcanvas/pkg/extensions"
	"flowcanvas/pkg/observability"
)

// JournalHandler copies every published event into the event store, so the
// journal reflects what actually went out on the bus.
type JournalHandler struct {
	store  ports.EventStore
	logger *zap.Logger
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(store ports.EventStore, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{
		store:  store,
		logger: logger,
	}
}

// Handle processes an event
func (h *JournalHandler) Handle(ctx context.Context, event events.DomainEvent) error {
	return h.store.SaveEvents(ctx, []events.DomainEvent{event})
}

// CanHandle checks if this handler can process the event
func (h *JournalHandler) CanHandle(eventType string) bool {
	return true
}

// HookBridgeHandler fires extension hook points for the domain events that
// carry one, so plugins keyed to hook points see bus traffic without
// subscribing themselves.
type HookBridgeHandler struct {
	hooks  *extensions.HookManager
	logger *zap.Logger
}

// hookPointsByEvent maps event types onto their hook points
var hookPointsByEvent = map[string]extensions.HookPoint{
	"canvas.imported": extensions.HookCanvasImported,
	"overlay.applied": extensions.HookLogActionsApplied,
}

// NewHookBridgeHandler creates a new HookBridgeHandler
func NewHookBridgeHandler(hooks *extensions.HookManager, logger *zap.Logger) *HookBridgeHandler {
	return &HookBridgeHandler{
		hooks:  hooks,
		logger: logger,
	}
}

// Handle processes an event
func (h *HookBridgeHandler) Handle(ctx context.Context, event events.DomainEvent) error {
	point, ok := hookPointsByEvent[event.GetEventType()]
	if !ok {
		return nil
	}
	if err := h.hooks.Execute(ctx, point, event); err != nil {
		h.logger.Warn("Hook execution failed",
			zap.String("hookPoint", string(point)),
			zap.Error(err))
	}
	return nil
}

// CanHandle checks if this handler can process the event
func (h *HookBridgeHandler) CanHandle(eventType string) bool {
	_, ok := hookPointsByEvent[eventType]
	return ok
}

// MetricsHandler counts published events by type
type MetricsHandler struct {
	metrics *observability.Metrics
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Handle processes an event
func (h *MetricsHandler) Handle(ctx context.Context, event events.DomainEvent) error {
	h.metrics.Increment("events_published", event.GetEventType())
	return nil
}

// CanHandle checks if this handler can process the event
func (h *MetricsHandler) CanHandle(eventType string) bool {
	return true
}
