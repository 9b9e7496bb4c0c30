package messaging

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/domain/events"
	pkgerrors "flowcanvas/pkg/errors"
)

// WildcardTopic subscribes a handler to every event type
const WildcardTopic = "*"

// InMemoryEventBus implements the EventBus interface with synchronous
// in-process dispatch. Handler failures are logged and do not fail the
// publish; the canvas mutation already happened by the time its events
// reach the bus.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]ports.EventHandler
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new InMemoryEventBus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]ports.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type
func (b *InMemoryEventBus) Subscribe(eventType string, handler ports.EventHandler) error {
	if handler == nil {
		return pkgerrors.NewValidationError("handler must not be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// Unsubscribe removes a handler. Removing a handler that was never
// subscribed is a no-op.
func (b *InMemoryEventBus) Unsubscribe(eventType string, handler ports.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	registered := b.handlers[eventType]
	for i, h := range registered {
		if h == handler {
			b.handlers[eventType] = append(registered[:i:i], registered[i+1:]...)
			return nil
		}
	}
	return nil
}

// Publish sends a single event
func (b *InMemoryEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	if event == nil {
		return pkgerrors.NewValidationError("event must not be nil")
	}

	eventType := event.GetEventType()
	for _, handler := range b.subscribers(eventType) {
		if !handler.CanHandle(eventType) {
			continue
		}
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Warn("Event handler failed",
				zap.String("eventType", eventType),
				zap.String("aggregateId", event.GetAggregateID()),
				zap.Error(err))
		}
	}
	return nil
}

// PublishBatch sends multiple events
func (b *InMemoryEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		if err := b.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// subscribers snapshots the handlers for an event type plus the wildcard
// subscribers, so dispatch runs without holding the lock.
func (b *InMemoryEventBus) subscribers(eventType string) []ports.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	typed := b.handlers[eventType]
	wild := b.handlers[WildcardTopic]

	snapshot := make([]ports.EventHandler, 0, len(typed)+len(wild))
	snapshot = append(snapshot, typed...)
	snapshot = append(snapshot, wild...)
	return snapshot
}
