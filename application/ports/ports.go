package ports

import (
	"context"
	"time"

	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/valueobjects"
	"flowcanvas/domain/events"
	"flowcanvas/domain/versioning"
)

// CanvasStore holds the live canvases for all editing sessions. Canvases
// are process-local mutable aggregates, so instead of load/save cycles the
// store hands out scoped access: Acquire serializes writers per canvas and
// bumps the session revision when the closure succeeds, AcquireRead admits
// concurrent readers.
type CanvasStore interface {
	// Create registers a new canvas under a fresh session
	Create(ctx context.Context, name string) (*aggregates.Canvas, error)

	// Acquire runs fn with exclusive access to the canvas
	Acquire(ctx context.Context, id string, fn func(*aggregates.Canvas) error) error

	// AcquireRead runs fn with shared read access to the canvas
	AcquireRead(ctx context.Context, id string, fn func(*aggregates.Canvas) error) error

	// List returns summaries of all live canvases
	List(ctx context.Context) ([]CanvasSummary, error)

	// Revision returns the session revision counter for a canvas
	Revision(ctx context.Context, id string) (uint64, error)

	// Delete removes a canvas and its session
	Delete(ctx context.Context, id string) error
}

// CanvasSummary is the listing shape for a live canvas session
type CanvasSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	NodeCount      int       `json:"node_count"`
	ConnectorCount int       `json:"connector_count"`
	Revision       uint64    `json:"revision"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EventStore defines the interface for event persistence
type EventStore interface {
	// SaveEvents persists domain events
	SaveEvents(ctx context.Context, events []events.DomainEvent) error

	// GetEvents retrieves events for an aggregate
	GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error)

	// GetEventsByType retrieves events of a specific type
	GetEventsByType(ctx context.Context, eventType string, limit int) ([]events.DomainEvent, error)

	// DeleteEvents removes all events for an aggregate
	DeleteEvents(ctx context.Context, aggregateID string) error
}

// VersionStore persists canvas checkpoints created by the versioning service
type VersionStore interface {
	// Save stores a checkpoint
	Save(ctx context.Context, version *versioning.CanvasVersion) error

	// List returns all checkpoints for a canvas, oldest first
	List(ctx context.Context, canvasID string) ([]*versioning.CanvasVersion, error)

	// Get retrieves one checkpoint by its version number
	Get(ctx context.Context, canvasID string, version int) (*versioning.CanvasVersion, error)

	// Prune drops the oldest checkpoints beyond keep
	Prune(ctx context.Context, canvasID string, keep int) error
}

// LogEntry is one parsed line from a watched log stream
type LogEntry struct {
	Seq       uint64                   `json:"seq"`
	Timestamp time.Time                `json:"timestamp"`
	Level     string                   `json:"level,omitempty"`
	Message   string                   `json:"message,omitempty"`
	Actions   []valueobjects.LogAction `json:"actions,omitempty"`
	Raw       string                   `json:"raw"`
}

// HasActions reports whether the entry carries any overlay actions
func (e LogEntry) HasActions() bool {
	return len(e.Actions) > 0
}

// LogSource exposes the tail of a watched log stream. Subscribers receive
// entries in arrival order; Recent serves the retained window for catch-up.
type LogSource interface {
	// Recent returns up to limit retained entries, oldest first
	Recent(ctx context.Context, limit int) ([]LogEntry, error)

	// Subscribe registers a callback for new entries and returns an
	// unsubscribe function
	Subscribe(handler func(LogEntry)) (func(), error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
