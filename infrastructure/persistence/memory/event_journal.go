package memory

import (
	"context"
	"sort"
	"sync"

	"flowcanvas/domain/events"
)

// DefaultJournalRetention is the per-aggregate cap on retained events
const DefaultJournalRetention = 1000

// EventJournal implements the EventStore interface in memory. Events are
// retained per aggregate in arrival order with a FIFO cap, so the journal
// serves audit queries without growing past its retention window.
type EventJournal struct {
	mu          sync.RWMutex
	byAggregate map[string][]journalRecord
	retain      int
	seq         uint64
}

// journalRecord tags an event with its global arrival sequence so
// cross-aggregate queries can be ordered without a timestamp tie-break.
type journalRecord struct {
	seq   uint64
	event events.DomainEvent
}

// NewEventJournal creates a new EventJournal retaining up to retain
// events per aggregate. A non-positive retain falls back to the default.
func NewEventJournal(retain int) *EventJournal {
	if retain <= 0 {
		retain = DefaultJournalRetention
	}
	return &EventJournal{
		byAggregate: make(map[string][]journalRecord),
		retain:      retain,
	}
}

// SaveEvents persists domain events
func (j *EventJournal) SaveEvents(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	for _, event := range domainEvents {
		j.seq++
		id := event.GetAggregateID()
		records := append(j.byAggregate[id], journalRecord{seq: j.seq, event: event})
		if over := len(records) - j.retain; over > 0 {
			records = records[over:]
		}
		j.byAggregate[id] = records
	}

	return nil
}

// GetEvents retrieves events for an aggregate, oldest first
func (j *EventJournal) GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	records := j.byAggregate[aggregateID]
	result := make([]events.DomainEvent, 0, len(records))
	for _, record := range records {
		result = append(result, record.event)
	}
	return result, nil
}

// GetEventsByType retrieves events of a specific type, most recent first
func (j *EventJournal) GetEventsByType(ctx context.Context, eventType string, limit int) ([]events.DomainEvent, error) {
	j.mu.RLock()
	matched := make([]journalRecord, 0)
	for _, records := range j.byAggregate {
		for _, record := range records {
			if record.event.GetEventType() == eventType {
				matched = append(matched, record)
			}
		}
	}
	j.mu.RUnlock()

	// Newest first across aggregates
	sort.Slice(matched, func(a, b int) bool { return matched[a].seq > matched[b].seq })

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	result := make([]events.DomainEvent, 0, len(matched))
	for _, record := range matched {
		result = append(result, record.event)
	}
	return result, nil
}

// DeleteEvents removes all events for an aggregate
func (j *EventJournal) DeleteEvents(ctx context.Context, aggregateID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	delete(j.byAggregate, aggregateID)
	return nil
}
