package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/domain/core/valueobjects"
	"flowcanvas/domain/events"
)

func TestEventJournal_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	journal := NewEventJournal(0)
	now := time.Now()

	batch := []events.DomainEvent{
		events.NewCanvasCreated("canvas-1", "Canvas", now),
		events.NewNodeAdded("canvas-1", "n1", "rectangle", valueobjects.Position{X: 10, Y: 10}, now),
		events.NewNodeMoved("canvas-1", "n1",
			valueobjects.Position{X: 10, Y: 10}, valueobjects.Position{X: 50, Y: 50}, now),
	}
	require.NoError(t, journal.SaveEvents(ctx, batch))

	stored, err := journal.GetEvents(ctx, "canvas-1")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "canvas.created", stored[0].GetEventType())
	assert.Equal(t, "node.added", stored[1].GetEventType())
	assert.Equal(t, "node.moved", stored[2].GetEventType())

	other, err := journal.GetEvents(ctx, "canvas-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestEventJournal_GetEventsByType(t *testing.T) {
	ctx := context.Background()
	journal := NewEventJournal(0)
	now := time.Now()

	require.NoError(t, journal.SaveEvents(ctx, []events.DomainEvent{
		events.NewNodeAdded("canvas-1", "n1", "rectangle", valueobjects.Position{X: 10, Y: 10}, now),
		events.NewCanvasCreated("canvas-2", "Other", now),
		events.NewNodeAdded("canvas-2", "n2", "circle", valueobjects.Position{X: 20, Y: 20}, now),
		events.NewNodeAdded("canvas-1", "n3", "diamond", valueobjects.Position{X: 30, Y: 30}, now),
	}))

	matched, err := journal.GetEventsByType(ctx, "node.added", 0)
	require.NoError(t, err)
	require.Len(t, matched, 3)

	// Newest first across canvases
	assert.Equal(t, "canvas-1", matched[0].GetAggregateID())
	assert.Equal(t, "canvas-2", matched[1].GetAggregateID())
	assert.Equal(t, "canvas-1", matched[2].GetAggregateID())

	limited, err := journal.GetEventsByType(ctx, "node.added", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "canvas-1", limited[0].GetAggregateID())
	assert.Equal(t, "canvas-2", limited[1].GetAggregateID())

	none, err := journal.GetEventsByType(ctx, "node.removed", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEventJournal_RetentionCap(t *testing.T) {
	ctx := context.Background()
	journal := NewEventJournal(2)
	now := time.Now()

	require.NoError(t, journal.SaveEvents(ctx, []events.DomainEvent{
		events.NewCanvasCreated("canvas-1", "Canvas", now),
		events.NewNodeAdded("canvas-1", "n1", "rectangle", valueobjects.Position{X: 10, Y: 10}, now),
		events.NewNodeAdded("canvas-1", "n2", "rectangle", valueobjects.Position{X: 20, Y: 20}, now),
	}))

	stored, err := journal.GetEvents(ctx, "canvas-1")
	require.NoError(t, err)
	require.Len(t, stored, 2)

	// The oldest entry fell off
	assert.Equal(t, "node.added", stored[0].GetEventType())
	assert.Equal(t, "node.added", stored[1].GetEventType())
}

func TestEventJournal_DeleteEvents(t *testing.T) {
	ctx := context.Background()
	journal := NewEventJournal(0)
	now := time.Now()

	require.NoError(t, journal.SaveEvents(ctx, []events.DomainEvent{
		events.NewCanvasCreated("canvas-1", "Canvas", now),
		events.NewCanvasCreated("canvas-2", "Other", now),
	}))

	require.NoError(t, journal.DeleteEvents(ctx, "canvas-1"))

	stored, err := journal.GetEvents(ctx, "canvas-1")
	require.NoError(t, err)
	assert.Empty(t, stored)

	kept, err := journal.GetEvents(ctx, "canvas-2")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestEventJournal_SaveEmptyBatch(t *testing.T) {
	journal := NewEventJournal(0)
	require.NoError(t, journal.SaveEvents(context.Background(), nil))
}
