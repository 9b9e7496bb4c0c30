package events

import (
	"time"

	"flowcanvas/domain/core/valueobjects"
)

// Canvas Events

// CanvasCreated is raised when a new canvas is created
type CanvasCreated struct {
	BaseEvent
	CanvasID string `json:"canvas_id"`
	Name     string `json:"name"`
}

// NewCanvasCreated creates a CanvasCreated event
func NewCanvasCreated(canvasID, name string, timestamp time.Time) CanvasCreated {
	return CanvasCreated{
		BaseEvent: newBaseEvent(canvasID, "canvas.created", timestamp),
		CanvasID:  canvasID,
		Name:      name,
	}
}

// CanvasRestored is raised when the canvas state is replaced from a history
// snapshot by undo or redo
type CanvasRestored struct {
	BaseEvent
	CanvasID     string `json:"canvas_id"`
	Direction    string `json:"direction"`
	HistoryIndex int    `json:"history_index"`
}

// NewCanvasRestored creates a CanvasRestored event
func NewCanvasRestored(canvasID, direction string, historyIndex int, timestamp time.Time) CanvasRestored {
	return CanvasRestored{
		BaseEvent:    newBaseEvent(canvasID, "canvas.restored", timestamp),
		CanvasID:     canvasID,
		Direction:    direction,
		HistoryIndex: historyIndex,
	}
}

// CanvasImported is raised when the canvas state is replaced from a
// serialized document
type CanvasImported struct {
	BaseEvent
	CanvasID       string `json:"canvas_id"`
	NodeCount      int    `json:"node_count"`
	ConnectorCount int    `json:"connector_count"`
}

// NewCanvasImported creates a CanvasImported event
func NewCanvasImported(canvasID string, nodeCount, connectorCount int, timestamp time.Time) CanvasImported {
	return CanvasImported{
		BaseEvent:      newBaseEvent(canvasID, "canvas.imported", timestamp),
		CanvasID:       canvasID,
		NodeCount:      nodeCount,
		ConnectorCount: connectorCount,
	}
}

// Node Events

// NodeAdded is raised when a node is placed on the canvas
type NodeAdded struct {
	BaseEvent
	NodeID   string                `json:"node_id"`
	Kind     string                `json:"kind"`
	Position valueobjects.Position `json:"position"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(canvasID, nodeID, kind string, position valueobjects.Position, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: newBaseEvent(canvasID, "node.added", timestamp),
		NodeID:    nodeID,
		Kind:      kind,
		Position:  position,
	}
}

// NodeRemoved is raised when a node is deleted along with its attached
// connectors
type NodeRemoved struct {
	BaseEvent
	NodeID             string   `json:"node_id"`
	CascadedConnectors []string `json:"cascaded_connectors"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(canvasID, nodeID string, cascaded []string, timestamp time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent:          newBaseEvent(canvasID, "node.removed", timestamp),
		NodeID:             nodeID,
		CascadedConnectors: cascaded,
	}
}

// NodeMoved is raised when a node is moved to a new position
type NodeMoved struct {
	BaseEvent
	NodeID      string                `json:"node_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(canvasID, nodeID string, oldPos, newPos valueobjects.Position, timestamp time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent:   newBaseEvent(canvasID, "node.moved", timestamp),
		NodeID:      nodeID,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// NodeUpdated is raised when a node's presentation fields change
type NodeUpdated struct {
	BaseEvent
	NodeID        string   `json:"node_id"`
	ChangedFields []string `json:"changed_fields"`
}

// NewNodeUpdated creates a NodeUpdated event
func NewNodeUpdated(canvasID, nodeID string, changedFields []string, timestamp time.Time) NodeUpdated {
	return NodeUpdated{
		BaseEvent:     newBaseEvent(canvasID, "node.updated", timestamp),
		NodeID:        nodeID,
		ChangedFields: changedFields,
	}
}

// NodeRenamed is raised when a node's identifier is migrated
type NodeRenamed struct {
	BaseEvent
	OldID string `json:"old_id"`
	NewID string `json:"new_id"`
}

// NewNodeRenamed creates a NodeRenamed event
func NewNodeRenamed(canvasID, oldID, newID string, timestamp time.Time) NodeRenamed {
	return NodeRenamed{
		BaseEvent: newBaseEvent(canvasID, "node.renamed", timestamp),
		OldID:     oldID,
		NewID:     newID,
	}
}

// Connector Events

// ConnectorAdded is raised when two nodes are wired together
type ConnectorAdded struct {
	BaseEvent
	ConnectorID string `json:"connector_id"`
	StartNodeID string `json:"start_node_id"`
	EndNodeID   string `json:"end_node_id"`
	StartSide   string `json:"start_side"`
	EndSide     string `json:"end_side"`
}

// NewConnectorAdded creates a ConnectorAdded event
func NewConnectorAdded(canvasID, connectorID, startNodeID, endNodeID, startSide, endSide string, timestamp time.Time) ConnectorAdded {
	return ConnectorAdded{
		BaseEvent:   newBaseEvent(canvasID, "connector.added", timestamp),
		ConnectorID: connectorID,
		StartNodeID: startNodeID,
		EndNodeID:   endNodeID,
		StartSide:   startSide,
		EndSide:     endSide,
	}
}

// ConnectorRemoved is raised when a connector is deleted
type ConnectorRemoved struct {
	BaseEvent
	ConnectorID string `json:"connector_id"`
	StartNodeID string `json:"start_node_id"`
	EndNodeID   string `json:"end_node_id"`
}

// NewConnectorRemoved creates a ConnectorRemoved event
func NewConnectorRemoved(canvasID, connectorID, startNodeID, endNodeID string, timestamp time.Time) ConnectorRemoved {
	return ConnectorRemoved{
		BaseEvent:   newBaseEvent(canvasID, "connector.removed", timestamp),
		ConnectorID: connectorID,
		StartNodeID: startNodeID,
		EndNodeID:   endNodeID,
	}
}

// ConnectorRerouted is raised when one end of a connector is reattached to
// a different node or anchor
type ConnectorRerouted struct {
	BaseEvent
	ConnectorID string `json:"connector_id"`
	End         string `json:"end"`
	OldNodeID   string `json:"old_node_id"`
	NewNodeID   string `json:"new_node_id"`
	NewSide     string `json:"new_side"`
}

// NewConnectorRerouted creates a ConnectorRerouted event
func NewConnectorRerouted(canvasID, connectorID, end, oldNodeID, newNodeID, newSide string, timestamp time.Time) ConnectorRerouted {
	return ConnectorRerouted{
		BaseEvent:   newBaseEvent(canvasID, "connector.rerouted", timestamp),
		ConnectorID: connectorID,
		End:         end,
		OldNodeID:   oldNodeID,
		NewNodeID:   newNodeID,
		NewSide:     newSide,
	}
}

// ConnectorUpdated is raised when a connector's presentation fields change
type ConnectorUpdated struct {
	BaseEvent
	ConnectorID   string   `json:"connector_id"`
	ChangedFields []string `json:"changed_fields"`
}

// NewConnectorUpdated creates a ConnectorUpdated event
func NewConnectorUpdated(canvasID, connectorID string, changedFields []string, timestamp time.Time) ConnectorUpdated {
	return ConnectorUpdated{
		BaseEvent:     newBaseEvent(canvasID, "connector.updated", timestamp),
		ConnectorID:   connectorID,
		ChangedFields: changedFields,
	}
}

// ConnectorRenamed is raised when a connector's identifier is migrated
type ConnectorRenamed struct {
	BaseEvent
	OldID string `json:"old_id"`
	NewID string `json:"new_id"`
}

// NewConnectorRenamed creates a ConnectorRenamed event
func NewConnectorRenamed(canvasID, oldID, newID string, timestamp time.Time) ConnectorRenamed {
	return ConnectorRenamed{
		BaseEvent: newBaseEvent(canvasID, "connector.renamed", timestamp),
		OldID:     oldID,
		NewID:     newID,
	}
}

// Selection and Overlay Events

// SelectionChanged is raised when the set of selected elements changes
type SelectionChanged struct {
	BaseEvent
	Selected []string `json:"selected"`
}

// NewSelectionChanged creates a SelectionChanged event
func NewSelectionChanged(canvasID string, selected []string, timestamp time.Time) SelectionChanged {
	return SelectionChanged{
		BaseEvent: newBaseEvent(canvasID, "selection.changed", timestamp),
		Selected:  selected,
	}
}

// LogOverlayApplied is raised when parsed log actions are projected onto
// the canvas
type LogOverlayApplied struct {
	BaseEvent
	EntryCount  int `json:"entry_count"`
	TargetCount int `json:"target_count"`
}

// NewLogOverlayApplied creates a LogOverlayApplied event
func NewLogOverlayApplied(canvasID string, entryCount, targetCount int, timestamp time.Time) LogOverlayApplied {
	return LogOverlayApplied{
		BaseEvent:   newBaseEvent(canvasID, "overlay.applied", timestamp),
		EntryCount:  entryCount,
		TargetCount: targetCount,
	}
}

// OverlaysCleared is raised when all highlight and annotation overlays are
// removed
type OverlaysCleared struct {
	BaseEvent
}

// NewOverlaysCleared creates an OverlaysCleared event
func NewOverlaysCleared(canvasID string, timestamp time.Time) OverlaysCleared {
	return OverlaysCleared{
		BaseEvent: newBaseEvent(canvasID, "overlay.cleared", timestamp),
	}
}
