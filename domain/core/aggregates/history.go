package aggregates

import (
	"flowcanvas/domain/core/entities"
	"flowcanvas/domain/events"
	pkgerrors "flowcanvas/pkg/errors"
)

// snapshot is one undoable state: deep clones of the graph plus the
// insertion orders. Selection and overlays are deliberately excluded;
// selection is cleared on restore and overlays survive it.
type snapshot struct {
	nodes          map[string]*entities.Node
	connectors     map[string]*entities.Connector
	nodeOrder      []string
	connectorOrder []string
}

// history is a bounded stack of snapshots with a cursor. Eviction is FIFO:
// when the cap is hit the oldest entry is dropped and the cursor shifts
// down so redo bounds stay valid.
type history struct {
	snapshots []snapshot
	index     int
	limit     int
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = 50
	}
	return &history{
		snapshots: []snapshot{},
		index:     -1,
		limit:     limit,
	}
}

func (h *history) push(s snapshot) {
	// Any redo tail is discarded by a new mutation
	h.snapshots = h.snapshots[:h.index+1]
	h.snapshots = append(h.snapshots, s)
	h.index++

	if len(h.snapshots) > h.limit {
		h.snapshots = h.snapshots[1:]
		h.index--
	}
}

func (h *history) canUndo() bool {
	return h.index > 0
}

func (h *history) canRedo() bool {
	return h.index < len(h.snapshots)-1
}

func (h *history) length() int {
	return len(h.snapshots)
}

// pushSnapshot captures the current graph state onto the history stack
func (c *Canvas) pushSnapshot() {
	c.history.push(c.captureSnapshot())
}

// PushHistory captures the current graph state as an undoable commit
// point. Gesture handlers call this once per completed gesture instead of
// snapshotting every intermediate move frame.
func (c *Canvas) PushHistory() {
	c.pushSnapshot()
}

// CanUndo reports whether an older history entry exists
func (c *Canvas) CanUndo() bool {
	return c.history.canUndo()
}

// CanRedo reports whether a newer history entry exists
func (c *Canvas) CanRedo() bool {
	return c.history.canRedo()
}

// HistoryIndex returns the current history cursor
func (c *Canvas) HistoryIndex() int {
	return c.history.index
}

// HistoryLength returns the number of retained history entries
func (c *Canvas) HistoryLength() int {
	return c.history.length()
}

// Undo restores the previous history entry and clears the selection.
// Fails without mutation when already at the oldest entry.
func (c *Canvas) Undo() error {
	if !c.history.canUndo() {
		return pkgerrors.ErrNothingToUndo
	}

	c.history.index--
	c.restoreSnapshot(c.history.snapshots[c.history.index])

	c.touch()
	c.addEvent(events.NewCanvasRestored(c.id.String(), "undo", c.history.index, c.updatedAt))

	return nil
}

// Redo restores the next history entry and clears the selection. Fails
// without mutation when already at the newest entry.
func (c *Canvas) Redo() error {
	if !c.history.canRedo() {
		return pkgerrors.ErrNothingToRedo
	}

	c.history.index++
	c.restoreSnapshot(c.history.snapshots[c.history.index])

	c.touch()
	c.addEvent(events.NewCanvasRestored(c.id.String(), "redo", c.history.index, c.updatedAt))

	return nil
}

// captureSnapshot deep-clones the graph so later mutations cannot reach
// into stored history entries
func (c *Canvas) captureSnapshot() snapshot {
	return snapshot{
		nodes:          cloneNodeMap(c.nodes),
		connectors:     cloneConnectorMap(c.connectors),
		nodeOrder:      cloneOrder(c.nodeOrder),
		connectorOrder: cloneOrder(c.connectorOrder),
	}
}

// restoreSnapshot replaces the live graph with a deep clone of the stored
// entry (cloned again so the entry itself stays pristine) and clears the
// selection; selection is not preserved across undo/redo.
func (c *Canvas) restoreSnapshot(s snapshot) {
	c.nodes = cloneNodeMap(s.nodes)
	c.connectors = cloneConnectorMap(s.connectors)
	c.nodeOrder = cloneOrder(s.nodeOrder)
	c.connectorOrder = cloneOrder(s.connectorOrder)

	c.selectedNodes = make(map[string]bool)
	c.selectedConnectors = make(map[string]bool)
	for _, node := range c.nodes {
		node.Deselect()
	}
	for _, conn := range c.connectors {
		conn.Deselect()
	}
}

func cloneNodeMap(src map[string]*entities.Node) map[string]*entities.Node {
	dst := make(map[string]*entities.Node, len(src))
	for id, node := range src {
		dst[id] = node.Clone()
	}
	return dst
}

func cloneConnectorMap(src map[string]*entities.Connector) map[string]*entities.Connector {
	dst := make(map[string]*entities.Connector, len(src))
	for id, conn := range src {
		dst[id] = conn.Clone()
	}
	return dst
}

func cloneOrder(src []string) []string {
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}
