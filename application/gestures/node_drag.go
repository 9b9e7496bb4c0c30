package gestures

import (
	"math"

	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/valueobjects"
	pkgerrors "flowcanvas/pkg/errors"
)

type nodeDragPhase int

const (
	nodeDragIdle nodeDragPhase = iota
	nodeDragging
)

// NodeDragResult reports how a node drag ended. Exactly one of the two
// flags is set: Committed when the drag stands as a move, Deselected
// when a below-threshold press on an already-selected node was
// reinterpreted as a deselect click.
type NodeDragResult struct {
	NodeID     string
	Committed  bool
	Deselected bool
}

// NodeDrag tracks a pointer drag on a node body. Begin records the
// pointer and node origins, each Move repositions the node by the total
// displacement from those origins, and End either commits the move as
// one undo step or reinterprets the press as a deselect click.
type NodeDrag struct {
	phase         nodeDragPhase
	nodeID        string
	pointerOrigin valueobjects.Position
	nodeOrigin    valueobjects.Position
	wasSelected   bool
	maxDistance   float64
	threshold     float64
}

// Active reports whether a drag is in progress.
func (g *NodeDrag) Active() bool {
	return g.phase == nodeDragging
}

// Begin starts a drag on the given node and makes it the sole
// selection. Whether the node was already selected is captured first,
// so End can tell a deselect click apart from a fresh selection.
func (g *NodeDrag) Begin(canvas *aggregates.Canvas, nodeID string, pointer valueobjects.Position) error {
	if g.phase != nodeDragIdle {
		return pkgerrors.ErrGestureActive
	}

	node, err := canvas.GetNode(nodeID)
	if err != nil {
		return err
	}

	wasSelected := canvas.IsNodeSelected(nodeID)
	if err := canvas.SelectNode(nodeID, false); err != nil {
		return err
	}

	g.phase = nodeDragging
	g.nodeID = nodeID
	g.pointerOrigin = pointer
	g.nodeOrigin = node.Position()
	g.wasSelected = wasSelected
	g.maxDistance = 0
	g.threshold = canvas.Config().ClickDragThreshold
	return nil
}

// Move repositions the node by the pointer's total displacement since
// Begin. Each call targets the same origin, so moves are idempotent
// with respect to the accumulated delta and never compound.
func (g *NodeDrag) Move(canvas *aggregates.Canvas, pointer valueobjects.Position) error {
	if g.phase != nodeDragging {
		return pkgerrors.ErrGestureNotActive
	}

	g.trackDistance(pointer)
	return canvas.MoveNode(g.nodeID, valueobjects.Position{
		X: g.nodeOrigin.X + (pointer.X - g.pointerOrigin.X),
		Y: g.nodeOrigin.Y + (pointer.Y - g.pointerOrigin.Y),
	})
}

// End terminates the drag. A press that never travelled beyond the
// click threshold on a node that was already selected deselects it;
// every other outcome leaves the node where the last Move put it and
// records the drag as a single undo step.
func (g *NodeDrag) End(canvas *aggregates.Canvas, pointer valueobjects.Position) (NodeDragResult, error) {
	if g.phase != nodeDragging {
		return NodeDragResult{}, pkgerrors.ErrGestureNotActive
	}

	g.trackDistance(pointer)
	result := NodeDragResult{NodeID: g.nodeID}

	if g.maxDistance <= g.threshold && g.wasSelected {
		if err := canvas.DeselectNode(g.nodeID); err != nil {
			g.reset()
			return NodeDragResult{}, err
		}
		result.Deselected = true
	} else {
		canvas.PushHistory()
		result.Committed = true
	}

	g.reset()
	return result, nil
}

func (g *NodeDrag) trackDistance(pointer valueobjects.Position) {
	dx := pointer.X - g.pointerOrigin.X
	dy := pointer.Y - g.pointerOrigin.Y
	if d := math.Hypot(dx, dy); d > g.maxDistance {
		g.maxDistance = d
	}
}

func (g *NodeDrag) reset() {
	*g = NodeDrag{}
}
