package gestures

import (
	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/entities"
	"flowcanvas/domain/core/valueobjects"
	"flowcanvas/domain/geometry"
	pkgerrors "flowcanvas/pkg/errors"
)

type endpointDragPhase int

const (
	endpointDragIdle endpointDragPhase = iota
	endpointDragging
)

// EndpointDragResult reports how an endpoint drag ended: reattached to
// a node, or deleted because the drop missed every node.
type EndpointDragResult struct {
	ConnectorID string
	Reattached  bool
	Deleted     bool
	NodeID      string
	Side        valueobjects.Side
	Offset      float64
}

// EndpointDrag detaches one end of a connector and follows the
// pointer. Moves only update the preview; the model is untouched until
// End, which reattaches the end to the node under the drop point or
// deletes the connector when the drop lands on empty canvas.
type EndpointDrag struct {
	phase       endpointDragPhase
	connectorID string
	end         entities.ConnectorEnd
	// original anchor, kept so a future cancel path can restore it
	originalSide   valueobjects.Side
	originalOffset float64
	fixedPoint     valueobjects.Position
	pointer        valueobjects.Position
	skirt          float64
}

// Active reports whether an endpoint drag is in progress.
func (g *EndpointDrag) Active() bool {
	return g.phase == endpointDragging
}

// Begin detaches the given end of the connector for dragging. The
// opposite end stays fixed and anchors the preview line.
func (g *EndpointDrag) Begin(canvas *aggregates.Canvas, connectorID string, end entities.ConnectorEnd, pointer valueobjects.Position) error {
	if g.phase != endpointDragIdle {
		return pkgerrors.ErrGestureActive
	}
	if !end.Valid() {
		return pkgerrors.NewValidationError("invalid connector end: " + string(end))
	}

	connector, err := canvas.GetConnector(connectorID)
	if err != nil {
		return err
	}

	dragged := connector.Endpoint(end)
	g.phase = endpointDragging
	g.connectorID = connectorID
	g.end = end
	g.originalSide = dragged.Side()
	g.originalOffset = dragged.Offset()
	g.fixedPoint = connector.Endpoint(end.Opposite()).AbsolutePosition()
	g.pointer = pointer
	g.skirt = canvas.Config().SkirtPadding
	return nil
}

// Move advances the preview to the pointer. No model mutation happens
// here; the connector still renders from its stored endpoints until the
// gesture resolves.
func (g *EndpointDrag) Move(pointer valueobjects.Position) error {
	if g.phase != endpointDragging {
		return pkgerrors.ErrGestureNotActive
	}
	g.pointer = pointer
	return nil
}

// PreviewLine returns the line to render while dragging: from the
// fixed end's absolute position to the live pointer.
func (g *EndpointDrag) PreviewLine() (from, to valueobjects.Position, ok bool) {
	if g.phase != endpointDragging {
		return valueobjects.Position{}, valueobjects.Position{}, false
	}
	return g.fixedPoint, g.pointer, true
}

// End resolves the drag. A drop inside any node's padded bounds
// reattaches the dragged end to that node, with the side and offset
// derived from the drop point; a drop on empty canvas deletes the
// connector outright.
func (g *EndpointDrag) End(canvas *aggregates.Canvas, pointer valueobjects.Position) (EndpointDragResult, error) {
	if g.phase != endpointDragging {
		return EndpointDragResult{}, pkgerrors.ErrGestureNotActive
	}

	result := EndpointDragResult{ConnectorID: g.connectorID}

	node, hit := canvas.NodeAtPointPadded(pointer, g.skirt)
	if !hit {
		if err := canvas.RemoveConnector(g.connectorID); err != nil {
			g.reset()
			return EndpointDragResult{}, err
		}
		g.reset()
		result.Deleted = true
		return result, nil
	}

	side, offset := geometry.AnchorFromPoint(node.Position(), node.Size(), pointer)
	if err := canvas.UpdateConnectorEndpoint(g.connectorID, g.end, node.ID(), side, offset); err != nil {
		g.reset()
		return EndpointDragResult{}, err
	}

	// A zero-distance move recomputes every endpoint anchored to the
	// node, including the one just reattached.
	if err := canvas.MoveNode(node.ID(), node.Position()); err != nil {
		g.reset()
		return EndpointDragResult{}, err
	}
	canvas.PushHistory()

	g.reset()
	result.Reattached = true
	result.NodeID = node.ID()
	result.Side = side
	result.Offset = offset
	return result, nil
}

func (g *EndpointDrag) reset() {
	*g = EndpointDrag{}
}
