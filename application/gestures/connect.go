package gestures

import (
	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/entities"
	"flowcanvas/domain/core/valueobjects"
	"flowcanvas/domain/geometry"
	pkgerrors "flowcanvas/pkg/errors"
)

type connectPhase int

const (
	connectIdle connectPhase = iota
	connecting
)

// ConnectResult reports how a connection-creation gesture ended. When
// no distinct node was under the drop point the gesture resolves as a
// no-op and Created stays false.
type ConnectResult struct {
	Created     bool
	ConnectorID string
	SourceID    string
	TargetID    string
}

// ConnectionCreate grows a new connector out of a node's skirt zone.
// Begin records the source node and the exact canvas position of the
// press; moves only advance the rubber-band preview. End materializes
// the connector when the pointer drops on a distinct node, anchoring
// the start at the recorded press position and the end at the drop
// position.
type ConnectionCreate struct {
	phase        connectPhase
	sourceNodeID string
	startPos     valueobjects.Position
	pointer      valueobjects.Position
}

// Active reports whether a connection gesture is in progress.
func (g *ConnectionCreate) Active() bool {
	return g.phase == connecting
}

// Begin starts growing a connector from the given node. The press
// position is kept verbatim; the start anchor is derived from it only
// when the gesture commits.
func (g *ConnectionCreate) Begin(canvas *aggregates.Canvas, sourceNodeID string, pointer valueobjects.Position) error {
	if g.phase != connectIdle {
		return pkgerrors.ErrGestureActive
	}
	if _, err := canvas.GetNode(sourceNodeID); err != nil {
		return err
	}

	g.phase = connecting
	g.sourceNodeID = sourceNodeID
	g.startPos = pointer
	g.pointer = pointer
	return nil
}

// Move advances the preview endpoint to the pointer.
func (g *ConnectionCreate) Move(pointer valueobjects.Position) error {
	if g.phase != connecting {
		return pkgerrors.ErrGestureNotActive
	}
	g.pointer = pointer
	return nil
}

// PreviewLine returns the rubber-band line to render: from the press
// position to the live pointer.
func (g *ConnectionCreate) PreviewLine() (from, to valueobjects.Position, ok bool) {
	if g.phase != connecting {
		return valueobjects.Position{}, valueobjects.Position{}, false
	}
	return g.startPos, g.pointer, true
}

// End resolves the gesture. A drop on a node other than the source
// creates a connector between the two: sides and offsets come from the
// recorded press position on the source and the drop position on the
// target. Any other drop resolves as a no-op.
func (g *ConnectionCreate) End(canvas *aggregates.Canvas, pointer valueobjects.Position) (ConnectResult, error) {
	if g.phase != connecting {
		return ConnectResult{}, pkgerrors.ErrGestureNotActive
	}

	target, hit := canvas.NodeAtPoint(pointer)
	if !hit || target.ID() == g.sourceNodeID {
		g.reset()
		return ConnectResult{}, nil
	}

	source, err := canvas.GetNode(g.sourceNodeID)
	if err != nil {
		g.reset()
		return ConnectResult{}, err
	}

	startSide, startOffset := geometry.AnchorFromPoint(source.Position(), source.Size(), g.startPos)
	endSide, endOffset := geometry.AnchorFromPoint(target.Position(), target.Size(), pointer)

	connector, err := canvas.CreateConnector("", source.ID(), target.ID(), aggregates.ConnectorOptions{
		StartSide: startSide,
		EndSide:   endSide,
	})
	if err != nil {
		g.reset()
		return ConnectResult{}, err
	}

	// CreateConnector anchors both ends at the side midpoints; replace
	// them with the precise press- and drop-derived offsets.
	if err := canvas.UpdateConnectorEndpoint(connector.ID(), entities.EndStart, source.ID(), startSide, startOffset); err != nil {
		g.reset()
		return ConnectResult{}, err
	}
	if err := canvas.UpdateConnectorEndpoint(connector.ID(), entities.EndEnd, target.ID(), endSide, endOffset); err != nil {
		g.reset()
		return ConnectResult{}, err
	}

	// Zero-distance moves refresh the absolute endpoint positions on
	// both nodes after the overwrite.
	if err := canvas.MoveNode(source.ID(), source.Position()); err != nil {
		g.reset()
		return ConnectResult{}, err
	}
	if err := canvas.MoveNode(target.ID(), target.Position()); err != nil {
		g.reset()
		return ConnectResult{}, err
	}

	result := ConnectResult{
		Created:     true,
		ConnectorID: connector.ID(),
		SourceID:    source.ID(),
		TargetID:    target.ID(),
	}
	g.reset()
	return result, nil
}

// Cancel abandons the gesture without touching the model. It is part
// of the protocol for hosts that need an explicit escape hatch, for
// example on pointer capture loss.
func (g *ConnectionCreate) Cancel() {
	g.reset()
}

func (g *ConnectionCreate) reset() {
	*g = ConnectionCreate{}
}
