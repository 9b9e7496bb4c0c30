package valueobjects

import (
	"encoding/json"

	pkgerrors "flowcanvas/pkg/errors"
)

// ConnectionPoint describes where a connector attaches to a node: a symbolic
// (side, offset) pair plus a cached absolute position. The symbolic pair is
// the source of truth; the absolute position is derived and refreshed by the
// canvas whenever the referenced node moves.
type ConnectionPoint struct {
	nodeID   string
	side     Side
	offset   float64
	absolute Position
}

// NewConnectionPoint creates a connection point with validation.
// offset is the normalized [0,1] scalar along the side (0 = one corner,
// 1 = the other).
func NewConnectionPoint(nodeID string, side Side, offset float64) (ConnectionPoint, error) {
	if nodeID == "" {
		return ConnectionPoint{}, pkgerrors.NewValidationError("connection point requires a node id")
	}
	if !side.Valid() {
		return ConnectionPoint{}, pkgerrors.NewValidationError("connection point requires a valid side")
	}
	if !isFinite(offset) || offset < 0 || offset > 1 {
		return ConnectionPoint{}, pkgerrors.ErrInvalidOffset
	}
	return ConnectionPoint{nodeID: nodeID, side: side, offset: offset}, nil
}

// NodeID returns the id of the node this point attaches to
func (c ConnectionPoint) NodeID() string {
	return c.nodeID
}

// Side returns which edge of the node the point lies on
func (c ConnectionPoint) Side() Side {
	return c.side
}

// Offset returns the normalized position along the side
func (c ConnectionPoint) Offset() float64 {
	return c.offset
}

// AbsolutePosition returns the cached canvas-space position
func (c ConnectionPoint) AbsolutePosition() Position {
	return c.absolute
}

// WithAbsolutePosition returns a copy carrying a refreshed cached position
func (c ConnectionPoint) WithAbsolutePosition(p Position) ConnectionPoint {
	c.absolute = p
	return c
}

// WithNodeID returns a copy attached to a different node id, keeping the
// symbolic side/offset. Used when a node is renamed.
func (c ConnectionPoint) WithNodeID(nodeID string) ConnectionPoint {
	c.nodeID = nodeID
	return c
}

// Equals compares the symbolic descriptor (the cached position is ignored)
func (c ConnectionPoint) Equals(other ConnectionPoint) bool {
	const epsilon = 1e-9
	return c.nodeID == other.nodeID &&
		c.side == other.side &&
		abs(c.offset-other.offset) < epsilon
}

// connectionPointJSON is the wire shape of a connection point
type connectionPointJSON struct {
	NodeID           string    `json:"nodeId"`
	Side             Side      `json:"side"`
	Offset           float64   `json:"offset"`
	AbsolutePosition *Position `json:"absolutePosition,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (c ConnectionPoint) MarshalJSON() ([]byte, error) {
	doc := connectionPointJSON{
		NodeID: c.nodeID,
		Side:   c.side,
		Offset: c.offset,
	}
	abs := c.absolute
	doc.AbsolutePosition = &abs
	return json.Marshal(doc)
}

// UnmarshalJSON implements json.Unmarshaler
func (c *ConnectionPoint) UnmarshalJSON(data []byte) error {
	var doc connectionPointJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	cp, err := NewConnectionPoint(doc.NodeID, doc.Side, doc.Offset)
	if err != nil {
		return err
	}
	if doc.AbsolutePosition != nil {
		cp = cp.WithAbsolutePosition(*doc.AbsolutePosition)
	}
	*c = cp
	return nil
}
