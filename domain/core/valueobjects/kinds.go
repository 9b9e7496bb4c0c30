package valueobjects

import (
	"fmt"

	pkgerrors "flowcanvas/pkg/errors"
)

// NodeKind is the visual category of a node
type NodeKind string

const (
	NodeKindRectangle NodeKind = "rectangle"
	NodeKindCircle    NodeKind = "circle"
	NodeKindDiamond   NodeKind = "diamond"
	NodeKindText      NodeKind = "text"
)

// ParseNodeKind converts a string into a NodeKind
func ParseNodeKind(s string) (NodeKind, error) {
	switch NodeKind(s) {
	case NodeKindRectangle, NodeKindCircle, NodeKindDiamond, NodeKindText:
		return NodeKind(s), nil
	default:
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown node kind %q", s))
	}
}

// Valid reports whether the kind belongs to the closed set
func (k NodeKind) Valid() bool {
	switch k {
	case NodeKindRectangle, NodeKindCircle, NodeKindDiamond, NodeKindText:
		return true
	default:
		return false
	}
}

// ConnectorKind is the routing category of a connector
type ConnectorKind string

const (
	ConnectorKindStraight   ConnectorKind = "straight"
	ConnectorKindCurved     ConnectorKind = "curved"
	ConnectorKindOrthogonal ConnectorKind = "orthogonal"
	ConnectorKindBezier     ConnectorKind = "bezier"
)

// ParseConnectorKind converts a string into a ConnectorKind
func ParseConnectorKind(s string) (ConnectorKind, error) {
	switch ConnectorKind(s) {
	case ConnectorKindStraight, ConnectorKindCurved, ConnectorKindOrthogonal, ConnectorKindBezier:
		return ConnectorKind(s), nil
	default:
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown connector kind %q", s))
	}
}

// Valid reports whether the kind belongs to the closed set
func (k ConnectorKind) Valid() bool {
	switch k {
	case ConnectorKindStraight, ConnectorKindCurved, ConnectorKindOrthogonal, ConnectorKindBezier:
		return true
	default:
		return false
	}
}

// Concrete returns the kind whose rendering geometry actually exists.
// Orthogonal and bezier are declared but defer to straight.
func (k ConnectorKind) Concrete() ConnectorKind {
	switch k {
	case ConnectorKindStraight, ConnectorKindCurved:
		return k
	default:
		return ConnectorKindStraight
	}
}
