package entities

import (
	"encoding/json"
	"time"

	"flowcanvas/domain/core/valueobjects"
	pkgerrors "flowcanvas/pkg/errors"
)

// ConnectorEnd names one of a connector's two attachment points
type ConnectorEnd string

const (
	EndStart ConnectorEnd = "start"
	EndEnd   ConnectorEnd = "end"
)

// Valid reports whether the value is one of the two defined ends
func (e ConnectorEnd) Valid() bool {
	return e == EndStart || e == EndEnd
}

// Opposite returns the other end
func (e ConnectorEnd) Opposite() ConnectorEnd {
	if e == EndStart {
		return EndEnd
	}
	return EndStart
}

// Connector is a line between two node anchors. Both ends always reference
// nodes that exist on the owning canvas; the canvas enforces that, not the
// connector itself.
type Connector struct {
	id        string
	kind      valueobjects.ConnectorKind
	start     valueobjects.ConnectionPoint
	end       valueobjects.ConnectionPoint
	label     string
	style     valueobjects.ConnectorStyle
	selected  bool
	createdAt time.Time
	updatedAt time.Time
	version   int
}

// NewConnector creates a connector between two anchors with validation
func NewConnector(id string, kind valueobjects.ConnectorKind, start, end valueobjects.ConnectionPoint) (*Connector, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("connector id cannot be empty")
	}

	if kind == "" {
		kind = valueobjects.ConnectorKindStraight
	}
	if !kind.Valid() {
		return nil, pkgerrors.NewValidationError("invalid connector kind: " + string(kind))
	}

	if start.NodeID() == "" || end.NodeID() == "" {
		return nil, pkgerrors.ErrDanglingEndpoint
	}

	now := time.Now()
	return &Connector{
		id:        id,
		kind:      kind,
		start:     start,
		end:       end,
		style:     valueobjects.DefaultConnectorStyle(),
		createdAt: now,
		updatedAt: now,
		version:   1,
	}, nil
}

// ReconstructConnector rebuilds a connector from stored data
func ReconstructConnector(
	id string,
	kind valueobjects.ConnectorKind,
	start, end valueobjects.ConnectionPoint,
	label string,
	style valueobjects.ConnectorStyle,
	selected bool,
	createdAt, updatedAt time.Time,
) (*Connector, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("connector id cannot be empty")
	}
	if !kind.Valid() {
		return nil, pkgerrors.NewValidationError("invalid connector kind: " + string(kind))
	}
	if start.NodeID() == "" || end.NodeID() == "" {
		return nil, pkgerrors.ErrDanglingEndpoint
	}

	return &Connector{
		id:        id,
		kind:      kind,
		start:     start,
		end:       end,
		label:     label,
		style:     style,
		selected:  selected,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   1,
	}, nil
}

// ID returns the connector's identifier
func (c *Connector) ID() string {
	return c.id
}

// Kind returns the connector's routing style
func (c *Connector) Kind() valueobjects.ConnectorKind {
	return c.kind
}

// StartPoint returns the start anchor
func (c *Connector) StartPoint() valueobjects.ConnectionPoint {
	return c.start
}

// EndPoint returns the end anchor
func (c *Connector) EndPoint() valueobjects.ConnectionPoint {
	return c.end
}

// Endpoint returns the anchor for the named end
func (c *Connector) Endpoint(end ConnectorEnd) valueobjects.ConnectionPoint {
	if end == EndStart {
		return c.start
	}
	return c.end
}

// Label returns the connector's label
func (c *Connector) Label() string {
	return c.label
}

// Style returns a copy of the connector's style
func (c *Connector) Style() valueobjects.ConnectorStyle {
	return c.style.Clone()
}

// Selected reports whether the connector is part of the current selection
func (c *Connector) Selected() bool {
	return c.selected
}

// CreatedAt returns when the connector was created
func (c *Connector) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the connector was last updated
func (c *Connector) UpdatedAt() time.Time {
	return c.updatedAt
}

// Version returns the connector's mutation counter
func (c *Connector) Version() int {
	return c.version
}

// UpdateEndpoint replaces the anchor for the named end
func (c *Connector) UpdateEndpoint(end ConnectorEnd, point valueobjects.ConnectionPoint) error {
	if !end.Valid() {
		return pkgerrors.NewValidationError("invalid connector end: " + string(end))
	}
	if point.NodeID() == "" {
		return pkgerrors.ErrDanglingEndpoint
	}

	if end == EndStart {
		c.start = point
	} else {
		c.end = point
	}
	c.touch()
	return nil
}

// SetEndpointAbsolute writes the cached canvas coordinates for one end.
// Derived data only: it does not bump the mutation counter.
func (c *Connector) SetEndpointAbsolute(end ConnectorEnd, pos valueobjects.Position) {
	if end == EndStart {
		c.start = c.start.WithAbsolutePosition(pos)
	} else {
		c.end = c.end.WithAbsolutePosition(pos)
	}
}

// RetargetEndpoint rewrites the node reference on any end currently
// attached to oldID. Used when a node's identifier is migrated.
func (c *Connector) RetargetEndpoint(oldID, newID string) bool {
	changed := false
	if c.start.NodeID() == oldID {
		c.start = c.start.WithNodeID(newID)
		changed = true
	}
	if c.end.NodeID() == oldID {
		c.end = c.end.WithNodeID(newID)
		changed = true
	}
	if changed {
		c.touch()
	}
	return changed
}

// UpdateLabel replaces the connector's label
func (c *Connector) UpdateLabel(label string) {
	if label == c.label {
		return
	}
	c.label = label
	c.touch()
}

// UpdateStyle replaces the connector's style
func (c *Connector) UpdateStyle(style valueobjects.ConnectorStyle) {
	if style.Equals(c.style) {
		return
	}
	c.style = style.Clone()
	c.touch()
}

// UpdateKind changes the connector's routing style
func (c *Connector) UpdateKind(kind valueobjects.ConnectorKind) error {
	if !kind.Valid() {
		return pkgerrors.NewValidationError("invalid connector kind: " + string(kind))
	}
	if kind == c.kind {
		return nil
	}
	c.kind = kind
	c.touch()
	return nil
}

// Select marks the connector as selected
func (c *Connector) Select() {
	c.selected = true
}

// Deselect removes the connector from the selection
func (c *Connector) Deselect() {
	c.selected = false
}

// Rename changes the connector's identifier
func (c *Connector) Rename(newID string) error {
	if newID == "" {
		return pkgerrors.NewValidationError("connector id cannot be empty")
	}
	if newID == c.id {
		return nil
	}
	c.id = newID
	c.touch()
	return nil
}

// IsConnectedToNode reports whether either end references the given node
func (c *Connector) IsConnectedToNode(nodeID string) bool {
	return c.start.NodeID() == nodeID || c.end.NodeID() == nodeID
}

// Clone returns a deep copy of the connector
func (c *Connector) Clone() *Connector {
	return &Connector{
		id:        c.id,
		kind:      c.kind,
		start:     c.start,
		end:       c.end,
		label:     c.label,
		style:     c.style.Clone(),
		selected:  c.selected,
		createdAt: c.createdAt,
		updatedAt: c.updatedAt,
		version:   c.version,
	}
}

func (c *Connector) touch() {
	c.updatedAt = time.Now()
	c.version++
}

type connectorJSON struct {
	ID       string                       `json:"id"`
	Kind     string                       `json:"kind"`
	Start    valueobjects.ConnectionPoint `json:"startPoint"`
	End      valueobjects.ConnectionPoint `json:"endPoint"`
	Label    string                       `json:"label,omitempty"`
	Style    *valueobjects.ConnectorStyle `json:"style,omitempty"`
	Selected bool                         `json:"selected,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (c *Connector) MarshalJSON() ([]byte, error) {
	style := c.style.Clone()
	return json.Marshal(connectorJSON{
		ID:       c.id,
		Kind:     string(c.kind),
		Start:    c.start,
		End:      c.end,
		Label:    c.label,
		Style:    &style,
		Selected: c.selected,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Connector) UnmarshalJSON(data []byte) error {
	var doc connectorJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	kind := valueobjects.ConnectorKind(doc.Kind)
	if doc.Kind == "" {
		kind = valueobjects.ConnectorKindStraight
	}

	style := valueobjects.DefaultConnectorStyle()
	if doc.Style != nil {
		style = doc.Style.Clone()
	}

	now := time.Now()
	rebuilt, err := ReconstructConnector(
		doc.ID,
		kind,
		doc.Start,
		doc.End,
		doc.Label,
		style,
		doc.Selected,
		now,
		now,
	)
	if err != nil {
		return err
	}

	*c = *rebuilt
	return nil
}
