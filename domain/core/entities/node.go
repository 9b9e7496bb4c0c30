package entities

import (
	"encoding/json"
	"time"

	"flowcanvas/domain/core/valueobjects"
	pkgerrors "flowcanvas/pkg/errors"
)

// Node is a box placed on the canvas. It is a rich domain model with
// encapsulated state; identifiers are caller-supplied and uniqueness is
// enforced by the owning canvas, not here.
type Node struct {
	// Private fields ensure encapsulation
	id          string
	kind        valueobjects.NodeKind
	position    valueobjects.Position
	size        valueobjects.Size
	title       string
	description string
	color       string
	metadata    map[string]interface{}
	selected    bool
	createdAt   time.Time
	updatedAt   time.Time
	version     int
}

// NewNode creates a new node with validation
func NewNode(id string, kind valueobjects.NodeKind, position valueobjects.Position, size valueobjects.Size, title string) (*Node, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}

	if kind == "" {
		kind = valueobjects.NodeKindRectangle
	}
	if !kind.Valid() {
		return nil, pkgerrors.NewValidationError("invalid node kind: " + string(kind))
	}

	if !position.Valid() {
		return nil, pkgerrors.ErrInvalidNodePosition
	}

	if !size.Valid() {
		return nil, pkgerrors.ErrInvalidNodeSize
	}

	now := time.Now()
	return &Node{
		id:        id,
		kind:      kind,
		position:  position,
		size:      size,
		title:     title,
		metadata:  make(map[string]interface{}),
		createdAt: now,
		updatedAt: now,
		version:   1,
	}, nil
}

// ReconstructNode rebuilds a node from stored data with preserved timestamps
func ReconstructNode(
	id string,
	kind valueobjects.NodeKind,
	position valueobjects.Position,
	size valueobjects.Size,
	title, description, color string,
	metadata map[string]interface{},
	selected bool,
	createdAt, updatedAt time.Time,
) (*Node, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if !kind.Valid() {
		return nil, pkgerrors.NewValidationError("invalid node kind: " + string(kind))
	}
	if !position.Valid() {
		return nil, pkgerrors.ErrInvalidNodePosition
	}
	if !size.Valid() {
		return nil, pkgerrors.ErrInvalidNodeSize
	}

	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &Node{
		id:          id,
		kind:        kind,
		position:    position,
		size:        size,
		title:       title,
		description: description,
		color:       color,
		metadata:    metadata,
		selected:    selected,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		version:     1,
	}, nil
}

// ID returns the node's identifier
func (n *Node) ID() string {
	return n.id
}

// Kind returns the node's visual shape
func (n *Node) Kind() valueobjects.NodeKind {
	return n.kind
}

// Position returns the node's top-left corner
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Size returns the node's dimensions
func (n *Node) Size() valueobjects.Size {
	return n.size
}

// Title returns the node's title
func (n *Node) Title() string {
	return n.title
}

// Description returns the node's description
func (n *Node) Description() string {
	return n.description
}

// Color returns the node's fill color, empty for the renderer default
func (n *Node) Color() string {
	return n.color
}

// Selected reports whether the node is part of the current selection
func (n *Node) Selected() bool {
	return n.selected
}

// Bounds returns the node's position and size together
func (n *Node) Bounds() (valueobjects.Position, valueobjects.Size) {
	return n.position, n.size
}

// Center returns the midpoint of the node's bounds
func (n *Node) Center() valueobjects.Position {
	return valueobjects.Position{
		X: n.position.X + n.size.Width/2,
		Y: n.position.Y + n.size.Height/2,
	}
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last updated
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// Version returns the node's mutation counter
func (n *Node) Version() int {
	return n.version
}

// MoveTo moves the node to a new position
func (n *Node) MoveTo(position valueobjects.Position) error {
	if !position.Valid() {
		return pkgerrors.ErrInvalidNodePosition
	}

	if position.Equals(n.position) {
		return nil // No movement needed
	}

	n.position = position
	n.touch()
	return nil
}

// Resize changes the node's dimensions
func (n *Node) Resize(size valueobjects.Size) error {
	if !size.Valid() {
		return pkgerrors.ErrInvalidNodeSize
	}

	if size.Equals(n.size) {
		return nil
	}

	n.size = size
	n.touch()
	return nil
}

// UpdateTitle replaces the node's title
func (n *Node) UpdateTitle(title string) {
	if title == n.title {
		return
	}
	n.title = title
	n.touch()
}

// UpdateDescription replaces the node's description
func (n *Node) UpdateDescription(description string) {
	if description == n.description {
		return
	}
	n.description = description
	n.touch()
}

// UpdateColor replaces the node's fill color
func (n *Node) UpdateColor(color string) {
	if color == n.color {
		return
	}
	n.color = color
	n.touch()
}

// UpdateKind changes the node's visual shape
func (n *Node) UpdateKind(kind valueobjects.NodeKind) error {
	if !kind.Valid() {
		return pkgerrors.NewValidationError("invalid node kind: " + string(kind))
	}
	if kind == n.kind {
		return nil
	}
	n.kind = kind
	n.touch()
	return nil
}

// SetMetadata stores an arbitrary key under the node's metadata
func (n *Node) SetMetadata(key string, value interface{}) error {
	if key == "" {
		return pkgerrors.NewValidationError("metadata key cannot be empty")
	}
	n.metadata[key] = value
	n.touch()
	return nil
}

// Metadata returns a copy of the node's metadata map
func (n *Node) Metadata() map[string]interface{} {
	// Return a copy to maintain encapsulation
	meta := make(map[string]interface{}, len(n.metadata))
	for k, v := range n.metadata {
		meta[k] = v
	}
	return meta
}

// Select marks the node as selected
func (n *Node) Select() {
	n.selected = true
}

// Deselect removes the node from the selection
func (n *Node) Deselect() {
	n.selected = false
}

// Rename changes the node's identifier. Uniqueness against the rest of the
// canvas is the caller's responsibility.
func (n *Node) Rename(newID string) error {
	if newID == "" {
		return pkgerrors.NewValidationError("node id cannot be empty")
	}
	if newID == n.id {
		return nil
	}
	n.id = newID
	n.touch()
	return nil
}

// Clone returns a deep copy of the node
func (n *Node) Clone() *Node {
	meta := make(map[string]interface{}, len(n.metadata))
	for k, v := range n.metadata {
		meta[k] = v
	}

	return &Node{
		id:          n.id,
		kind:        n.kind,
		position:    n.position,
		size:        n.size,
		title:       n.title,
		description: n.description,
		color:       n.color,
		metadata:    meta,
		selected:    n.selected,
		createdAt:   n.createdAt,
		updatedAt:   n.updatedAt,
		version:     n.version,
	}
}

func (n *Node) touch() {
	n.updatedAt = time.Now()
	n.version++
}

type nodeJSON struct {
	ID          string                 `json:"id"`
	Kind        string                 `json:"kind"`
	Position    valueobjects.Position  `json:"position"`
	Size        valueobjects.Size      `json:"size"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Color       string                 `json:"color,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Selected    bool                   `json:"selected,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (n *Node) MarshalJSON() ([]byte, error) {
	doc := nodeJSON{
		ID:          n.id,
		Kind:        string(n.kind),
		Position:    n.position,
		Size:        n.size,
		Title:       n.title,
		Description: n.description,
		Color:       n.color,
		Selected:    n.selected,
	}
	if len(n.metadata) > 0 {
		doc.Metadata = n.metadata
	}
	return json.Marshal(doc)
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Node) UnmarshalJSON(data []byte) error {
	var doc nodeJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	kind := valueobjects.NodeKind(doc.Kind)
	if doc.Kind == "" {
		kind = valueobjects.NodeKindRectangle
	}

	now := time.Now()
	rebuilt, err := ReconstructNode(
		doc.ID,
		kind,
		doc.Position,
		doc.Size,
		doc.Title,
		doc.Description,
		doc.Color,
		doc.Metadata,
		doc.Selected,
		now,
		now,
	)
	if err != nil {
		return err
	}

	*n = *rebuilt
	return nil
}
