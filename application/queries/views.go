package queries

import (
	"time"

	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/entities"
	"flowcanvas/domain/core/valueobjects"
)

// NodeView is the read-model shape of a node
type NodeView struct {
	ID          string                 `json:"id"`
	Kind        string                 `json:"kind"`
	X           float64                `json:"x"`
	Y           float64                `json:"y"`
	Width       float64                `json:"width"`
	Height      float64                `json:"height"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Color       string                 `json:"color,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Selected    bool                   `json:"selected"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// EndpointView is the read-model shape of one connector end
type EndpointView struct {
	NodeID string  `json:"node_id"`
	Side   string  `json:"side"`
	Offset float64 `json:"offset"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ConnectorView is the read-model shape of a connector
type ConnectorView struct {
	ID       string                      `json:"id"`
	Kind     string                      `json:"kind"`
	Start    EndpointView                `json:"start"`
	End      EndpointView                `json:"end"`
	Label    string                      `json:"label,omitempty"`
	Style    valueobjects.ConnectorStyle `json:"style"`
	Selected bool                        `json:"selected"`
}

// SelectionView lists the selected element ids in selection order
type SelectionView struct {
	NodeIDs      []string `json:"node_ids"`
	ConnectorIDs []string `json:"connector_ids"`
}

// HistoryStatusView reports undo/redo availability
type HistoryStatusView struct {
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
	Index   int  `json:"index"`
	Length  int  `json:"length"`
}

// HighlightView is the read-model shape of one overlay highlight
type HighlightView struct {
	Color     string `json:"color"`
	Animation bool   `json:"animation"`
	Kind      string `json:"kind"`
}

// OverlayView carries the full log overlay state
type OverlayView struct {
	Highlights  map[string]HighlightView `json:"highlights"`
	Annotations map[string]string        `json:"annotations"`
}

// CanvasView is the full read model of a canvas
type CanvasView struct {
	ID         string                      `json:"id"`
	Name       string                      `json:"name"`
	Nodes      []NodeView                  `json:"nodes"`
	Connectors []ConnectorView             `json:"connectors"`
	Viewport   valueobjects.Viewport       `json:"viewport"`
	Settings   valueobjects.CanvasSettings `json:"settings"`
	Selection  SelectionView               `json:"selection"`
	History    HistoryStatusView           `json:"history"`
	Overlay    OverlayView                 `json:"overlay"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// NewNodeView maps a node entity to its read model
func NewNodeView(node *entities.Node) NodeView {
	pos := node.Position()
	size := node.Size()
	return NodeView{
		ID:          node.ID(),
		Kind:        string(node.Kind()),
		X:           pos.X,
		Y:           pos.Y,
		Width:       size.Width,
		Height:      size.Height,
		Title:       node.Title(),
		Description: node.Description(),
		Color:       node.Color(),
		Metadata:    node.Metadata(),
		Selected:    node.Selected(),
		UpdatedAt:   node.UpdatedAt(),
	}
}

// NewConnectorView maps a connector entity to its read model
func NewConnectorView(conn *entities.Connector) ConnectorView {
	return ConnectorView{
		ID:       conn.ID(),
		Kind:     string(conn.Kind()),
		Start:    newEndpointView(conn.StartPoint()),
		End:      newEndpointView(conn.EndPoint()),
		Label:    conn.Label(),
		Style:    conn.Style(),
		Selected: conn.Selected(),
	}
}

func newEndpointView(point valueobjects.ConnectionPoint) EndpointView {
	abs := point.AbsolutePosition()
	return EndpointView{
		NodeID: point.NodeID(),
		Side:   point.Side().String(),
		Offset: point.Offset(),
		X:      abs.X,
		Y:      abs.Y,
	}
}

// NewOverlayView maps the canvas overlay maps to their read model
func NewOverlayView(canvas *aggregates.Canvas) OverlayView {
	highlights := canvas.LogHighlights()
	view := OverlayView{
		Highlights:  make(map[string]HighlightView, len(highlights)),
		Annotations: canvas.LogAnnotations(),
	}
	for id, style := range highlights {
		view.Highlights[id] = HighlightView{
			Color:     style.Color,
			Animation: style.Animation,
			Kind:      string(style.Kind),
		}
	}
	return view
}

// NewHistoryStatusView maps undo/redo state to its read model
func NewHistoryStatusView(canvas *aggregates.Canvas) HistoryStatusView {
	return HistoryStatusView{
		CanUndo: canvas.CanUndo(),
		CanRedo: canvas.CanRedo(),
		Index:   canvas.HistoryIndex(),
		Length:  canvas.HistoryLength(),
	}
}

// NewCanvasView maps a full canvas aggregate to its read model
func NewCanvasView(canvas *aggregates.Canvas) *CanvasView {
	nodes := canvas.GetAllNodes()
	connectors := canvas.GetAllConnectors()

	view := &CanvasView{
		ID:         canvas.ID().String(),
		Name:       canvas.Name(),
		Nodes:      make([]NodeView, 0, len(nodes)),
		Connectors: make([]ConnectorView, 0, len(connectors)),
		Viewport:   canvas.Viewport(),
		Settings:   canvas.Settings(),
		Selection: SelectionView{
			NodeIDs:      canvas.SelectedNodeIDs(),
			ConnectorIDs: canvas.SelectedConnectorIDs(),
		},
		History:   NewHistoryStatusView(canvas),
		Overlay:   NewOverlayView(canvas),
		CreatedAt: canvas.CreatedAt(),
		UpdatedAt: canvas.UpdatedAt(),
	}

	for _, node := range nodes {
		view.Nodes = append(view.Nodes, NewNodeView(node))
	}
	for _, conn := range connectors {
		view.Connectors = append(view.Connectors, NewConnectorView(conn))
	}

	return view
}
