package queries

import (
	"errors"
)

// GetNodeQuery fetches one node's read model
type GetNodeQuery struct {
	CanvasID string `json:"canvas_id"`
	NodeID   string `json:"node_id"`
}

// Validate validates the GetNodeQuery
func (q GetNodeQuery) Validate() error {
	if q.CanvasID == "" {
		return errors.New("canvasID is required")
	}
	if q.NodeID == "" {
		return errors.New("nodeID is required")
	}
	return nil
}

// GetConnectorsQuery fetches connector read models, optionally only the
// ones attached to a node
type GetConnectorsQuery struct {
	CanvasID string `json:"canvas_id"`
	NodeID   string `json:"node_id,omitempty"`
}

// Validate validates the query
func (q GetConnectorsQuery) Validate() error {
	if q.CanvasID == "" {
		return errors.New("canvasID is required")
	}
	return nil
}

// HitTestQuery resolves which element sits under a canvas-space point
type HitTestQuery struct {
	CanvasID string  `json:"canvas_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Padded   bool    `json:"padded,omitempty"`
}

// Validate validates the query
func (q HitTestQuery) Validate() error {
	if q.CanvasID == "" {
		return errors.New("canvasID is required")
	}
	return nil
}

// Hit kinds reported by HitTestResult
const (
	HitNone              = "none"
	HitNode              = "node"
	HitConnectorEndpoint = "connector_endpoint"
)

// HitTestResult names the element under the point, if any
type HitTestResult struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	End  string `json:"end,omitempty"`
}
