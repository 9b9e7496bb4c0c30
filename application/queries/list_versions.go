package queries

import (
	"errors"
	"time"
)

// ListVersionsQuery lists the recorded checkpoints of a canvas
type ListVersionsQuery struct {
	CanvasID string `json:"canvas_id"`
}

// Validate validates the query
func (q ListVersionsQuery) Validate() error {
	if q.CanvasID == "" {
		return errors.New("canvasID is required")
	}
	return nil
}

// VersionSummary is the listing shape of a checkpoint, without the
// embedded document
type VersionSummary struct {
	Version        int       `json:"version"`
	Checksum       string    `json:"checksum"`
	NodeCount      int       `json:"node_count"`
	ConnectorCount int       `json:"connector_count"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
