package queries

import (
	"errors"
)

// ExportCanvasQuery serializes the canvas into its document form
type ExportCanvasQuery struct {
	CanvasID string `json:"canvas_id"`
}

// Validate checks required fields
func (q ExportCanvasQuery) Validate() error {
	if q.CanvasID == "" {
		return errors.New("canvasID is required")
	}
	return nil
}
