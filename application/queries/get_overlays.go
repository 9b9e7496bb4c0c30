package queries

import (
	"errors"
)

// GetOverlaysQuery fetches the current log overlay state
type GetOverlaysQuery struct {
	CanvasID string `json:"canvas_id"`
}

// Validate validates the query
func (q GetOverlaysQuery) Validate() error {
	if q.CanvasID == "" {
		return errors.New("canvasID is required")
	}
	return nil
}

// GetHistoryStatusQuery fetches undo/redo availability
type GetHistoryStatusQuery struct {
	CanvasID string `json:"canvas_id"`
}

// Validate validates the query
func (q GetHistoryStatusQuery) Validate() error {
	if q.CanvasID == "" {
		return errors.New("canvasID is required")
	}
	return nil
}
