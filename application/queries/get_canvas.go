package queries

import (
	"errors"
	"fmt"
)

// GetCanvasQuery fetches the full read model of one canvas. Revision is
// optional; when set it scopes the cache key to that session revision.
type GetCanvasQuery struct {
	CanvasID string `json:"canvas_id"`
	Revision uint64 `json:"revision,omitempty"`
}

// Validate validates the query
func (q GetCanvasQuery) Validate() error {
	if q.CanvasID == "" {
		return errors.New("canvasID is required")
	}
	return nil
}

// CacheKey scopes cached views to the session revision
func (q GetCanvasQuery) CacheKey() string {
	return fmt.Sprintf("canvas:%s:rev:%d", q.CanvasID, q.Revision)
}

// ListCanvasesQuery lists all live canvas sessions
type ListCanvasesQuery struct{}

// Validate validates the query
func (q ListCanvasesQuery) Validate() error {
	return nil
}
