package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/application/queries"
)

// VersionQueryHandler serves queries over recorded canvas checkpoints
type VersionQueryHandler struct {
	versions ports.VersionStore
	logger   *zap.Logger
}

// NewVersionQueryHandler creates a new version query handler
func NewVersionQueryHandler(versions ports.VersionStore, logger *zap.Logger) *VersionQueryHandler {
	return &VersionQueryHandler{
		versions: versions,
		logger:   logger,
	}
}

// HandleList executes the list versions query
func (h *VersionQueryHandler) HandleList(ctx context.Context, query queries.ListVersionsQuery) ([]queries.VersionSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	records, err := h.versions.List(ctx, query.CanvasID)
	if err != nil {
		return nil, err
	}

	summaries := make([]queries.VersionSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, queries.VersionSummary{
			Version:        record.Version,
			Checksum:       record.Checksum,
			NodeCount:      record.NodeCount,
			ConnectorCount: record.ConnectorCount,
			Description:    record.Description,
			CreatedAt:      record.CreatedAt,
		})
	}
	return summaries, nil
}
