package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/application/queries"
)

// defaultLogLimit bounds unqualified log listings
const defaultLogLimit = 100

// LogQueryHandler serves queries over the watched log stream
type LogQueryHandler struct {
	source ports.LogSource
	logger *zap.Logger
}

// NewLogQueryHandler creates a new log query handler
func NewLogQueryHandler(source ports.LogSource, logger *zap.Logger) *LogQueryHandler {
	return &LogQueryHandler{
		source: source,
		logger: logger,
	}
}

// HandleList executes the list log entries query
func (h *LogQueryHandler) HandleList(ctx context.Context, query queries.ListLogEntriesQuery) ([]ports.LogEntry, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultLogLimit
	}

	entries, err := h.source.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	if !query.ActionsOnly {
		return entries, nil
	}

	filtered := make([]ports.LogEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.HasActions() {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}
