package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/domain/core/aggregates"
)

// UpdateSelectionCommand replaces or extends the selection. With Additive
// unset the listed elements become the entire selection.
type UpdateSelectionCommand struct {
	CanvasID     string   `json:"canvas_id" validate:"required"`
	NodeIDs      []string `json:"node_ids"`
	ConnectorIDs []string `json:"connector_ids"`
	Additive     bool     `json:"additive"`
}

// Validate validates the command
func (cmd UpdateSelectionCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	return nil
}

// ClearSelectionCommand empties the selection
type ClearSelectionCommand struct {
	CanvasID string `json:"canvas_id" validate:"required"`
}

// Validate checks required fields
func (cmd ClearSelectionCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	return nil
}

// SelectionHandler handles selection commands
type SelectionHandler struct {
	store    ports.CanvasStore
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewSelectionHandler creates a new selection command handler
func NewSelectionHandler(store ports.CanvasStore, eventBus ports.EventBus, logger *zap.Logger) *SelectionHandler {
	return &SelectionHandler{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// HandleUpdate executes the update selection command
func (h *SelectionHandler) HandleUpdate(ctx context.Context, cmd UpdateSelectionCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		if !cmd.Additive {
			canvas.ClearSelection()
		}

		for _, id := range cmd.NodeIDs {
			if err := canvas.SelectNode(id, true); err != nil {
				return err
			}
		}
		for _, id := range cmd.ConnectorIDs {
			if err := canvas.SelectConnector(id, true); err != nil {
				return err
			}
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)
		return nil
	})
}

// HandleClear executes the clear selection command
func (h *SelectionHandler) HandleClear(ctx context.Context, cmd ClearSelectionCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		canvas.ClearSelection()
		flushEvents(ctx, h.eventBus, h.logger, canvas)
		return nil
	})
}
