package commands

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/valueobjects"
)

// ApplyLogActionsCommand projects a batch of log actions onto the canvas
// overlay. Actions arrive as raw JSON from the log pipeline; each object
// must parse as a log action or the whole batch is rejected.
type ApplyLogActionsCommand struct {
	CanvasID string            `json:"canvas_id" validate:"required"`
	Actions  []json.RawMessage `json:"actions" validate:"required,min=1"`
}

// Validate validates the command
func (cmd ApplyLogActionsCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if len(cmd.Actions) == 0 {
		return errors.New("at least one action is required")
	}
	return nil
}

// ApplyParsedActionsCommand projects already-parsed actions, used by the
// log watcher subscription path.
type ApplyParsedActionsCommand struct {
	CanvasID string                   `json:"canvas_id" validate:"required"`
	Actions  []valueobjects.LogAction `json:"actions" validate:"required,min=1"`
}

// Validate validates the command
func (cmd ApplyParsedActionsCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if len(cmd.Actions) == 0 {
		return errors.New("at least one action is required")
	}
	return nil
}

// ClearOverlaysCommand removes all log highlights and annotations
type ClearOverlaysCommand struct {
	CanvasID string `json:"canvas_id" validate:"required"`
}

// Validate validates the command
func (cmd ClearOverlaysCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	return nil
}

// OverlayHandler handles log overlay commands
type OverlayHandler struct {
	store    ports.CanvasStore
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewOverlayHandler creates a new overlay command handler
func NewOverlayHandler(store ports.CanvasStore, eventBus ports.EventBus, logger *zap.Logger) *OverlayHandler {
	return &OverlayHandler{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// HandleApply parses and projects a raw action batch
func (h *OverlayHandler) HandleApply(ctx context.Context, cmd ApplyLogActionsCommand) error {
	actions := make([]valueobjects.LogAction, 0, len(cmd.Actions))
	for i, raw := range cmd.Actions {
		var action valueobjects.LogAction
		if err := json.Unmarshal(raw, &action); err != nil {
			h.logger.Warn("Rejected malformed log action",
				zap.String("canvasID", cmd.CanvasID),
				zap.Int("index", i),
				zap.Error(err),
			)
			return err
		}
		actions = append(actions, action)
	}

	return h.applyActions(ctx, cmd.CanvasID, actions)
}

// HandleApplyParsed projects an already-parsed action batch
func (h *OverlayHandler) HandleApplyParsed(ctx context.Context, cmd ApplyParsedActionsCommand) error {
	return h.applyActions(ctx, cmd.CanvasID, cmd.Actions)
}

// HandleClear executes the clear overlays command
func (h *OverlayHandler) HandleClear(ctx context.Context, cmd ClearOverlaysCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		canvas.ClearOverlays()
		flushEvents(ctx, h.eventBus, h.logger, canvas)
		return nil
	})
}

func (h *OverlayHandler) applyActions(ctx context.Context, canvasID string, actions []valueobjects.LogAction) error {
	return h.store.Acquire(ctx, canvasID, func(canvas *aggregates.Canvas) error {
		canvas.ApplyLogActions(actions)

		flushEvents(ctx, h.eventBus, h.logger, canvas)

		h.logger.Debug("Log actions applied",
			zap.String("canvasID", canvasID),
			zap.Int("actionCount", len(actions)),
		)
		return nil
	})
}
