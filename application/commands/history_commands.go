package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/domain/core/aggregates"
)

// UndoCommand steps the canvas back one history snapshot
type UndoCommand struct {
	CanvasID string `json:"canvas_id" validate:"required"`
}

// Validate validates the command
func (cmd UndoCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	return nil
}

// RedoCommand steps the canvas forward one history snapshot
type RedoCommand struct {
	CanvasID string `json:"canvas_id" validate:"required"`
}

// Validate validates the RedoCommand
func (cmd RedoCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	return nil
}

// CommitHistoryCommand records the current state as an undo step. Gestures
// send it once when a drag finishes, after a run of silent moves.
type CommitHistoryCommand struct {
	CanvasID string `json:"canvas_id" validate:"required"`
}

// Validate validates the command
func (cmd CommitHistoryCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	return nil
}

// HistoryHandler handles undo/redo commands
type HistoryHandler struct {
	store    ports.CanvasStore
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewHistoryHandler creates a new history command handler
func NewHistoryHandler(store ports.CanvasStore, eventBus ports.EventBus, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// HandleUndo executes the undo command
func (h *HistoryHandler) HandleUndo(ctx context.Context, cmd UndoCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		if err := canvas.Undo(); err != nil {
			return err
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)

		h.logger.Info("Undo applied",
			zap.String("canvasID", cmd.CanvasID),
			zap.Int("historyIndex", canvas.HistoryIndex()),
		)
		return nil
	})
}

// HandleRedo executes the redo command
func (h *HistoryHandler) HandleRedo(ctx context.Context, cmd RedoCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		if err := canvas.Redo(); err != nil {
			return err
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)

		h.logger.Info("Redo applied",
			zap.String("canvasID", cmd.CanvasID),
			zap.Int("historyIndex", canvas.HistoryIndex()),
		)
		return nil
	})
}

// HandleCommit executes the commit history command
func (h *HistoryHandler) HandleCommit(ctx context.Context, cmd CommitHistoryCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		canvas.PushHistory()
		return nil
	})
}
