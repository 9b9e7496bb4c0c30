package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/valueobjects"
)

// CreateCanvasCommand opens a new canvas session
type CreateCanvasCommand struct {
	Name string `json:"name" validate:"max=255"`
}

// Validate validates the command
func (cmd CreateCanvasCommand) Validate() error {
	if len(cmd.Name) > MaxCanvasNameLength {
		return errors.New("canvas name exceeds maximum length")
	}
	return nil
}

// RenameCanvasCommand changes a canvas's display name
type RenameCanvasCommand struct {
	CanvasID string `json:"canvas_id" validate:"required"`
	Name     string `json:"name" validate:"required,max=255"`
}

// Validate validates the command
func (cmd RenameCanvasCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.Name == "" {
		return errors.New("canvas name is required")
	}
	if len(cmd.Name) > MaxCanvasNameLength {
		return errors.New("canvas name exceeds maximum length")
	}
	return nil
}

// DeleteCanvasCommand closes a canvas session and drops its state
type DeleteCanvasCommand struct {
	CanvasID string `json:"canvas_id" validate:"required"`
}

// Validate validates the command
func (cmd DeleteCanvasCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	return nil
}

// SetViewportCommand pans or zooms the canvas view
type SetViewportCommand struct {
	CanvasID string  `json:"canvas_id" validate:"required"`
	OffsetX  float64 `json:"offset_x"`
	OffsetY  float64 `json:"offset_y"`
	Zoom     float64 `json:"zoom" validate:"gt=0"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// Validate validates the command
func (cmd SetViewportCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.Zoom <= 0 {
		return errors.New("zoom must be positive")
	}
	return nil
}

// UpdateSettingsCommand changes canvas-wide editor settings
type UpdateSettingsCommand struct {
	CanvasID   string   `json:"canvas_id" validate:"required"`
	SnapToGrid *bool    `json:"snap_to_grid,omitempty"`
	GridSize   *float64 `json:"grid_size,omitempty"`
	ShowGrid   *bool    `json:"show_grid,omitempty"`
}

// Validate validates the command
func (cmd UpdateSettingsCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.GridSize != nil && *cmd.GridSize <= 0 {
		return errors.New("grid size must be positive")
	}
	return nil
}

// MaxCanvasNameLength bounds canvas display names
const MaxCanvasNameLength = 255

// CanvasHandler handles canvas lifecycle commands
type CanvasHandler struct {
	store    ports.CanvasStore
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewCanvasHandler creates a new canvas command handler
func NewCanvasHandler(store ports.CanvasStore, eventBus ports.EventBus, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// HandleCreate opens a new canvas session and returns the live aggregate
func (h *CanvasHandler) HandleCreate(ctx context.Context, cmd CreateCanvasCommand) (*aggregates.Canvas, error) {
	canvas, err := h.store.Create(ctx, cmd.Name)
	if err != nil {
		return nil, err
	}

	flushEvents(ctx, h.eventBus, h.logger, canvas)

	h.logger.Info("Canvas created",
		zap.String("canvasID", canvas.ID().String()),
		zap.String("name", canvas.Name()),
	)
	return canvas, nil
}

// HandleRename changes the canvas display name
func (h *CanvasHandler) HandleRename(ctx context.Context, cmd RenameCanvasCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		if err := canvas.UpdateName(cmd.Name); err != nil {
			return err
		}
		flushEvents(ctx, h.eventBus, h.logger, canvas)
		return nil
	})
}

// HandleDelete drops the canvas session
func (h *CanvasHandler) HandleDelete(ctx context.Context, cmd DeleteCanvasCommand) error {
	if err := h.store.Delete(ctx, cmd.CanvasID); err != nil {
		return err
	}
	h.logger.Info("Canvas deleted", zap.String("canvasID", cmd.CanvasID))
	return nil
}

// HandleSetViewport applies a pan/zoom change
func (h *CanvasHandler) HandleSetViewport(ctx context.Context, cmd SetViewportCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		viewport := valueobjects.Viewport{
			OffsetX: cmd.OffsetX,
			OffsetY: cmd.OffsetY,
			Zoom:    cmd.Zoom,
			Width:   cmd.Width,
			Height:  cmd.Height,
		}
		if viewport.Width <= 0 || viewport.Height <= 0 {
			current := canvas.Viewport()
			viewport.Width = current.Width
			viewport.Height = current.Height
		}
		return canvas.SetViewport(viewport)
	})
}

// HandleUpdateSettings applies partial settings changes
func (h *CanvasHandler) HandleUpdateSettings(ctx context.Context, cmd UpdateSettingsCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		settings := canvas.Settings()
		if cmd.SnapToGrid != nil {
			settings.SnapToGrid = *cmd.SnapToGrid
		}
		if cmd.GridSize != nil {
			settings.GridSize = *cmd.GridSize
		}
		if cmd.ShowGrid != nil {
			settings.ShowGrid = *cmd.ShowGrid
		}
		return canvas.UpdateSettings(settings)
	})
}
