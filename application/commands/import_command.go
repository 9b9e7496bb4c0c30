package commands

import (
	"context"
	"errors"
)

// ImportCanvasCommand replaces the canvas contents with a serialized
// document. The import is all-or-nothing and starts a fresh undo baseline.
type ImportCanvasCommand struct {
	CanvasID string `json:"canvas_id" validate:"required"`
	Document []byte `json:"document" validate:"required"`
}

// Validate validates the ImportCanvasCommand
func (cmd ImportCanvasCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if len(cmd.Document) == 0 {
		return errors.New("document is required")
	}
	return nil
}

// ImportRunner is the orchestration the import handler delegates to
type ImportRunner interface {
	Run(ctx context.Context, canvasID string, document []byte) error
}

// ImportHandler handles canvas import commands
type ImportHandler struct {
	runner ImportRunner
}

// NewImportHandler creates a new import command handler
func NewImportHandler(runner ImportRunner) *ImportHandler {
	return &ImportHandler{runner: runner}
}

// Handle executes the import command
func (h *ImportHandler) Handle(ctx context.Context, cmd ImportCanvasCommand) error {
	return h.runner.Run(ctx, cmd.CanvasID, cmd.Document)
}
