package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/valueobjects"
)

// CreateNodeCommand places a new node on a canvas
type CreateNodeCommand struct {
	CanvasID string   `json:"canvas_id" validate:"required"`
	NodeID   string   `json:"node_id" validate:"max=100"`
	Kind     string   `json:"kind" validate:"omitempty,oneof=rectangle circle diamond text"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Title    string   `json:"title" validate:"max=200"`
}

// Validate validates the command
func (cmd CreateNodeCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if len(cmd.NodeID) > MaxElementIDLength {
		return errors.New("node ID exceeds maximum length")
	}
	if len(cmd.Title) > MaxTitleLength {
		return errors.New("title exceeds maximum length")
	}
	if cmd.Kind != "" && !valueobjects.NodeKind(cmd.Kind).Valid() {
		return errors.New("unknown node kind")
	}
	return nil
}

// UpdateNodeCommand applies partial changes to a node
type UpdateNodeCommand struct {
	CanvasID    string                 `json:"canvas_id" validate:"required"`
	NodeID      string                 `json:"node_id" validate:"required"`
	Title       *string                `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string                `json:"description,omitempty" validate:"omitempty,max=2000"`
	Color       *string                `json:"color,omitempty"`
	Kind        *string                `json:"kind,omitempty"`
	Width       *float64               `json:"width,omitempty"`
	Height      *float64               `json:"height,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Validate validates the command
func (cmd UpdateNodeCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	if cmd.Title != nil && len(*cmd.Title) > MaxTitleLength {
		return errors.New("title exceeds maximum length")
	}
	if cmd.Kind != nil && !valueobjects.NodeKind(*cmd.Kind).Valid() {
		return errors.New("unknown node kind")
	}
	if (cmd.Width == nil) != (cmd.Height == nil) {
		return errors.New("width and height must be set together")
	}
	return nil
}

// MoveNodeCommand repositions a node. Moves are continuous during drags,
// so they deliberately do not create an undo step.
type MoveNodeCommand struct {
	CanvasID string  `json:"canvas_id" validate:"required"`
	NodeID   string  `json:"node_id" validate:"required"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Validate validates the command
func (cmd MoveNodeCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	return nil
}

// RenameNodeCommand changes a node's identifier
type RenameNodeCommand struct {
	CanvasID string `json:"canvas_id" validate:"required"`
	OldID    string `json:"old_id" validate:"required"`
	NewID    string `json:"new_id" validate:"required,max=100"`
}

// Validate validates the command
func (cmd RenameNodeCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.OldID == "" || cmd.NewID == "" {
		return errors.New("both old and new node IDs are required")
	}
	if len(cmd.NewID) > MaxElementIDLength {
		return errors.New("node ID exceeds maximum length")
	}
	return nil
}

// DeleteNodeCommand removes a node and every connector attached to it
type DeleteNodeCommand struct {
	CanvasID string `json:"canvas_id" validate:"required"`
	NodeID   string `json:"node_id" validate:"required"`
}

// Validate validates the command
func (cmd DeleteNodeCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	return nil
}

const (
	MaxElementIDLength = 100
	MaxTitleLength     = 200
)

// NodeHandler handles node commands
type NodeHandler struct {
	store    ports.CanvasStore
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewNodeHandler creates a new node command handler
func NewNodeHandler(store ports.CanvasStore, eventBus ports.EventBus, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// HandleCreate executes the create node command
func (h *NodeHandler) HandleCreate(ctx context.Context, cmd CreateNodeCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		var size valueobjects.Size
		if cmd.Width != nil && cmd.Height != nil {
			size = valueobjects.Size{Width: *cmd.Width, Height: *cmd.Height}
		}

		node, err := canvas.CreateNode(
			cmd.NodeID,
			valueobjects.NodeKind(cmd.Kind),
			valueobjects.Position{X: cmd.X, Y: cmd.Y},
			size,
			cmd.Title,
		)
		if err != nil {
			return err
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)

		h.logger.Info("Node created",
			zap.String("canvasID", cmd.CanvasID),
			zap.String("nodeID", node.ID()),
		)
		return nil
	})
}

// HandleUpdate executes the update node command
func (h *NodeHandler) HandleUpdate(ctx context.Context, cmd UpdateNodeCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		changes := aggregates.NodeChanges{
			Title:       cmd.Title,
			Description: cmd.Description,
			Color:       cmd.Color,
			Metadata:    cmd.Metadata,
		}
		if cmd.Kind != nil {
			kind := valueobjects.NodeKind(*cmd.Kind)
			changes.Kind = &kind
		}
		if cmd.Width != nil && cmd.Height != nil {
			size := valueobjects.Size{Width: *cmd.Width, Height: *cmd.Height}
			changes.Size = &size
		}

		if err := canvas.UpdateNode(cmd.NodeID, changes); err != nil {
			return err
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)
		return nil
	})
}

// HandleMove executes the move node command
func (h *NodeHandler) HandleMove(ctx context.Context, cmd MoveNodeCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		if err := canvas.MoveNode(cmd.NodeID, valueobjects.Position{X: cmd.X, Y: cmd.Y}); err != nil {
			return err
		}
		flushEvents(ctx, h.eventBus, h.logger, canvas)
		return nil
	})
}

// HandleRename executes the rename node command
func (h *NodeHandler) HandleRename(ctx context.Context, cmd RenameNodeCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		if err := canvas.UpdateNodeID(cmd.OldID, cmd.NewID); err != nil {
			return err
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)

		h.logger.Info("Node renamed",
			zap.String("canvasID", cmd.CanvasID),
			zap.String("oldID", cmd.OldID),
			zap.String("newID", cmd.NewID),
		)
		return nil
	})
}

// HandleDelete executes the delete node command
func (h *NodeHandler) HandleDelete(ctx context.Context, cmd DeleteNodeCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		if err := canvas.RemoveNode(cmd.NodeID); err != nil {
			return err
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)

		h.logger.Info("Node deleted",
			zap.String("canvasID", cmd.CanvasID),
			zap.String("nodeID", cmd.NodeID),
		)
		return nil
	})
}
