package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/entities"
	"flowcanvas/domain/core/valueobjects"
)

// CreateConnectorCommand links two nodes. Sides and offsets are optional;
// omitted sides are inferred from the nodes' relative positions.
type CreateConnectorCommand struct {
	CanvasID    string   `json:"canvas_id" validate:"required"`
	ConnectorID string   `json:"connector_id" validate:"max=100"`
	StartNodeID string   `json:"start_node_id" validate:"required"`
	EndNodeID   string   `json:"end_node_id" validate:"required"`
	Kind        string   `json:"kind" validate:"omitempty,oneof=straight curved orthogonal bezier"`
	StartSide   string   `json:"start_side,omitempty"`
	EndSide     string   `json:"end_side,omitempty"`
	StartOffset *float64 `json:"start_offset,omitempty"`
	EndOffset   *float64 `json:"end_offset,omitempty"`
	Label       string   `json:"label" validate:"max=500"`
}

// Validate validates the command
func (cmd CreateConnectorCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.StartNodeID == "" || cmd.EndNodeID == "" {
		return errors.New("both endpoint node IDs are required")
	}
	if len(cmd.ConnectorID) > MaxElementIDLength {
		return errors.New("connector ID exceeds maximum length")
	}
	if cmd.Kind != "" && !valueobjects.ConnectorKind(cmd.Kind).Valid() {
		return errors.New("unknown connector kind")
	}
	if cmd.StartSide != "" && !valueobjects.Side(cmd.StartSide).Valid() {
		return errors.New("unknown start side")
	}
	if cmd.EndSide != "" && !valueobjects.Side(cmd.EndSide).Valid() {
		return errors.New("unknown end side")
	}
	return nil
}

// UpdateConnectorCommand applies partial presentation changes
type UpdateConnectorCommand struct {
	CanvasID    string                       `json:"canvas_id" validate:"required"`
	ConnectorID string                       `json:"connector_id" validate:"required"`
	Label       *string                      `json:"label,omitempty" validate:"omitempty,max=500"`
	Kind        *string                      `json:"kind,omitempty"`
	Style       *valueobjects.ConnectorStyle `json:"style,omitempty"`
}

// Validate validates the command
func (cmd UpdateConnectorCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.ConnectorID == "" {
		return errors.New("connector ID is required")
	}
	if cmd.Kind != nil && !valueobjects.ConnectorKind(*cmd.Kind).Valid() {
		return errors.New("unknown connector kind")
	}
	return nil
}

// RerouteConnectorCommand reattaches one end of a connector to a node
// anchor. Reroutes happen continuously during endpoint drags, so they do
// not create an undo step; the gesture commits one explicitly.
type RerouteConnectorCommand struct {
	CanvasID    string  `json:"canvas_id" validate:"required"`
	ConnectorID string  `json:"connector_id" validate:"required"`
	End         string  `json:"end" validate:"required,oneof=start end"`
	NodeID      string  `json:"node_id" validate:"required"`
	Side        string  `json:"side" validate:"required"`
	Offset      float64 `json:"offset"`
}

// Validate validates the command
func (cmd RerouteConnectorCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.ConnectorID == "" {
		return errors.New("connector ID is required")
	}
	if !entities.ConnectorEnd(cmd.End).Valid() {
		return errors.New("end must be start or end")
	}
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	if !valueobjects.Side(cmd.Side).Valid() {
		return errors.New("unknown side")
	}
	return nil
}

// RenameConnectorCommand changes a connector's identifier
type RenameConnectorCommand struct {
	CanvasID string `json:"canvas_id" validate:"required"`
	OldID    string `json:"old_id" validate:"required"`
	NewID    string `json:"new_id" validate:"required,max=100"`
}

// Validate validates the command
func (cmd RenameConnectorCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.OldID == "" || cmd.NewID == "" {
		return errors.New("both old and new connector IDs are required")
	}
	if len(cmd.NewID) > MaxElementIDLength {
		return errors.New("connector ID exceeds maximum length")
	}
	return nil
}

// DeleteConnectorCommand removes a connector
type DeleteConnectorCommand struct {
	CanvasID    string `json:"canvas_id" validate:"required"`
	ConnectorID string `json:"connector_id" validate:"required"`
}

// Validate validates the command
func (cmd DeleteConnectorCommand) Validate() error {
	if cmd.CanvasID == "" {
		return errors.New("canvas ID is required")
	}
	if cmd.ConnectorID == "" {
		return errors.New("connector ID is required")
	}
	return nil
}

// ConnectorHandler handles connector commands
type ConnectorHandler struct {
	store    ports.CanvasStore
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewConnectorHandler creates a new connector command handler
func NewConnectorHandler(store ports.CanvasStore, eventBus ports.EventBus, logger *zap.Logger) *ConnectorHandler {
	return &ConnectorHandler{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// HandleCreate executes the create connector command
func (h *ConnectorHandler) HandleCreate(ctx context.Context, cmd CreateConnectorCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		conn, err := canvas.CreateConnector(cmd.ConnectorID, cmd.StartNodeID, cmd.EndNodeID, aggregates.ConnectorOptions{
			Kind:        valueobjects.ConnectorKind(cmd.Kind),
			StartSide:   valueobjects.Side(cmd.StartSide),
			EndSide:     valueobjects.Side(cmd.EndSide),
			StartOffset: cmd.StartOffset,
			EndOffset:   cmd.EndOffset,
			Label:       cmd.Label,
		})
		if err != nil {
			return err
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)

		h.logger.Info("Connector created",
			zap.String("canvasID", cmd.CanvasID),
			zap.String("connectorID", conn.ID()),
			zap.String("startNodeID", cmd.StartNodeID),
			zap.String("endNodeID", cmd.EndNodeID),
		)
		return nil
	})
}

// HandleUpdate executes the update connector command
func (h *ConnectorHandler) HandleUpdate(ctx context.Context, cmd UpdateConnectorCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		changes := aggregates.ConnectorChanges{
			Label: cmd.Label,
			Style: cmd.Style,
		}
		if cmd.Kind != nil {
			kind := valueobjects.ConnectorKind(*cmd.Kind)
			changes.Kind = &kind
		}

		if err := canvas.UpdateConnector(cmd.ConnectorID, changes); err != nil {
			return err
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)
		return nil
	})
}

// HandleReroute executes the reroute connector command
func (h *ConnectorHandler) HandleReroute(ctx context.Context, cmd RerouteConnectorCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		err := canvas.UpdateConnectorEndpoint(
			cmd.ConnectorID,
			entities.ConnectorEnd(cmd.End),
			cmd.NodeID,
			valueobjects.Side(cmd.Side),
			cmd.Offset,
		)
		if err != nil {
			return err
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)
		return nil
	})
}

// HandleRename executes the rename connector command
func (h *ConnectorHandler) HandleRename(ctx context.Context, cmd RenameConnectorCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		if err := canvas.UpdateConnectorID(cmd.OldID, cmd.NewID); err != nil {
			return err
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)

		h.logger.Info("Connector renamed",
			zap.String("canvasID", cmd.CanvasID),
			zap.String("oldID", cmd.OldID),
			zap.String("newID", cmd.NewID),
		)
		return nil
	})
}

// HandleDelete executes the delete connector command
func (h *ConnectorHandler) HandleDelete(ctx context.Context, cmd DeleteConnectorCommand) error {
	return h.store.Acquire(ctx, cmd.CanvasID, func(canvas *aggregates.Canvas) error {
		if err := canvas.RemoveConnector(cmd.ConnectorID); err != nil {
			return err
		}

		flushEvents(ctx, h.eventBus, h.logger, canvas)

		h.logger.Info("Connector deleted",
			zap.String("canvasID", cmd.CanvasID),
			zap.String("connectorID", cmd.ConnectorID),
		)
		return nil
	})
}
