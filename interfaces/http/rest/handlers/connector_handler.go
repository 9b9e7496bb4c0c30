package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowcanvas/application/commands"
	"flowcanvas/application/commands/bus"
	"flowcanvas/application/queries"
	querybus "flowcanvas/application/queries/bus"
	"flowcanvas/domain/core/valueobjects"
	"flowcanvas/pkg/common"
	pkgerrors "flowcanvas/pkg/errors"
)

// ConnectorHandler serves connector CRUD under a canvas
type ConnectorHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errs       *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewConnectorHandler creates a new connector handler
func NewConnectorHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ConnectorHandler {
	return &ConnectorHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errs:       errs,
		logger:     logger,
	}
}

// CreateConnectorRequest is the body for linking two nodes. Sides and
// offsets are optional; omitted sides are inferred from the nodes'
// relative positions.
type CreateConnectorRequest struct {
	ConnectorID string   `json:"connector_id,omitempty" validate:"omitempty,max=100"`
	StartNodeID string   `json:"start_node_id" validate:"required"`
	EndNodeID   string   `json:"end_node_id" validate:"required"`
	Kind        string   `json:"kind,omitempty" validate:"omitempty,oneof=straight curved orthogonal bezier"`
	StartSide   string   `json:"start_side,omitempty" validate:"omitempty,oneof=top right bottom left"`
	EndSide     string   `json:"end_side,omitempty" validate:"omitempty,oneof=top right bottom left"`
	StartOffset *float64 `json:"start_offset,omitempty" validate:"omitempty,min=0,max=1"`
	EndOffset   *float64 `json:"end_offset,omitempty" validate:"omitempty,min=0,max=1"`
	Label       string   `json:"label,omitempty" validate:"omitempty,max=500"`
}

// UpdateConnectorRequest carries partial connector changes. A present
// reroute section moves one endpoint; the rest are presentation only.
type UpdateConnectorRequest struct {
	Label   *string                      `json:"label,omitempty" validate:"omitempty,max=500"`
	Kind    *string                      `json:"kind,omitempty" validate:"omitempty,oneof=straight curved orthogonal bezier"`
	Style   *valueobjects.ConnectorStyle `json:"style,omitempty"`
	Reroute *RerouteRequest              `json:"reroute,omitempty"`
}

// RerouteRequest reattaches one end of a connector
type RerouteRequest struct {
	End    string  `json:"end" validate:"required,oneof=start end"`
	NodeID string  `json:"node_id" validate:"required"`
	Side   string  `json:"side" validate:"required,oneof=top right bottom left"`
	Offset float64 `json:"offset" validate:"min=0,max=1"`
}

// List handles GET /canvases/{canvasID}/connectors. A node_id query
// parameter narrows the listing to connectors touching that node.
func (h *ConnectorHandler) List(w http.ResponseWriter, r *http.Request) {
	query := queries.GetConnectorsQuery{
		CanvasID: chi.URLParam(r, "canvasID"),
		NodeID:   r.URL.Query().Get("node_id"),
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Create handles POST /canvases/{canvasID}/connectors
func (h *ConnectorHandler) Create(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")

	var req CreateConnectorRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	if req.ConnectorID == "" {
		req.ConnectorID = uuid.New().String()
	}

	cmd := commands.CreateConnectorCommand{
		CanvasID:    canvasID,
		ConnectorID: req.ConnectorID,
		StartNodeID: req.StartNodeID,
		EndNodeID:   req.EndNodeID,
		Kind:        req.Kind,
		StartSide:   req.StartSide,
		EndSide:     req.EndSide,
		StartOffset: req.StartOffset,
		EndOffset:   req.EndOffset,
		Label:       req.Label,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	h.logger.Info("Connector created",
		zap.String("canvasID", canvasID),
		zap.String("connectorID", req.ConnectorID),
		zap.String("start", req.StartNodeID),
		zap.String("end", req.EndNodeID),
	)
	common.RespondJSON(w, http.StatusCreated, messageResponse{ID: req.ConnectorID, Message: "Connector created"})
}

// Update handles PATCH /canvases/{canvasID}/connectors/{connectorID}
func (h *ConnectorHandler) Update(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	connectorID := chi.URLParam(r, "connectorID")

	var req UpdateConnectorRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	if req.Label == nil && req.Kind == nil && req.Style == nil && req.Reroute == nil {
		h.errs.Handle(w, r, pkgerrors.NewValidationError("no changes provided"))
		return
	}

	if req.Label != nil || req.Kind != nil || req.Style != nil {
		cmd := commands.UpdateConnectorCommand{
			CanvasID:    canvasID,
			ConnectorID: connectorID,
			Label:       req.Label,
			Kind:        req.Kind,
			Style:       req.Style,
		}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			writeError(h.errs, w, r, err)
			return
		}
	}
	if req.Reroute != nil {
		cmd := commands.RerouteConnectorCommand{
			CanvasID:    canvasID,
			ConnectorID: connectorID,
			End:         req.Reroute.End,
			NodeID:      req.Reroute.NodeID,
			Side:        req.Reroute.Side,
			Offset:      req.Reroute.Offset,
		}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			writeError(h.errs, w, r, err)
			return
		}
	}

	common.RespondJSON(w, http.StatusOK, messageResponse{ID: connectorID, Message: "Connector updated"})
}

// Rename handles POST /canvases/{canvasID}/connectors/{connectorID}/rename
func (h *ConnectorHandler) Rename(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	oldID := chi.URLParam(r, "connectorID")

	var req RenameElementRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	cmd := commands.RenameConnectorCommand{CanvasID: canvasID, OldID: oldID, NewID: req.NewID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	h.logger.Info("Connector renamed",
		zap.String("canvasID", canvasID),
		zap.String("oldID", oldID),
		zap.String("newID", req.NewID),
	)
	common.RespondJSON(w, http.StatusOK, messageResponse{ID: req.NewID, Message: "Connector renamed"})
}

// Delete handles DELETE /canvases/{canvasID}/connectors/{connectorID}
func (h *ConnectorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteConnectorCommand{
		CanvasID:    chi.URLParam(r, "canvasID"),
		ConnectorID: chi.URLParam(r, "connectorID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
