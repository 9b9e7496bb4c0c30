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
	"flowcanvas/pkg/common"
	pkgerrors "flowcanvas/pkg/errors"
)

// NodeHandler serves node CRUD under a canvas
type NodeHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errs       *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errs:       errs,
		logger:     logger,
	}
}

// CreateNodeRequest is the body for placing a node. The id is optional;
// a fresh one is generated when absent.
type CreateNodeRequest struct {
	NodeID string   `json:"node_id,omitempty" validate:"omitempty,max=100"`
	Kind   string   `json:"kind,omitempty" validate:"omitempty,oneof=rectangle circle diamond text"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  *float64 `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height *float64 `json:"height,omitempty" validate:"omitempty,gt=0"`
	Title  string   `json:"title,omitempty" validate:"omitempty,max=200"`
}

// UpdateNodeRequest carries partial node changes. A move needs both
// coordinates; width and height likewise travel together.
type UpdateNodeRequest struct {
	Title       *string                `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string                `json:"description,omitempty" validate:"omitempty,max=2000"`
	Color       *string                `json:"color,omitempty"`
	Kind        *string                `json:"kind,omitempty" validate:"omitempty,oneof=rectangle circle diamond text"`
	Width       *float64               `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height      *float64               `json:"height,omitempty" validate:"omitempty,gt=0"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	X           *float64               `json:"x,omitempty"`
	Y           *float64               `json:"y,omitempty"`
}

// RenameElementRequest is the body for re-identifying a node or
// connector
type RenameElementRequest struct {
	NewID string `json:"new_id" validate:"required,max=100"`
}

// Create handles POST /canvases/{canvasID}/nodes
func (h *NodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")

	var req CreateNodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	if req.NodeID == "" {
		req.NodeID = uuid.New().String()
	}

	cmd := commands.CreateNodeCommand{
		CanvasID: canvasID,
		NodeID:   req.NodeID,
		Kind:     req.Kind,
		X:        req.X,
		Y:        req.Y,
		Width:    req.Width,
		Height:   req.Height,
		Title:    req.Title,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	h.logger.Info("Node created",
		zap.String("canvasID", canvasID),
		zap.String("nodeID", req.NodeID),
	)
	common.RespondJSON(w, http.StatusCreated, messageResponse{ID: req.NodeID, Message: "Node created"})
}

// Get handles GET /canvases/{canvasID}/nodes/{nodeID}
func (h *NodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := queries.GetNodeQuery{
		CanvasID: chi.URLParam(r, "canvasID"),
		NodeID:   chi.URLParam(r, "nodeID"),
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Update handles PATCH /canvases/{canvasID}/nodes/{nodeID}. Appearance
// changes and moves share the route; each present group becomes its own
// command and its own undo step.
func (h *NodeHandler) Update(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	nodeID := chi.URLParam(r, "nodeID")

	var req UpdateNodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	if (req.X == nil) != (req.Y == nil) {
		h.errs.Handle(w, r, pkgerrors.NewValidationError("a move needs both x and y"))
		return
	}

	hasUpdate := req.Title != nil || req.Description != nil || req.Color != nil ||
		req.Kind != nil || req.Width != nil || req.Height != nil || req.Metadata != nil
	hasMove := req.X != nil && req.Y != nil
	if !hasUpdate && !hasMove {
		h.errs.Handle(w, r, pkgerrors.NewValidationError("no changes provided"))
		return
	}

	if hasUpdate {
		cmd := commands.UpdateNodeCommand{
			CanvasID:    canvasID,
			NodeID:      nodeID,
			Title:       req.Title,
			Description: req.Description,
			Color:       req.Color,
			Kind:        req.Kind,
			Width:       req.Width,
			Height:      req.Height,
			Metadata:    req.Metadata,
		}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			writeError(h.errs, w, r, err)
			return
		}
	}
	if hasMove {
		cmd := commands.MoveNodeCommand{CanvasID: canvasID, NodeID: nodeID, X: *req.X, Y: *req.Y}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			writeError(h.errs, w, r, err)
			return
		}
		// Moves are silent at the domain level so drags can stream them;
		// a one-shot move through this route is still one undo step.
		commit := commands.CommitHistoryCommand{CanvasID: canvasID}
		if err := h.commandBus.Send(r.Context(), commit); err != nil {
			writeError(h.errs, w, r, err)
			return
		}
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetNodeQuery{CanvasID: canvasID, NodeID: nodeID})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Rename handles POST /canvases/{canvasID}/nodes/{nodeID}/rename
func (h *NodeHandler) Rename(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	oldID := chi.URLParam(r, "nodeID")

	var req RenameElementRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	cmd := commands.RenameNodeCommand{CanvasID: canvasID, OldID: oldID, NewID: req.NewID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	h.logger.Info("Node renamed",
		zap.String("canvasID", canvasID),
		zap.String("oldID", oldID),
		zap.String("newID", req.NewID),
	)
	common.RespondJSON(w, http.StatusOK, messageResponse{ID: req.NewID, Message: "Node renamed"})
}

// Delete handles DELETE /canvases/{canvasID}/nodes/{nodeID}. Connectors
// attached to the node go with it.
func (h *NodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteNodeCommand{
		CanvasID: chi.URLParam(r, "canvasID"),
		NodeID:   chi.URLParam(r, "nodeID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
