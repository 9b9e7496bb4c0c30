package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowcanvas/application/commands"
	"flowcanvas/application/commands/bus"
	"flowcanvas/application/queries"
	querybus "flowcanvas/application/queries/bus"
	"flowcanvas/pkg/common"
	pkgerrors "flowcanvas/pkg/errors"
)

// OverlayHandler serves the log overlay projected onto a canvas
type OverlayHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errs       *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewOverlayHandler creates a new overlay handler
func NewOverlayHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *OverlayHandler {
	return &OverlayHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errs:       errs,
		logger:     logger,
	}
}

// ApplyOverlayRequest carries raw log actions. Each element is one
// action object; malformed or unknown ones are skipped, not rejected.
type ApplyOverlayRequest struct {
	Actions []json.RawMessage `json:"actions" validate:"required,min=1"`
}

// Get handles GET /canvases/{canvasID}/overlays
func (h *OverlayHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := queries.GetOverlaysQuery{CanvasID: chi.URLParam(r, "canvasID")}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Apply handles POST /canvases/{canvasID}/overlays/apply. Responds with
// the overlay state after the actions landed.
func (h *OverlayHandler) Apply(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")

	var req ApplyOverlayRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	cmd := commands.ApplyLogActionsCommand{CanvasID: canvasID, Actions: req.Actions}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	h.logger.Debug("Log actions applied",
		zap.String("canvasID", canvasID),
		zap.Int("actions", len(req.Actions)),
	)
	h.respondOverlay(w, r, canvasID)
}

// Clear handles DELETE /canvases/{canvasID}/overlays
func (h *OverlayHandler) Clear(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	if err := h.commandBus.Send(r.Context(), commands.ClearOverlaysCommand{CanvasID: canvasID}); err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OverlayHandler) respondOverlay(w http.ResponseWriter, r *http.Request, canvasID string) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetOverlaysQuery{CanvasID: canvasID})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
