package handlers

import (
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

// HistoryHandler serves undo/redo and the checkpoint listing
type HistoryHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errs       *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *HistoryHandler {
	return &HistoryHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errs:       errs,
		logger:     logger,
	}
}

// HistoryResponse combines live undo/redo state with the recorded
// checkpoints
type HistoryResponse struct {
	Status   *queries.HistoryStatusView `json:"status"`
	Versions []queries.VersionSummary   `json:"versions"`
}

// Status handles GET /canvases/{canvasID}/history
func (h *HistoryHandler) Status(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")

	status, err := h.queryBus.Ask(r.Context(), queries.GetHistoryStatusQuery{CanvasID: canvasID})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	versions, err := h.queryBus.Ask(r.Context(), queries.ListVersionsQuery{CanvasID: canvasID})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	resp := HistoryResponse{}
	if view, ok := status.(*queries.HistoryStatusView); ok {
		resp.Status = view
	}
	if list, ok := versions.([]queries.VersionSummary); ok {
		resp.Versions = list
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// Undo handles POST /canvases/{canvasID}/history/undo. The response
// carries the refreshed undo/redo flags.
func (h *HistoryHandler) Undo(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	if err := h.commandBus.Send(r.Context(), commands.UndoCommand{CanvasID: canvasID}); err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	h.respondStatus(w, r, canvasID)
}

// Redo handles POST /canvases/{canvasID}/history/redo
func (h *HistoryHandler) Redo(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	if err := h.commandBus.Send(r.Context(), commands.RedoCommand{CanvasID: canvasID}); err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	h.respondStatus(w, r, canvasID)
}

func (h *HistoryHandler) respondStatus(w http.ResponseWriter, r *http.Request, canvasID string) {
	status, err := h.queryBus.Ask(r.Context(), queries.GetHistoryStatusQuery{CanvasID: canvasID})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, status)
}
