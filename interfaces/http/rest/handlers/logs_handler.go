package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowcanvas/application/commands"
	"flowcanvas/application/commands/bus"
	"flowcanvas/application/ports"
	"flowcanvas/application/queries"
	querybus "flowcanvas/application/queries/bus"
	"flowcanvas/infrastructure/logwatch"
	"flowcanvas/pkg/common"
	pkgerrors "flowcanvas/pkg/errors"
)

// LogsHandler serves the watched log stream and replays retained
// entries onto canvases
type LogsHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logStore   *logwatch.Store
	errs       *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logStore *logwatch.Store,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *LogsHandler {
	return &LogsHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logStore:   logStore,
		errs:       errs,
		logger:     logger,
	}
}

// ReplayResponse reports a replayed log entry and the overlay it
// produced
type ReplayResponse struct {
	Seq     uint64      `json:"seq"`
	Applied int         `json:"applied"`
	Overlay interface{} `json:"overlay"`
}

// List handles GET /logs?limit=&actions_only=&page=&page_size=. The
// limit caps how much of the retained window is fetched; pagination
// pages within that window.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	actionsOnly, _ := strconv.ParseBool(r.URL.Query().Get("actions_only"))

	result, err := h.queryBus.Ask(r.Context(), queries.ListLogEntriesQuery{
		Limit:       limit,
		ActionsOnly: actionsOnly,
	})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	entries, ok := result.([]ports.LogEntry)
	if !ok {
		h.errs.Handle(w, r, pkgerrors.NewInternalError("unexpected list result"))
		return
	}

	params := common.ExtractPaginationParams(r)
	start, end := params.Slice(len(entries))
	respondPage(w, r, entries[start:end], params, len(entries))
}

// Replay handles POST /canvases/{canvasID}/logs/{index}/replay. The
// index is the entry's sequence number; its parsed actions are applied
// to the canvas as one overlay pass.
func (h *LogsHandler) Replay(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")

	seq, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
	if err != nil {
		h.errs.Handle(w, r, pkgerrors.NewValidationError("log entry index must be a number"))
		return
	}

	if h.logStore == nil {
		h.errs.Handle(w, r, pkgerrors.NewNotFoundError("log entry"))
		return
	}
	entry, ok := h.logStore.Entry(seq)
	if !ok {
		h.errs.Handle(w, r, pkgerrors.NewNotFoundError("log entry"))
		return
	}
	if len(entry.Actions) == 0 {
		h.errs.Handle(w, r, pkgerrors.NewValidationError("log entry carries no canvas actions"))
		return
	}

	cmd := commands.ApplyParsedActionsCommand{CanvasID: canvasID, Actions: entry.Actions}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	h.logger.Info("Log entry replayed",
		zap.String("canvasID", canvasID),
		zap.Uint64("seq", seq),
		zap.Int("actions", len(entry.Actions)),
	)

	overlay, err := h.queryBus.Ask(r.Context(), queries.GetOverlaysQuery{CanvasID: canvasID})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ReplayResponse{
		Seq:     seq,
		Applied: len(entry.Actions),
		Overlay: overlay,
	})
}
