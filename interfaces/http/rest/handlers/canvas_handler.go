package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowcanvas/application/commands"
	"flowcanvas/application/commands/bus"
	"flowcanvas/application/ports"
	"flowcanvas/application/queries"
	querybus "flowcanvas/application/queries/bus"
	"flowcanvas/pkg/common"
	pkgerrors "flowcanvas/pkg/errors"
)

// maxImportBytes bounds imported canvas documents
const maxImportBytes = 8 << 20

// CanvasHandler serves the canvas session lifecycle: create, list,
// read, update, delete, plus document import/export, selection and
// hit testing
type CanvasHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	canvases   *commands.CanvasHandler
	store      ports.CanvasStore
	errs       *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	canvases *commands.CanvasHandler,
	store ports.CanvasStore,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *CanvasHandler {
	return &CanvasHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		canvases:   canvases,
		store:      store,
		errs:       errs,
		logger:     logger,
	}
}

// CreateCanvasRequest is the body for opening a canvas session
type CreateCanvasRequest struct {
	Name string `json:"name,omitempty" validate:"omitempty,max=255"`
}

// UpdateCanvasRequest carries partial session changes. Any combination
// of the three sections may be present.
type UpdateCanvasRequest struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Viewport *ViewportRequest `json:"viewport,omitempty"`
	Settings *SettingsRequest `json:"settings,omitempty"`
}

// ViewportRequest replaces the whole viewport
type ViewportRequest struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Zoom    float64 `json:"zoom" validate:"required,gt=0"`
	Width   float64 `json:"width" validate:"min=0"`
	Height  float64 `json:"height" validate:"min=0"`
}

// SettingsRequest changes individual editor settings
type SettingsRequest struct {
	SnapToGrid *bool    `json:"snap_to_grid,omitempty"`
	GridSize   *float64 `json:"grid_size,omitempty" validate:"omitempty,gt=0"`
	ShowGrid   *bool    `json:"show_grid,omitempty"`
}

// SelectionRequest replaces, extends or clears the selection
type SelectionRequest struct {
	NodeIDs      []string `json:"node_ids,omitempty"`
	ConnectorIDs []string `json:"connector_ids,omitempty"`
	Additive     bool     `json:"additive,omitempty"`
	Clear        bool     `json:"clear,omitempty"`
}

// Create handles POST /canvases
func (h *CanvasHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCanvasRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	canvas, err := h.canvases.HandleCreate(r.Context(), commands.CreateCanvasCommand{Name: req.Name})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	h.logger.Info("Canvas created",
		zap.String("canvasID", canvas.ID().String()),
		zap.String("name", canvas.Name()),
	)
	common.RespondJSON(w, http.StatusCreated, queries.NewCanvasView(canvas))
}

// List handles GET /canvases?page=&page_size=
func (h *CanvasHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListCanvasesQuery{})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	summaries, ok := result.([]ports.CanvasSummary)
	if !ok {
		h.errs.Handle(w, r, pkgerrors.NewInternalError("unexpected list result"))
		return
	}

	params := common.ExtractPaginationParams(r)
	start, end := params.Slice(len(summaries))
	respondPage(w, r, summaries[start:end], params, len(summaries))
}

// Get handles GET /canvases/{canvasID}
func (h *CanvasHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, chi.URLParam(r, "canvasID"), http.StatusOK)
}

// Update handles PATCH /canvases/{canvasID}. Rename, viewport and
// settings changes ride in one request; each present section becomes
// its own command.
func (h *CanvasHandler) Update(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")

	var req UpdateCanvasRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	if req.Name == nil && req.Viewport == nil && req.Settings == nil {
		h.errs.Handle(w, r, pkgerrors.NewValidationError("no changes provided"))
		return
	}

	if req.Name != nil {
		cmd := commands.RenameCanvasCommand{CanvasID: canvasID, Name: *req.Name}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			writeError(h.errs, w, r, err)
			return
		}
	}
	if req.Viewport != nil {
		cmd := commands.SetViewportCommand{
			CanvasID: canvasID,
			OffsetX:  req.Viewport.OffsetX,
			OffsetY:  req.Viewport.OffsetY,
			Zoom:     req.Viewport.Zoom,
			Width:    req.Viewport.Width,
			Height:   req.Viewport.Height,
		}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			writeError(h.errs, w, r, err)
			return
		}
	}
	if req.Settings != nil {
		cmd := commands.UpdateSettingsCommand{
			CanvasID:   canvasID,
			SnapToGrid: req.Settings.SnapToGrid,
			GridSize:   req.Settings.GridSize,
			ShowGrid:   req.Settings.ShowGrid,
		}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			writeError(h.errs, w, r, err)
			return
		}
	}

	h.respondView(w, r, canvasID, http.StatusOK)
}

// Delete handles DELETE /canvases/{canvasID}
func (h *CanvasHandler) Delete(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	if err := h.commandBus.Send(r.Context(), commands.DeleteCanvasCommand{CanvasID: canvasID}); err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	h.logger.Info("Canvas deleted", zap.String("canvasID", canvasID))
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /canvases/{canvasID}/import. The request body is
// the exported document itself, symmetric with Export.
func (h *CanvasHandler) Import(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")

	document, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		h.errs.Handle(w, r, pkgerrors.NewValidationError("document unreadable or too large: "+err.Error()))
		return
	}
	if len(document) == 0 {
		h.errs.Handle(w, r, pkgerrors.NewValidationError("document is required"))
		return
	}

	cmd := commands.ImportCanvasCommand{CanvasID: canvasID, Document: document}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	h.logger.Info("Canvas imported",
		zap.String("canvasID", canvasID),
		zap.Int("bytes", len(document)),
	)
	h.respondView(w, r, canvasID, http.StatusOK)
}

// Export handles GET /canvases/{canvasID}/export. The document is
// written raw, not inside the API envelope, so it round-trips through
// Import unchanged.
func (h *CanvasHandler) Export(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")

	result, err := h.queryBus.Ask(r.Context(), queries.ExportCanvasQuery{CanvasID: canvasID})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	document, ok := result.(json.RawMessage)
	if !ok {
		h.errs.Handle(w, r, pkgerrors.NewInternalError("unexpected export result"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(document)
}

// UpdateSelection handles POST /canvases/{canvasID}/selection
func (h *CanvasHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")

	var req SelectionRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	var err error
	if req.Clear {
		err = h.commandBus.Send(r.Context(), commands.ClearSelectionCommand{CanvasID: canvasID})
	} else {
		err = h.commandBus.Send(r.Context(), commands.UpdateSelectionCommand{
			CanvasID:     canvasID,
			NodeIDs:      req.NodeIDs,
			ConnectorIDs: req.ConnectorIDs,
			Additive:     req.Additive,
		})
	}
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, messageResponse{ID: canvasID, Message: "Selection updated"})
}

// HitTest handles GET /canvases/{canvasID}/hit-test?x=&y=&padded=
func (h *CanvasHandler) HitTest(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")

	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		h.errs.Handle(w, r, pkgerrors.NewValidationError("x and y query parameters are required"))
		return
	}
	padded, _ := strconv.ParseBool(r.URL.Query().Get("padded"))

	result, err := h.queryBus.Ask(r.Context(), queries.HitTestQuery{
		CanvasID: canvasID,
		X:        x,
		Y:        y,
		Padded:   padded,
	})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// respondView writes the full canvas read model at the session's
// current revision
func (h *CanvasHandler) respondView(w http.ResponseWriter, r *http.Request, canvasID string, status int) {
	revision, err := h.store.Revision(r.Context(), canvasID)
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	result, err := h.queryBus.Ask(r.Context(), queries.GetCanvasQuery{CanvasID: canvasID, Revision: revision})
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, status, result)
}
