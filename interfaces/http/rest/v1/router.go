package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/application/queries"
	querybus "flowcanvas/application/queries/bus"
	pkgerrors "flowcanvas/pkg/errors"
)

// NewRouter creates the legacy read-only v1 API. The pre-rewrite
// frontend polls whole canvas documents; v1 never had mutations and
// responds with bare JSON rather than the v2 envelope.
func NewRouter(queryBus *querybus.QueryBus, store ports.CanvasStore, logger *zap.Logger) *mux.Router {
	h := &handler{queryBus: queryBus, store: store, logger: logger}

	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/canvases/{id}", h.getCanvas).Methods("GET")
	v1.HandleFunc("/canvases/{id}/nodes", h.getNodes).Methods("GET")
	v1.HandleFunc("/canvases/{id}/connectors", h.getConnectors).Methods("GET")
	v1.HandleFunc("/health", healthCheck).Methods("GET")

	return router
}

type handler struct {
	queryBus *querybus.QueryBus
	store    ports.CanvasStore
	logger   *zap.Logger
}

// getCanvas handles GET /api/v1/canvases/{id}
func (h *handler) getCanvas(w http.ResponseWriter, r *http.Request) {
	view, ok := h.canvasView(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// getNodes handles GET /api/v1/canvases/{id}/nodes
func (h *handler) getNodes(w http.ResponseWriter, r *http.Request) {
	view, ok := h.canvasView(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, view.Nodes)
}

// getConnectors handles GET /api/v1/canvases/{id}/connectors
func (h *handler) getConnectors(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.queryBus.Ask(r.Context(), queries.GetConnectorsQuery{CanvasID: id})
	if err != nil {
		h.respondQueryError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// canvasView loads the full read model at the session's current
// revision
func (h *handler) canvasView(w http.ResponseWriter, r *http.Request) (*queries.CanvasView, bool) {
	id := mux.Vars(r)["id"]

	revision, err := h.store.Revision(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "canvas not found")
		return nil, false
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetCanvasQuery{CanvasID: id, Revision: revision})
	if err != nil {
		h.respondQueryError(w, r, err)
		return nil, false
	}
	view, ok := result.(*queries.CanvasView)
	if !ok {
		respondError(w, http.StatusInternalServerError, "failed to load canvas")
		return nil, false
	}
	return view, true
}

func (h *handler) respondQueryError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, pkgerrors.ErrCanvasNotFound) {
		respondError(w, http.StatusNotFound, "canvas not found")
		return
	}
	h.logger.Error("v1 query failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondError(w, http.StatusInternalServerError, "failed to load canvas")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}

// healthCheck provides the legacy health endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy","version":"v1"}`))
}
