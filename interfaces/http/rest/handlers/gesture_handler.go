package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowcanvas/application/gestures"
	"flowcanvas/application/services"
	"flowcanvas/domain/core/entities"
	"flowcanvas/pkg/auth"
	"flowcanvas/pkg/common"
	pkgerrors "flowcanvas/pkg/errors"
)

// GestureHandler feeds pointer streams into the gesture service. These
// routes bypass the command bus; a drag produces a move per pointer
// event and the service applies them directly under the session lock.
type GestureHandler struct {
	gestures *services.GestureService
	limiter  *auth.GestureRateLimiter
	errs     *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewGestureHandler creates a new gesture handler
func NewGestureHandler(
	gestures *services.GestureService,
	limiter *auth.GestureRateLimiter,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *GestureHandler {
	return &GestureHandler{
		gestures: gestures,
		limiter:  limiter,
		errs:     errs,
		logger:   logger,
	}
}

// GestureStartRequest is the pointer-down of any gesture kind. Which id
// fields matter depends on the kind in the URL: node drags and
// connection creation name a node, endpoint drags name a connector and
// one of its ends.
type GestureStartRequest struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	NodeID      string  `json:"node_id,omitempty" validate:"omitempty,max=100"`
	ConnectorID string  `json:"connector_id,omitempty" validate:"omitempty,max=100"`
	End         string  `json:"end,omitempty" validate:"omitempty,oneof=start end"`
}

// GesturePointRequest is one pointer sample
type GesturePointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PreviewLineResponse is the dashed feedback segment of an endpoint
// drag or connection creation
type PreviewLineResponse struct {
	FromX float64 `json:"from_x"`
	FromY float64 `json:"from_y"`
	ToX   float64 `json:"to_x"`
	ToY   float64 `json:"to_y"`
}

// GestureStateResponse reports the gesture in progress
type GestureStateResponse struct {
	Kind    string               `json:"kind"`
	Active  bool                 `json:"active"`
	Preview *PreviewLineResponse `json:"preview,omitempty"`
}

// NodeDragOutcome is the wire shape of a finished node drag
type NodeDragOutcome struct {
	NodeID     string `json:"node_id"`
	Committed  bool   `json:"committed"`
	Deselected bool   `json:"deselected"`
}

// EndpointDragOutcome is the wire shape of a finished endpoint drag
type EndpointDragOutcome struct {
	ConnectorID string `json:"connector_id"`
	Reattached  bool   `json:"reattached"`
	Deleted     bool   `json:"deleted"`
	NodeID      string `json:"node_id,omitempty"`
}

// ConnectOutcome is the wire shape of a finished connection creation
type ConnectOutcome struct {
	Created     bool   `json:"created"`
	ConnectorID string `json:"connector_id,omitempty"`
}

// GestureEndResponse reports how a gesture resolved. Exactly one
// outcome section is set, matching the kind.
type GestureEndResponse struct {
	Kind         string               `json:"kind"`
	NodeDrag     *NodeDragOutcome     `json:"node_drag,omitempty"`
	EndpointDrag *EndpointDragOutcome `json:"endpoint_drag,omitempty"`
	Connect      *ConnectOutcome      `json:"connect,omitempty"`
}

// Start handles POST /canvases/{canvasID}/gestures/{kind}/start
func (h *GestureHandler) Start(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	kind := services.GestureKind(chi.URLParam(r, "kind"))
	if !h.allow(w, r, canvasID) {
		return
	}

	var req GestureStartRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	var err error
	switch kind {
	case services.GestureNodeDrag:
		if req.NodeID == "" {
			err = pkgerrors.NewValidationError("node_id is required for a node drag")
		} else {
			err = h.gestures.StartNodeDrag(r.Context(), canvasID, req.NodeID, req.X, req.Y)
		}
	case services.GestureEndpointDrag:
		switch {
		case req.ConnectorID == "":
			err = pkgerrors.NewValidationError("connector_id is required for an endpoint drag")
		case req.End == "":
			err = pkgerrors.NewValidationError("end is required for an endpoint drag")
		default:
			err = h.gestures.StartEndpointDrag(r.Context(), canvasID, req.ConnectorID, entities.ConnectorEnd(req.End), req.X, req.Y)
		}
	case services.GestureConnect:
		if req.NodeID == "" {
			err = pkgerrors.NewValidationError("node_id is required to start a connection")
		} else {
			err = h.gestures.StartConnection(r.Context(), canvasID, req.NodeID, req.X, req.Y)
		}
	default:
		err = pkgerrors.NewValidationError("unknown gesture kind: " + string(kind))
	}
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, h.state(canvasID, kind))
}

// Move handles POST /canvases/{canvasID}/gestures/{kind}/move
func (h *GestureHandler) Move(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	kind := services.GestureKind(chi.URLParam(r, "kind"))
	if !h.allow(w, r, canvasID) {
		return
	}
	if err := h.checkKind(canvasID, kind); err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	var req GesturePointRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if err := h.gestures.Move(r.Context(), canvasID, req.X, req.Y); err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, h.state(canvasID, kind))
}

// End handles POST /canvases/{canvasID}/gestures/{kind}/end
func (h *GestureHandler) End(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	kind := services.GestureKind(chi.URLParam(r, "kind"))
	if !h.allow(w, r, canvasID) {
		return
	}
	if err := h.checkKind(canvasID, kind); err != nil {
		writeError(h.errs, w, r, err)
		return
	}

	var req GesturePointRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	outcome, err := h.gestures.End(r.Context(), canvasID, req.X, req.Y)
	if err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, newGestureEndResponse(outcome))
}

// Cancel handles POST /canvases/{canvasID}/gestures/{kind}/cancel. Only
// connection creation has a cancel path; drags resolve through End.
func (h *GestureHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	canvasID := chi.URLParam(r, "canvasID")
	kind := services.GestureKind(chi.URLParam(r, "kind"))
	if !h.allow(w, r, canvasID) {
		return
	}
	if kind != services.GestureConnect {
		h.errs.Handle(w, r, pkgerrors.NewValidationError("only connection creation can be cancelled"))
		return
	}

	if err := h.gestures.CancelConnection(canvasID); err != nil {
		writeError(h.errs, w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, GestureStateResponse{Kind: string(kind), Active: false})
}

// allow admits the pointer event through the per-canvas rate limiter
func (h *GestureHandler) allow(w http.ResponseWriter, r *http.Request, canvasID string) bool {
	allowed, err := h.limiter.Allow(r.Context(), canvasID)
	if err != nil {
		h.errs.Handle(w, r, err)
		return false
	}
	if !allowed {
		h.logger.Debug("Gesture event dropped", zap.String("canvasID", canvasID))
		w.Header().Set("Retry-After", "1")
		h.errs.Handle(w, r, pkgerrors.NewRateLimitError(int(h.limiter.Rate()), "second"))
		return false
	}
	return true
}

// checkKind rejects pointer events addressed to a gesture kind other
// than the active one
func (h *GestureHandler) checkKind(canvasID string, kind services.GestureKind) error {
	active := h.gestures.ActiveGesture(canvasID)
	if active == services.GestureNone {
		return pkgerrors.ErrGestureNotActive
	}
	if active != kind {
		return pkgerrors.ErrGestureActive.WithDetail("active", string(active))
	}
	return nil
}

func (h *GestureHandler) state(canvasID string, kind services.GestureKind) GestureStateResponse {
	resp := GestureStateResponse{Kind: string(kind), Active: true}
	if from, to, ok := h.gestures.PreviewLine(canvasID); ok {
		resp.Preview = &PreviewLineResponse{FromX: from.X, FromY: from.Y, ToX: to.X, ToY: to.Y}
	}
	return resp
}

func newGestureEndResponse(outcome services.GestureOutcome) GestureEndResponse {
	resp := GestureEndResponse{Kind: string(outcome.Kind)}
	switch {
	case outcome.NodeDrag != nil:
		resp.NodeDrag = newNodeDragOutcome(outcome.NodeDrag)
	case outcome.EndpointDrag != nil:
		resp.EndpointDrag = newEndpointDragOutcome(outcome.EndpointDrag)
	case outcome.Connect != nil:
		resp.Connect = newConnectOutcome(outcome.Connect)
	}
	return resp
}

func newNodeDragOutcome(result *gestures.NodeDragResult) *NodeDragOutcome {
	return &NodeDragOutcome{
		NodeID:     result.NodeID,
		Committed:  result.Committed,
		Deselected: result.Deselected,
	}
}

func newEndpointDragOutcome(result *gestures.EndpointDragResult) *EndpointDragOutcome {
	return &EndpointDragOutcome{
		ConnectorID: result.ConnectorID,
		Reattached:  result.Reattached,
		Deleted:     result.Deleted,
		NodeID:      result.NodeID,
	}
}

func newConnectOutcome(result *gestures.ConnectResult) *ConnectOutcome {
	return &ConnectOutcome{
		Created:     result.Created,
		ConnectorID: result.ConnectorID,
	}
}
